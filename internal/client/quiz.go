package client

import (
	"context"
	"net/http"
	"net/url"

	"studypath/internal/domain"
	"studypath/internal/dto"
)

// Quizzes fetches one page of the unscoped quiz catalog.
func (c *Client) Quizzes(ctx context.Context, page, limit int) ([]domain.Quiz, dto.PageMeta, error) {
	return c.quizList(ctx, "/quizzes", pageQuery(page, limit))
}

// QuizzesBySubject fetches one page of quizzes scoped to a subject.
func (c *Client) QuizzesBySubject(ctx context.Context, subjectID string, page, limit int) ([]domain.Quiz, dto.PageMeta, error) {
	q := pageQuery(page, limit)
	q.Set("subjectId", subjectID)
	return c.quizList(ctx, "/quizzes", q)
}

// QuizzesByChapter fetches one page of quizzes scoped to a chapter.
func (c *Client) QuizzesByChapter(ctx context.Context, chapterID string, page, limit int) ([]domain.Quiz, dto.PageMeta, error) {
	return c.quizList(ctx, "/quizzes/chapter/"+url.PathEscape(chapterID), pageQuery(page, limit))
}

func (c *Client) quizList(ctx context.Context, path string, query url.Values) ([]domain.Quiz, dto.PageMeta, error) {
	var resp []dto.QuizResponse
	meta, err := c.do(ctx, http.MethodGet, path, query, nil, &resp, true)
	if err != nil {
		return nil, dto.PageMeta{}, err
	}
	quizzes := make([]domain.Quiz, 0, len(resp))
	for i := range resp {
		quizzes = append(quizzes, resp[i].ToDomain())
	}
	return quizzes, meta, nil
}

// Quiz fetches a single quiz with its full question list.
func (c *Client) Quiz(ctx context.Context, id string) (domain.Quiz, error) {
	var resp dto.QuizResponse
	if _, err := c.do(ctx, http.MethodGet, "/quizzes/"+url.PathEscape(id), nil, nil, &resp, true); err != nil {
		return domain.Quiz{}, err
	}
	return resp.ToDomain(), nil
}

// Subjects fetches all subjects.
func (c *Client) Subjects(ctx context.Context) ([]domain.Subject, error) {
	var resp []dto.SubjectResponse
	if _, err := c.do(ctx, http.MethodGet, "/subjects", nil, nil, &resp, true); err != nil {
		return nil, err
	}
	subjects := make([]domain.Subject, 0, len(resp))
	for i := range resp {
		subjects = append(subjects, resp[i].ToDomain())
	}
	return subjects, nil
}

// Chapters fetches the chapters of a subject.
func (c *Client) Chapters(ctx context.Context, subjectID string) ([]domain.Chapter, error) {
	var resp []dto.ChapterResponse
	path := "/subjects/" + url.PathEscape(subjectID) + "/chapters"
	if _, err := c.do(ctx, http.MethodGet, path, nil, nil, &resp, true); err != nil {
		return nil, err
	}
	chapters := make([]domain.Chapter, 0, len(resp))
	for i := range resp {
		chapters = append(chapters, resp[i].ToDomain())
	}
	return chapters, nil
}

// CreateAttempt starts a server-side attempt and returns the record with
// its server-assigned id.
func (c *Client) CreateAttempt(ctx context.Context, quizID string) (domain.QuizAttempt, error) {
	var resp dto.AttemptResponse
	_, err := c.do(ctx, http.MethodPost, "/quiz-attempts", nil,
		dto.CreateAttemptRequest{QuizID: quizID}, &resp, true)
	if err != nil {
		return domain.QuizAttempt{}, err
	}
	return resp.ToDomain(), nil
}

// SubmitAttempt submits the recorded answers. The returned attempt carries
// the server's authoritative score and correctness.
func (c *Client) SubmitAttempt(ctx context.Context, attemptID string, req dto.SubmitAttemptRequest) (domain.QuizAttempt, error) {
	var resp dto.AttemptResponse
	path := "/quiz-attempts/" + url.PathEscape(attemptID) + "/submit"
	if _, err := c.do(ctx, http.MethodPost, path, nil, req, &resp, true); err != nil {
		return domain.QuizAttempt{}, err
	}
	return resp.ToDomain(), nil
}

// AttemptStatistics fetches aggregate attempt statistics for a quiz.
func (c *Client) AttemptStatistics(ctx context.Context, quizID string) (dto.AttemptStatsResponse, error) {
	var resp dto.AttemptStatsResponse
	path := "/quiz-attempts/statistics/" + url.PathEscape(quizID)
	if _, err := c.do(ctx, http.MethodGet, path, nil, nil, &resp, true); err != nil {
		return dto.AttemptStatsResponse{}, err
	}
	return resp, nil
}
