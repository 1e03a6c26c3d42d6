package dto

import (
	"time"

	"studypath/internal/domain"
)

// OptionResponse represents one answer choice in the API response.
type OptionResponse struct {
	Text        string `json:"text"`
	IsCorrect   bool   `json:"isCorrect"`
	Explanation string `json:"explanation,omitempty"`
}

// QuestionResponse represents a question in the API response.
type QuestionResponse struct {
	ID           string           `json:"id"`
	QuestionType string           `json:"questionType"`
	QuestionText string           `json:"questionText"`
	Options      []OptionResponse `json:"options"`
	Explanation  string           `json:"explanation,omitempty"`
	Difficulty   string           `json:"difficulty"`
}

// QuizResponse represents a quiz in the API response.
type QuizResponse struct {
	ID            string             `json:"id"`
	Title         string             `json:"title"`
	Description   string             `json:"description,omitempty"`
	Type          string             `json:"type"`
	TimeLimit     int                `json:"timeLimit,omitempty"` // minutes
	Questions     []QuestionResponse `json:"questions,omitempty"`
	SubjectID     string             `json:"subjectId,omitempty"`
	ChapterID     string             `json:"chapterId,omitempty"`
	Board         string             `json:"board,omitempty"`
	Grade         int                `json:"grade,omitempty"`
	AttemptCount  int                `json:"attemptCount,omitempty"`
	QuestionCount int                `json:"questionCount,omitempty"`
}

// ToDomain converts the wire quiz into the domain model.
func (r *QuizResponse) ToDomain() domain.Quiz {
	questions := make([]domain.Question, 0, len(r.Questions))
	for _, q := range r.Questions {
		options := make([]domain.Option, 0, len(q.Options))
		for _, o := range q.Options {
			options = append(options, domain.Option{
				Text:        o.Text,
				IsCorrect:   o.IsCorrect,
				Explanation: o.Explanation,
			})
		}
		questions = append(questions, domain.Question{
			ID:           q.ID,
			QuestionType: domain.QuestionType(q.QuestionType),
			QuestionText: q.QuestionText,
			Options:      options,
			Explanation:  q.Explanation,
			Difficulty:   domain.Difficulty(q.Difficulty),
		})
	}
	questionCount := r.QuestionCount
	if questionCount == 0 {
		questionCount = len(questions)
	}
	return domain.Quiz{
		ID:            r.ID,
		Title:         r.Title,
		Description:   r.Description,
		Type:          domain.QuizType(r.Type),
		TimeLimit:     r.TimeLimit,
		Questions:     questions,
		SubjectID:     r.SubjectID,
		ChapterID:     r.ChapterID,
		Board:         domain.Board(r.Board),
		Grade:         r.Grade,
		AttemptCount:  r.AttemptCount,
		QuestionCount: questionCount,
	}
}

// SubjectResponse represents a subject in the API response.
type SubjectResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Board        string `json:"board,omitempty"`
	Grade        int    `json:"grade,omitempty"`
	ChapterCount int    `json:"chapterCount,omitempty"`
}

// ToDomain converts the wire subject into the domain model.
func (r *SubjectResponse) ToDomain() domain.Subject {
	return domain.Subject{
		ID:           r.ID,
		Name:         r.Name,
		Board:        domain.Board(r.Board),
		Grade:        r.Grade,
		ChapterCount: r.ChapterCount,
	}
}

// ChapterResponse represents a chapter in the API response.
type ChapterResponse struct {
	ID        string `json:"id"`
	SubjectID string `json:"subjectId"`
	Name      string `json:"name"`
	Position  int    `json:"position,omitempty"`
	QuizCount int    `json:"quizCount,omitempty"`
}

// ToDomain converts the wire chapter into the domain model.
func (r *ChapterResponse) ToDomain() domain.Chapter {
	return domain.Chapter{
		ID:        r.ID,
		SubjectID: r.SubjectID,
		Name:      r.Name,
		Position:  r.Position,
		QuizCount: r.QuizCount,
	}
}

// CreateAttemptRequest is the request body for POST /quiz-attempts.
type CreateAttemptRequest struct {
	QuizID string `json:"quizId"`
}

// AnswerPayload is one answered question inside a submission.
type AnswerPayload struct {
	QuestionID     string `json:"questionId"`
	SelectedOption string `json:"selectedOption,omitempty"`
	TextAnswer     string `json:"textAnswer,omitempty"`
	TimeSpent      int    `json:"timeSpent,omitempty"`
}

// SubmitAttemptRequest is the request body for attempt submission.
type SubmitAttemptRequest struct {
	Answers   []AnswerPayload `json:"answers"`
	TimeSpent int             `json:"timeSpent"` // seconds
}

// AttemptResponse represents a quiz attempt as the backend serializes it.
type AttemptResponse struct {
	ID             string          `json:"id"`
	QuizID         string          `json:"quizId"`
	StudentID      string          `json:"studentId"`
	Score          int             `json:"score"`
	TotalQuestions int             `json:"totalQuestions"`
	CorrectAnswers int             `json:"correctAnswers"`
	TimeSpent      int             `json:"timeSpent"`
	Status         string          `json:"status"`
	Answers        []AnswerPayload `json:"answers,omitempty"`
	StartedAt      time.Time       `json:"startedAt,omitempty"`
	CompletedAt    time.Time       `json:"completedAt,omitempty"`
}

// ToDomain converts the wire attempt into the domain model.
func (r *AttemptResponse) ToDomain() domain.QuizAttempt {
	answers := make([]*domain.QuizAnswer, 0, len(r.Answers))
	for _, a := range r.Answers {
		answers = append(answers, &domain.QuizAnswer{
			QuestionID:     a.QuestionID,
			SelectedOption: a.SelectedOption,
			TextAnswer:     a.TextAnswer,
			TimeSpent:      a.TimeSpent,
		})
	}
	return domain.QuizAttempt{
		ID:             r.ID,
		QuizID:         r.QuizID,
		StudentID:      r.StudentID,
		Score:          r.Score,
		TotalQuestions: r.TotalQuestions,
		CorrectAnswers: r.CorrectAnswers,
		TimeSpent:      r.TimeSpent,
		Status:         domain.AttemptStatus(r.Status),
		Answers:        answers,
		StartedAt:      r.StartedAt,
		CompletedAt:    r.CompletedAt,
	}
}

// AttemptStatsResponse represents aggregate statistics for a quiz.
type AttemptStatsResponse struct {
	QuizID        string  `json:"quizId"`
	AttemptCount  int     `json:"attemptCount"`
	AverageScore  float64 `json:"averageScore"`
	HighestScore  int     `json:"highestScore"`
	CompletionPct float64 `json:"completionPct"`
}
