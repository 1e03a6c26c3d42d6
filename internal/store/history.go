package store

import (
	"context"
	"fmt"
	"time"

	"studypath/internal/domain"
)

// completedQuizRow is the table shape of one history record.
type completedQuizRow struct {
	ID             int64     `db:"id"`
	QuizID         string    `db:"quiz_id"`
	Score          int       `db:"score"`
	CompletedAt    time.Time `db:"completed_at"`
	TotalQuestions int       `db:"total_questions"`
	CorrectAnswers int       `db:"correct_answers"`
}

func (r *completedQuizRow) toDomain() domain.CompletedQuiz {
	return domain.CompletedQuiz{
		QuizID:         r.QuizID,
		Score:          r.Score,
		CompletedAt:    r.CompletedAt,
		TotalQuestions: r.TotalQuestions,
		CorrectAnswers: r.CorrectAnswers,
	}
}

// AppendCompleted appends one history record. Records are never mutated.
func (s *SQLStore) AppendCompleted(ctx context.Context, record domain.CompletedQuiz) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO completed_quizzes (quiz_id, score, completed_at, total_questions, correct_answers)
		 VALUES (?, ?, ?, ?, ?)`,
		record.QuizID, record.Score, record.CompletedAt.UTC(), record.TotalQuestions, record.CorrectAnswers)
	if err != nil {
		return fmt.Errorf("failed to append completed quiz: %w", err)
	}
	return nil
}

// ListCompleted returns the history, most recent first.
func (s *SQLStore) ListCompleted(ctx context.Context) ([]domain.CompletedQuiz, error) {
	var rows []completedQuizRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, quiz_id, score, completed_at, total_questions, correct_answers
		 FROM completed_quizzes ORDER BY completed_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed quizzes: %w", err)
	}

	records := make([]domain.CompletedQuiz, 0, len(rows))
	for i := range rows {
		records = append(records, rows[i].toDomain())
	}
	return records, nil
}
