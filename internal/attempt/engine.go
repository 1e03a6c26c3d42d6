// Package attempt governs a single quiz-taking session: question
// navigation, answer recording, the countdown timer, and submission with
// scoring. One Engine owns one attempt at a time.
package attempt

import (
	"context"
	"math"
	"sync"
	"time"

	"studypath/internal/domain"
	"studypath/internal/dto"
	"studypath/internal/logger"
	"studypath/internal/util"

	"go.uber.org/zap"
)

// Status is the attempt machine's state.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusActive    Status = "active"
	StatusSubmitted Status = "submitted"
	StatusAbandoned Status = "abandoned"
)

// DefaultTimeLimitSeconds applies when a quiz has no explicit limit.
const DefaultTimeLimitSeconds = 1800

// BonusThreshold is the score at or above which the bonus-credit hook
// fires.
const BonusThreshold = 80

// Catalog supplies quizzes already loaded into the client. Implemented by
// the catalog loader.
type Catalog interface {
	FindQuiz(quizID string) (domain.Quiz, bool)
}

// History records completed quizzes. Implemented by the SQL store.
type History interface {
	AppendCompleted(ctx context.Context, record domain.CompletedQuiz) error
}

// API is the server-side attempt lifecycle. When configured, the server's
// score is authoritative; when nil, attempts are scored locally. The two
// paths never mix within one engine.
type API interface {
	CreateAttempt(ctx context.Context, quizID string) (domain.QuizAttempt, error)
	SubmitAttempt(ctx context.Context, attemptID string, req dto.SubmitAttemptRequest) (domain.QuizAttempt, error)
	AttemptStatistics(ctx context.Context, quizID string) (dto.AttemptStatsResponse, error)
}

// Engine is the quiz attempt state machine. All methods are safe for
// concurrent use with the timer goroutine.
type Engine struct {
	mu         sync.Mutex
	status     Status
	quiz       domain.Quiz
	attemptID  string
	index      int
	answers    []*domain.QuizAnswer
	remaining  int // seconds
	elapsed    int // seconds ticked while active
	score      int
	correct    int
	lastErr    string
	submitting bool
	startedAt  time.Time
	stopTimer  chan struct{}

	catalog      Catalog
	history      History
	remote       API
	bonus        func(score int)
	now          func() time.Time
	disableTimer bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithRemote routes attempt creation and scoring through the backend.
func WithRemote(api API) Option {
	return func(e *Engine) { e.remote = api }
}

// WithBonusHook registers the bonus-credit callback fired once per
// submission when the score reaches BonusThreshold.
func WithBonusHook(hook func(score int)) Option {
	return func(e *Engine) { e.bonus = hook }
}

// WithClock injects a clock for deterministic timestamps in tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithoutTimer disables the background ticker; tests drive Tick directly.
func WithoutTimer() Option {
	return func(e *Engine) { e.disableTimer = true }
}

// NewEngine creates an idle Engine.
func NewEngine(catalog Catalog, history History, opts ...Option) *Engine {
	e := &Engine{
		status:  StatusIdle,
		catalog: catalog,
		history: history,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start begins an attempt for a quiz already present in the catalog. An
// unknown quiz id fails locally and the engine stays idle. When a remote
// API is configured the server assigns the attempt id.
func (e *Engine) Start(ctx context.Context, quizID string) error {
	e.mu.Lock()
	if e.status == StatusActive {
		e.mu.Unlock()
		return domain.NewAttemptActiveError(e.quiz.ID)
	}
	e.mu.Unlock()

	quiz, ok := e.catalog.FindQuiz(quizID)
	if !ok {
		err := domain.NewQuizNotFoundError(quizID)
		logger.Get().Error("Cannot start quiz", zap.String("quizID", quizID), zap.Error(err))
		return err
	}

	attemptID := util.NewULID()
	if e.remote != nil {
		created, err := e.remote.CreateAttempt(ctx, quizID)
		if err != nil {
			logger.Get().Error("Failed to create server attempt",
				zap.String("quizID", quizID), zap.Error(err))
			return err
		}
		attemptID = created.ID
	}

	remaining := DefaultTimeLimitSeconds
	if quiz.TimeLimit > 0 {
		remaining = quiz.TimeLimit * 60
	}

	e.mu.Lock()
	e.status = StatusActive
	e.quiz = quiz
	e.attemptID = attemptID
	e.index = 0
	e.answers = make([]*domain.QuizAnswer, len(quiz.Questions))
	e.remaining = remaining
	e.elapsed = 0
	e.score = 0
	e.correct = 0
	e.lastErr = ""
	e.submitting = false
	e.startedAt = e.now()
	if !e.disableTimer {
		e.stopTimer = make(chan struct{})
		go e.run(e.stopTimer)
	}
	e.mu.Unlock()

	logger.Get().Info("Quiz attempt started",
		zap.String("quizID", quizID),
		zap.String("attemptID", attemptID),
		zap.Int("timeRemaining", remaining))
	return nil
}

// run ticks once per second until the attempt leaves the active state.
func (e *Engine) run(stop <-chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			e.Tick()
		}
	}
}

// Tick decrements the countdown by exactly one second. On reaching zero
// while still active it stops the ticker and auto-submits exactly once.
func (e *Engine) Tick() {
	e.mu.Lock()
	if e.status != StatusActive || e.remaining <= 0 || e.submitting {
		e.mu.Unlock()
		return
	}
	e.remaining--
	e.elapsed++
	expired := e.remaining == 0
	if expired {
		// Stop the ticker before submitting so a slow or failing submit
		// can never fire twice.
		e.stopTimerLocked()
	}
	e.mu.Unlock()

	if expired {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := e.Submit(ctx); err != nil {
			logger.Get().Error("Auto-submit on timeout failed; attempt stays active for retry",
				zap.String("attemptID", e.AttemptID()), zap.Error(err))
		}
	}
}

// NextQuestion advances the question index, clamped to the last question.
// Navigation never changes stored answers.
func (e *Engine) NextQuestion() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status != StatusActive {
		return
	}
	if e.index < len(e.quiz.Questions)-1 {
		e.index++
	}
}

// PreviousQuestion moves the question index back, clamped to zero.
func (e *Engine) PreviousQuestion() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status != StatusActive {
		return
	}
	if e.index > 0 {
		e.index--
	}
}

// Answer overwrites the answer slot for the given question index.
// Re-answering is always allowed up until submission; answering does not
// advance the index.
func (e *Engine) Answer(index int, answer domain.QuizAnswer) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status != StatusActive {
		return domain.NewAttemptNotActiveError()
	}
	if index < 0 || index >= len(e.answers) {
		return domain.NewInvalidInputError("question index out of range")
	}
	if answer.QuestionID == "" {
		answer.QuestionID = e.quiz.Questions[index].ID
	}
	stored := answer
	e.answers[index] = &stored
	return nil
}

// Submit finishes the attempt, manually or from timer expiry. The score
// is round(100*correct/total); one CompletedQuiz record is appended to
// history and the bonus hook fires at most once per submission. A failed
// remote submit surfaces an error and leaves the attempt active so the
// user can retry.
func (e *Engine) Submit(ctx context.Context) error {
	e.mu.Lock()
	if e.status != StatusActive {
		e.mu.Unlock()
		return domain.NewAttemptNotActiveError()
	}
	if e.submitting {
		e.mu.Unlock()
		return nil
	}
	e.submitting = true
	quiz := e.quiz
	attemptID := e.attemptID
	answers := append([]*domain.QuizAnswer(nil), e.answers...)
	elapsed := e.elapsed
	e.mu.Unlock()

	score, correct := scoreAnswers(quiz, answers)

	if e.remote != nil {
		result, err := e.remote.SubmitAttempt(ctx, attemptID, buildSubmission(answers, elapsed))
		if err != nil {
			e.mu.Lock()
			e.submitting = false
			e.lastErr = err.Error()
			e.mu.Unlock()
			return err
		}
		// Server scoring is authoritative; it overwrites the local
		// computation and answers.
		score = result.Score
		correct = result.CorrectAnswers
		if len(result.Answers) == len(answers) {
			answers = result.Answers
		}
	}

	e.mu.Lock()
	e.status = StatusSubmitted
	e.remaining = 0
	e.score = score
	e.correct = correct
	e.answers = answers
	e.lastErr = ""
	e.stopTimerLocked()
	completedAt := e.now()
	e.mu.Unlock()

	record := domain.CompletedQuiz{
		QuizID:         quiz.ID,
		Score:          score,
		CompletedAt:    completedAt,
		TotalQuestions: len(quiz.Questions),
		CorrectAnswers: correct,
	}
	if err := e.history.AppendCompleted(ctx, record); err != nil {
		logger.Get().Warn("Failed to record quiz completion", zap.Error(err))
	}

	if e.bonus != nil && score >= BonusThreshold {
		e.bonus(score)
	}

	logger.Get().Info("Quiz attempt submitted",
		zap.String("quizID", quiz.ID),
		zap.String("attemptID", attemptID),
		zap.Int("score", score),
		zap.Int("correctAnswers", correct))
	return nil
}

// Abandon leaves the active state without scoring. The quiz and answers
// stay readable.
func (e *Engine) Abandon() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status != StatusActive {
		return domain.NewAttemptNotActiveError()
	}
	e.status = StatusAbandoned
	e.stopTimerLocked()
	return nil
}

// Statistics fetches server-side aggregate statistics for a quiz. Only
// available with a remote API.
func (e *Engine) Statistics(ctx context.Context, quizID string) (dto.AttemptStatsResponse, error) {
	if e.remote == nil {
		return dto.AttemptStatsResponse{}, domain.NewInvalidInputError("attempt statistics require server-backed attempts")
	}
	return e.remote.AttemptStatistics(ctx, quizID)
}

func (e *Engine) stopTimerLocked() {
	if e.stopTimer != nil {
		close(e.stopTimer)
		e.stopTimer = nil
	}
}

// Status returns the machine state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// IsActive reports whether an attempt is running.
func (e *Engine) IsActive() bool {
	return e.Status() == StatusActive
}

// TimeRemaining returns the countdown in seconds.
func (e *Engine) TimeRemaining() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.remaining
}

// CurrentQuestionIndex returns the index of the question in view.
func (e *Engine) CurrentQuestionIndex() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index
}

// CurrentQuestion returns the question in view; ok is false when no quiz
// is loaded.
func (e *Engine) CurrentQuestion() (domain.Question, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.quiz.Questions) == 0 {
		return domain.Question{}, false
	}
	return e.quiz.Questions[e.index], true
}

// Quiz returns the quiz of the current or last attempt. It stays
// available after submission for the results view.
func (e *Engine) Quiz() domain.Quiz {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.quiz
}

// Answers returns a copy of the answer slots; nil means unanswered.
func (e *Engine) Answers() []*domain.QuizAnswer {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*domain.QuizAnswer, len(e.answers))
	for i, a := range e.answers {
		if a != nil {
			copied := *a
			out[i] = &copied
		}
	}
	return out
}

// AttemptID returns the current attempt's id.
func (e *Engine) AttemptID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.attemptID
}

// Score returns the final score; zero until submitted.
func (e *Engine) Score() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.score
}

// CorrectAnswers returns the number of correctly answered questions.
func (e *Engine) CorrectAnswers() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.correct
}

// LastError returns the message from the most recent failed submission.
func (e *Engine) LastError() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// scoreAnswers counts answers whose selected text equals the option
// flagged correct, and converts the count to a 0-100 score.
func scoreAnswers(quiz domain.Quiz, answers []*domain.QuizAnswer) (score, correct int) {
	total := len(quiz.Questions)
	if total == 0 {
		return 0, 0
	}
	for i := range quiz.Questions {
		if i >= len(answers) || answers[i] == nil {
			continue
		}
		opt := quiz.Questions[i].CorrectOption()
		if opt != nil && answers[i].SelectedOption == opt.Text {
			correct++
		}
	}
	score = int(math.Round(100 * float64(correct) / float64(total)))
	return score, correct
}

// buildSubmission converts answered slots into the wire payload.
func buildSubmission(answers []*domain.QuizAnswer, timeSpent int) dto.SubmitAttemptRequest {
	payload := make([]dto.AnswerPayload, 0, len(answers))
	for _, a := range answers {
		if a == nil {
			continue
		}
		payload = append(payload, dto.AnswerPayload{
			QuestionID:     a.QuestionID,
			SelectedOption: a.SelectedOption,
			TextAnswer:     a.TextAnswer,
			TimeSpent:      a.TimeSpent,
		})
	}
	return dto.SubmitAttemptRequest{Answers: payload, TimeSpent: timeSpent}
}
