package attempt

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"studypath/internal/domain"
	"studypath/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	quizzes map[string]domain.Quiz
}

func (f fakeCatalog) FindQuiz(quizID string) (domain.Quiz, bool) {
	quiz, ok := f.quizzes[quizID]
	return quiz, ok
}

type fakeHistory struct {
	mu      sync.Mutex
	records []domain.CompletedQuiz
	err     error
}

func (f *fakeHistory) AppendCompleted(_ context.Context, record domain.CompletedQuiz) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, record)
	return nil
}

func (f *fakeHistory) list() []domain.CompletedQuiz {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.CompletedQuiz(nil), f.records...)
}

// MockAttemptAPI is a mock type for API
type MockAttemptAPI struct {
	mock.Mock
}

func (m *MockAttemptAPI) CreateAttempt(ctx context.Context, quizID string) (domain.QuizAttempt, error) {
	args := m.Called(ctx, quizID)
	return args.Get(0).(domain.QuizAttempt), args.Error(1)
}

func (m *MockAttemptAPI) SubmitAttempt(ctx context.Context, attemptID string, req dto.SubmitAttemptRequest) (domain.QuizAttempt, error) {
	args := m.Called(ctx, attemptID, req)
	return args.Get(0).(domain.QuizAttempt), args.Error(1)
}

func (m *MockAttemptAPI) AttemptStatistics(ctx context.Context, quizID string) (dto.AttemptStatsResponse, error) {
	args := m.Called(ctx, quizID)
	return args.Get(0).(dto.AttemptStatsResponse), args.Error(1)
}

func mcq(id, correct string, wrong ...string) domain.Question {
	options := []domain.Option{{Text: correct, IsCorrect: true}}
	for _, w := range wrong {
		options = append(options, domain.Option{Text: w})
	}
	return domain.Question{ID: id, QuestionType: domain.QuestionMCQ, QuestionText: id + "?", Options: options}
}

// threeQuestionQuiz has a 2 minute limit and questions q1..q3 whose correct
// answers are a, b, c.
func threeQuestionQuiz() domain.Quiz {
	return domain.Quiz{
		ID:        "quiz1",
		Title:     "Fractions",
		TimeLimit: 2,
		Questions: []domain.Question{
			mcq("q1", "a", "x", "y"),
			mcq("q2", "b", "x", "y"),
			mcq("q3", "c", "x", "y"),
		},
	}
}

func newTestEngine(quiz domain.Quiz, opts ...Option) (*Engine, *fakeHistory) {
	history := &fakeHistory{}
	catalog := fakeCatalog{quizzes: map[string]domain.Quiz{quiz.ID: quiz}}
	opts = append([]Option{WithoutTimer()}, opts...)
	return NewEngine(catalog, history, opts...), history
}

func answer(questionID, selected string) domain.QuizAnswer {
	return domain.QuizAnswer{QuestionID: questionID, SelectedOption: selected}
}

func TestEngine_Start(t *testing.T) {
	engine, _ := newTestEngine(threeQuestionQuiz())

	require.NoError(t, engine.Start(context.Background(), "quiz1"))
	assert.Equal(t, StatusActive, engine.Status())
	assert.Equal(t, 120, engine.TimeRemaining())
	assert.Equal(t, 0, engine.CurrentQuestionIndex())
	assert.NotEmpty(t, engine.AttemptID())
}

func TestEngine_Start_UnknownQuizStaysIdle(t *testing.T) {
	engine, _ := newTestEngine(threeQuestionQuiz())

	err := engine.Start(context.Background(), "nope")
	assert.True(t, domain.IsCode(err, domain.ErrQuizNotFound))
	assert.Equal(t, StatusIdle, engine.Status())
}

func TestEngine_Start_WhileActiveRejected(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(threeQuestionQuiz())
	require.NoError(t, engine.Start(ctx, "quiz1"))

	err := engine.Start(ctx, "quiz1")
	assert.True(t, domain.IsCode(err, domain.ErrAttemptActive))
}

func TestEngine_Start_DefaultTimeLimit(t *testing.T) {
	quiz := threeQuestionQuiz()
	quiz.TimeLimit = 0
	engine, _ := newTestEngine(quiz)

	require.NoError(t, engine.Start(context.Background(), "quiz1"))
	assert.Equal(t, DefaultTimeLimitSeconds, engine.TimeRemaining())
}

func TestEngine_Navigation_Clamped(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(threeQuestionQuiz())
	require.NoError(t, engine.Start(ctx, "quiz1"))

	engine.PreviousQuestion()
	assert.Equal(t, 0, engine.CurrentQuestionIndex())

	engine.NextQuestion()
	engine.NextQuestion()
	engine.NextQuestion()
	engine.NextQuestion()
	assert.Equal(t, 2, engine.CurrentQuestionIndex())

	engine.PreviousQuestion()
	assert.Equal(t, 1, engine.CurrentQuestionIndex())
}

func TestEngine_Answer_ReAnswerKeepsLast(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(threeQuestionQuiz())
	require.NoError(t, engine.Start(ctx, "quiz1"))

	require.NoError(t, engine.Answer(0, answer("q1", "x")))
	require.NoError(t, engine.Answer(0, answer("q1", "a")))

	answers := engine.Answers()
	require.NotNil(t, answers[0])
	assert.Equal(t, "a", answers[0].SelectedOption)
	assert.Nil(t, answers[1])
}

func TestEngine_Answer_OutOfRange(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(threeQuestionQuiz())
	require.NoError(t, engine.Start(ctx, "quiz1"))

	err := engine.Answer(3, answer("q4", "a"))
	assert.True(t, domain.IsCode(err, domain.ErrInvalidInput))
	err = engine.Answer(-1, answer("q1", "a"))
	assert.True(t, domain.IsCode(err, domain.ErrInvalidInput))
}

func TestEngine_Answer_RequiresActiveAttempt(t *testing.T) {
	engine, _ := newTestEngine(threeQuestionQuiz())

	err := engine.Answer(0, answer("q1", "a"))
	assert.True(t, domain.IsCode(err, domain.ErrAttemptNotActive))
}

func TestEngine_Submit_LocalScoring(t *testing.T) {
	ctx := context.Background()
	engine, history := newTestEngine(threeQuestionQuiz())
	require.NoError(t, engine.Start(ctx, "quiz1"))

	require.NoError(t, engine.Answer(0, answer("q1", "a"))) // correct
	require.NoError(t, engine.Answer(1, answer("q2", "x"))) // wrong
	require.NoError(t, engine.Answer(2, answer("q3", "c"))) // correct

	require.NoError(t, engine.Submit(ctx))
	assert.Equal(t, StatusSubmitted, engine.Status())
	assert.Equal(t, 67, engine.Score(), "round(100*2/3)")
	assert.Equal(t, 2, engine.CorrectAnswers())
	assert.Equal(t, 0, engine.TimeRemaining())

	records := history.list()
	require.Len(t, records, 1)
	assert.Equal(t, "quiz1", records[0].QuizID)
	assert.Equal(t, 67, records[0].Score)
	assert.Equal(t, 3, records[0].TotalQuestions)
	assert.Equal(t, 2, records[0].CorrectAnswers)
}

func TestEngine_Submit_UnansweredCountAsWrong(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(threeQuestionQuiz())
	require.NoError(t, engine.Start(ctx, "quiz1"))

	require.NoError(t, engine.Submit(ctx))
	assert.Equal(t, 0, engine.Score())
	assert.Equal(t, 0, engine.CorrectAnswers())
}

func TestEngine_Submit_RequiresActiveAttempt(t *testing.T) {
	engine, _ := newTestEngine(threeQuestionQuiz())

	err := engine.Submit(context.Background())
	assert.True(t, domain.IsCode(err, domain.ErrAttemptNotActive))
}

func TestEngine_TimerExpiryAutoSubmitsExactlyOnce(t *testing.T) {
	ctx := context.Background()
	engine, history := newTestEngine(threeQuestionQuiz())
	require.NoError(t, engine.Start(ctx, "quiz1"))
	require.NoError(t, engine.Answer(0, answer("q1", "a")))

	// The quiz allows 2 minutes: exactly 120 ticks exhaust it.
	for i := 0; i < 120; i++ {
		engine.Tick()
	}
	assert.Equal(t, StatusSubmitted, engine.Status())
	assert.Equal(t, 0, engine.TimeRemaining())

	// Further ticks are no-ops and never double-submit.
	engine.Tick()
	engine.Tick()
	assert.Len(t, history.list(), 1)
}

func TestEngine_BonusHookFiresOnceAtThreshold(t *testing.T) {
	ctx := context.Background()
	var calls []int
	engine, _ := newTestEngine(threeQuestionQuiz(), WithBonusHook(func(score int) {
		calls = append(calls, score)
	}))
	require.NoError(t, engine.Start(ctx, "quiz1"))
	require.NoError(t, engine.Answer(0, answer("q1", "a")))
	require.NoError(t, engine.Answer(1, answer("q2", "b")))
	require.NoError(t, engine.Answer(2, answer("q3", "c")))

	require.NoError(t, engine.Submit(ctx))
	assert.Equal(t, 100, engine.Score())
	assert.Equal(t, []int{100}, calls)
}

func TestEngine_BonusHookNotFiredBelowThreshold(t *testing.T) {
	ctx := context.Background()
	fired := false
	engine, _ := newTestEngine(threeQuestionQuiz(), WithBonusHook(func(int) { fired = true }))
	require.NoError(t, engine.Start(ctx, "quiz1"))
	require.NoError(t, engine.Answer(0, answer("q1", "a")))

	require.NoError(t, engine.Submit(ctx))
	assert.Equal(t, 33, engine.Score())
	assert.False(t, fired)
}

func TestEngine_RemoteAttempt_ServerScoreAuthoritative(t *testing.T) {
	ctx := context.Background()
	api := new(MockAttemptAPI)
	api.On("CreateAttempt", mock.Anything, "quiz1").
		Return(domain.QuizAttempt{ID: "server-attempt"}, nil)
	api.On("SubmitAttempt", mock.Anything, "server-attempt", mock.Anything).
		Return(domain.QuizAttempt{ID: "server-attempt", Score: 90, CorrectAnswers: 3}, nil)

	engine, history := newTestEngine(threeQuestionQuiz(), WithRemote(api))
	require.NoError(t, engine.Start(ctx, "quiz1"))
	assert.Equal(t, "server-attempt", engine.AttemptID())

	require.NoError(t, engine.Answer(0, answer("q1", "a")))
	require.NoError(t, engine.Submit(ctx))

	// Local computation would have said 33; the server's 90 wins.
	assert.Equal(t, 90, engine.Score())
	assert.Equal(t, 3, engine.CorrectAnswers())

	records := history.list()
	require.Len(t, records, 1)
	assert.Equal(t, 90, records[0].Score)
	api.AssertExpectations(t)
}

func TestEngine_RemoteSubmitFailureKeepsAttemptActive(t *testing.T) {
	ctx := context.Background()
	api := new(MockAttemptAPI)
	api.On("CreateAttempt", mock.Anything, "quiz1").
		Return(domain.QuizAttempt{ID: "server-attempt"}, nil)
	api.On("SubmitAttempt", mock.Anything, "server-attempt", mock.Anything).
		Return(domain.QuizAttempt{}, errors.New("gateway timeout")).Once()
	api.On("SubmitAttempt", mock.Anything, "server-attempt", mock.Anything).
		Return(domain.QuizAttempt{ID: "server-attempt", Score: 33, CorrectAnswers: 1}, nil).Once()

	engine, history := newTestEngine(threeQuestionQuiz(), WithRemote(api))
	require.NoError(t, engine.Start(ctx, "quiz1"))
	require.NoError(t, engine.Answer(0, answer("q1", "a")))

	err := engine.Submit(ctx)
	assert.Error(t, err)
	assert.Equal(t, StatusActive, engine.Status())
	assert.Equal(t, "gateway timeout", engine.LastError())
	assert.Empty(t, history.list())

	// The retry succeeds.
	require.NoError(t, engine.Submit(ctx))
	assert.Equal(t, StatusSubmitted, engine.Status())
	assert.Empty(t, engine.LastError())
	assert.Len(t, history.list(), 1)
	api.AssertExpectations(t)
}

func TestEngine_Abandon(t *testing.T) {
	ctx := context.Background()
	engine, history := newTestEngine(threeQuestionQuiz())
	require.NoError(t, engine.Start(ctx, "quiz1"))
	require.NoError(t, engine.Answer(0, answer("q1", "a")))

	require.NoError(t, engine.Abandon())
	assert.Equal(t, StatusAbandoned, engine.Status())
	assert.Empty(t, history.list())

	// Answers stay readable after abandoning.
	answers := engine.Answers()
	require.NotNil(t, answers[0])
	assert.Equal(t, "a", answers[0].SelectedOption)

	err := engine.Abandon()
	assert.True(t, domain.IsCode(err, domain.ErrAttemptNotActive))
}

func TestEngine_Statistics_RequiresRemote(t *testing.T) {
	engine, _ := newTestEngine(threeQuestionQuiz())

	_, err := engine.Statistics(context.Background(), "quiz1")
	assert.True(t, domain.IsCode(err, domain.ErrInvalidInput))
}

func TestEngine_TimerGoroutineStopsOnSubmit(t *testing.T) {
	ctx := context.Background()
	quiz := threeQuestionQuiz()
	history := &fakeHistory{}
	catalog := fakeCatalog{quizzes: map[string]domain.Quiz{quiz.ID: quiz}}
	engine := NewEngine(catalog, history, WithClock(func() time.Time {
		return time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	}))

	require.NoError(t, engine.Start(ctx, "quiz1"))
	require.NoError(t, engine.Submit(ctx))
	assert.Equal(t, StatusSubmitted, engine.Status())

	records := history.list()
	require.Len(t, records, 1)
	assert.Equal(t, time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC), records[0].CompletedAt)
}

func TestScoreAnswers_Rounding(t *testing.T) {
	tests := []struct {
		name    string
		total   int
		correct int
		want    int
	}{
		{"all correct", 4, 4, 100},
		{"none correct", 4, 0, 0},
		{"two thirds", 3, 2, 67},
		{"one third", 3, 1, 33},
		{"one sixth", 6, 1, 17},
		{"five sixths", 6, 5, 83},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quiz := domain.Quiz{ID: "q"}
			answers := make([]*domain.QuizAnswer, tt.total)
			for i := 0; i < tt.total; i++ {
				quiz.Questions = append(quiz.Questions, mcq(string(rune('a'+i)), "right", "wrong"))
				selected := "wrong"
				if i < tt.correct {
					selected = "right"
				}
				answers[i] = &domain.QuizAnswer{SelectedOption: selected}
			}

			score, correct := scoreAnswers(quiz, answers)
			assert.Equal(t, tt.want, score)
			assert.Equal(t, tt.correct, correct)
		})
	}
}
