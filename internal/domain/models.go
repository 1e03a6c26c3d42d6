package domain

import (
	"time"
)

// Provider identifies how a user signed in.
type Provider string

const (
	ProviderEmail    Provider = "email"
	ProviderGoogle   Provider = "google"
	ProviderFacebook Provider = "facebook"
	ProviderGitHub   Provider = "github"
)

// Board is the curriculum standard a subject belongs to.
type Board string

const (
	BoardCBSE      Board = "CBSE"
	BoardICSE      Board = "ICSE"
	BoardIB        Board = "IB"
	BoardState     Board = "STATE"
	BoardCambridge Board = "CAMBRIDGE"
)

// ValidBoard reports whether b is one of the known curriculum boards.
func ValidBoard(b Board) bool {
	switch b {
	case BoardCBSE, BoardICSE, BoardIB, BoardState, BoardCambridge:
		return true
	}
	return false
}

// QuestionType classifies how a question is answered.
type QuestionType string

const (
	QuestionMCQ            QuestionType = "MCQ"
	QuestionTrueFalse      QuestionType = "TRUE_FALSE"
	QuestionFillBlank      QuestionType = "FILL_BLANK"
	QuestionShortAnswer    QuestionType = "SHORT_ANSWER"
	QuestionMatchFollowing QuestionType = "MATCH_FOLLOWING"
)

// Difficulty of a single question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// QuizType distinguishes the flavors of quizzes in the catalog.
type QuizType string

const (
	QuizPractice       QuizType = "PRACTICE"
	QuizMockTest       QuizType = "MOCK_TEST"
	QuizChapterTest    QuizType = "CHAPTER_TEST"
	QuizDailyChallenge QuizType = "DAILY_CHALLENGE"
)

// AttemptStatus is the lifecycle state of a quiz attempt.
type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "IN_PROGRESS"
	AttemptCompleted  AttemptStatus = "COMPLETED"
	AttemptAbandoned  AttemptStatus = "ABANDONED"
)

// User holds identity plus the active session credentials.
type User struct {
	ID           string
	Name         string
	Email        string
	Avatar       string
	Provider     Provider
	AccessToken  string
	RefreshToken string
}

// Validate validates the user
func (u *User) Validate() error {
	if u.ID == "" {
		return NewValidationError("user ID is required")
	}
	if u.Email == "" {
		return NewValidationError("email is required")
	}
	return nil
}

// Option is one answer choice of a question.
type Option struct {
	Text        string
	IsCorrect   bool
	Explanation string
}

// Question represents a single question inside a quiz.
type Question struct {
	ID           string
	QuestionType QuestionType
	QuestionText string
	Options      []Option
	Explanation  string
	Difficulty   Difficulty
}

// CorrectOption returns the option flagged correct, or nil when none is.
// MCQ and TRUE_FALSE questions are expected to carry exactly one.
func (q *Question) CorrectOption() *Option {
	for i := range q.Options {
		if q.Options[i].IsCorrect {
			return &q.Options[i]
		}
	}
	return nil
}

// Validate validates the question
func (q *Question) Validate() error {
	if q.QuestionText == "" {
		return NewValidationError("question text is required")
	}
	switch q.QuestionType {
	case QuestionMCQ, QuestionTrueFalse:
		correct := 0
		for _, o := range q.Options {
			if o.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			return NewValidationError("exactly one correct option is required")
		}
	}
	return nil
}

// Quiz is an immutable catalog entry. Question order is significant: it
// defines the question index used by attempts.
type Quiz struct {
	ID            string
	Title         string
	Description   string
	Type          QuizType
	TimeLimit     int // minutes; 0 means the quiz has no explicit limit
	Questions     []Question
	SubjectID     string
	ChapterID     string
	Board         Board
	Grade         int
	AttemptCount  int
	QuestionCount int
}

// Validate validates the quiz
func (q *Quiz) Validate() error {
	if q.ID == "" {
		return NewValidationError("quiz ID is required")
	}
	if q.Title == "" {
		return NewValidationError("title is required")
	}
	if len(q.Questions) == 0 {
		return NewValidationError("at least one question is required")
	}
	return nil
}

// QuizAnswer records a user's answer to one question. It is mutated in
// place until the attempt is submitted, immutable afterward.
type QuizAnswer struct {
	QuestionID     string
	SelectedOption string
	TextAnswer     string
	TimeSpent      int // seconds
}

// QuizAttempt is one timed session of a user answering a quiz.
// Answers holds one slot per question index; nil means unanswered.
type QuizAttempt struct {
	ID             string
	QuizID         string
	StudentID      string
	Score          int
	TotalQuestions int
	CorrectAnswers int
	TimeSpent      int // seconds
	Status         AttemptStatus
	Answers        []*QuizAnswer
	StartedAt      time.Time
	CompletedAt    time.Time
}

// CompletedQuiz is the client-local, append-only history record written
// once per submission.
type CompletedQuiz struct {
	QuizID         string
	Score          int
	CompletedAt    time.Time
	TotalQuestions int
	CorrectAnswers int
}

// Subject groups chapters under a board and grade.
type Subject struct {
	ID           string
	Name         string
	Board        Board
	Grade        int
	ChapterCount int
}

// Chapter is one unit of a subject.
type Chapter struct {
	ID        string
	SubjectID string
	Name      string
	Position  int
	QuizCount int
}

// School is a lookup/autocomplete result.
type School struct {
	ID     string
	Name   string
	CityID string
}

// City is a lookup/autocomplete result.
type City struct {
	ID    string
	Name  string
	State string
}

// OnboardingData is the partial profile accumulated across wizard steps.
// Steps 1-2 fields are mandatory before submission; steps 3-4 are optional.
type OnboardingData struct {
	Grade       int
	Board       Board
	SchoolID    string
	CityID      string
	DateOfBirth string
	PhoneNumber string
	ParentEmail string
	ParentPhone string
	Interests   []string
}

// IsEmpty reports whether no field has been filled in yet.
func (d OnboardingData) IsEmpty() bool {
	return d.Grade == 0 && d.Board == "" && d.SchoolID == "" && d.CityID == "" &&
		d.DateOfBirth == "" && d.PhoneNumber == "" && d.ParentEmail == "" &&
		d.ParentPhone == "" && len(d.Interests) == 0
}

// MissingRequired returns the names of required fields (steps 1-2) that
// are still empty, in a stable order.
func (d *OnboardingData) MissingRequired() []string {
	var missing []string
	if d.Grade == 0 {
		missing = append(missing, "grade")
	}
	if d.Board == "" {
		missing = append(missing, "board")
	}
	if d.SchoolID == "" {
		missing = append(missing, "schoolId")
	}
	if d.CityID == "" {
		missing = append(missing, "cityId")
	}
	return missing
}
