// Package assessment implements the session engine: the state machine
// that advances a transparency assessment from question to question.
//
// A session has two states: Active(current question) and Completed(final
// score). Every submission scores the answer for the current question,
// appends it, and advances the pointer; when the pointer passes the last
// question the session completes and the final score is fixed as the
// mean of all per-question scores.
package assessment

import (
	"errors"

	"github.com/abhisek/prism/internal/store"
)

// Typed outcomes surfaced to callers. The transport layer maps these to
// client-error responses; anything else is a server failure.
var (
	// ErrInvalidInput indicates missing or malformed caller input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicateProduct indicates a registration reused a product key.
	ErrDuplicateProduct = errors.New("product key already registered")

	// ErrSessionNotFound indicates an unknown session ID.
	ErrSessionNotFound = errors.New("session not found")

	// ErrProductNotFound indicates a session references a product that
	// cannot be loaded.
	ErrProductNotFound = errors.New("product not found")
)

// RegisterInput is the caller-supplied product registration.
type RegisterInput struct {
	CompanyName string
	ProductName string
	ProductKey  string
	Description string
	Domain      string
}

// Registration is the result of registering a product: a fresh session
// positioned at question 1.
type Registration struct {
	SessionID          string
	ProductKey         string
	FirstQuestion      string
	RemainingQuestions []string
}

// StepResult reports the outcome of a single answer submission.
type StepResult struct {
	SessionID      string
	QuestionNumber int
	Answer         string
	Score          int
	Degraded       bool
	IsComplete     bool

	// AlreadyComplete is set when the submission hit a completed session.
	// No state changed; FinalScore and AllScores reflect the stored
	// terminal result.
	AlreadyComplete bool

	// FinalScore is set once the session is complete.
	FinalScore *float64

	// AllScores lists every recorded score so far, in question order.
	AllScores []int

	// RemainingQuestions lists the not-yet-asked questions while active.
	RemainingQuestions []string
}

// BatchResult reports the outcome of a batch submission.
type BatchResult struct {
	SessionID          string
	QuestionsAnswered  int
	NextQuestion       int
	IsComplete         bool
	AlreadyComplete    bool
	FinalScore         *float64
	AllScores          []int
	RemainingQuestions []string
}

// StatusInfo is a read-only snapshot of a session.
type StatusInfo struct {
	SessionID       string
	ProductKey      string
	CurrentQuestion int
	Status          string
	FinalScore      *float64
	AnsweredCount   int

	// NextQuestion is the text of the question awaiting an answer, or
	// "" when the session is complete.
	NextQuestion string
}

// ReportData bundles everything the report service consumes.
type ReportData struct {
	Product *store.ProductRecord
	Session *store.SessionRecord
}
