package store

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors shared by all repositories.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrProductExists indicates a registration reused an existing product key.
	ErrProductExists = errors.New("product key already registered")

	// ErrStale indicates a progress update lost a read-modify-write race:
	// the session's current question no longer matches the value it was
	// read at. The caller must re-read and retry or fail the operation.
	ErrStale = errors.New("session was modified concurrently")
)

// Session status values.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// ProductRecord is a registered product. Immutable after creation.
type ProductRecord struct {
	ProductKey  string
	CompanyName string
	ProductName string
	Description string
	Domain      string
	CreatedAt   time.Time
}

// AnswerRecord is one recorded answer within a session. Stored as JSON in
// the session row so a scoring step commits as a single row update.
type AnswerRecord struct {
	QuestionNumber int       `json:"question_number"`
	Question       string    `json:"question"`
	Response       string    `json:"response"`
	Timestamp      time.Time `json:"timestamp"`
	Degraded       bool      `json:"degraded,omitempty"`
}

// SessionRecord is one assessment session.
//
/// Invariants maintained by the engine: len(Answers) == len(Scores), and
// CurrentQuestion == len(Answers)+1 while Status is active.
type SessionRecord struct {
	SessionID       string
	ProductKey      string
	CurrentQuestion int
	Answers         []AnswerRecord
	Scores          []int
	Status          string
	FinalScore      *float64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ProductRepo provides access to registered products.
type ProductRepo interface {
	// Get returns the product with the given key, or ErrNotFound.
	Get(ctx context.Context, productKey string) (*ProductRecord, error)
}

// SessionRepo provides access to assessment sessions.
type SessionRepo interface {
	// Get returns the session with the given ID, or ErrNotFound.
	Get(ctx context.Context, sessionID string) (*SessionRecord, error)

	// UpdateProgress persists the answers, scores, question pointer,
	// status, and final score of a session. The write only applies when
	// the stored current_question still equals expectCurrent; otherwise
	// ErrStale is returned and nothing is written.
	UpdateProgress(ctx context.Context, rec *SessionRecord, expectCurrent int) error

	// List returns all sessions, most recently updated first.
	List(ctx context.Context, limit int) ([]*SessionRecord, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates token usage for one purpose or model.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// LLMEventRepo records and queries LLM request events.
type LLMEventRepo interface {
	// Append records an LLM API call event.
	Append(ctx context.Context, data LLMRequestEventData) error

	// Recent returns the most recent events, newest first.
	Recent(ctx context.Context, limit int) ([]*LLMEvent, error)

	// Get returns a single event by ID, or nil if it does not exist.
	Get(ctx context.Context, id int) (*LLMEvent, error)

	// UsageByPurpose aggregates usage grouped by purpose.
	UsageByPurpose(ctx context.Context) ([]LLMUsage, error)

	// UsageByModel aggregates usage grouped by model.
	UsageByModel(ctx context.Context) ([]LLMUsage, error)
}
