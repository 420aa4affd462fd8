package assessment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/prism/internal/questions"
	"github.com/abhisek/prism/internal/scoring"
	"github.com/abhisek/prism/internal/store"
)

// Scorer evaluates one answer. Satisfied by *scoring.Service.
type Scorer interface {
	Score(ctx context.Context, question, answer string, questionNumber int) scoring.Result
}

// Engine runs assessment sessions against the store and scorer.
type Engine struct {
	st     *store.Store
	scorer Scorer
	locks  *sessionLocks
}

// NewEngine creates a session engine.
func NewEngine(st *store.Store, scorer Scorer) *Engine {
	return &Engine{
		st:     st,
		scorer: scorer,
		locks:  newSessionLocks(),
	}
}

// Register creates a product and its assessment session as one atomic
// unit: either both persist or neither does.
func (e *Engine) Register(ctx context.Context, in RegisterInput) (*Registration, error) {
	if err := validateRegisterInput(in); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := store.ProductRecord{
		ProductKey:  in.ProductKey,
		CompanyName: in.CompanyName,
		ProductName: in.ProductName,
		Description: in.Description,
		Domain:      in.Domain,
		CreatedAt:   now,
	}
	session := store.SessionRecord{
		SessionID:       uuid.NewString(),
		ProductKey:      in.ProductKey,
		CurrentQuestion: 1,
		Status:          store.StatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := e.st.Register(ctx, product, session); err != nil {
		if errors.Is(err, store.ErrProductExists) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateProduct, in.ProductKey)
		}
		return nil, fmt.Errorf("register product: %w", err)
	}

	return &Registration{
		SessionID:          session.SessionID,
		ProductKey:         in.ProductKey,
		FirstQuestion:      questions.Get(1),
		RemainingQuestions: questions.Remaining(2),
	}, nil
}

// SubmitAnswer scores the answer for the session's current question,
// records it, and advances the question pointer. Submitting to a
// completed session is an idempotent no-op that returns the stored
// terminal result.
func (e *Engine) SubmitAnswer(ctx context.Context, sessionID, answer string) (*StepResult, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, fmt.Errorf("%w: answer text is empty", ErrInvalidInput)
	}

	unlock := e.locks.acquire(sessionID)
	defer unlock()

	sess, err := e.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if sess.Status == store.StatusCompleted {
		return &StepResult{
			SessionID:       sessionID,
			IsComplete:      true,
			AlreadyComplete: true,
			FinalScore:      sess.FinalScore,
			AllScores:       sess.Scores,
		}, nil
	}

	expect := sess.CurrentQuestion
	res := e.scoreAndAppend(ctx, sess, answer)
	finalize(sess)

	if err := e.st.Sessions().UpdateProgress(ctx, sess, expect); err != nil {
		return nil, mapUpdateErr(err)
	}

	step := &StepResult{
		SessionID:      sessionID,
		QuestionNumber: expect,
		Answer:         answer,
		Score:          res.Score,
		Degraded:       res.Degraded,
		IsComplete:     sess.Status == store.StatusCompleted,
		FinalScore:     sess.FinalScore,
		AllScores:      sess.Scores,
	}
	if !step.IsComplete {
		step.RemainingQuestions = questions.Remaining(sess.CurrentQuestion)
	}
	return step, nil
}

// SubmitBatch scores a sequence of answers in order, advancing through
// as many questions as remain. Extra answers beyond the remaining
// question count are silently discarded. The whole batch commits as a
// single durable write.
func (e *Engine) SubmitBatch(ctx context.Context, sessionID string, answers []string) (*BatchResult, error) {
	if len(answers) == 0 {
		return nil, fmt.Errorf("%w: no answers provided", ErrInvalidInput)
	}
	for i, a := range answers {
		if strings.TrimSpace(a) == "" {
			return nil, fmt.Errorf("%w: answer %d is empty", ErrInvalidInput, i+1)
		}
	}

	unlock := e.locks.acquire(sessionID)
	defer unlock()

	sess, err := e.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if sess.Status == store.StatusCompleted {
		return &BatchResult{
			SessionID:       sessionID,
			NextQuestion:    sess.CurrentQuestion,
			IsComplete:      true,
			AlreadyComplete: true,
			FinalScore:      sess.FinalScore,
			AllScores:       sess.Scores,
		}, nil
	}

	expect := sess.CurrentQuestion
	remaining := questions.Count() - sess.CurrentQuestion + 1
	processed := 0
	for _, answer := range answers {
		if processed >= remaining {
			break
		}
		e.scoreAndAppend(ctx, sess, strings.TrimSpace(answer))
		processed++
	}
	finalize(sess)

	if err := e.st.Sessions().UpdateProgress(ctx, sess, expect); err != nil {
		return nil, mapUpdateErr(err)
	}

	batch := &BatchResult{
		SessionID:         sessionID,
		QuestionsAnswered: processed,
		NextQuestion:      sess.CurrentQuestion,
		IsComplete:        sess.Status == store.StatusCompleted,
		FinalScore:        sess.FinalScore,
		AllScores:         sess.Scores,
	}
	if !batch.IsComplete {
		batch.RemainingQuestions = questions.Remaining(sess.CurrentQuestion)
	}
	return batch, nil
}

// Status returns a read-only snapshot of a session.
func (e *Engine) Status(ctx context.Context, sessionID string) (*StatusInfo, error) {
	sess, err := e.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return &StatusInfo{
		SessionID:       sess.SessionID,
		ProductKey:      sess.ProductKey,
		CurrentQuestion: sess.CurrentQuestion,
		Status:          sess.Status,
		FinalScore:      sess.FinalScore,
		AnsweredCount:   len(sess.Answers),
		NextQuestion:    questions.Get(sess.CurrentQuestion),
	}, nil
}

// Report loads the session and its product for report generation.
func (e *Engine) Report(ctx context.Context, sessionID string) (*ReportData, error) {
	sess, err := e.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	product, err := e.st.Products().Get(ctx, sess.ProductKey)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, sess.ProductKey)
	}
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}

	return &ReportData{Product: product, Session: sess}, nil
}

// scoreAndAppend scores one answer for the session's current question
// and mutates the in-memory session: answer appended, score appended,
// pointer advanced. The caller persists the result.
func (e *Engine) scoreAndAppend(ctx context.Context, sess *store.SessionRecord, answer string) scoring.Result {
	n := sess.CurrentQuestion
	question := questions.Get(n)
	res := e.scorer.Score(ctx, question, answer, n)

	sess.Answers = append(sess.Answers, store.AnswerRecord{
		QuestionNumber: n,
		Question:       question,
		Response:       answer,
		Timestamp:      time.Now().UTC(),
		Degraded:       res.Degraded,
	})
	sess.Scores = append(sess.Scores, res.Score)
	sess.CurrentQuestion = n + 1
	sess.UpdatedAt = time.Now().UTC()
	return res
}

// finalize completes the session once the pointer passes the last
// question, fixing the final score as the mean of all scores.
func finalize(sess *store.SessionRecord) {
	if sess.Status == store.StatusCompleted || sess.CurrentQuestion <= questions.Count() {
		return
	}
	sess.Status = store.StatusCompleted
	final := mean(sess.Scores)
	sess.FinalScore = &final
}

func (e *Engine) loadSession(ctx context.Context, sessionID string) (*store.SessionRecord, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("%w: session ID is empty", ErrInvalidInput)
	}
	sess, err := e.st.Sessions().Get(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return sess, nil
}

func validateRegisterInput(in RegisterInput) error {
	fields := []struct {
		name  string
		value string
	}{
		{"company_name", in.CompanyName},
		{"product_name", in.ProductName},
		{"product_key", in.ProductKey},
		{"description", in.Description},
		{"domain", in.Domain},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidInput, f.name)
		}
	}
	return nil
}

func mapUpdateErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: session deleted mid-operation", ErrSessionNotFound)
	}
	// ErrStale should be unreachable under the per-session lock; treat
	// it like any other persistence failure so the step fails whole.
	return fmt.Errorf("persist session progress: %w", err)
}

func mean(scores []int) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return float64(sum) / float64(len(scores))
}
