package assessment

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/abhisek/prism/internal/questions"
	"github.com/abhisek/prism/internal/scoring"
	"github.com/abhisek/prism/internal/store"
)

// stubScorer returns canned scores in sequence, repeating the last one
// when calls outrun the list.
type stubScorer struct {
	mu     sync.Mutex
	scores []int
	calls  int

	// degraded marks every result as a fallback score.
	degraded bool
}

func (s *stubScorer) Score(_ context.Context, _, _ string, _ int) scoring.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	score := scoring.FallbackScore
	if len(s.scores) > 0 {
		i := s.calls
		if i >= len(s.scores) {
			i = len(s.scores) - 1
		}
		score = s.scores[i]
	}
	s.calls++
	return scoring.Result{Score: score, Degraded: s.degraded}
}

func newTestEngine(t *testing.T, scorer Scorer) *Engine {
	t.Helper()
	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return NewEngine(st, scorer)
}

func testInput() RegisterInput {
	return RegisterInput{
		CompanyName: "Herbal Naturals Pvt Ltd",
		ProductName: "Ashwagandha Capsules",
		ProductKey:  "HN-ASH-500",
		Description: "Ayurvedic stress relief supplement, 500mg capsules.",
		Domain:      "herbal supplements",
	}
}

func TestEngine_RegisterStartsAtQuestionOne(t *testing.T) {
	eng := newTestEngine(t, &stubScorer{})

	reg, err := eng.Register(t.Context(), testInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.SessionID == "" {
		t.Fatal("expected a session ID")
	}
	if reg.FirstQuestion != questions.Get(1) {
		t.Errorf("wrong first question: %q", reg.FirstQuestion)
	}
	if len(reg.RemainingQuestions) != questions.Count()-1 {
		t.Errorf("expected %d remaining questions, got %d", questions.Count()-1, len(reg.RemainingQuestions))
	}

	status, err := eng.Status(t.Context(), reg.SessionID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.CurrentQuestion != 1 || status.Status != store.StatusActive {
		t.Errorf("expected active session at question 1, got q=%d status=%s", status.CurrentQuestion, status.Status)
	}
}

func TestEngine_RegisterRejectsDuplicateKey(t *testing.T) {
	eng := newTestEngine(t, &stubScorer{})

	if _, err := eng.Register(t.Context(), testInput()); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := eng.Register(t.Context(), testInput())
	if !errors.Is(err, ErrDuplicateProduct) {
		t.Fatalf("expected ErrDuplicateProduct, got %v", err)
	}
}

func TestEngine_RegisterRejectsMissingFields(t *testing.T) {
	eng := newTestEngine(t, &stubScorer{})

	in := testInput()
	in.Description = "   "
	_, err := eng.Register(t.Context(), in)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestEngine_SubmitAnswerAdvances(t *testing.T) {
	scorer := &stubScorer{scores: []int{72}}
	eng := newTestEngine(t, scorer)

	reg, _ := eng.Register(t.Context(), testInput())
	step, err := eng.SubmitAnswer(t.Context(), reg.SessionID, "All ingredients are listed on the label with concentrations.")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if step.QuestionNumber != 1 || step.Score != 72 {
		t.Errorf("expected q1 score 72, got q%d score %d", step.QuestionNumber, step.Score)
	}
	if step.IsComplete {
		t.Error("session should still be active after one answer")
	}
	if len(step.RemainingQuestions) != questions.Count()-1 {
		t.Errorf("expected %d remaining, got %d", questions.Count()-1, len(step.RemainingQuestions))
	}

	status, _ := eng.Status(t.Context(), reg.SessionID)
	if status.CurrentQuestion != 2 || status.AnsweredCount != 1 {
		t.Errorf("expected q=2 answered=1, got q=%d answered=%d", status.CurrentQuestion, status.AnsweredCount)
	}
}

func TestEngine_CompletesWithMeanScore(t *testing.T) {
	scorer := &stubScorer{scores: []int{80, 70, 90, 60, 75, 85}}
	eng := newTestEngine(t, scorer)

	reg, _ := eng.Register(t.Context(), testInput())
	var last *StepResult
	for i := 0; i < questions.Count(); i++ {
		var err error
		last, err = eng.SubmitAnswer(t.Context(), reg.SessionID, "A substantive answer.")
		if err != nil {
			t.Fatalf("submit %d: %v", i+1, err)
		}
	}

	if !last.IsComplete {
		t.Fatal("expected completed session after final answer")
	}
	if last.FinalScore == nil {
		t.Fatal("expected a final score")
	}
	want := float64(80+70+90+60+75+85) / 6
	if *last.FinalScore != want {
		t.Errorf("expected final score %.4f, got %.4f", want, *last.FinalScore)
	}
	if len(last.AllScores) != questions.Count() {
		t.Errorf("expected %d scores, got %d", questions.Count(), len(last.AllScores))
	}

	status, _ := eng.Status(t.Context(), reg.SessionID)
	if status.Status != store.StatusCompleted {
		t.Errorf("expected completed status, got %s", status.Status)
	}
	if status.NextQuestion != "" {
		t.Errorf("completed session should have no next question, got %q", status.NextQuestion)
	}
}

func TestEngine_SubmitToCompletedIsIdempotent(t *testing.T) {
	scorer := &stubScorer{scores: []int{50}}
	eng := newTestEngine(t, scorer)

	reg, _ := eng.Register(t.Context(), testInput())
	for i := 0; i < questions.Count(); i++ {
		if _, err := eng.SubmitAnswer(t.Context(), reg.SessionID, "answer"); err != nil {
			t.Fatalf("submit %d: %v", i+1, err)
		}
	}
	callsAtCompletion := scorer.calls

	step, err := eng.SubmitAnswer(t.Context(), reg.SessionID, "one more answer")
	if err != nil {
		t.Fatalf("submit after completion: %v", err)
	}
	if !step.AlreadyComplete || !step.IsComplete {
		t.Fatal("expected AlreadyComplete result")
	}
	if step.FinalScore == nil {
		t.Fatal("expected stored final score")
	}
	if scorer.calls != callsAtCompletion {
		t.Errorf("scorer called on completed session: %d calls, expected %d", scorer.calls, callsAtCompletion)
	}
	if len(step.AllScores) != questions.Count() {
		t.Errorf("expected %d stored scores, got %d", questions.Count(), len(step.AllScores))
	}
}

func TestEngine_RejectsEmptyAnswer(t *testing.T) {
	eng := newTestEngine(t, &stubScorer{})

	reg, _ := eng.Register(t.Context(), testInput())
	_, err := eng.SubmitAnswer(t.Context(), reg.SessionID, "   \n ")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestEngine_UnknownSession(t *testing.T) {
	eng := newTestEngine(t, &stubScorer{})

	_, err := eng.SubmitAnswer(t.Context(), "no-such-session", "answer")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	_, err = eng.Status(t.Context(), "no-such-session")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound from status, got %v", err)
	}
}

func TestEngine_BatchAdvancesInOrder(t *testing.T) {
	scorer := &stubScorer{scores: []int{60, 65, 70}}
	eng := newTestEngine(t, scorer)

	reg, _ := eng.Register(t.Context(), testInput())
	batch, err := eng.SubmitBatch(t.Context(), reg.SessionID, []string{"a1", "a2", "a3"})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}

	if batch.QuestionsAnswered != 3 {
		t.Errorf("expected 3 answered, got %d", batch.QuestionsAnswered)
	}
	if batch.NextQuestion != 4 {
		t.Errorf("expected next question 4, got %d", batch.NextQuestion)
	}
	if batch.IsComplete {
		t.Error("session should still be active")
	}

	status, _ := eng.Status(t.Context(), reg.SessionID)
	if status.CurrentQuestion != 4 || status.AnsweredCount != 3 {
		t.Errorf("expected q=4 answered=3, got q=%d answered=%d", status.CurrentQuestion, status.AnsweredCount)
	}
}

func TestEngine_BatchDiscardsExcessAnswers(t *testing.T) {
	scorer := &stubScorer{scores: []int{50}}
	eng := newTestEngine(t, scorer)

	reg, _ := eng.Register(t.Context(), testInput())
	answers := make([]string, questions.Count()+3)
	for i := range answers {
		answers[i] = "answer"
	}

	batch, err := eng.SubmitBatch(t.Context(), reg.SessionID, answers)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if batch.QuestionsAnswered != questions.Count() {
		t.Errorf("expected %d answered, got %d", questions.Count(), batch.QuestionsAnswered)
	}
	if !batch.IsComplete || batch.FinalScore == nil {
		t.Fatal("expected completed session with final score")
	}
	if scorer.calls != questions.Count() {
		t.Errorf("expected %d scorer calls, got %d", questions.Count(), scorer.calls)
	}
}

func TestEngine_BatchOnCompletedIsIdempotent(t *testing.T) {
	scorer := &stubScorer{scores: []int{50}}
	eng := newTestEngine(t, scorer)

	reg, _ := eng.Register(t.Context(), testInput())
	all := make([]string, questions.Count())
	for i := range all {
		all[i] = "answer"
	}
	if _, err := eng.SubmitBatch(t.Context(), reg.SessionID, all); err != nil {
		t.Fatalf("first batch: %v", err)
	}

	batch, err := eng.SubmitBatch(t.Context(), reg.SessionID, []string{"extra"})
	if err != nil {
		t.Fatalf("second batch: %v", err)
	}
	if !batch.AlreadyComplete || batch.QuestionsAnswered != 0 {
		t.Fatalf("expected idempotent no-op, got answered=%d already=%v", batch.QuestionsAnswered, batch.AlreadyComplete)
	}
}

func TestEngine_BatchRejectsEmptyInput(t *testing.T) {
	eng := newTestEngine(t, &stubScorer{})
	reg, _ := eng.Register(t.Context(), testInput())

	if _, err := eng.SubmitBatch(t.Context(), reg.SessionID, nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty batch, got %v", err)
	}
	if _, err := eng.SubmitBatch(t.Context(), reg.SessionID, []string{"ok", " "}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank answer, got %v", err)
	}
}

func TestEngine_DegradedScoresAreRecorded(t *testing.T) {
	scorer := &stubScorer{degraded: true}
	eng := newTestEngine(t, scorer)

	reg, _ := eng.Register(t.Context(), testInput())
	step, err := eng.SubmitAnswer(t.Context(), reg.SessionID, "answer")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !step.Degraded || step.Score != scoring.FallbackScore {
		t.Errorf("expected degraded fallback %d, got score=%d degraded=%v", scoring.FallbackScore, step.Score, step.Degraded)
	}

	data, err := eng.Report(t.Context(), reg.SessionID)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if len(data.Session.Answers) != 1 || !data.Session.Answers[0].Degraded {
		t.Error("expected the stored answer to carry the degraded flag")
	}
}

func TestEngine_ConcurrentSubmissionsNeverSkipQuestions(t *testing.T) {
	scorer := &stubScorer{scores: []int{50}}
	eng := newTestEngine(t, scorer)

	reg, _ := eng.Register(t.Context(), testInput())

	var wg sync.WaitGroup
	for i := 0; i < questions.Count()*2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := eng.SubmitAnswer(context.Background(), reg.SessionID, "concurrent answer")
			if err != nil {
				t.Errorf("concurrent submit: %v", err)
			}
		}()
	}
	wg.Wait()

	data, err := eng.Report(t.Context(), reg.SessionID)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if len(data.Session.Answers) != questions.Count() {
		t.Fatalf("expected exactly %d answers, got %d", questions.Count(), len(data.Session.Answers))
	}
	for i, a := range data.Session.Answers {
		if a.QuestionNumber != i+1 {
			t.Errorf("answer %d recorded for question %d", i, a.QuestionNumber)
		}
	}
	if data.Session.Status != store.StatusCompleted {
		t.Errorf("expected completed session, got %s", data.Session.Status)
	}
}

func TestEngine_ReportBundlesProductAndSession(t *testing.T) {
	eng := newTestEngine(t, &stubScorer{scores: []int{77}})

	reg, _ := eng.Register(t.Context(), testInput())
	if _, err := eng.SubmitAnswer(t.Context(), reg.SessionID, "answer"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	data, err := eng.Report(t.Context(), reg.SessionID)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if data.Product.ProductKey != "HN-ASH-500" {
		t.Errorf("wrong product: %q", data.Product.ProductKey)
	}
	if data.Session.SessionID != reg.SessionID {
		t.Errorf("wrong session: %q", data.Session.SessionID)
	}
	if len(data.Session.Scores) != 1 || data.Session.Scores[0] != 77 {
		t.Errorf("expected stored score 77, got %v", data.Session.Scores)
	}
}
