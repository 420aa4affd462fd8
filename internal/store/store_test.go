package store

import (
	"errors"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func sampleRecords() (ProductRecord, SessionRecord) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	product := ProductRecord{
		ProductKey:  "AYUR-TULSI-01",
		CompanyName: "Vedic Wellness Ltd",
		ProductName: "Tulsi Drops",
		Description: "Concentrated tulsi extract, 30ml dropper bottle.",
		Domain:      "herbal supplements",
		CreatedAt:   now,
	}
	session := SessionRecord{
		SessionID:       "sess-0001",
		ProductKey:      product.ProductKey,
		CurrentQuestion: 1,
		Status:          StatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	return product, session
}

func TestStore_RegisterAndGet(t *testing.T) {
	st := openTestStore(t)
	product, session := sampleRecords()

	if err := st.Register(t.Context(), product, session); err != nil {
		t.Fatalf("register: %v", err)
	}

	gotProduct, err := st.Products().Get(t.Context(), product.ProductKey)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if gotProduct.CompanyName != product.CompanyName || gotProduct.Domain != product.Domain {
		t.Errorf("product round trip mismatch: %+v", gotProduct)
	}
	if !gotProduct.CreatedAt.Equal(product.CreatedAt) {
		t.Errorf("created_at mismatch: %v vs %v", gotProduct.CreatedAt, product.CreatedAt)
	}

	gotSession, err := st.Sessions().Get(t.Context(), session.SessionID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if gotSession.CurrentQuestion != 1 || gotSession.Status != StatusActive {
		t.Errorf("session round trip mismatch: %+v", gotSession)
	}
	if gotSession.FinalScore != nil {
		t.Error("fresh session should have no final score")
	}
	if len(gotSession.Answers) != 0 || len(gotSession.Scores) != 0 {
		t.Errorf("fresh session should have empty progress, got %d answers %d scores",
			len(gotSession.Answers), len(gotSession.Scores))
	}
}

func TestStore_RegisterRejectsDuplicateKey(t *testing.T) {
	st := openTestStore(t)
	product, session := sampleRecords()

	if err := st.Register(t.Context(), product, session); err != nil {
		t.Fatalf("first register: %v", err)
	}

	session.SessionID = "sess-0002"
	err := st.Register(t.Context(), product, session)
	if !errors.Is(err, ErrProductExists) {
		t.Fatalf("expected ErrProductExists, got %v", err)
	}

	// The failed registration must not leave a second session behind.
	all, err := st.Sessions().List(t.Context(), 0)
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 session after failed register, got %d", len(all))
	}
}

func TestStore_GetMissingRecords(t *testing.T) {
	st := openTestStore(t)

	if _, err := st.Products().Get(t.Context(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for product, got %v", err)
	}
	if _, err := st.Sessions().Get(t.Context(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for session, got %v", err)
	}
}

func TestStore_UpdateProgressRoundTrip(t *testing.T) {
	st := openTestStore(t)
	product, session := sampleRecords()
	if err := st.Register(t.Context(), product, session); err != nil {
		t.Fatalf("register: %v", err)
	}

	rec, _ := st.Sessions().Get(t.Context(), session.SessionID)
	rec.Answers = append(rec.Answers, AnswerRecord{
		QuestionNumber: 1,
		Question:       "What are the ingredients?",
		Response:       "Tulsi extract and purified water.",
		Timestamp:      time.Now().UTC().Truncate(time.Millisecond),
	})
	rec.Scores = append(rec.Scores, 74)
	rec.CurrentQuestion = 2
	rec.UpdatedAt = time.Now().UTC()

	if err := st.Sessions().UpdateProgress(t.Context(), rec, 1); err != nil {
		t.Fatalf("update progress: %v", err)
	}

	got, _ := st.Sessions().Get(t.Context(), session.SessionID)
	if got.CurrentQuestion != 2 {
		t.Errorf("expected current question 2, got %d", got.CurrentQuestion)
	}
	if len(got.Answers) != 1 || got.Answers[0].Response != "Tulsi extract and purified water." {
		t.Errorf("answers not persisted: %+v", got.Answers)
	}
	if len(got.Scores) != 1 || got.Scores[0] != 74 {
		t.Errorf("scores not persisted: %v", got.Scores)
	}
}

func TestStore_UpdateProgressStaleGuard(t *testing.T) {
	st := openTestStore(t)
	product, session := sampleRecords()
	if err := st.Register(t.Context(), product, session); err != nil {
		t.Fatalf("register: %v", err)
	}

	rec, _ := st.Sessions().Get(t.Context(), session.SessionID)
	rec.CurrentQuestion = 2
	rec.Scores = []int{60}
	rec.Answers = []AnswerRecord{{QuestionNumber: 1, Question: "q", Response: "a"}}
	if err := st.Sessions().UpdateProgress(t.Context(), rec, 1); err != nil {
		t.Fatalf("first update: %v", err)
	}

	// A second writer holding the old snapshot must not commit.
	stale := *rec
	stale.CurrentQuestion = 2
	err := st.Sessions().UpdateProgress(t.Context(), &stale, 1)
	if !errors.Is(err, ErrStale) {
		t.Fatalf("expected ErrStale, got %v", err)
	}

	err = st.Sessions().UpdateProgress(t.Context(), rec, 1)
	if !errors.Is(err, ErrStale) {
		t.Fatalf("expected ErrStale on replay, got %v", err)
	}
}

func TestStore_UpdateProgressMissingSession(t *testing.T) {
	st := openTestStore(t)

	rec := &SessionRecord{SessionID: "ghost", CurrentQuestion: 2, Status: StatusActive}
	err := st.Sessions().UpdateProgress(t.Context(), rec, 1)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_CompletedSessionPersistsFinalScore(t *testing.T) {
	st := openTestStore(t)
	product, session := sampleRecords()
	if err := st.Register(t.Context(), product, session); err != nil {
		t.Fatalf("register: %v", err)
	}

	rec, _ := st.Sessions().Get(t.Context(), session.SessionID)
	final := 72.5
	rec.CurrentQuestion = 7
	rec.Status = StatusCompleted
	rec.FinalScore = &final
	rec.Scores = []int{70, 75, 70, 75, 70, 75}
	if err := st.Sessions().UpdateProgress(t.Context(), rec, 1); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, _ := st.Sessions().Get(t.Context(), session.SessionID)
	if got.Status != StatusCompleted {
		t.Errorf("expected completed, got %s", got.Status)
	}
	if got.FinalScore == nil || *got.FinalScore != 72.5 {
		t.Errorf("final score not persisted: %v", got.FinalScore)
	}
}

func TestStore_ListSessionsNewestFirst(t *testing.T) {
	st := openTestStore(t)

	for i, key := range []string{"prod-a", "prod-b", "prod-c"} {
		now := time.Now().UTC().Add(time.Duration(i) * time.Second)
		product := ProductRecord{
			ProductKey:  key,
			CompanyName: "c",
			ProductName: "p",
			Description: "d",
			Domain:      "x",
			CreatedAt:   now,
		}
		session := SessionRecord{
			SessionID:       "sess-" + key,
			ProductKey:      key,
			CurrentQuestion: 1,
			Status:          StatusActive,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := st.Register(t.Context(), product, session); err != nil {
			t.Fatalf("register %s: %v", key, err)
		}
	}

	all, err := st.Sessions().List(t.Context(), 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(all))
	}
	if all[0].ProductKey != "prod-c" || all[2].ProductKey != "prod-a" {
		t.Errorf("wrong order: %s, %s, %s", all[0].ProductKey, all[1].ProductKey, all[2].ProductKey)
	}

	limited, err := st.Sessions().List(t.Context(), 2)
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected 2 sessions with limit, got %d", len(limited))
	}
}

func TestStore_LLMEventRoundTrip(t *testing.T) {
	st := openTestStore(t)
	repo := st.LLMEvents()

	data := LLMRequestEventData{
		Provider:     "groq",
		Model:        "llama-3.3-70b-versatile",
		Purpose:      "scoring",
		InputTokens:  310,
		OutputTokens: 12,
		LatencyMs:    840,
		Success:      true,
		RequestBody:  `{"messages":[]}`,
		ResponseBody: `{"score":74}`,
	}
	if err := repo.Append(t.Context(), data); err != nil {
		t.Fatalf("append: %v", err)
	}

	events, err := repo.Recent(t.Context(), 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e.Provider != "groq" || e.Purpose != "scoring" || !e.Success {
		t.Errorf("event round trip mismatch: %+v", e)
	}

	got, err := repo.Get(t.Context(), e.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Model != "llama-3.3-70b-versatile" {
		t.Errorf("get by id mismatch: %+v", got)
	}

	missing, err := repo.Get(t.Context(), 9999)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing event")
	}
}

func TestStore_LLMUsageAggregates(t *testing.T) {
	st := openTestStore(t)
	repo := st.LLMEvents()

	events := []LLMRequestEventData{
		{Provider: "groq", Model: "llama-3.3-70b-versatile", Purpose: "scoring", InputTokens: 100, OutputTokens: 10, LatencyMs: 400, Success: true},
		{Provider: "groq", Model: "llama-3.3-70b-versatile", Purpose: "scoring", InputTokens: 200, OutputTokens: 20, LatencyMs: 600, Success: true},
		{Provider: "groq", Model: "llama-3.3-70b-versatile", Purpose: "report", InputTokens: 500, OutputTokens: 900, LatencyMs: 2000, Success: true},
	}
	for _, e := range events {
		if err := repo.Append(t.Context(), e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	byPurpose, err := repo.UsageByPurpose(t.Context())
	if err != nil {
		t.Fatalf("usage by purpose: %v", err)
	}
	if len(byPurpose) != 2 {
		t.Fatalf("expected 2 purpose rows, got %d", len(byPurpose))
	}
	// Sorted by purpose: report, scoring.
	if byPurpose[0].Purpose != "report" || byPurpose[0].Calls != 1 {
		t.Errorf("report usage mismatch: %+v", byPurpose[0])
	}
	if byPurpose[1].Purpose != "scoring" || byPurpose[1].Calls != 2 ||
		byPurpose[1].InputTokens != 300 || byPurpose[1].AvgLatencyMs != 500 {
		t.Errorf("scoring usage mismatch: %+v", byPurpose[1])
	}

	byModel, err := repo.UsageByModel(t.Context())
	if err != nil {
		t.Fatalf("usage by model: %v", err)
	}
	if len(byModel) != 1 || byModel[0].Calls != 3 {
		t.Errorf("model usage mismatch: %+v", byModel)
	}
}

func TestDefaultDBPath_EnvOverride(t *testing.T) {
	want := t.TempDir() + "/custom/prism.db"
	t.Setenv("PRISM_DB", want)

	p, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("default db path: %v", err)
	}
	if p != want {
		t.Errorf("expected env override, got %s", p)
	}
}
