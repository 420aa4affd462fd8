package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/prism/internal/assessment"
	"github.com/abhisek/prism/internal/llm"
	"github.com/abhisek/prism/internal/store"
)

const sampleDoc = `<!DOCTYPE html>
<html>
<head><title>Transparency Report</title></head>
<body><h1>Tulsi Drops</h1></body>
</html>`

func sampleData() *assessment.ReportData {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	final := 78.5
	return &assessment.ReportData{
		Product: &store.ProductRecord{
			ProductKey:  "AYUR-TULSI-01",
			CompanyName: "Vedic Wellness Ltd",
			ProductName: "Tulsi Drops",
			Description: "Concentrated tulsi extract.",
			Domain:      "herbal supplements",
			CreatedAt:   now,
		},
		Session: &store.SessionRecord{
			SessionID:       "sess-report-1",
			ProductKey:      "AYUR-TULSI-01",
			CurrentQuestion: 7,
			Status:          store.StatusCompleted,
			FinalScore:      &final,
			Answers: []store.AnswerRecord{
				{QuestionNumber: 1, Question: "q1", Response: "Full ingredient list on label.", Timestamp: now},
				{QuestionNumber: 2, Question: "q2", Response: "ISO 9001 certified.", Timestamp: now, Degraded: true},
			},
			Scores:    []int{82, 50},
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

func TestService_GeneratesCleanDocument(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(sampleDoc),
	})
	svc := NewService(mock, DefaultConfig())

	html, degraded := svc.GenerateHTML(t.Context(), sampleData())
	if degraded {
		t.Fatal("expected clean generation")
	}
	if html != sampleDoc {
		t.Errorf("document altered:\n%s", html)
	}
}

func TestService_StripsMarkdownFence(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"html fence", "Here is the report:\n```html\n" + sampleDoc + "\n```"},
		{"bare fence", "```\n" + sampleDoc + "\n```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockProvider(llm.MockResponse{
				Content: json.RawMessage(tt.content),
			})
			svc := NewService(mock, DefaultConfig())

			html, degraded := svc.GenerateHTML(t.Context(), sampleData())
			if degraded {
				t.Fatal("expected clean generation")
			}
			if html != sampleDoc {
				t.Errorf("fence not stripped:\n%s", html)
			}
		})
	}
}

func TestService_IncompleteDocumentIsRejected(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`<html><body>truncated`),
	})
	svc := NewService(mock, DefaultConfig())

	html, degraded := svc.GenerateHTML(t.Context(), sampleData())
	if !degraded {
		t.Fatal("expected degraded result for incomplete document")
	}
	if !strings.Contains(html, "Error Generating Report") {
		t.Errorf("expected error document, got:\n%s", html)
	}
	if !strings.HasPrefix(html, "<!DOCTYPE html>") || !strings.HasSuffix(html, "</html>") {
		t.Error("error document must itself be a complete HTML document")
	}
}

func TestService_ProviderFailureYieldsErrorDocument(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Err: &llm.ErrProviderUnavailable{},
	})
	svc := NewService(mock, DefaultConfig())

	html, degraded := svc.GenerateHTML(t.Context(), sampleData())
	if !degraded {
		t.Fatal("expected degraded result on provider failure")
	}
	if !strings.Contains(html, "Unable to generate transparency report") {
		t.Errorf("expected error document, got:\n%s", html)
	}
}

func TestService_PromptCarriesAssessmentData(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(sampleDoc),
	})
	svc := NewService(mock, DefaultConfig())

	svc.GenerateHTML(t.Context(), sampleData())

	req := mock.Calls[0]
	if req.Schema != nil {
		t.Error("report generation must not constrain output to a schema")
	}
	msg := req.Messages[0].Content
	for _, want := range []string{
		`"product_key": "AYUR-TULSI-01"`,
		`"final_score": 78.5`,
		"Full ingredient list on label.",
		"Start with <!DOCTYPE html>",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestSummary(t *testing.T) {
	out, err := Summary(sampleData())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	for _, want := range []string{
		"Tulsi Drops",
		"Vedic Wellness Ltd",
		"sess-report-1",
		"Q1: 82/100",
		"Q2: 50/100 (fallback)",
		"Final transparency score: 78.5/100",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q in:\n%s", want, out)
		}
	}
}

func TestSummary_InProgressSession(t *testing.T) {
	data := sampleData()
	data.Session.Status = store.StatusActive
	data.Session.FinalScore = nil
	data.Session.CurrentQuestion = 3

	out, err := Summary(data)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !strings.Contains(out, "Assessment in progress: 2 of 6 questions answered.") {
		t.Errorf("expected progress line, got:\n%s", out)
	}
	if strings.Contains(out, "Final transparency score") {
		t.Error("in-progress summary must not show a final score")
	}
}
