// Package report turns a completed (or in-progress) assessment into a
// self-contained HTML transparency report via the LLM, plus a
// deterministic plain-text summary that needs no LLM at all.
package report

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cbroglie/mustache"

	"github.com/abhisek/prism/internal/assessment"
	"github.com/abhisek/prism/internal/llm"
)

// Config tunes report generation.
type Config struct {
	// MaxTokens bounds the generated document. Reports are long.
	MaxTokens int

	// Temperature for generation. Kept low for consistent structure.
	Temperature float64

	// Timeout bounds the LLM call.
	Timeout time.Duration
}

// DefaultConfig returns the report generation defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   8000,
		Temperature: 0.1,
		Timeout:     2 * time.Minute,
	}
}

// Service generates transparency reports.
type Service struct {
	provider llm.Provider
	cfg      Config
}

// NewService creates a report service.
func NewService(provider llm.Provider, cfg Config) *Service {
	return &Service{provider: provider, cfg: cfg}
}

const errorDocumentTemplate = `<!DOCTYPE html>
<html>
<head>
    <title>Report Generation Error</title>
</head>
<body>
    <h1>Error Generating Report</h1>
    <p>Unable to generate transparency report: {{message}}</p>
    <p>Please try again or contact support.</p>
</body>
</html>`

// GenerateHTML produces the full HTML report for a session. It never
// returns an error: when generation or validation fails, the result is
// a minimal error document and degraded is true.
func (s *Service) GenerateHTML(ctx context.Context, data *assessment.ReportData) (html string, degraded bool) {
	ctx = llm.WithPurpose(ctx, "report")
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	req := llm.Request{
		System: reportSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildReportUserMessage(data)},
		},
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: report generation for session %s failed: %v\n", data.Session.SessionID, err)
		return errorDocument(err), true
	}

	doc := extractHTML(string(resp.Content))
	if !isCompleteDocument(doc) {
		fmt.Fprintf(os.Stderr, "warning: report for session %s is not a complete HTML document\n", data.Session.SessionID)
		return errorDocument(fmt.Errorf("generated report is not a complete HTML document")), true
	}
	return doc, false
}

// extractHTML strips a markdown code fence when the model wrapped the
// document in one. Content already starting at the doctype passes
// through untouched.
func extractHTML(content string) string {
	doc := strings.TrimSpace(content)
	if strings.HasPrefix(doc, "<!DOCTYPE html>") {
		return doc
	}

	fence := "```html"
	start := strings.Index(doc, fence)
	if start < 0 {
		fence = "```"
		start = strings.Index(doc, fence)
	}
	if start >= 0 {
		start += len(fence)
		end := strings.LastIndex(doc, "```")
		if end > start {
			return strings.TrimSpace(doc[start:end])
		}
	}
	return doc
}

func isCompleteDocument(doc string) bool {
	return strings.HasPrefix(doc, "<!DOCTYPE html>") && strings.HasSuffix(doc, "</html>")
}

func errorDocument(cause error) string {
	out, err := mustache.Render(errorDocumentTemplate, map[string]string{
		"message": cause.Error(),
	})
	if err != nil {
		// Static template; render cannot realistically fail. Fall back to
		// the raw template rather than returning nothing.
		return errorDocumentTemplate
	}
	return out
}
