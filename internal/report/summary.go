package report

import (
	"fmt"

	"github.com/cbroglie/mustache"

	"github.com/abhisek/prism/internal/assessment"
	"github.com/abhisek/prism/internal/questions"
)

const summaryTemplate = `Transparency Assessment Summary
===============================
Product:  {{product_name}} ({{product_key}})
Company:  {{company_name}}
Domain:   {{domain}}
Session:  {{session_id}}
Status:   {{status}}

{{#scores}}
  Q{{number}}: {{score}}/100{{#degraded}} (fallback){{/degraded}}
{{/scores}}
{{#has_final}}
Final transparency score: {{final_score}}/100
{{/has_final}}
{{^has_final}}
Assessment in progress: {{answered}} of {{total}} questions answered.
{{/has_final}}`

// Summary renders a deterministic plain-text overview of a session.
// Used by the CLI; no LLM involved.
func Summary(data *assessment.ReportData) (string, error) {
	rows := make([]map[string]any, 0, len(data.Session.Scores))
	for i, s := range data.Session.Scores {
		degraded := false
		if i < len(data.Session.Answers) {
			degraded = data.Session.Answers[i].Degraded
		}
		rows = append(rows, map[string]any{
			"number":   i + 1,
			"score":    s,
			"degraded": degraded,
		})
	}

	ctxData := map[string]any{
		"product_name": data.Product.ProductName,
		"product_key":  data.Product.ProductKey,
		"company_name": data.Product.CompanyName,
		"domain":       data.Product.Domain,
		"session_id":   data.Session.SessionID,
		"status":       data.Session.Status,
		"scores":       rows,
		"answered":     len(data.Session.Answers),
		"total":        questions.Count(),
		"has_final":    data.Session.FinalScore != nil,
	}
	if data.Session.FinalScore != nil {
		ctxData["final_score"] = fmt.Sprintf("%.1f", *data.Session.FinalScore)
	}

	out, err := mustache.Render(summaryTemplate, ctxData)
	if err != nil {
		return "", fmt.Errorf("render summary: %w", err)
	}
	return out, nil
}
