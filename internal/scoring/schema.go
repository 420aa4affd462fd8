package scoring

import "github.com/abhisek/prism/internal/llm"

// ScoreSchema defines the JSON schema for the scoring response.
var ScoreSchema = &llm.Schema{
	Name:        "transparency-score",
	Description: "A transparency score for one assessment answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score": map[string]any{
				"type":        "integer",
				"minimum":     1,
				"maximum":     100,
				"description": "Final transparency score across all rubric dimensions",
			},
		},
		"required":             []any{"score"},
		"additionalProperties": false,
	},
}
