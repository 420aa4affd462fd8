package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/abhisek/prism/internal/llm"
)

// Service scores transparency answers through an LLM provider.
type Service struct {
	provider llm.Provider
	cfg      Config
}

// NewService creates a scoring service.
func NewService(provider llm.Provider, cfg Config) *Service {
	return &Service{provider: provider, cfg: cfg}
}

type scoreOutput struct {
	Score int `json:"score"`
}

// Score evaluates one answer against the transparency rubric.
// It never returns an error: failures of the external call produce the
// fallback score with Degraded set, and are logged to stderr.
func (s *Service) Score(ctx context.Context, question, answer string, questionNumber int) Result {
	ctx = llm.WithPurpose(ctx, "scoring")
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	req := llm.Request{
		System: scoringSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildScoringUserMessage(question, answer, questionNumber)},
		},
		Schema:      ScoreSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: scoring question %d failed, using fallback score: %v\n", questionNumber, err)
		return Result{Score: FallbackScore, Degraded: true}
	}

	var out scoreOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		fmt.Fprintf(os.Stderr, "warning: scoring question %d returned malformed content, using fallback score: %v\n", questionNumber, err)
		return Result{Score: FallbackScore, Degraded: true}
	}

	return Result{Score: clamp(out.Score)}
}

// clamp bounds a model-returned value to the valid score range.
func clamp(score int) int {
	if score < 1 {
		return 1
	}
	if score > 100 {
		return 100
	}
	return score
}
