// Package scoring converts free-text transparency answers into 1-100
// scores using an LLM with a fixed weighted rubric.
//
// Scoring is deliberately non-fatal: any failure of the external call
// (timeout, malformed response, provider outage) yields the fixed
// fallback score instead of an error, so a degraded scorer can never
// block assessment progress.
package scoring

import "time"

// FallbackScore is substituted when the external scoring call fails.
const FallbackScore = 50

// Result is the outcome of scoring one answer.
type Result struct {
	// Score is the transparency score in [1, 100].
	Score int

	// Degraded is true when Score is the fallback value because the
	// external call failed, as opposed to a genuine model score.
	Degraded bool
}

// Config holds scorer tuning parameters.
type Config struct {
	// MaxTokens bounds the scoring response. The model returns a single
	// JSON object, so this stays small.
	MaxTokens int

	// Temperature for scoring calls. Kept low for consistent rubric
	// application.
	Temperature float64

	// Timeout bounds a single scoring call, retries included.
	Timeout time.Duration
}

// DefaultConfig returns scorer defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   128,
		Temperature: 0.1,
		Timeout:     20 * time.Second,
	}
}
