package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type llmEventRepo struct {
	db *sql.DB
}

func (r *llmEventRepo) Append(ctx context.Context, data LLMRequestEventData) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO llm_requests (timestamp, provider, model, purpose, input_tokens,
		                          output_tokens, latency_ms, success, error_message,
		                          request_body, response_body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		toMillis(time.Now()),
		data.Provider,
		data.Model,
		data.Purpose,
		data.InputTokens,
		data.OutputTokens,
		data.LatencyMs,
		boolToInt(data.Success),
		data.ErrorMessage,
		data.RequestBody,
		data.ResponseBody,
	)
	if err != nil {
		return fmt.Errorf("insert llm request event: %w", err)
	}
	return nil
}

func (r *llmEventRepo) Recent(ctx context.Context, limit int) ([]*LLMEvent, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, timestamp, provider, model, purpose, input_tokens, output_tokens,
		       latency_ms, success, error_message, request_body, response_body
		FROM llm_requests ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query llm events: %w", err)
	}
	defer rows.Close()

	var out []*LLMEvent
	for rows.Next() {
		e, err := scanLLMEvent(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate llm events: %w", err)
	}
	return out, nil
}

func (r *llmEventRepo) Get(ctx context.Context, id int) (*LLMEvent, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, timestamp, provider, model, purpose, input_tokens, output_tokens,
		       latency_ms, success, error_message, request_body, response_body
		FROM llm_requests WHERE id = ?`, id)

	e, err := scanLLMEvent(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *llmEventRepo) UsageByPurpose(ctx context.Context) ([]LLMUsage, error) {
	return r.usage(ctx, `
		SELECT purpose, '' AS model, COUNT(*), SUM(input_tokens), SUM(output_tokens),
		       CAST(AVG(latency_ms) AS INTEGER)
		FROM llm_requests GROUP BY purpose ORDER BY purpose`)
}

func (r *llmEventRepo) UsageByModel(ctx context.Context) ([]LLMUsage, error) {
	return r.usage(ctx, `
		SELECT '' AS purpose, model, COUNT(*), SUM(input_tokens), SUM(output_tokens),
		       CAST(AVG(latency_ms) AS INTEGER)
		FROM llm_requests GROUP BY model ORDER BY model`)
}

func (r *llmEventRepo) usage(ctx context.Context, query string) ([]LLMUsage, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query llm usage: %w", err)
	}
	defer rows.Close()

	var out []LLMUsage
	for rows.Next() {
		var u LLMUsage
		if err := rows.Scan(&u.Purpose, &u.Model, &u.Calls, &u.InputTokens,
			&u.OutputTokens, &u.AvgLatencyMs); err != nil {
			return nil, fmt.Errorf("scan llm usage: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate llm usage: %w", err)
	}
	return out, nil
}

func scanLLMEvent(scan func(dest ...any) error) (*LLMEvent, error) {
	var (
		e         LLMEvent
		timestamp int64
		success   int
	)
	err := scan(
		&e.ID,
		&timestamp,
		&e.Provider,
		&e.Model,
		&e.Purpose,
		&e.InputTokens,
		&e.OutputTokens,
		&e.LatencyMs,
		&success,
		&e.ErrorMessage,
		&e.RequestBody,
		&e.ResponseBody,
	)
	if err != nil {
		return nil, err
	}
	e.Timestamp = fromMillis(timestamp)
	e.Success = success != 0
	return &e, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
