package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

type sessionRepo struct {
	db *sql.DB
}

func (r *sessionRepo) Get(ctx context.Context, sessionID string) (*SessionRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT session_id, product_key, current_question, answers, scores,
		       status, final_score, created_at, updated_at
		FROM sessions WHERE session_id = ?`, sessionID)

	rec, err := scanSessionRow(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *sessionRepo) UpdateProgress(ctx context.Context, rec *SessionRecord, expectCurrent int) error {
	answersJSON, scoresJSON, err := encodeProgress(rec)
	if err != nil {
		return err
	}

	var finalScore sql.NullFloat64
	if rec.FinalScore != nil {
		finalScore = sql.NullFloat64{Float64: *rec.FinalScore, Valid: true}
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE sessions
		SET current_question = ?, answers = ?, scores = ?, status = ?,
		    final_score = ?, updated_at = ?
		WHERE session_id = ? AND current_question = ?`,
		rec.CurrentQuestion,
		answersJSON,
		scoresJSON,
		rec.Status,
		finalScore,
		toMillis(rec.UpdatedAt),
		rec.SessionID,
		expectCurrent,
	)
	if err != nil {
		return fmt.Errorf("update session progress: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		// Either the session is gone or another writer advanced it first.
		var exists int
		if err := r.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM sessions WHERE session_id = ?`, rec.SessionID).Scan(&exists); err != nil {
			return fmt.Errorf("check session: %w", err)
		}
		if exists == 0 {
			return ErrNotFound
		}
		return ErrStale
	}
	return nil
}

func (r *sessionRepo) List(ctx context.Context, limit int) ([]*SessionRecord, error) {
	query := `
		SELECT session_id, product_key, current_question, answers, scores,
		       status, final_score, created_at, updated_at
		FROM sessions ORDER BY updated_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []*SessionRecord
	for rows.Next() {
		rec, err := scanSessionRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return out, nil
}

// insertSession writes a session row within an existing transaction.
func insertSession(ctx context.Context, tx *sql.Tx, rec SessionRecord) error {
	answersJSON, scoresJSON, err := encodeProgress(&rec)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (session_id, product_key, current_question, answers,
		                      scores, status, final_score, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, NULL, ?, ?)`,
		rec.SessionID,
		rec.ProductKey,
		rec.CurrentQuestion,
		answersJSON,
		scoresJSON,
		rec.Status,
		toMillis(rec.CreatedAt),
		toMillis(rec.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func encodeProgress(rec *SessionRecord) (answersJSON, scoresJSON string, err error) {
	answers := rec.Answers
	if answers == nil {
		answers = []AnswerRecord{}
	}
	scores := rec.Scores
	if scores == nil {
		scores = []int{}
	}

	a, err := json.Marshal(answers)
	if err != nil {
		return "", "", fmt.Errorf("marshal answers: %w", err)
	}
	s, err := json.Marshal(scores)
	if err != nil {
		return "", "", fmt.Errorf("marshal scores: %w", err)
	}
	return string(a), string(s), nil
}

func scanSessionRow(scan func(dest ...any) error) (*SessionRecord, error) {
	var (
		rec        SessionRecord
		answersRaw string
		scoresRaw  string
		finalScore sql.NullFloat64
		createdAt  int64
		updatedAt  int64
	)
	err := scan(
		&rec.SessionID,
		&rec.ProductKey,
		&rec.CurrentQuestion,
		&answersRaw,
		&scoresRaw,
		&rec.Status,
		&finalScore,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(answersRaw), &rec.Answers); err != nil {
		return nil, fmt.Errorf("unmarshal answers: %w", err)
	}
	if err := json.Unmarshal([]byte(scoresRaw), &rec.Scores); err != nil {
		return nil, fmt.Errorf("unmarshal scores: %w", err)
	}
	if finalScore.Valid {
		v := finalScore.Float64
		rec.FinalScore = &v
	}
	rec.CreatedAt = fromMillis(createdAt)
	rec.UpdatedAt = fromMillis(updatedAt)
	return &rec, nil
}
