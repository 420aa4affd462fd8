package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type productRepo struct {
	db *sql.DB
}

func (r *productRepo) Get(ctx context.Context, productKey string) (*ProductRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT product_key, company_name, product_name, description, domain, created_at
		FROM products WHERE product_key = ?`, productKey)

	var (
		rec       ProductRecord
		createdAt int64
	)
	err := row.Scan(
		&rec.ProductKey,
		&rec.CompanyName,
		&rec.ProductName,
		&rec.Description,
		&rec.Domain,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan product: %w", err)
	}
	rec.CreatedAt = fromMillis(createdAt)
	return &rec, nil
}

// insertProduct writes a product row within an existing transaction.
func insertProduct(ctx context.Context, tx *sql.Tx, rec ProductRecord) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO products (product_key, company_name, product_name, description, domain, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ProductKey,
		rec.CompanyName,
		rec.ProductName,
		rec.Description,
		rec.Domain,
		toMillis(rec.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}
