package pg

import (
	"context"
	"fmt"

	"rubconv-service/internal/application"
	"rubconv-service/internal/domain"
)

// QuoteRepo is the Postgres quote archive.
type QuoteRepo struct{ db *DB }

var (
	_ application.QuoteArchive = (*QuoteRepo)(nil)
	_ application.Pinger       = (*QuoteRepo)(nil)
)

func NewQuoteRepo(db *DB) *QuoteRepo { return &QuoteRepo{db: db} }

func (r *QuoteRepo) Append(ctx context.Context, h domain.QuoteHistory) error {
	_, err := r.db.Pool.Exec(ctx, `
        INSERT INTO quotes_history(source, currency, rub_per_unit, fetched_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (source, currency, fetched_at) DO NOTHING
    `, string(h.Source), h.Currency, h.RubPerUnit, h.FetchedAt)
	if err != nil {
		return fmt.Errorf("append quote: %w", err)
	}
	return nil
}

// List returns the newest archived quotes for currency first.
func (r *QuoteRepo) List(ctx context.Context, currency string, limit int) ([]domain.QuoteHistory, error) {
	const q = `
        SELECT id, source, currency, rub_per_unit, fetched_at, inserted_at
        FROM quotes_history
        WHERE currency = $1
        ORDER BY fetched_at DESC, id DESC
        LIMIT $2`
	rows, err := r.db.Pool.Query(ctx, q, currency, limit)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	defer rows.Close()

	out := make([]domain.QuoteHistory, 0, limit)
	for rows.Next() {
		var (
			h   domain.QuoteHistory
			src string
		)
		if err := rows.Scan(&h.ID, &src, &h.Currency, &h.RubPerUnit, &h.FetchedAt, &h.InsertedAt); err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		h.Source = domain.Source(src)
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *QuoteRepo) Ping(ctx context.Context) error { return r.db.Ping(ctx) }
