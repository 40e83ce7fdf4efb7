package application

import (
	"context"

	"rubconv-service/internal/domain"
)

type MarketProvider interface {
	Get(ctx context.Context, currency string) (domain.Quote, error)
}

type ReferenceProvider interface {
	Get(ctx context.Context) (domain.ReferenceTable, error)
}

type DepthProvider interface {
	Get(ctx context.Context, symbol string) (domain.DepthSnapshot, error)
}

// UpdateFunc maps the stored blob (nil when absent) to its replacement.
// Returning a nil blob leaves the store untouched. It may run more than once
// when another writer gets in first.
type UpdateFunc func(cur []byte) ([]byte, error)

// StateStore persists the serialized session under a single key shared by
// every process. Load returns ErrNotFound when nothing was saved yet. Update
// is an atomic read-modify-write; it returns ErrConflict when it keeps
// losing the race.
type StateStore interface {
	Load(ctx context.Context) ([]byte, error)
	Update(ctx context.Context, fn UpdateFunc) error
}

// QuoteArchive keeps every fetched quote for auditing.
type QuoteArchive interface {
	Append(ctx context.Context, q domain.QuoteHistory) error
	List(ctx context.Context, currency string, limit int) ([]domain.QuoteHistory, error)
}

// Pinger is implemented by stores that can report readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NoopArchive discards quotes; used when no database is configured.
type NoopArchive struct{}

func (NoopArchive) Append(context.Context, domain.QuoteHistory) error { return nil }
func (NoopArchive) List(context.Context, string, int) ([]domain.QuoteHistory, error) {
	return nil, nil
}
