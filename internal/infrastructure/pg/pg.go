package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rubconv-service/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ApplicationName tags archive connections in pg_stat_activity.
const ApplicationName = "rubconv-archive"

var errInvalidDSN = errors.New("parse database url: invalid dsn")

// DB owns the pool backing the quote archive. The session blob never lives
// here; it stays in the state store.
type DB struct{ Pool *pgxpool.Pool }

// poolConfig parses url and applies the archive's pool limits. The archive
// is append-light, so a small pool that drains idle connections is enough.
func poolConfig(url string) (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		// the parse error may echo the password
		return nil, errInvalidDSN
	}
	cfg.MaxConns, cfg.MinConns = config.DefaultPGMaxConns, config.DefaultPGMinConns
	cfg.MaxConnIdleTime = 2 * time.Minute
	if _, ok := cfg.ConnConfig.RuntimeParams["application_name"]; !ok {
		cfg.ConnConfig.RuntimeParams["application_name"] = ApplicationName
	}
	return cfg, nil
}

// Connect opens the archive pool. The pool dials lazily, so an unreachable
// server surfaces on the first Ping or RunMigrations.
func Connect(ctx context.Context, url string) (*DB, error) {
	cfg, err := poolConfig(url)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	return &DB{Pool: pool}, nil
}

func (d *DB) Close() { d.Pool.Close() }

// Ping backs the readiness check when the archive is enabled.
func (d *DB) Ping(ctx context.Context) error { return d.Pool.Ping(ctx) }
