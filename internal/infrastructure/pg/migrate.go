package pg

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"rubconv-service/internal/infrastructure/logx"

	"github.com/cenkalti/backoff/v4"
	"github.com/golang-migrate/migrate/v4"
	pgdriver "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var fs embed.FS

func RunMigrations(ctx context.Context, db *DB) error {
	src, err := iofs.New(fs, "migrations")
	if err != nil {
		return fmt.Errorf("migrate src: %w", err)
	}
	dsn := db.Pool.Config().ConnString()
	sqldb, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open sql db: %w", err)
	}
	defer sqldb.Close()
	if err := pingWithBackoff(ctx, sqldb); err != nil {
		return fmt.Errorf("ping db: %w", err)
	}
	driver, err := pgdriver.WithInstance(sqldb, &pgdriver.Config{})
	if err != nil {
		return fmt.Errorf("migrate driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("migrate init: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// pingWithBackoff waits for a freshly started database to accept connections.
func pingWithBackoff(ctx context.Context, db *sql.DB) error {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 200 * time.Millisecond
	exp.MaxInterval = 2 * time.Second
	exp.MaxElapsedTime = 15 * time.Second

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := db.PingContext(ctx)
		if err != nil {
			logx.L().Debug("pg.ping_retry", zap.Int("attempt", attempt), zap.Error(err))
		}
		return err
	}, backoff.WithContext(exp, ctx))
}
