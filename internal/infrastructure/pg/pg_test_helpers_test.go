package pg_test

import (
	"context"
	"os"
	"testing"
	"time"

	"rubconv-service/internal/infrastructure/pg"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// archiveDB starts a throwaway postgres with the archive schema applied.
// Docker is only touched when TESTCONTAINERS is set; everything is released
// through t.Cleanup.
func archiveDB(t *testing.T) *pg.DB {
	t.Helper()
	if os.Getenv("TESTCONTAINERS") == "" {
		t.Skip("TESTCONTAINERS not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancel)

	ctr, err := postgres.RunContainer(ctx,
		postgres.WithDatabase("rubconv"),
		postgres.WithUsername("rubconv"),
		postgres.WithPassword("rubconv"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := pg.Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	// migrations retry the first ping while the container finishes booting
	require.NoError(t, pg.RunMigrations(ctx, db))
	// a second run is a no-op
	require.NoError(t, pg.RunMigrations(ctx, db))
	return db
}
