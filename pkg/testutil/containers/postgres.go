//go:build integration

package containers

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"censusdesk/internal/platform/database"
)

// PostgresContainer is a migrated census database.
type PostgresContainer struct {
	Container testcontainers.Container
	DB        *sql.DB
}

func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:18-alpine",
		postgres.WithDatabase("censusdesk_test"),
		postgres.WithUsername("censusdesk"),
		postgres.WithPassword("censusdesk_test_password"),
		testcontainers.WithWaitStrategy(
			// The server logs readiness twice: once for the init run, once for real.
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "start postgres")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		require.NoError(t, err, "postgres connection string")
	}

	// Open through the production pool so tests share its settings and retries.
	pool, err := database.New(ctx, database.Config{
		URL:             dsn,
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnectAttempts: 5,
		ConnectBackoff:  200 * time.Millisecond,
	})
	if err == nil {
		err = database.Migrate(ctx, pool.DB(), nil)
	}
	if err != nil {
		_ = container.Terminate(ctx)
		require.NoError(t, err, "prepare postgres")
	}

	// Ryuk removes the container when the test binary exits.
	return &PostgresContainer{Container: container, DB: pool.DB()}
}

// TruncateAll empties every application table.
func (p *PostgresContainer) TruncateAll(ctx context.Context) error {
	_, err := p.DB.ExecContext(ctx, "TRUNCATE TABLE census_records, profiles")
	return err
}

// CountRows fails the test if table cannot be counted.
func (p *PostgresContainer) CountRows(ctx context.Context, t testing.TB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, p.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}
