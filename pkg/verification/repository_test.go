package verification

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDatabase(t *testing.T) (*pgxpool.Pool, func()) {
	ctx := context.Background()

	dbName := "admin_db"
	dbUser := "gateway"
	dbPassword := "pwd"

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithInitScripts(filepath.Join("../../migrations", "admin_db.sql")),
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	require.NoError(t, err)

	connString, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	poolConfig, err := pgxpool.ParseConfig(connString)
	require.NoError(t, err)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}

func TestTokenRepository_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	pool, cleanup := setupTestDatabase(t)
	defer cleanup()

	repo := NewRepository(pool)
	expiresAt := time.Now().UTC().Add(time.Hour)

	token, err := repo.CreateToken(ctx, "user@example.com", "code-1", expiresAt)
	require.NoError(t, err)
	assert.NotEqual(t, "", token.ID.String())
	assert.Equal(t, "user@example.com", token.Email)

	// Wrong pairings never consume.
	err = repo.ConsumeToken(ctx, "other@example.com", "code-1")
	assert.ErrorIs(t, err, ErrTokenNotFound)
	err = repo.ConsumeToken(ctx, "user@example.com", "wrong-code")
	assert.ErrorIs(t, err, ErrTokenNotFound)

	// The matching pair consumes exactly once.
	require.NoError(t, repo.ConsumeToken(ctx, "user@example.com", "code-1"))
	err = repo.ConsumeToken(ctx, "user@example.com", "code-1")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestTokenRepository_ExpiredExcluded(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	pool, cleanup := setupTestDatabase(t)
	defer cleanup()

	repo := NewRepository(pool)

	_, err := repo.CreateToken(ctx, "user@example.com", "stale", time.Now().UTC().Add(-time.Minute))
	require.NoError(t, err)

	err = repo.ConsumeToken(ctx, "user@example.com", "stale")
	assert.ErrorIs(t, err, ErrTokenNotFound)

	require.NoError(t, repo.CleanupExpiredTokens(ctx))
}

func TestTokenRepository_DeleteByEmail(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	pool, cleanup := setupTestDatabase(t)
	defer cleanup()

	repo := NewRepository(pool)
	expiresAt := time.Now().UTC().Add(time.Hour)

	_, err := repo.CreateToken(ctx, "user@example.com", "code-1", expiresAt)
	require.NoError(t, err)
	_, err = repo.CreateToken(ctx, "user@example.com", "code-2", expiresAt)
	require.NoError(t, err)
	_, err = repo.CreateToken(ctx, "other@example.com", "code-3", expiresAt)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteTokensByEmail(ctx, "user@example.com"))

	err = repo.ConsumeToken(ctx, "user@example.com", "code-1")
	assert.ErrorIs(t, err, ErrTokenNotFound)
	err = repo.ConsumeToken(ctx, "user@example.com", "code-2")
	assert.ErrorIs(t, err, ErrTokenNotFound)

	// Other emails are untouched.
	require.NoError(t, repo.ConsumeToken(ctx, "other@example.com", "code-3"))
}
