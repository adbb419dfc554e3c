package postgres

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/harmonyeco/gec-subscriptions/internal/models"
	"github.com/harmonyeco/gec-subscriptions/internal/storage"
)

func setupTestDatabase(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("user"),
		tcpostgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)

	s, err := New(ctx, dsn, migrationsPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStorage_Integration(t *testing.T) {
	s := setupTestDatabase(t)
	ctx := context.Background()

	first, err := s.Insert(ctx, "users", models.Fields{"name": "Innovation", "age": 22})
	require.NoError(t, err)
	second, err := s.Insert(ctx, "users", models.Fields{"name": "Rova", "phone": "+261 34 11 222 33"})
	require.NoError(t, err)
	_, err = s.Insert(ctx, "operators", models.Fields{"name": "other collection"})
	require.NoError(t, err)

	docs, err := s.List(ctx, "users")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, first, docs[0].ID)
	assert.Equal(t, second, docs[1].ID)

	err = s.UpdateFields(ctx, "users", second, models.Fields{
		models.FieldLastRenewal: "2024-01-15T00:00:00Z",
		models.FieldExpiresAt:   "2024-04-15T00:00:00Z",
	})
	require.NoError(t, err)

	err = s.UpdateFields(ctx, "users", second, models.Fields{models.FieldExpiresAt: nil})
	require.NoError(t, err)

	docs, err = s.List(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15T00:00:00Z", docs[1].Fields[models.FieldLastRenewal])
	assert.NotContains(t, docs[1].Fields, models.FieldExpiresAt)
	assert.Equal(t, "Rova", docs[1].Fields["name"])

	err = s.UpdateFields(ctx, "operators", second, models.Fields{"name": "x"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
