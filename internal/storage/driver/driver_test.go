package driver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harmonyeco/gec-subscriptions/internal/config"
	"github.com/harmonyeco/gec-subscriptions/internal/storage"
	"github.com/harmonyeco/gec-subscriptions/internal/storage/memory"
)

func TestOpen_Memory(t *testing.T) {
	store, err := Open(context.Background(), config.Storage{Driver: storage.DriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &memory.Storage{}, store)
	assert.NoError(t, store.Close())
}

func TestOpen_Unknown(t *testing.T) {
	_, err := Open(context.Background(), config.Storage{Driver: "mongo"})
	assert.ErrorContains(t, err, `unknown storage driver "mongo"`)
}

func TestOpen_PostgresBadURL(t *testing.T) {
	cfg := config.Storage{Driver: storage.DriverPostgres}
	cfg.StorageConnectionString = "::not a url::"
	_, err := Open(context.Background(), cfg)
	assert.Error(t, err)
}
