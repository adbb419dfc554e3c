// Package driver открывает хранилище документов, выбранное в конфиге.
package driver

import (
	"context"
	"fmt"

	"github.com/harmonyeco/gec-subscriptions/internal/config"
	"github.com/harmonyeco/gec-subscriptions/internal/storage"
	"github.com/harmonyeco/gec-subscriptions/internal/storage/firestore"
	"github.com/harmonyeco/gec-subscriptions/internal/storage/memory"
	"github.com/harmonyeco/gec-subscriptions/internal/storage/postgres"
)

// Open создаёт storage.Store по cfg.Driver.
func Open(ctx context.Context, cfg config.Storage) (storage.Store, error) {
	const op = "storage.driver.Open"

	var (
		store storage.Store
		err   error
	)
	switch cfg.Driver {
	case storage.DriverFirestore:
		store, err = firestore.New(ctx, cfg.Firestore)
	case storage.DriverPostgres:
		store, err = postgres.New(ctx, cfg.StorageConnectionString, cfg.MigrationsPath)
	case storage.DriverMemory:
		store = memory.New()
	default:
		err = fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return store, nil
}
