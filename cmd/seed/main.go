// Команда seed добавляет документы в коллекцию пользователей.
// Без флага -file добавляется одна тестовая запись.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/harmonyeco/gec-subscriptions/internal/config"
	"github.com/harmonyeco/gec-subscriptions/internal/lib/sl"
	"github.com/harmonyeco/gec-subscriptions/internal/models"
	"github.com/harmonyeco/gec-subscriptions/internal/storage"
	"github.com/harmonyeco/gec-subscriptions/internal/storage/driver"
)

var defaultDocument = models.Fields{"name": "Innovation", "age": 22}

func main() {
	file := flag.String("file", "", "JSON-файл с массивом документов")
	flag.Parse()

	cfg := config.MustLoad()
	logger := sl.New(cfg.Env)

	docs := []models.Fields{defaultDocument}
	if *file != "" {
		var err error
		docs, err = readDocuments(*file)
		if err != nil {
			logger.Error("failed to read documents", sl.Err(err))
			os.Exit(1)
		}
	}

	ctx := context.Background()
	store, err := driver.Open(ctx, cfg.Storage)
	if err != nil {
		logger.Error("failed to open storage", sl.Err(err))
		os.Exit(1)
	}

	ids, err := seed(ctx, store, cfg.Collection, docs)
	for _, id := range ids {
		logger.Info("document added", slog.String("collection", cfg.Collection), slog.String("id", id))
	}
	if closeErr := store.Close(); closeErr != nil {
		logger.Error("failed to close storage", sl.Err(closeErr))
	}
	if err != nil {
		logger.Error("seed failed", sl.Err(err))
		os.Exit(1)
	}
}

func seed(ctx context.Context, store storage.Store, collection string, docs []models.Fields) ([]string, error) {
	const op = "seed"
	ids := make([]string, 0, len(docs))
	for i, fields := range docs {
		id, err := store.Insert(ctx, collection, fields)
		if err != nil {
			return ids, fmt.Errorf("%s: document %d: %w", op, i, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func readDocuments(path string) ([]models.Fields, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decodeDocuments(f)
}

func decodeDocuments(r io.Reader) ([]models.Fields, error) {
	var docs []models.Fields
	if err := json.NewDecoder(r).Decode(&docs); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}
	for i, doc := range docs {
		if err := parseTimestamps(doc); err != nil {
			return nil, fmt.Errorf("decode documents: document %d: %w", i, err)
		}
	}
	return docs, nil
}

// parseTimestamps превращает строковые сроки подписки в time.Time,
// чтобы документы сохранялись с тем же типом, что пишет активация.
func parseTimestamps(doc models.Fields) error {
	for _, key := range []string{models.FieldLastRenewal, models.FieldExpiresAt} {
		raw, ok := doc[key].(string)
		if !ok {
			continue
		}
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
		doc[key] = t
	}
	return nil
}
