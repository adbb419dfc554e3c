// Package firestore реализует storage.Store поверх Firebase Firestore.
package firestore

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sort"

	gfs "cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/harmonyeco/gec-subscriptions/internal/config"
	"github.com/harmonyeco/gec-subscriptions/internal/models"
	"github.com/harmonyeco/gec-subscriptions/internal/storage"
)

// Storage — хранилище документов в коллекциях Firestore.
type Storage struct {
	client *gfs.Client
}

// New инициализирует приложение Firebase и клиент Firestore.
// Учётные данные берутся из base64 JSON, затем из файла; если не задано ни то ни другое,
// используются Application Default Credentials (или эмулятор из FIRESTORE_EMULATOR_HOST).
func New(ctx context.Context, cfg config.Firestore) (*Storage, error) {
	const op = "storage.firestore.New"

	opts, err := clientOptions(cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: init firebase app: %w", op, err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: get firestore client: %w", op, err)
	}
	return &Storage{client: client}, nil
}

func clientOptions(cfg config.Firestore) ([]option.ClientOption, error) {
	switch {
	case cfg.CredentialsJSON != "":
		decoded, err := base64.StdEncoding.DecodeString(cfg.CredentialsJSON)
		if err != nil {
			return nil, fmt.Errorf("decode base64 credentials: %w", err)
		}
		return []option.ClientOption{option.WithCredentialsJSON(decoded)}, nil
	case cfg.CredentialsFile != "":
		return []option.ClientOption{option.WithCredentialsFile(cfg.CredentialsFile)}, nil
	default:
		return nil, nil
	}
}

// List читает все документы коллекции.
func (s *Storage) List(ctx context.Context, collection string) ([]models.Document, error) {
	const op = "storage.firestore.List"

	snaps, err := s.client.Collection(collection).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	docs := make([]models.Document, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, models.Document{ID: snap.Ref.ID, Fields: snap.Data()})
	}
	return docs, nil
}

// Insert добавляет документ с автоматически сгенерированным id.
func (s *Storage) Insert(ctx context.Context, collection string, fields models.Fields) (string, error) {
	const op = "storage.firestore.Insert"

	data := make(map[string]any, len(fields))
	for k, v := range fields {
		if v != nil {
			data[k] = v
		}
	}
	ref, _, err := s.client.Collection(collection).Add(ctx, data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return ref.ID, nil
}

// UpdateFields обновляет только переданные поля документа.
func (s *Storage) UpdateFields(ctx context.Context, collection, id string, fields models.Fields) error {
	const op = "storage.firestore.UpdateFields"

	if len(fields) == 0 {
		return nil
	}
	_, err := s.client.Collection(collection).Doc(id).Update(ctx, updates(fields))
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	return nil
}

// Close закрывает клиент Firestore.
func (s *Storage) Close() error {
	return s.client.Close()
}

// updates переводит частичное обновление в список firestore.Update;
// nil превращается в удаление поля. Порядок путей детерминирован.
func updates(fields models.Fields) []gfs.Update {
	paths := make([]string, 0, len(fields))
	for k := range fields {
		paths = append(paths, k)
	}
	sort.Strings(paths)

	out := make([]gfs.Update, 0, len(paths))
	for _, p := range paths {
		var value any = fields[p]
		if value == nil {
			value = gfs.Delete
		}
		out = append(out, gfs.Update{Path: p, Value: value})
	}
	return out
}

func mapError(err error) error {
	if status.Code(err) == codes.NotFound {
		return errors.Join(storage.ErrNotFound, err)
	}
	return err
}
