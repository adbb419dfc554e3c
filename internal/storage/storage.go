// Package storage описывает контракт удалённого хранилища документов,
// через которое читаются и обновляются записи пользователей.
package storage

import (
	"context"
	"errors"

	"github.com/harmonyeco/gec-subscriptions/internal/models"
)

// ErrNotFound возвращается, когда документ с указанным id отсутствует.
var ErrNotFound = errors.New("document not found")

// Драйверы хранилища, выбираемые в конфиге.
const (
	DriverFirestore = "firestore"
	DriverPostgres  = "postgres"
	DriverMemory    = "memory"
)

// Store — хранилище документов: чтение всей коллекции, вставка и частичное обновление.
type Store interface {
	// List возвращает все документы коллекции, без пагинации.
	List(ctx context.Context, collection string) ([]models.Document, error)
	// Insert добавляет документ и возвращает его id.
	Insert(ctx context.Context, collection string, fields models.Fields) (string, error)
	// UpdateFields обновляет только переданные поля; nil удаляет поле.
	UpdateFields(ctx context.Context, collection, id string, fields models.Fields) error
	// Close освобождает соединение с хранилищем.
	Close() error
}
