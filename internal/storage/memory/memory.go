// Package memory реализует storage.Store в памяти процесса.
// Используется в тестах и для локального запуска без внешнего хранилища.
package memory

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/google/uuid"

	"github.com/harmonyeco/gec-subscriptions/internal/models"
	"github.com/harmonyeco/gec-subscriptions/internal/storage"
)

type collection struct {
	order []string
	docs  map[string]models.Fields
}

// Storage хранит коллекции документов в памяти. Безопасен для конкурентного использования.
type Storage struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

// New создаёт пустое хранилище.
func New() *Storage {
	return &Storage{collections: make(map[string]*collection)}
}

// List возвращает копии документов в порядке вставки.
func (s *Storage) List(ctx context.Context, name string) ([]models.Document, error) {
	const op = "storage.memory.List"
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return []models.Document{}, nil
	}
	docs := make([]models.Document, 0, len(c.order))
	for _, id := range c.order {
		docs = append(docs, models.Document{ID: id, Fields: maps.Clone(c.docs[id])})
	}
	return docs, nil
}

// Insert добавляет документ со сгенерированным id.
func (s *Storage) Insert(ctx context.Context, name string, fields models.Fields) (string, error) {
	id := uuid.NewString()
	if err := s.Put(ctx, name, id, fields); err != nil {
		return "", fmt.Errorf("storage.memory.Insert: %w", err)
	}
	return id, nil
}

// Put сохраняет документ с заданным id, заменяя существующий.
func (s *Storage) Put(ctx context.Context, name, id string, fields models.Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		c = &collection{docs: make(map[string]models.Fields)}
		s.collections[name] = c
	}
	if _, exists := c.docs[id]; !exists {
		c.order = append(c.order, id)
	}
	doc := make(models.Fields, len(fields))
	for k, v := range fields {
		if v != nil {
			doc[k] = v
		}
	}
	c.docs[id] = doc
	return nil
}

// UpdateFields применяет частичное обновление; nil удаляет поле.
func (s *Storage) UpdateFields(ctx context.Context, name, id string, fields models.Fields) error {
	const op = "storage.memory.UpdateFields"
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	doc, ok := c.docs[id]
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	for k, v := range fields {
		if v == nil {
			delete(doc, k)
			continue
		}
		doc[k] = v
	}
	return nil
}

// Close ничего не делает.
func (s *Storage) Close() error { return nil }
