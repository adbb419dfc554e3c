// Package postgres реализует storage.Store поверх PostgreSQL: документы
// хранятся в таблице documents в колонке jsonb.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/harmonyeco/gec-subscriptions/internal/models"
	"github.com/harmonyeco/gec-subscriptions/internal/storage"
)

const table = "documents"

// DB — минимальный набор методов пула соединений, нужный хранилищу.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Close()
}

// Storage инкапсулирует пул соединений PostgreSQL.
type Storage struct {
	db      DB
	builder sq.StatementBuilderType
}

// New создаёт пул соединений, проверяет подключение и применяет миграции из migrationsPath.
func New(ctx context.Context, connString, migrationsPath string) (*Storage, error) {
	const op = "storage.postgres.New"

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if migrationsPath != "" {
		if err = Migrate(pool, migrationsPath); err != nil {
			pool.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	return NewWithDB(pool), nil
}

// NewWithDB оборачивает готовое соединение.
func NewWithDB(db DB) *Storage {
	return &Storage{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// List возвращает документы коллекции в порядке создания.
func (s *Storage) List(ctx context.Context, collection string) ([]models.Document, error) {
	const op = "storage.postgres.List"

	query, args, err := s.builder.
		Select("id::text", "fields").
		From(table).
		Where(sq.Eq{"collection": collection}).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	docs := []models.Document{}
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err = rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		fields := models.Fields{}
		if err = json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("%s: decode document %s: %w", op, id, err)
		}
		docs = append(docs, models.Document{ID: id, Fields: fields})
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return docs, nil
}

// Insert сохраняет новый документ и возвращает его id.
func (s *Storage) Insert(ctx context.Context, collection string, fields models.Fields) (string, error) {
	const op = "storage.postgres.Insert"

	set, _ := split(fields)
	payload, err := json.Marshal(set)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	id := uuid.NewString()

	query, args, err := s.builder.
		Insert(table).
		Columns("collection", "id", "fields").
		Values(collection, id, sq.Expr("?::jsonb", string(payload))).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if _, err = s.db.Exec(ctx, query, args...); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// UpdateFields сливает переданные поля с документом; поля со значением nil удаляются.
func (s *Storage) UpdateFields(ctx context.Context, collection, id string, fields models.Fields) error {
	const op = "storage.postgres.UpdateFields"

	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	set, removed := split(fields)
	payload, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query, args, err := s.builder.
		Update(table).
		Set("fields", sq.Expr("(fields || ?::jsonb) - ?::text[]", string(payload), removed)).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"collection": collection, "id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	return nil
}

// Close закрывает пул соединений.
func (s *Storage) Close() error {
	s.db.Close()
	return nil
}

// split делит частичное обновление на устанавливаемые и удаляемые поля.
func split(fields models.Fields) (map[string]any, []string) {
	set := make(map[string]any, len(fields))
	removed := []string{}
	for k, v := range fields {
		if v == nil {
			removed = append(removed, k)
			continue
		}
		set[k] = v
	}
	sort.Strings(removed)
	return set, removed
}
