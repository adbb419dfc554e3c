// Package users реализует операции оператора над списком пользователей:
// просмотр с поиском по телефону, активацию/продление и отмену подписки.
package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/harmonyeco/gec-subscriptions/internal/lib/sl"
	"github.com/harmonyeco/gec-subscriptions/internal/metrics"
	"github.com/harmonyeco/gec-subscriptions/internal/models"
	"github.com/harmonyeco/gec-subscriptions/internal/roster"
	"github.com/harmonyeco/gec-subscriptions/internal/storage"
	"github.com/harmonyeco/gec-subscriptions/internal/subscription"
)

var (
	// ErrLoad — не удалось загрузить список пользователей.
	ErrLoad = errors.New("failed to load users")
	// ErrActivate — не удалось сохранить активацию подписки.
	ErrActivate = errors.New("failed to activate subscription")
	// ErrCancel — не удалось сохранить отмену подписки.
	ErrCancel = errors.New("failed to cancel subscription")
	// ErrNotFound — пользователя с таким id нет в коллекции.
	ErrNotFound = errors.New("user not found")
)

// Store — операции хранилища документов, нужные сервису.
type Store interface {
	List(ctx context.Context, collection string) ([]models.Document, error)
	UpdateFields(ctx context.Context, collection, id string, fields models.Fields) error
}

// Cache хранит сырые документы коллекции.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Options — параметры сервиса. Нулевые значения заменяются значениями по умолчанию.
type Options struct {
	Collection string
	CacheTTL   time.Duration
	Location   *time.Location
	Now        func() time.Time
}

// Service связывает хранилище, кеш и расчёт подписки.
type Service struct {
	store      Store
	cache      Cache
	log        *slog.Logger
	collection string
	ttl        time.Duration
	loc        *time.Location
	now        func() time.Time
}

// New создаёт сервис пользователей.
func New(store Store, cache Cache, log *slog.Logger, opts Options) *Service {
	s := &Service{
		store:      store,
		cache:      cache,
		log:        log,
		collection: opts.Collection,
		ttl:        opts.CacheTTL,
		loc:        opts.Location,
		now:        opts.Now,
	}
	if s.collection == "" {
		s.collection = "users"
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Roster возвращает пользователей с телефоном, отфильтрованных по цифрам query,
// со статусом подписки на текущий момент.
func (s *Service) Roster(ctx context.Context, query string) ([]models.UserView, error) {
	const op = "services.users.Roster"

	docs, err := s.load(ctx)
	if err != nil {
		metrics.StoreFailures.WithLabelValues("list").Inc()
		return nil, fmt.Errorf("%s: %w: %w", op, ErrLoad, err)
	}

	list := make([]models.User, 0, len(docs))
	for _, doc := range docs {
		list = append(list, models.UserFromDocument(doc))
	}
	list = roster.FilterByPhone(roster.Displayable(list), query)

	now := s.clock()
	views := make([]models.UserView, 0, len(list))
	for _, u := range list {
		views = append(views, subscription.View(u, now))
	}
	return views, nil
}

// Activate продлевает подписку пользователя id на months месяцев.
// Действующая подписка продлевается от текущего срока, иначе от текущего момента.
func (s *Service) Activate(ctx context.Context, id string, months int) (models.UserView, error) {
	const op = "services.users.Activate"

	if months < 1 {
		return models.UserView{}, fmt.Errorf("%s: %w: duration must be at least one month", op, ErrActivate)
	}

	user, err := s.find(ctx, id)
	if err != nil {
		s.count("activate", err)
		return models.UserView{}, fmt.Errorf("%s: %w", op, s.mutationError(err, ErrActivate))
	}

	now := s.clock()
	updated, fields := subscription.Activate(user, now, months)
	if err = s.store.UpdateFields(ctx, s.collection, id, fields); err != nil {
		s.count("activate", err)
		return models.UserView{}, fmt.Errorf("%s: %w", op, s.mutationError(err, ErrActivate))
	}
	s.invalidate(ctx)
	s.count("activate", nil)

	s.log.Info("subscription activated",
		slog.String("op", op),
		slog.String("user_id", id),
		slog.Int("months", months),
		slog.Time("expires_at", *updated.ExpiresAt),
	)
	return subscription.View(updated, now), nil
}

// Cancel снимает срок истечения подписки пользователя id.
func (s *Service) Cancel(ctx context.Context, id string) (models.UserView, error) {
	const op = "services.users.Cancel"

	user, err := s.find(ctx, id)
	if err != nil {
		s.count("cancel", err)
		return models.UserView{}, fmt.Errorf("%s: %w", op, s.mutationError(err, ErrCancel))
	}

	if err = s.store.UpdateFields(ctx, s.collection, id, subscription.CancelFields()); err != nil {
		s.count("cancel", err)
		return models.UserView{}, fmt.Errorf("%s: %w", op, s.mutationError(err, ErrCancel))
	}
	s.invalidate(ctx)
	s.count("cancel", nil)

	s.log.Info("subscription canceled", slog.String("op", op), slog.String("user_id", id))
	return subscription.View(subscription.Cancel(user), s.clock()), nil
}

// Expiring возвращает действующие подписки с e-mail, которые истекают в течение window.
func (s *Service) Expiring(ctx context.Context, window time.Duration) ([]models.UserView, error) {
	const op = "services.users.Expiring"

	docs, err := s.load(ctx)
	if err != nil {
		metrics.StoreFailures.WithLabelValues("list").Inc()
		return nil, fmt.Errorf("%s: %w: %w", op, ErrLoad, err)
	}

	now := s.clock()
	deadline := now.Add(window)
	out := []models.UserView{}
	for _, doc := range docs {
		u := models.UserFromDocument(doc)
		if !subscription.IsActive(u.ExpiresAt, now) || u.ExpiresAt.After(deadline) {
			continue
		}
		if u.Email == nil || *u.Email == "" {
			continue
		}
		out = append(out, subscription.View(u, now))
	}
	return out, nil
}

// find читает запись напрямую из хранилища, минуя кеш:
// продление должно считаться от актуального срока.
func (s *Service) find(ctx context.Context, id string) (models.User, error) {
	docs, err := s.store.List(ctx, s.collection)
	if err != nil {
		return models.User{}, err
	}
	for _, doc := range docs {
		if doc.ID == id {
			return models.UserFromDocument(doc), nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (s *Service) load(ctx context.Context) ([]models.Document, error) {
	key := s.cacheKey()

	var docs []models.Document
	found, err := s.cache.Get(ctx, key, &docs)
	if err != nil {
		s.log.Warn("failed to read roster from cache", slog.String("key", key), sl.Err(err))
	}
	if found && err == nil {
		return docs, nil
	}

	docs, err = s.store.List(ctx, s.collection)
	if err != nil {
		return nil, err
	}
	if err = s.cache.Set(ctx, key, docs, s.ttl); err != nil {
		s.log.Warn("failed to cache roster", slog.String("key", key), sl.Err(err))
	}
	return docs, nil
}

func (s *Service) invalidate(ctx context.Context) {
	key := s.cacheKey()
	if err := s.cache.Invalidate(ctx, key); err != nil {
		s.log.Warn("failed to invalidate roster cache", slog.String("key", key), sl.Err(err))
	}
}

func (s *Service) mutationError(err, kind error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %w", kind, err)
}

func (s *Service) count(operation string, err error) {
	switch {
	case err == nil:
		metrics.SubscriptionOps.WithLabelValues(operation, metrics.ResultOK).Inc()
	case errors.Is(err, storage.ErrNotFound):
		metrics.SubscriptionOps.WithLabelValues(operation, metrics.ResultNotFound).Inc()
	default:
		metrics.SubscriptionOps.WithLabelValues(operation, metrics.ResultError).Inc()
		metrics.StoreFailures.WithLabelValues(operation).Inc()
	}
}

func (s *Service) clock() time.Time {
	return s.now().In(s.loc)
}

func (s *Service) cacheKey() string {
	return "roster:" + s.collection
}
