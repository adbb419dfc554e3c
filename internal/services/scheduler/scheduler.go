// Package scheduler периодически ищет подписки, которые скоро истекают,
// и публикует уведомления о них в брокер.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/harmonyeco/gec-subscriptions/internal/lib/rabbitmq"
	"github.com/harmonyeco/gec-subscriptions/internal/lib/sl"
	"github.com/harmonyeco/gec-subscriptions/internal/metrics"
	"github.com/harmonyeco/gec-subscriptions/internal/models"
)

// UserSource отдаёт подписки, истекающие в течение window.
type UserSource interface {
	Expiring(ctx context.Context, window time.Duration) ([]models.UserView, error)
}

// Publisher отправляет сообщение в брокер.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// Journal запоминает уже отправленные уведомления.
type Journal interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// Service — планировщик уведомлений.
type Service struct {
	users     UserSource
	publisher Publisher
	journal   Journal
	log       *slog.Logger
	interval  time.Duration
	window    time.Duration
}

// NewSchedulerService создаёт планировщик, который раз в interval
// уведомляет о подписках, истекающих в течение window.
func NewSchedulerService(users UserSource, publisher Publisher, journal Journal, log *slog.Logger, interval, window time.Duration) *Service {
	return &Service{
		users:     users,
		publisher: publisher,
		journal:   journal,
		log:       log,
		interval:  interval,
		window:    window,
	}
}

// Run выполняет проход сразу и затем по таймеру до отмены ctx.
func (s *Service) Run(ctx context.Context) {
	s.tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Service) tick(ctx context.Context) {
	sent, err := s.NotifyExpiring(ctx)
	if err != nil {
		s.log.Error("failed to notify expiring subscriptions", sl.Err(err))
		return
	}
	s.log.Info("expiring subscriptions processed", slog.Int("sent", sent))
}

// NotifyExpiring публикует по одному уведомлению на каждую истекающую подписку,
// о которой ещё не сообщали. Возвращает число опубликованных уведомлений.
func (s *Service) NotifyExpiring(ctx context.Context) (int, error) {
	const op = "services.scheduler.NotifyExpiring"

	views, err := s.users.Expiring(ctx, s.window)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if len(views) == 0 {
		s.log.Debug("no expiring subscriptions found")
		return 0, nil
	}

	sent := 0
	for _, v := range views {
		key := journalKey(v)
		var seen bool
		found, err := s.journal.Get(ctx, key, &seen)
		if err != nil {
			s.log.Warn("failed to read notice journal", slog.String("key", key), sl.Err(err))
		}
		if found {
			continue
		}

		notice := noticeFor(v)
		if err = s.publisher.Publish(ctx, rabbitmq.RoutingKeyExpiring, notice); err != nil {
			metrics.NoticesPublished.WithLabelValues(metrics.ResultError).Inc()
			s.log.Error("failed to publish expiry notice", slog.String("user_id", v.ID), sl.Err(err))
			continue
		}
		metrics.NoticesPublished.WithLabelValues(metrics.ResultOK).Inc()
		sent++

		if err = s.journal.Set(ctx, key, true, s.window); err != nil {
			s.log.Warn("failed to record notice", slog.String("key", key), sl.Err(err))
		}
	}
	return sent, nil
}

func noticeFor(v models.UserView) models.ExpiryNotice {
	n := models.ExpiryNotice{
		EventID:   uuid.NewString(),
		UserID:    v.ID,
		ExpiresAt: *v.ExpiresAt,
	}
	if v.Name != nil {
		n.Name = *v.Name
	}
	if v.Email != nil {
		n.Email = *v.Email
	}
	if v.Phone != nil {
		n.Phone = *v.Phone
	}
	return n
}

// journalKey привязан к сроку истечения: после продления уведомление уйдёт снова.
func journalKey(v models.UserView) string {
	return fmt.Sprintf("notice:%s:%d", v.ID, v.ExpiresAt.Unix())
}
