// Package scheduler собирает планировщик уведомлений об истекающих подписках.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/harmonyeco/gec-subscriptions/internal/cache"
	"github.com/harmonyeco/gec-subscriptions/internal/config"
	"github.com/harmonyeco/gec-subscriptions/internal/lib/rabbitmq"
	"github.com/harmonyeco/gec-subscriptions/internal/lib/sl"
	"github.com/harmonyeco/gec-subscriptions/internal/metrics"
	schedulerservice "github.com/harmonyeco/gec-subscriptions/internal/services/scheduler"
	usersservice "github.com/harmonyeco/gec-subscriptions/internal/services/users"
	"github.com/harmonyeco/gec-subscriptions/internal/storage"
	"github.com/harmonyeco/gec-subscriptions/internal/storage/driver"
)

// App представляет приложение планировщика.
type App struct {
	schedulerService *schedulerservice.Service
	store            storage.Store
	conn             *amqp.Connection
	ch               *amqp.Channel
	logger           *slog.Logger
}

// New создает новый экземпляр приложения планировщика.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.scheduler.New"

	conn, err := rabbitmq.Connect(ctx, cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect RabbitMQ: %w", op, err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.NotificationQueues())
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, fmt.Errorf("%s: failed to setup RabbitMQ channel: %w", op, err)
	}

	store, err := driver.Open(ctx, cfg.Storage)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("%s: failed to open storage: %w", op, err)
	}

	journal, err := cache.New(ctx, cfg.Cache)
	if err != nil {
		_ = store.Close()
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("%s: cache not initialized: %w", op, err)
	}
	// без внешнего кеша журнал живёт в памяти процесса
	if _, ok := journal.(cache.Nop); ok {
		journal = cache.NewLocal(cfg.NoticeWindow)
	}

	metrics.Register()

	// планировщик читает список напрямую из хранилища
	users := usersservice.New(store, cache.Nop{}, logger, usersservice.Options{
		Collection: cfg.Collection,
		Location:   cfg.TimeLocation(),
	})

	return &App{
		schedulerService: schedulerservice.NewSchedulerService(
			users,
			rabbitmq.NewPublisher(ch),
			journal,
			logger,
			cfg.Interval,
			cfg.NoticeWindow,
		),
		store:  store,
		conn:   conn,
		ch:     ch,
		logger: logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", sl.Err(err))
		}
	}
}

// Run запускает планировщик и блокируется до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	a.schedulerService.Run(ctx)

	a.logger.Info("shutting down scheduler service")
	if err := a.store.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
	closeResources(a.ch, a.conn, a.logger)
	return nil
}
