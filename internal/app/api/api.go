// Package api собирает HTTP API сервиса подписок: хранилище, кеш, сервисы и маршруты.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/harmonyeco/gec-subscriptions/internal/cache"
	"github.com/harmonyeco/gec-subscriptions/internal/config"
	"github.com/harmonyeco/gec-subscriptions/internal/lib/jwt"
	"github.com/harmonyeco/gec-subscriptions/internal/lib/sl"
	"github.com/harmonyeco/gec-subscriptions/internal/metrics"
	authservice "github.com/harmonyeco/gec-subscriptions/internal/services/auth"
	usersservice "github.com/harmonyeco/gec-subscriptions/internal/services/users"
	"github.com/harmonyeco/gec-subscriptions/internal/storage"
	"github.com/harmonyeco/gec-subscriptions/internal/storage/driver"
)

const shutdownTimeout = 15 * time.Second

// App — HTTP-сервер API.
type App struct {
	server *http.Server
	logger *slog.Logger
	store  storage.Store
}

// New открывает хранилище и кеш из cfg и собирает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.api.New"

	store, err := driver.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rosterCache, err := cache.New(ctx, cfg.Cache)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return NewWithDeps(cfg, logger, store, rosterCache), nil
}

// NewWithDeps собирает приложение из готовых зависимостей.
func NewWithDeps(cfg *config.Config, logger *slog.Logger, store storage.Store, rosterCache cache.Cache) *App {
	metrics.Register()

	usersService := usersservice.New(store, rosterCache, logger, usersservice.Options{
		Collection: cfg.Collection,
		CacheTTL:   cfg.TTL,
		Location:   cfg.TimeLocation(),
	})
	authService := authservice.NewAuthService(
		authservice.Operator{Username: cfg.Operator.Username, PasswordHash: cfg.PasswordHash},
		jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL),
		logger,
	)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg.HTTPServer, usersService, authService)

	return &App{
		server: &http.Server{
			Addr:         cfg.AddressHTTP,
			Handler:      router,
			ReadTimeout:  cfg.TimeoutHTTP,
			WriteTimeout: cfg.TimeoutHTTP,
			IdleTimeout:  cfg.IdleTimeout,
		},
		logger: logger,
		store:  store,
	}
}

// Handler возвращает корневой обработчик.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run обслуживает запросы до отмены ctx, затем мягко останавливает сервер.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err = a.server.Shutdown(timeoutCtx)
	}

	if closeErr := a.store.Close(); closeErr != nil {
		a.logger.Error("failed to close storage", sl.Err(closeErr))
	}
	return err
}
