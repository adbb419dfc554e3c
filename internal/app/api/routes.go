package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/harmonyeco/gec-subscriptions/internal/config"
	"github.com/harmonyeco/gec-subscriptions/internal/http/handlers/auth/login"
	"github.com/harmonyeco/gec-subscriptions/internal/http/handlers/health"
	"github.com/harmonyeco/gec-subscriptions/internal/http/handlers/users/activate"
	"github.com/harmonyeco/gec-subscriptions/internal/http/handlers/users/cancel"
	"github.com/harmonyeco/gec-subscriptions/internal/http/handlers/users/list"
	"github.com/harmonyeco/gec-subscriptions/internal/http/middlewarectx"
	authservice "github.com/harmonyeco/gec-subscriptions/internal/services/auth"
	usersservice "github.com/harmonyeco/gec-subscriptions/internal/services/users"

	_ "github.com/harmonyeco/gec-subscriptions/docs"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg config.HTTPServer, usersService *usersservice.Service, authService *authservice.Service) {
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middlewarectx.MetricsMiddleware,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(logger, cfg.RateLimit, cfg.RateBurst))

		r.Post("/login", login.New(logger, authService).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Get("/users", list.New(logger, usersService).ServeHTTP)
			r.Post("/users/{id}/activate", activate.New(logger, usersService).ServeHTTP)
			r.Post("/users/{id}/cancel", cancel.New(logger, usersService).ServeHTTP)
		})
	})

	r.Method(http.MethodGet, "/health", health.New())
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
