// Package middlewarectx содержит HTTP middleware: проверку JWT оператора,
// ограничение частоты запросов и сбор метрик.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/harmonyeco/gec-subscriptions/internal/http/response"
	"github.com/harmonyeco/gec-subscriptions/internal/lib/jwt"
	"github.com/harmonyeco/gec-subscriptions/internal/lib/sl"
	"github.com/harmonyeco/gec-subscriptions/internal/metrics"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// User — ключ для имени оператора в контексте
	User Key = "username"
	// Role — ключ для роли в контексте
	Role Key = "role"
)

// TokenValidator проверяет токен доступа.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*jwt.Claims, error)
}

// JWTMiddleware пропускает только запросы с валидным Bearer-токеном оператора
// и кладёт имя и роль в контекст. Иначе отвечает 401 "unauthorized".
func JWTMiddleware(auth TokenValidator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || tokenStr == "" {
				log.Warn("missing or invalid authorization header")
				metrics.AuthRejections.WithLabelValues("missing_token").Inc()
				unauthorized(w, r)
				return
			}

			claims, err := auth.ValidateToken(r.Context(), tokenStr)
			if err != nil {
				log.Warn("token rejected", sl.Err(err))
				metrics.AuthRejections.WithLabelValues("invalid_token").Inc()
				unauthorized(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), User, claims.Username)
			ctx = context.WithValue(ctx, Role, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Operator возвращает имя оператора из контекста запроса.
func Operator(ctx context.Context) string {
	name, _ := ctx.Value(User).(string)
	return name
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, response.Error("unauthorized"))
}
