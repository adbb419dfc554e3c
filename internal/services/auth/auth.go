// Package auth аутентифицирует оператора по учётной записи из конфига и выдаёт JWT.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"

	"github.com/harmonyeco/gec-subscriptions/internal/lib/jwt"
	"github.com/harmonyeco/gec-subscriptions/internal/lib/password"
)

var (
	// ErrInvalidCredentials — неверное имя или пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrForbidden — токен валиден, но роль не даёт доступа.
	ErrForbidden = errors.New("forbidden")
)

// Operator — учётная запись оператора.
type Operator struct {
	Username     string
	PasswordHash string
}

// Service выдаёт и проверяет токены оператора.
type Service struct {
	operator Operator
	jwtMaker jwt.Maker
	log      *slog.Logger
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(operator Operator, jwtMaker jwt.Maker, log *slog.Logger) *Service {
	return &Service{
		operator: operator,
		jwtMaker: jwtMaker,
		log:      log,
	}
}

// Login сверяет учётные данные и возвращает токен с ролью оператора.
func (s *Service) Login(_ context.Context, username, rawPassword string) (string, error) {
	const op = "services.auth.Login"

	// без настроенного хеша вход запрещён
	if s.operator.Username == "" || s.operator.PasswordHash == "" {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if subtle.ConstantTimeCompare([]byte(username), []byte(s.operator.Username)) != 1 {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err := password.CompareHash(s.operator.PasswordHash, rawPassword); err != nil {
		if !errors.Is(err, password.ErrMismatch) {
			s.log.Error("operator password hash is broken", slog.String("op", op))
		}
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	token, err := s.jwtMaker.GenerateToken(username, jwt.RoleOperator)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("operator logged in", slog.String("op", op), slog.String("username", username))
	return token, nil
}

// ValidateToken разбирает токен и проверяет роль оператора.
func (s *Service) ValidateToken(_ context.Context, token string) (*jwt.Claims, error) {
	const op = "services.auth.ValidateToken"
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if claims.Role != jwt.RoleOperator {
		return nil, fmt.Errorf("%s: %w", op, ErrForbidden)
	}
	return claims, nil
}
