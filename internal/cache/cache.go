// Package cache кеширует сырые документы коллекции пользователей между запросами.
// Вычисляемые поля (статус, остаток месяцев) никогда не кешируются.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/harmonyeco/gec-subscriptions/internal/config"
)

// Драйверы кеша, выбираемые в конфиге.
const (
	DriverRedis  = "redis"
	DriverMemory = "memory"
	DriverNone   = "none"
)

// Cache — хранилище значений с ограниченным сроком жизни.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// New выбирает реализацию кеша по cfg.Driver.
func New(ctx context.Context, cfg config.Cache) (Cache, error) {
	const op = "cache.New"
	switch cfg.Driver {
	case DriverRedis:
		c, err := InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return c, nil
	case DriverMemory:
		return NewLocal(cfg.TTL), nil
	case DriverNone, "":
		return Nop{}, nil
	default:
		return nil, fmt.Errorf("%s: unknown cache driver %q", op, cfg.Driver)
	}
}

// Nop — кеш, который ничего не хранит.
type Nop struct{}

func (Nop) Get(context.Context, string, any) (bool, error) { return false, nil }

func (Nop) Set(context.Context, string, any, time.Duration) error { return nil }

func (Nop) Invalidate(context.Context, string) error { return nil }
