package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Local — кеш в памяти процесса. Значения хранятся сериализованными,
// поэтому вызывающий всегда получает собственную копию.
type Local struct {
	c *gocache.Cache
}

// NewLocal создаёт кеш в памяти с временем жизни записей по умолчанию ttl.
func NewLocal(ttl time.Duration) *Local {
	return &Local{c: gocache.New(ttl, 2*ttl)}
}

func (l *Local) Get(_ context.Context, key string, result any) (bool, error) {
	const op = "cache.Local.Get"
	val, ok := l.c.Get(key)
	if !ok {
		return false, nil
	}
	raw, ok := val.([]byte)
	if !ok {
		return false, fmt.Errorf("%s: unexpected value type %T", op, val)
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// Set сохраняет значение; нулевой expiration означает время жизни по умолчанию.
func (l *Local) Set(_ context.Context, key string, value any, expiration time.Duration) error {
	const op = "cache.Local.Set"
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if expiration == 0 {
		expiration = gocache.DefaultExpiration
	}
	l.c.Set(key, raw, expiration)
	return nil
}

func (l *Local) Invalidate(_ context.Context, key string) error {
	l.c.Delete(key)
	return nil
}
