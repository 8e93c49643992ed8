// Package cache implementa la caché de reportes sobre Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/POS-api/internal/application/reports"
	"github.com/redis/go-redis/v9"
)

var _ reports.Cache = (*ReportCache)(nil)

const defaultPrefix = "pos:reports"

// NewRedis crea el cliente a partir de REDIS_URL y valida la conexión.
func NewRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// ReportCache guarda reportes como JSON bajo <prefix>:<generación>:<clave>.
// Invalidate incrementa la generación: las claves viejas dejan de leerse y expiran solas por TTL.
type ReportCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

// NewReportCache construye la caché. prefix vacío usa "pos:reports".
func NewReportCache(rdb *redis.Client, ttl time.Duration, prefix string) *ReportCache {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &ReportCache{rdb: rdb, ttl: ttl, prefix: prefix}
}

func (c *ReportCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	full, err := c.key(ctx, key)
	if err != nil {
		return false, err
	}
	b, err := c.rdb.Get(ctx, full).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return false, fmt.Errorf("reporte cacheado corrupto %s: %w", full, err)
	}
	return true, nil
}

func (c *ReportCache) Set(ctx context.Context, key string, value any) error {
	full, err := c.key(ctx, key)
	if err != nil {
		return err
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, full, b, c.ttl).Err()
}

func (c *ReportCache) Invalidate(ctx context.Context) error {
	return c.rdb.Incr(ctx, c.genKey()).Err()
}

func (c *ReportCache) key(ctx context.Context, key string) (string, error) {
	gen, err := c.rdb.Get(ctx, c.genKey()).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf("%s:%d:%s", c.prefix, gen, key), nil
}

func (c *ReportCache) genKey() string { return c.prefix + ":gen" }
