// Package cache содержит версионированный кэш отчётов о задолженности в Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const versionKey = "piutang:aging:version"

// Cache хранит JSON-представления отчётов. Инвалидация выполняется
// увеличением версии, входящей в ключ. Нулевой *Cache работает без кэширования.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// New создаёт кэш поверх клиента Redis. При client == nil кэш отключён.
func New(client *redis.Client, ttl time.Duration, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{client: client, ttl: ttl, logger: logger}
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil
}

// Version возвращает текущую версию кэша, инициализируя её при отсутствии.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if !c.enabled() {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, versionKey).Int64()
	if errors.Is(err, redis.Nil) {
		// SETNX, чтобы не затереть версию, увеличенную параллельным Bump.
		if err := c.client.SetNX(ctx, versionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, versionKey).Int64()
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// ReportKey собирает ключ отчёта с учётом текущей версии.
func (c *Cache) ReportKey(ctx context.Context, parts ...string) (string, error) {
	base := "piutang:aging:" + strings.Join(parts, ":")
	if !c.enabled() {
		return base, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:v%d", base, ver), nil
}

// FetchJSON читает значение из кэша в dest или вычисляет его через loader и сохраняет.
// Ошибки Redis только логируются: значение вычисляется через loader и не сохраняется.
// Пустой key отключает кэширование для одного вызова.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("cache: loader required")
	}

	store := c.enabled() && key != ""
	if store {
		payload, err := c.client.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			if err := json.Unmarshal(payload, dest); err == nil {
				return nil
			}
			c.logger.Warn("report cache entry is corrupted", zap.String("key", key))
		case errors.Is(err, redis.Nil):
		default:
			c.logger.Warn("report cache read failed", zap.String("key", key), zap.Error(err))
			store = false
		}
	}

	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	if store {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.logger.Warn("report cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return json.Unmarshal(raw, dest)
}

// Bump делает недействительными все сохранённые отчёты.
func (c *Cache) Bump(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	return c.client.Incr(ctx, versionKey).Err()
}

// Ping проверяет доступность Redis.
func (c *Cache) Ping(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	return c.client.Ping(ctx).Err()
}
