package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCacheClient is the subset of the go-redis client the cache needs.
type RedisCacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type RedisCache struct {
	client RedisCacheClient
	logger *slog.Logger
}

func NewRedisCache(client RedisCacheClient, logger *slog.Logger) *RedisCache {
	return &RedisCache{
		client: client,
		logger: logger,
	}
}

// key generates a namespaced Redis key
func (r *RedisCache) key(token string) string {
	return fmt.Sprintf("cache:session:%s", tokenKey(token))
}

func (r *RedisCache) Get(ctx context.Context, token string) (CachedSession, bool) {
	data, err := r.client.Get(ctx, r.key(token)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Error("error executing redis GET", "error", err)
		}
		return CachedSession{}, false
	}

	var cached CachedSession
	if err := json.Unmarshal([]byte(data), &cached); err != nil {
		r.logger.Error("error unmarshalling cached session", "error", err)
		return CachedSession{}, false
	}

	if !cached.Fresh(time.Now()) {
		return CachedSession{}, false
	}

	cached.Session.Token = token
	return cached, true
}

func (r *RedisCache) Set(ctx context.Context, token string, entry CachedSession) {
	ttl := time.Until(entry.ExpiresAt)
	if ttl <= 0 {
		return
	}

	data, err := json.Marshal(entry)
	if err != nil {
		r.logger.Error("error marshalling cached session", "error", err)
		return
	}

	if err := r.client.Set(ctx, r.key(token), data, ttl).Err(); err != nil {
		r.logger.Error("error executing redis SET", "error", err)
	}
}

func (r *RedisCache) Delete(ctx context.Context, token string) {
	if err := r.client.Del(ctx, r.key(token)).Err(); err != nil {
		r.logger.Error("error executing redis DEL", "error", err)
	}
}
