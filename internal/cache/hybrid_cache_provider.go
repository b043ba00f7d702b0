package cache

import (
	"context"
	"log/slog"
)

// HybridCache keeps a local copy in front of redis so repeated requests on one replica skip the round trip.
type HybridCache struct {
	mem    *MemCache
	redis  *RedisCache
	logger *slog.Logger
}

func NewHybridCache(mem *MemCache, redis *RedisCache, logger *slog.Logger) *HybridCache {
	return &HybridCache{
		mem:    mem,
		redis:  redis,
		logger: logger,
	}
}

// Get tries memory first and falls back to redis, copying redis hits into memory.
func (h *HybridCache) Get(ctx context.Context, token string) (CachedSession, bool) {
	if cached, ok := h.mem.Get(ctx, token); ok {
		return cached, true
	}

	cached, ok := h.redis.Get(ctx, token)
	if !ok {
		return CachedSession{}, false
	}

	h.mem.Set(ctx, token, cached)
	return cached, true
}

func (h *HybridCache) Set(ctx context.Context, token string, entry CachedSession) {
	h.mem.Set(ctx, token, entry)
	h.redis.Set(ctx, token, entry)
}

func (h *HybridCache) Delete(ctx context.Context, token string) {
	h.mem.Delete(ctx, token)
	h.redis.Delete(ctx, token)
}
