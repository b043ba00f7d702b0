package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"smartflow/internal/config"
	"smartflow/internal/models"
)

// CacheProvider holds provider-confirmed sessions keyed by their token.
type CacheProvider interface {
	Get(ctx context.Context, token string) (CachedSession, bool)
	Set(ctx context.Context, token string, entry CachedSession)
	Delete(ctx context.Context, token string)
}

// CachedSession is a session the identity provider confirmed at CheckedAt.
type CachedSession struct {
	Session   models.Session `json:"session"`
	CheckedAt time.Time      `json:"checked_at"`
	ExpiresAt time.Time      `json:"expires_at"`
}

func (c CachedSession) Fresh(now time.Time) bool {
	return now.Before(c.ExpiresAt)
}

// NewCacheProvider picks the memory cache unless sessions live in redis, in which case
// revalidation results are shared between replicas through the same redis client.
func NewCacheProvider(cfg *config.Config, logger *slog.Logger, client RedisCacheClient) CacheProvider {
	if cfg.Sessions.Store == config.SessionStoreRedis && client != nil {
		return NewHybridCache(NewMemCache(), NewRedisCache(client, logger), logger)
	}

	return NewMemCache()
}

// tokenKey never stores the raw session token.
func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
