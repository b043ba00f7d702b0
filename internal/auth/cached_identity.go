package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"smartflow/internal/authentication"
	"smartflow/internal/cache"
	"smartflow/internal/middlewares"
	"smartflow/internal/models"
)

// CachedIdentity remembers successful session checks for a short interval so that
// revalidating on every request does not cost a provider round trip each time.
type CachedIdentity struct {
	middlewares.IdentityProvider
	cache    cache.CacheProvider
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

func NewCachedIdentity(inner middlewares.IdentityProvider, provider cache.CacheProvider, interval time.Duration, logger *slog.Logger) *CachedIdentity {
	return &CachedIdentity{
		IdentityProvider: inner,
		cache:            provider,
		interval:         interval,
		logger:           logger,
		now:              time.Now,
	}
}

func (c *CachedIdentity) GetSession(ctx context.Context, token string) (*models.Session, error) {
	if cached, ok := c.cache.Get(ctx, token); ok {
		session := cached.Session
		return &session, nil
	}

	session, err := c.IdentityProvider.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, authentication.ErrNoSession) {
			c.cache.Delete(ctx, token)
		}
		return nil, err
	}

	now := c.now()
	expires := now.Add(c.interval)
	if !session.ExpiresAt.IsZero() && session.ExpiresAt.Before(expires) {
		expires = session.ExpiresAt
	}

	c.cache.Set(ctx, token, cache.CachedSession{
		Session:   *session,
		CheckedAt: now,
		ExpiresAt: expires,
	})

	return session, nil
}

func (c *CachedIdentity) SignOut(ctx context.Context, token string) error {
	c.cache.Delete(ctx, token)
	return c.IdentityProvider.SignOut(ctx, token)
}

func (c *CachedIdentity) UpdatePassword(ctx context.Context, token, password string) error {
	c.cache.Delete(ctx, token)
	return c.IdentityProvider.UpdatePassword(ctx, token, password)
}
