package auth

import (
	"context"
	"encoding/gob"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"smartflow/internal/config"
	"smartflow/internal/middlewares"
	"smartflow/internal/models"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/redis/go-redis/v9"
)

type SessionManager struct {
	*scs.SessionManager

	redis          *redis.Client
	durationSource string
	lifetime       time.Duration
	now            func() time.Time
}

func NewSessionManager(logger *slog.Logger, cfg *config.Config) (*SessionManager, error) {
	gob.Register(&models.Session{})
	gob.Register(&models.Flash{})
	sessionManager := scs.New()

	manager := &SessionManager{
		SessionManager: sessionManager,
		durationSource: cfg.Sessions.DurationSource,
		lifetime:       cfg.Sessions.Lifetime,
		now:            time.Now,
	}

	switch cfg.Sessions.Store {
	case config.SessionStoreMemory:
		sessionManager.Store = memstore.New()
	case config.SessionStoreRedis:
		client := newRedisClient(logger, cfg.Redis)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis connection failed: %w", err)
		}

		sessionManager.Store = goredisstore.New(client)
		manager.redis = client
	default:
		return nil, fmt.Errorf("unsupported session store: %s", cfg.Sessions.Store)
	}

	sessionManager.Lifetime = cfg.Sessions.Lifetime

	sessionManager.Cookie.Name = cfg.Sessions.Name
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode
	sessionManager.Cookie.Secure = cfg.Sessions.SecureCookie()
	sessionManager.Cookie.Path = "/"

	return manager, nil
}

func newRedisClient(logger *slog.Logger, cfg *config.RedisConfig) *redis.Client {
	if cfg.Sentinel != nil {
		logger.Info("connecting to redis via sentinel",
			"master", cfg.Sentinel.MasterName,
			"sentinels", cfg.Sentinel.SentinelAddresses)

		return redis.NewFailoverClient(&redis.FailoverOptions{
			MasterName:       cfg.Sentinel.MasterName,
			SentinelAddrs:    cfg.Sentinel.SentinelAddresses,
			SentinelUsername: cfg.Sentinel.SentinelUsername,
			SentinelPassword: cfg.Sentinel.SentinelPassword,
			Username:         cfg.Username,
			Password:         cfg.Password,
			DB:               cfg.SessionIndex,
			MinIdleConns:     2,
		})
	}

	logger.Info("connecting to redis", "address", cfg.Address)
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.SessionIndex,
		MinIdleConns: 2,
	})
}

// RedisClient returns the client backing the redis store, or nil for the memory store.
func (s *SessionManager) RedisClient() *redis.Client {
	return s.redis
}

func (s *SessionManager) Close() error {
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}

func (s *SessionManager) LoadAndSave(next http.Handler) http.Handler {
	return s.SessionManager.LoadAndSave(next)
}

// CreateSession stores a freshly issued session under a new cookie token.
func (s *SessionManager) CreateSession(ctx *middlewares.AppContext, session *models.Session) error {
	if session == nil {
		return fmt.Errorf("session is nil")
	}

	now := s.now()
	if session.IssuedAt.IsZero() {
		session.IssuedAt = now
	}
	if s.durationSource == config.DurationSourceFixed || session.ExpiresAt.IsZero() {
		session.ExpiresAt = now.Add(s.lifetime)
	}

	if !session.ExpiresAt.After(now) {
		return fmt.Errorf("session already expired")
	}

	if err := s.RenewToken(ctx); err != nil {
		return fmt.Errorf("failed to renew session token: %w", err)
	}

	// A form token issued before sign-in must not survive it; CSRF issues a new one on the next page load.
	s.Remove(ctx, string(SessionKeyCSRFToken))

	s.Put(ctx, string(SessionKeySession), session)

	if remaining := session.ExpiresAt.Sub(now); remaining < s.lifetime {
		s.SetDeadline(ctx, session.ExpiresAt)
	}

	return nil
}

// GetSession returns the stored session. Expired sessions are removed and reported as absent.
func (s *SessionManager) GetSession(ctx *middlewares.AppContext) (*models.Session, bool) {
	data := s.Get(ctx, string(SessionKeySession))
	if data == nil {
		return nil, false
	}

	session, ok := data.(*models.Session)
	if !ok {
		return nil, false
	}

	if session.IsExpired(s.now()) {
		s.Remove(ctx, string(SessionKeySession))
		return nil, false
	}

	return session, true
}

func (s *SessionManager) UpdateSession(ctx *middlewares.AppContext, session *models.Session) {
	s.Put(ctx, string(SessionKeySession), session)
}

func (s *SessionManager) SetFlash(ctx *middlewares.AppContext, flash *models.Flash) {
	s.Put(ctx, string(SessionKeyFlash), flash)
}

func (s *SessionManager) PopFlash(ctx *middlewares.AppContext) *models.Flash {
	flash, _ := s.Pop(ctx, string(SessionKeyFlash)).(*models.Flash)
	return flash
}

func (s *SessionManager) SetRedirectAfterLogin(ctx *middlewares.AppContext, redirectAfterLogin string) {
	s.Put(ctx, string(SessionKeyRedirectAfterLogin), redirectAfterLogin)
}

func (s *SessionManager) PopRedirectAfterLogin(ctx *middlewares.AppContext) string {
	return s.PopString(ctx, string(SessionKeyRedirectAfterLogin))
}

func (s *SessionManager) SetOauthProvider(ctx *middlewares.AppContext, provider string) {
	s.Put(ctx, string(SessionKeyOauthProvider), provider)
}

func (s *SessionManager) GetOauthProvider(ctx *middlewares.AppContext) string {
	return s.GetString(ctx, string(SessionKeyOauthProvider))
}

func (s *SessionManager) SetOauthState(ctx *middlewares.AppContext, state string) {
	s.Put(ctx, string(SessionKeyOauthState), state)
}

func (s *SessionManager) GetOauthState(ctx *middlewares.AppContext) string {
	return s.GetString(ctx, string(SessionKeyOauthState))
}

func (s *SessionManager) ClearOauthState(ctx *middlewares.AppContext) {
	s.Remove(ctx, string(SessionKeyOauthState))
}

func (s *SessionManager) SetOauthNonce(ctx *middlewares.AppContext, nonce string) {
	s.Put(ctx, string(SessionKeyOauthNonce), nonce)
}

func (s *SessionManager) GetOauthNonce(ctx *middlewares.AppContext) string {
	return s.GetString(ctx, string(SessionKeyOauthNonce))
}

func (s *SessionManager) ClearOauthNonce(ctx *middlewares.AppContext) {
	s.Remove(ctx, string(SessionKeyOauthNonce))
}

func (s *SessionManager) SetOauthCodeVerifier(ctx *middlewares.AppContext, verifier string) {
	s.Put(ctx, string(SessionKeyOauthCodeVerifier), verifier)
}

func (s *SessionManager) GetOauthCodeVerifier(ctx *middlewares.AppContext) string {
	return s.GetString(ctx, string(SessionKeyOauthCodeVerifier))
}

func (s *SessionManager) ClearOauthCodeVerifier(ctx *middlewares.AppContext) {
	s.Remove(ctx, string(SessionKeyOauthCodeVerifier))
}

func (s *SessionManager) GetCSRFToken(ctx *middlewares.AppContext) string {
	return s.GetString(ctx, string(SessionKeyCSRFToken))
}

func (s *SessionManager) SetCSRFToken(ctx *middlewares.AppContext, token string) {
	s.Put(ctx, string(SessionKeyCSRFToken), token)
}

func (s *SessionManager) Logout(ctx *middlewares.AppContext) error {
	return s.Destroy(ctx)
}
