package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smartflow/internal/auth"
	"smartflow/internal/cache"
	"smartflow/internal/config"
	"smartflow/internal/metrics"
	"smartflow/internal/middlewares"
	"smartflow/internal/web"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/extra/redisprometheus/v9"
)

type Server struct {
	cfg            *config.Config
	logger         *slog.Logger
	appCtx         *middlewares.AppContext
	sessionManager *auth.SessionManager
	rateLimiter    *middlewares.RateLimiter
	httpServer     *http.Server
	debugServer    *http.Server
	cancel         context.CancelFunc
}

func New(cfg *config.Config) (*Server, error) {
	logger := setupLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())

	sessionManager, err := auth.NewSessionManager(logger, cfg)
	if err != nil {
		cancel()
		return nil, err
	}

	identity, err := auth.NewKratosIdentity(logger, cfg.Identity)
	if err != nil {
		cancel()
		return nil, err
	}

	oauthProviders, err := auth.NewOAuthProviders(ctx, logger, cfg)
	if err != nil {
		cancel()
		return nil, err
	}

	renderer, err := web.NewRenderer()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	if err := identity.Ping(ctx); err != nil {
		logger.Warn("identity provider is not reachable yet", "url", cfg.Identity.PublicURL, "error", err)
	}

	var provider middlewares.IdentityProvider = identity
	if cfg.Sessions.Revalidate && cfg.Sessions.RevalidateInterval > 0 {
		var redisClient cache.RedisCacheClient
		if client := sessionManager.RedisClient(); client != nil {
			redisClient = client
		}
		provider = auth.NewCachedIdentity(identity, cache.NewCacheProvider(cfg, logger, redisClient), cfg.Sessions.RevalidateInterval, logger)
		logger.Info("session revalidation cache enabled", "interval", cfg.Sessions.RevalidateInterval)
	}

	appCtx := middlewares.NewAppContext(ctx, cfg, logger, sessionManager, provider, oauthProviders, renderer)

	var rateLimiter *middlewares.RateLimiter
	if !cfg.RateLimit.Disabled {
		rateLimiter = middlewares.NewRateLimiter(cfg.RateLimit)
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           setupRouter(appCtx, rateLimiter),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var debugServer *http.Server
	if cfg.Server.Debug != nil && cfg.Server.Debug.Enabled {
		if client := sessionManager.RedisClient(); client != nil {
			collector := redisprometheus.NewCollector(metrics.Namespace, "sessions", client)
			if err := prometheus.Register(collector); err != nil {
				logger.Debug("failed to register redis session collector: already registered", "error", err)
			}
		}

		debugServer = &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Server.Debug.Host, cfg.Server.Debug.Port),
			Handler:           setupDebugRouter(cfg),
			ReadHeaderTimeout: 10 * time.Second,
		}
	}

	return &Server{
		cfg:            cfg,
		logger:         logger,
		appCtx:         appCtx,
		sessionManager: sessionManager,
		rateLimiter:    rateLimiter,
		httpServer:     httpServer,
		debugServer:    debugServer,
		cancel:         cancel,
	}, nil
}

// Start serves until SIGINT/SIGTERM or a listener failure, then shuts down gracefully.
func (s *Server) Start() error {
	go func() {
		s.logger.Info("Server Started", "port", s.cfg.Server.Port, "site_url", s.cfg.Server.SiteURL)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server failed to start", "error", err)
			s.cancel()
		}
	}()

	if s.debugServer != nil {
		go func() {
			s.logger.Info("Metrics server starting", "address", s.debugServer.Addr)
			if err := s.debugServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error("Metrics server failed to start", "error", err)
				s.cancel()
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		s.logger.Info("Shutdown signal received")
	case <-s.appCtx.Done():
		s.logger.Info("Context canceled")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	s.logger.Info("Shutting Down Server")

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("Server forced to shutdown", "error", err)
		return err
	}

	if s.debugServer != nil {
		if err := s.debugServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Debug server forced to shutdown", "error", err)
		}
	}

	if err := s.sessionManager.Close(); err != nil {
		s.logger.Error("failed to close session store", "error", err)
	}

	s.cancel()
	s.logger.Info("Server Exited")
	return nil
}
