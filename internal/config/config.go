package config

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const EnvPrefix = "SMARTFLOW_"

func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		return nil, fmt.Errorf("config file path is required (use -config or -c)")
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseConfig(data)
}

// ParseConfig decodes a YAML document, applies SMARTFLOW_* environment overrides and validates the result.
func ParseConfig(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := applyEnvironmentOverrides(&config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

type environmentOverrides struct {
	SiteURL           string   `env:"SITE_URL"`
	Port              int      `env:"PORT"`
	LogLevel          string   `env:"LOG_LEVEL"`
	KratosPublicURL   string   `env:"KRATOS_PUBLIC_URL"`
	KratosAdminURL    string   `env:"KRATOS_ADMIN_URL"`
	RedisAddress      string   `env:"REDIS_ADDRESS"`
	RedisUsername     string   `env:"REDIS_USERNAME"`
	RedisPassword     string   `env:"REDIS_PASSWORD"`
	SentinelUsername  string   `env:"REDIS_SENTINEL_USERNAME"`
	SentinelPassword  string   `env:"REDIS_SENTINEL_PASSWORD"`
	SessionSecureFlag *bool    `env:"SESSION_SECURE"`
	TrustedProxies    []string `env:"TRUSTED_PROXIES" envSeparator:","`
}

type oauthProviderOverrides struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	IssuerURL    string `env:"ISSUER_URL"`
}

func applyEnvironmentOverrides(config *Config) error {
	var overrides environmentOverrides
	if err := env.ParseWithOptions(&overrides, env.Options{Prefix: EnvPrefix}); err != nil {
		return err
	}

	if overrides.SiteURL != "" {
		config.Server.SiteURL = overrides.SiteURL
	}

	if overrides.Port != 0 {
		config.Server.Port = overrides.Port
	}

	if overrides.LogLevel != "" {
		config.Log.Level = overrides.LogLevel
	}

	if overrides.KratosPublicURL != "" {
		config.Identity.PublicURL = overrides.KratosPublicURL
	}

	if overrides.KratosAdminURL != "" {
		config.Identity.AdminURL = overrides.KratosAdminURL
	}

	if overrides.SessionSecureFlag != nil {
		config.Sessions.Secure = overrides.SessionSecureFlag
	}

	if len(overrides.TrustedProxies) > 0 {
		config.Server.TrustedProxies = overrides.TrustedProxies
	}

	if overrides.RedisAddress != "" {
		if config.Redis == nil {
			config.Redis = &RedisConfig{}
		}
		config.Redis.Address = overrides.RedisAddress
	}

	if overrides.RedisUsername != "" {
		if config.Redis == nil {
			config.Redis = &RedisConfig{}
		}
		config.Redis.Username = overrides.RedisUsername
	}

	if overrides.RedisPassword != "" {
		if config.Redis == nil {
			config.Redis = &RedisConfig{}
		}
		config.Redis.Password = overrides.RedisPassword
	}

	if overrides.SentinelUsername != "" {
		if config.Redis == nil {
			config.Redis = &RedisConfig{}
		}
		if config.Redis.Sentinel == nil {
			config.Redis.Sentinel = &RedisSentinelConfig{}
		}
		config.Redis.Sentinel.SentinelUsername = overrides.SentinelUsername
	}

	if overrides.SentinelPassword != "" {
		if config.Redis == nil {
			config.Redis = &RedisConfig{}
		}
		if config.Redis.Sentinel == nil {
			config.Redis.Sentinel = &RedisSentinelConfig{}
		}
		config.Redis.Sentinel.SentinelPassword = overrides.SentinelPassword
	}

	// SMARTFLOW_OAUTH_GOOGLE_CLIENT_SECRET and friends, keyed by provider name.
	for i, provider := range config.OAuth.Providers {
		if provider.Name == "" {
			continue
		}

		var providerOverrides oauthProviderOverrides
		prefix := EnvPrefix + "OAUTH_" + strings.ToUpper(provider.Name) + "_"
		if err := env.ParseWithOptions(&providerOverrides, env.Options{Prefix: prefix}); err != nil {
			return err
		}

		if providerOverrides.ClientID != "" {
			config.OAuth.Providers[i].ClientID = providerOverrides.ClientID
		}
		if providerOverrides.ClientSecret != "" {
			config.OAuth.Providers[i].ClientSecret = providerOverrides.ClientSecret
		}
		if providerOverrides.IssuerURL != "" {
			config.OAuth.Providers[i].IssuerURL = providerOverrides.IssuerURL
		}
	}

	return nil
}

func validateConfig(config *Config) error {
	err := config.validateServerConfig()
	if err != nil {
		return err
	}

	err = config.validateLogConfig()
	if err != nil {
		return err
	}

	err = config.validateCORSConfig()
	if err != nil {
		return err
	}

	err = config.validateSessionConfig()
	if err != nil {
		return err
	}

	if config.Sessions.Store == SessionStoreRedis {
		err = config.validateRedisConfig()
		if err != nil {
			return err
		}
	}

	err = config.validateIdentityConfig()
	if err != nil {
		return err
	}

	err = config.validateOAuthConfig()
	if err != nil {
		return err
	}

	err = config.validateRateLimitConfig()
	if err != nil {
		return err
	}

	return nil
}

func (c *Config) validateServerConfig() error {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerConfig.Port
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.SiteURL == "" {
		c.Server.SiteURL = DefaultServerConfig.SiteURL
	}

	if err := validateURL(c.Server.SiteURL, "server.site_url"); err != nil {
		return err
	}
	c.Server.SiteURL = strings.TrimRight(c.Server.SiteURL, "/")

	if c.Server.Debug != nil && c.Server.Debug.Enabled {
		if c.Server.Debug.Host == "" {
			c.Server.Debug.Host = DefaultDebugConfig.Host
		}
		if c.Server.Debug.Port <= 0 || c.Server.Debug.Port >= 65535 {
			c.Server.Debug.Port = DefaultDebugConfig.Port
		}
	}

	networks, err := parseNetworks(c.Server.TrustedProxies)
	if err != nil {
		return fmt.Errorf("server.trusted_proxies: %w", err)
	}
	c.Server.trustedNetworks = networks

	return nil
}

func (c *Config) validateLogConfig() error {
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogConfig.Format
	} else if !isOneOf(c.Log.Format, "text", "json") {
		return fmt.Errorf("invalid log format: %s, options are text or json", c.Log.Format)
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogConfig.Level
	} else if !isOneOf(c.Log.Level, "debug", "info", "warn", "error") {
		return fmt.Errorf("invalid log level: %s, options are debug, info, warn, error", c.Log.Level)
	}

	return nil
}

// LogLevel maps the configured level name onto slog.
func (c *Config) LogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *Config) validateCORSConfig() error {
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{c.Server.SiteURL}
	}
	if len(c.CORS.AllowedMethods) == 0 {
		c.CORS.AllowedMethods = DefaultCORSConfig.AllowedMethods
	}
	if len(c.CORS.AllowedHeaders) == 0 {
		c.CORS.AllowedHeaders = DefaultCORSConfig.AllowedHeaders
	}
	if c.CORS.MaxAgeSeconds == 0 {
		c.CORS.MaxAgeSeconds = DefaultCORSConfig.MaxAgeSeconds
	}

	return nil
}

func (c *Config) validateSessionConfig() error {
	if c.Sessions.Store == "" {
		c.Sessions.Store = DefaultSessionConfig.Store
	} else if !isOneOf(c.Sessions.Store, SessionStoreMemory, SessionStoreRedis) {
		return fmt.Errorf("invalid session store: %s, options are 'memory' or 'redis'", c.Sessions.Store)
	}

	if c.Sessions.DurationSource == "" {
		c.Sessions.DurationSource = DefaultSessionConfig.DurationSource
	} else if !isOneOf(c.Sessions.DurationSource, DurationSourceFixed, DurationSourceProvider) {
		return fmt.Errorf("invalid session duration source: %s, options are 'fixed' or 'provider'", c.Sessions.DurationSource)
	}

	if c.Sessions.Name == "" {
		c.Sessions.Name = DefaultSessionConfig.Name
	}

	if c.Sessions.Lifetime == 0 {
		c.Sessions.Lifetime = DefaultSessionConfig.Lifetime
	} else if c.Sessions.Lifetime < time.Minute {
		return fmt.Errorf("sessions.lifetime cannot be less than 1 minute")
	}

	if c.Sessions.RevalidateInterval < 0 {
		return fmt.Errorf("sessions.revalidate_interval cannot be negative")
	}

	return nil
}

func (c *Config) validateRedisConfig() error {
	if c.Redis == nil {
		return fmt.Errorf("redis configuration is required when sessions.store is redis")
	}

	if c.Redis.Sentinel != nil {
		if c.Redis.Sentinel.MasterName == "" {
			return fmt.Errorf("sentinel master_name is required")
		}
		if len(c.Redis.Sentinel.SentinelAddresses) == 0 {
			return fmt.Errorf("at least one sentinel address is required")
		}
	} else {
		if c.Redis.Address == "" {
			return fmt.Errorf("redis address is required")
		}

		if _, _, err := net.SplitHostPort(c.Redis.Address); err != nil {
			return fmt.Errorf("invalid redis address format (expected host:port): %w", err)
		}
	}

	const maxRedisDB = 15
	if c.Redis.SessionIndex < 0 || c.Redis.SessionIndex > maxRedisDB {
		return fmt.Errorf("redis session_index must be between 0 and %d, got %d", maxRedisDB, c.Redis.SessionIndex)
	}

	return nil
}

func (c *Config) validateIdentityConfig() error {
	if c.Identity.PublicURL == "" {
		c.Identity.PublicURL = DefaultIdentityConfig.PublicURL
	}

	if err := validateURL(c.Identity.PublicURL, "identity.public_url"); err != nil {
		return err
	}

	if c.Identity.AdminURL != "" {
		if err := validateURL(c.Identity.AdminURL, "identity.admin_url"); err != nil {
			return err
		}
	}

	if c.Identity.Timeout <= 0 {
		c.Identity.Timeout = DefaultIdentityConfig.Timeout
	}

	return nil
}

func (c *Config) validateOAuthConfig() error {
	seen := make(map[string]struct{}, len(c.OAuth.Providers))

	for i := range c.OAuth.Providers {
		provider := &c.OAuth.Providers[i]

		if provider.Name == "" {
			return fmt.Errorf("oauth.providers[%d].name is required", i)
		}

		provider.Name = strings.ToLower(provider.Name)
		if _, ok := seen[provider.Name]; ok {
			return fmt.Errorf("oauth.providers[%d].name %q is duplicated", i, provider.Name)
		}
		seen[provider.Name] = struct{}{}

		if provider.ClientID == "" {
			return fmt.Errorf("oauth.providers[%d].client_id is required", i)
		}

		if provider.ClientSecret == "" {
			return fmt.Errorf("oauth.providers[%d].client_secret is required", i)
		}

		if err := validateURL(provider.IssuerURL, fmt.Sprintf("oauth.providers[%d].issuer_url", i)); err != nil {
			return err
		}

		if len(provider.Scopes) == 0 {
			provider.Scopes = DefaultOAuthProviderConfig.Scopes
		}
	}

	return nil
}

func (c *Config) validateRateLimitConfig() error {
	if c.RateLimit.Disabled {
		return nil
	}

	if c.RateLimit.RequestsPerMinute < 0 {
		return fmt.Errorf("rate_limit.requests_per_minute must be positive")
	}

	if c.RateLimit.RequestsPerMinute == 0 {
		c.RateLimit.RequestsPerMinute = DefaultRateLimitConfig.RequestsPerMinute
	}

	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = DefaultRateLimitConfig.Burst
	}

	if c.RateLimit.CleanupInterval <= 0 {
		c.RateLimit.CleanupInterval = DefaultRateLimitConfig.CleanupInterval
	}

	return nil
}

// CallbackURL is the OAuth redirect target registered with every provider.
func (c *Config) CallbackURL() string {
	return c.Server.SiteURL + "/auth/callback"
}

// RecoveryRedirectURL is where password recovery emails send the user back to.
func (c *Config) RecoveryRedirectURL() string {
	return c.Server.SiteURL + "/auth/confirm?type=recovery&next=/reset-password"
}
