package config

import (
	"net"
	"time"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	CORS      CORSConfig      `yaml:"cors"`
	Sessions  SessionConfig   `yaml:"sessions"`
	Redis     *RedisConfig    `yaml:"redis"`
	Identity  IdentityConfig  `yaml:"identity"`
	OAuth     OAuthConfig     `yaml:"oauth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type ServerConfig struct {
	Port    int                `yaml:"port"`
	SiteURL string             `yaml:"site_url"`
	Debug   *ServerDebugConfig `yaml:"debug"`
	// TrustedProxies lists the CIDRs (or bare IPs) whose forwarding headers are believed.
	TrustedProxies []string `yaml:"trusted_proxies"`

	trustedNetworks []*net.IPNet
}

// TrustedProxyNetworks returns the parsed trusted_proxies. It is empty until the config is validated.
func (s ServerConfig) TrustedProxyNetworks() []*net.IPNet {
	return s.trustedNetworks
}

var DefaultServerConfig = ServerConfig{
	Port:    3000,
	SiteURL: "http://localhost:3000",
}

type ServerDebugConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

var DefaultDebugConfig = ServerDebugConfig{
	Enabled: false,
	Host:    "localhost",
	Port:    5123,
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

var DefaultLogConfig = LogConfig{
	Level:  "info",
	Format: "text",
}

type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins"`
	AllowedMethods   []string `yaml:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers"`
	ExposedHeaders   []string `yaml:"exposed_headers"`
	AllowCredentials bool     `yaml:"allow_credentials"`
	MaxAgeSeconds    int      `yaml:"max_age_seconds"`
}

var DefaultCORSConfig = CORSConfig{
	AllowedOrigins: []string{"http://localhost:3000"},
	AllowedMethods: []string{"GET", "POST", "OPTIONS"},
	AllowedHeaders: []string{"*"},
	MaxAgeSeconds:  300,
}

const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"

	DurationSourceFixed    = "fixed"
	DurationSourceProvider = "provider"
)

type SessionConfig struct {
	Store          string        `yaml:"store"`
	DurationSource string        `yaml:"duration_source"`
	Lifetime       time.Duration `yaml:"lifetime"`
	Name           string        `yaml:"name"`
	Secure         *bool         `yaml:"secure"`
	Revalidate     bool          `yaml:"revalidate"`
	// RevalidateInterval caches a successful provider check for this long. Zero checks on every request.
	RevalidateInterval time.Duration `yaml:"revalidate_interval"`
}

var DefaultSessionConfig = SessionConfig{
	Store:          SessionStoreMemory,
	DurationSource: DurationSourceProvider,
	Lifetime:       24 * time.Hour,
	Name:           "smartflow_session",
}

type RedisConfig struct {
	Address      string               `yaml:"address"`
	Username     string               `yaml:"username"`
	Password     string               `yaml:"password"`
	Sentinel     *RedisSentinelConfig `yaml:"sentinel"`
	SessionIndex int                  `yaml:"session_index"`
}

type RedisSentinelConfig struct {
	MasterName        string   `yaml:"master_name"`
	SentinelAddresses []string `yaml:"addresses"`
	SentinelPassword  string   `yaml:"password"`
	SentinelUsername  string   `yaml:"username"`
}

// IdentityConfig points at the Ory Kratos public (and optionally admin) API.
type IdentityConfig struct {
	PublicURL string        `yaml:"public_url"`
	AdminURL  string        `yaml:"admin_url"`
	Timeout   time.Duration `yaml:"timeout"`
}

var DefaultIdentityConfig = IdentityConfig{
	PublicURL: "http://localhost:4433",
	Timeout:   10 * time.Second,
}

type OAuthConfig struct {
	Providers []OAuthProviderConfig `yaml:"providers"`
}

type OAuthProviderConfig struct {
	Name         string   `yaml:"name"`
	IssuerURL    string   `yaml:"issuer_url"`
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	Scopes       []string `yaml:"scopes"`
}

var DefaultOAuthProviderConfig = OAuthProviderConfig{
	Scopes: []string{"openid", "profile", "email"},
}

type RateLimitConfig struct {
	Disabled          bool          `yaml:"disabled"`
	RequestsPerMinute float64       `yaml:"requests_per_minute"`
	Burst             int           `yaml:"burst"`
	CleanupInterval   time.Duration `yaml:"cleanup_interval"`
}

var DefaultRateLimitConfig = RateLimitConfig{
	RequestsPerMinute: 10,
	Burst:             5,
	CleanupInterval:   5 * time.Minute,
}

// SecureCookie reports whether the session cookie carries the Secure attribute. Defaults to true.
func (s SessionConfig) SecureCookie() bool {
	return s.Secure == nil || *s.Secure
}
