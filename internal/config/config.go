package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported values for AUTH_PROVIDER.
const (
	ProviderSupabase = "supabase"
	ProviderSurreal  = "surreal"
	ProviderMemory   = "memory"
)

const (
	defaultAddr           = ":8080"
	defaultAuthProvider   = ProviderMemory
	defaultSurrealAccess  = "account"
	defaultSuccessDelay   = 500 * time.Millisecond
	defaultSessionTimeout = 5 * time.Second
	defaultRateLimit      = 10
)

// Provider exposes read-only access to the application configuration.
// Handlers and services depend on this interface rather than on *Config so
// tests can substitute their own values.
type Provider interface {
	GetAppAddr() string
	GetSessionSecret() string
	GetSecureCookies() bool
	GetAuthProvider() string
	GetSupabaseURL() string
	GetSupabaseAnonKey() string
	GetSurrealURL() string
	GetSurrealNs() string
	GetSurrealDb() string
	GetSurrealAccess() string
	GetSuccessDelay() time.Duration
	GetSessionTimeout() time.Duration
	GetRateLimit() int
	GetLogFormat() string
	GetLogLevel() string
}

// Config holds all configuration for the application.
type Config struct {
	AppAddr        string
	SessionSecret  string
	SecureCookies  bool
	AuthProvider   string
	SupabaseURL    string
	SupabaseKey    string
	SurrealURL     string
	SurrealNs      string
	SurrealDb      string
	SurrealAccess  string
	SuccessDelay   time.Duration
	SessionTimeout time.Duration
	RateLimit      int
	LogFormat      string
	LogLevel       string
}

var _ Provider = (*Config)(nil)

// New loads configuration from the environment, reading a .env file first if
// one exists. Startup cannot continue with an invalid configuration, so any
// error is fatal.
func New() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg, err := FromEnv()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

// FromEnv builds a Config from the current environment without touching any
// .env file.
func FromEnv() (*Config, error) {
	cfg := &Config{
		AppAddr:       envOr("APP_ADDR", defaultAddr),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		AuthProvider:  strings.ToLower(envOr("AUTH_PROVIDER", defaultAuthProvider)),
		SupabaseURL:   strings.TrimRight(os.Getenv("SUPABASE_URL"), "/"),
		SupabaseKey:   os.Getenv("SUPABASE_ANON_KEY"),
		SurrealURL:    os.Getenv("SURREAL_URL"),
		SurrealNs:     os.Getenv("SURREAL_NS"),
		SurrealDb:     os.Getenv("SURREAL_DB"),
		SurrealAccess: envOr("SURREAL_ACCESS", defaultSurrealAccess),
		LogFormat:     envOr("LOG_FORMAT", "text"),
		LogLevel:      envOr("LOG_LEVEL", "debug"),
	}

	var err error
	if cfg.SecureCookies, err = envBool("SECURE_COOKIES", false); err != nil {
		return nil, err
	}
	if cfg.SuccessDelay, err = envDuration("AUTH_SUCCESS_DELAY", defaultSuccessDelay); err != nil {
		return nil, err
	}
	if cfg.SessionTimeout, err = envDuration("AUTH_SESSION_TIMEOUT", defaultSessionTimeout); err != nil {
		return nil, err
	}
	if cfg.RateLimit, err = envInt("RATE_LIMIT_PER_MINUTE", defaultRateLimit); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.SessionSecret) < 16 {
		return fmt.Errorf("SESSION_SECRET must be set to at least 16 characters")
	}
	switch c.AuthProvider {
	case ProviderSupabase:
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			return fmt.Errorf("AUTH_PROVIDER is %q but SUPABASE_URL or SUPABASE_ANON_KEY is not set", c.AuthProvider)
		}
	case ProviderSurreal:
		if c.SurrealURL == "" || c.SurrealNs == "" || c.SurrealDb == "" {
			return fmt.Errorf("AUTH_PROVIDER is %q but SURREAL_URL, SURREAL_NS or SURREAL_DB is not set", c.AuthProvider)
		}
	case ProviderMemory:
	default:
		return fmt.Errorf("unknown AUTH_PROVIDER: %s", c.AuthProvider)
	}
	if c.RateLimit <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func (c *Config) GetAppAddr() string               { return c.AppAddr }
func (c *Config) GetSessionSecret() string         { return c.SessionSecret }
func (c *Config) GetSecureCookies() bool           { return c.SecureCookies }
func (c *Config) GetAuthProvider() string          { return c.AuthProvider }
func (c *Config) GetSupabaseURL() string           { return c.SupabaseURL }
func (c *Config) GetSupabaseAnonKey() string       { return c.SupabaseKey }
func (c *Config) GetSurrealURL() string            { return c.SurrealURL }
func (c *Config) GetSurrealNs() string             { return c.SurrealNs }
func (c *Config) GetSurrealDb() string             { return c.SurrealDb }
func (c *Config) GetSurrealAccess() string         { return c.SurrealAccess }
func (c *Config) GetSuccessDelay() time.Duration   { return c.SuccessDelay }
func (c *Config) GetSessionTimeout() time.Duration { return c.SessionTimeout }
func (c *Config) GetRateLimit() int                { return c.RateLimit }
func (c *Config) GetLogFormat() string             { return c.LogFormat }
func (c *Config) GetLogLevel() string              { return c.LogLevel }
