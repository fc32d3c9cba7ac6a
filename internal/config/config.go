// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Analytics sinks.
const (
	SinkDB     = "db"
	SinkStream = "stream"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Public origin of profile pages and click links (e.g., https://links.example)
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Session tokens issued by the auth provider
	JWTSecret   string `env:"AUTH_JWT_SECRET,required"`
	JWTIssuer   string `env:"AUTH_JWT_ISSUER" envDefault:""`
	JWTAudience string `env:"AUTH_JWT_AUDIENCE" envDefault:""`

	// Public profile cache
	ProfileCacheTTL  time.Duration `env:"PROFILE_CACHE_TTL" envDefault:"5m"`
	NegativeCacheTTL time.Duration `env:"NEGATIVE_CACHE_TTL" envDefault:"1m"`

	// Analytics
	AnalyticsSink         string        `env:"ANALYTICS_SINK" envDefault:"db"`
	RecordTimeout         time.Duration `env:"RECORD_TIMEOUT" envDefault:"5s"`
	AnalyticsBatchSize    int           `env:"ANALYTICS_BATCH_SIZE" envDefault:"100"`
	AnalyticsBlockTimeout time.Duration `env:"ANALYTICS_BLOCK_TIMEOUT" envDefault:"5s"`
	AnalyticsMaxRetries   int           `env:"ANALYTICS_MAX_RETRIES" envDefault:"5"`
	AnalyticsConsumerID   string        `env:"ANALYTICS_CONSUMER_ID" envDefault:""`

	// Uploads
	UploadDir     string `env:"UPLOAD_DIR" envDefault:"./uploads"`
	UploadBaseURL string `env:"UPLOAD_BASE_URL" envDefault:""`
	UploadMaxSize int64  `env:"UPLOAD_MAX_SIZE" envDefault:"5242880"`

	// Rate limiting
	RateLimitPublicEnabled bool `env:"RATE_LIMIT_PUBLIC_ENABLED" envDefault:"true"`
	RateLimitPublicRPS     int  `env:"RATE_LIMIT_PUBLIC_RPS" envDefault:"20"`
	RateLimitPublicBurst   int  `env:"RATE_LIMIT_PUBLIC_BURST" envDefault:"40"`
	RateLimitOwnerEnabled  bool `env:"RATE_LIMIT_OWNER_ENABLED" envDefault:"true"`
	RateLimitOwnerPerMin   int  `env:"RATE_LIMIT_OWNER_PER_MINUTE" envDefault:"120"`
	RateLimitOwnerBurst    int  `env:"RATE_LIMIT_OWNER_BURST" envDefault:"30"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://*.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes for JSON endpoints (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// PublicBaseURL is BaseURL without a trailing slash.
func (c *Config) PublicBaseURL() string {
	return strings.TrimRight(c.BaseURL, "/")
}

// UploadURL is the URL prefix uploaded images are served from. It defaults
// to the /static/ route of this server.
func (c *Config) UploadURL() string {
	if c.UploadBaseURL != "" {
		return strings.TrimRight(c.UploadBaseURL, "/")
	}
	return c.PublicBaseURL() + "/static"
}

// Validate checks values the env tags cannot express.
func (c *Config) Validate() error {
	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("AUTH_JWT_SECRET must be at least 16 characters")
	}
	if c.AnalyticsSink != SinkDB && c.AnalyticsSink != SinkStream {
		return fmt.Errorf("ANALYTICS_SINK must be %q or %q, got %q", SinkDB, SinkStream, c.AnalyticsSink)
	}
	if c.UploadMaxSize <= 0 {
		return fmt.Errorf("UPLOAD_MAX_SIZE must be positive")
	}
	if c.RecordTimeout <= 0 {
		return fmt.Errorf("RECORD_TIMEOUT must be positive")
	}
	return nil
}

// Load parses environment variables and returns a validated Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.AnalyticsSink = strings.ToLower(strings.TrimSpace(cfg.AnalyticsSink))
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
