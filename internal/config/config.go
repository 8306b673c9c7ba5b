package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	pkgconfig "github.com/utafrali/storefront/pkg/config"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort        int           `env:"STOREFRONT_HTTP_PORT" envDefault:"8010"`
	RequestTimeout  time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"15s"`

	// Redis
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Cart TTL in hours (default: 7 days).
	CartTTL int `env:"CART_TTL_HOURS" envDefault:"168"`
	// An untouched checkout step expires after this and reads as closed.
	CheckoutStepTTL time.Duration `env:"CHECKOUT_STEP_TTL" envDefault:"30m"`
	// In-memory cart stores unused for this long are evicted.
	CartIdleTimeout time.Duration `env:"CART_IDLE_TIMEOUT" envDefault:"30m"`

	// Remote catalog
	CatalogBaseURL    string        `env:"CATALOG_BASE_URL" envDefault:"http://localhost:8001/api/catalog_system/pub/products/search"`
	CatalogTimeout    time.Duration `env:"CATALOG_TIMEOUT" envDefault:"10s"`
	CatalogMaxRetries int           `env:"CATALOG_MAX_RETRIES" envDefault:"3"`
	CatalogListTTL    time.Duration `env:"CATALOG_LIST_TTL" envDefault:"5m"`
	CatalogSearchTTL  time.Duration `env:"CATALOG_SEARCH_TTL" envDefault:"2m"`
	CatalogDetailTTL  time.Duration `env:"CATALOG_DETAIL_TTL" envDefault:"5m"`
	// Browser cache lifetime of catalog responses. Zero disables the header.
	CatalogMaxAge time.Duration `env:"CATALOG_HTTP_MAX_AGE" envDefault:"60s"`

	// Circuit breaker around the catalog
	CBMaxRequests  uint32  `env:"CB_MAX_REQUESTS" envDefault:"1"`
	CBInterval     int     `env:"CB_INTERVAL_SECONDS" envDefault:"60"`
	CBTimeout      int     `env:"CB_TIMEOUT_SECONDS" envDefault:"30"`
	CBFailureRatio float64 `env:"CB_FAILURE_RATIO" envDefault:"0.5"`
	CBMinRequests  uint32  `env:"CB_MIN_REQUESTS" envDefault:"5"`

	// Kafka
	KafkaBrokers               []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	EventsEnabled              bool     `env:"EVENTS_ENABLED" envDefault:"false"`
	CatalogInvalidationEnabled bool     `env:"CATALOG_INVALIDATION_ENABLED" envDefault:"false"`
	ConsumerGroup              string   `env:"KAFKA_CONSUMER_GROUP" envDefault:"storefront"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Public API protection
	RateLimitRPS       float64  `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst     int      `env:"RATE_LIMIT_BURST" envDefault:"40"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// CartTTLDuration returns the cart TTL as a duration.
func (c *Config) CartTTLDuration() time.Duration {
	return time.Duration(c.CartTTL) * time.Hour
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.CartTTL < 1 {
		return fmt.Errorf("CART_TTL_HOURS must be positive, got %d", c.CartTTL)
	}
	if c.CheckoutStepTTL <= 0 {
		return errors.New("CHECKOUT_STEP_TTL must be positive")
	}
	if c.CartIdleTimeout <= 0 {
		return errors.New("CART_IDLE_TIMEOUT must be positive")
	}

	u, err := url.Parse(c.CatalogBaseURL)
	if c.CatalogBaseURL == "" || err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("CATALOG_BASE_URL must be an absolute URL, got %q", c.CatalogBaseURL)
	}
	if c.CatalogMaxRetries < 0 {
		return fmt.Errorf("CATALOG_MAX_RETRIES must not be negative, got %d", c.CatalogMaxRetries)
	}
	for name, ttl := range map[string]time.Duration{
		"CATALOG_LIST_TTL":   c.CatalogListTTL,
		"CATALOG_SEARCH_TTL": c.CatalogSearchTTL,
		"CATALOG_DETAIL_TTL": c.CatalogDetailTTL,
	} {
		if ttl <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, ttl)
		}
	}

	if c.CBFailureRatio <= 0 || c.CBFailureRatio > 1 {
		return fmt.Errorf("CB_FAILURE_RATIO must be in (0, 1], got %f", c.CBFailureRatio)
	}
	if (c.EventsEnabled || c.CatalogInvalidationEnabled) && len(c.KafkaBrokers) == 0 {
		return errors.New("KAFKA_BROKERS is required when events are enabled")
	}
	if c.OTELSampleRate < 0.0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must not be negative, got %f", c.RateLimitRPS)
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST must be at least 1, got %d", c.RateLimitBurst)
	}
	return nil
}
