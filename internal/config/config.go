package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/ktecheletronicos/loja/pkg/config"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// Redis
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Cart TTL in hours (default: 30h, matching the catalog cache)
	CartTTL int `env:"CART_TTL_HOURS" envDefault:"30"`

	// Kafka. Leave brokers empty to run without event publishing.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"" envSeparator:","`

	// Catalog feed
	CatalogFeedURL         string        `env:"CATALOG_FEED_URL,required"`
	CatalogRefreshInterval time.Duration `env:"CATALOG_REFRESH_INTERVAL" envDefault:"5m"`
	CatalogCacheTTL        time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"30h"`

	// Routing and geocoding upstreams
	OSRMBaseURL        string        `env:"OSRM_BASE_URL" envDefault:"https://router.project-osrm.org"`
	GeocodePrimaryURL  string        `env:"GEOCODE_PRIMARY_URL" envDefault:""`
	GeocodeFallbackURL string        `env:"GEOCODE_FALLBACK_URL" envDefault:"https://api.bigdatacloud.net/data/reverse-geocode-client"`
	GeocodeTimeout     time.Duration `env:"GEOCODE_TIMEOUT" envDefault:"10s"`
	TelemetryURL       string        `env:"LOCATION_TELEMETRY_URL" envDefault:""`
	AddressDebounce    time.Duration `env:"ADDRESS_DEBOUNCE" envDefault:"500ms"`

	// Store reference point (Teresina-PI by default)
	ReferenceLat float64 `env:"REFERENCE_LAT" envDefault:"-5.110777"`
	ReferenceLng float64 `env:"REFERENCE_LNG" envDefault:"-42.742837"`

	// Delivery fee
	FeeBase           float64 `env:"DELIVERY_FEE_BASE" envDefault:"8.0"`
	FeePerKm          float64 `env:"DELIVERY_FEE_PER_KM" envDefault:"2.0"`
	FeeIncludedRadius float64 `env:"DELIVERY_INCLUDED_RADIUS_KM" envDefault:"5.0"`
	FeeMaxRadius      float64 `env:"DELIVERY_MAX_RADIUS_KM" envDefault:"0"`

	// Order intake
	OrderWebhookURL string `env:"ORDER_WEBHOOK_URL" envDefault:""`
	WhatsAppPhone   string `env:"WHATSAPP_PHONE" envDefault:"558688519865"`

	// CORS
	CORSOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"" envSeparator:","`

	// Per-IP rate limiting. Set RPS to 0 to disable.
	RateLimitRPS   int `env:"RATE_LIMIT_RPS" envDefault:"50"`
	RateLimitBurst int `env:"RATE_LIMIT_BURST" envDefault:"100"`

	// Profiling endpoints are limited to these networks.
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.1/32,::1/128" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"0.1"`
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

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.CartTTL < 1 {
		return fmt.Errorf("CART_TTL_HOURS must be positive, got %d", c.CartTTL)
	}
	if c.FeeBase < 0 || c.FeePerKm < 0 {
		return fmt.Errorf("delivery fee values must not be negative")
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("rate limit values must not be negative")
	}
	if c.OTELSampleRate < 0.0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}
