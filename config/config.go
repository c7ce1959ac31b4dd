package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Places    PlacesConfig
	Cache     CacheConfig
	Store     StoreConfig
	RateLimit RateLimitConfig
	Search    SearchConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// PlacesConfig holds place-data provider configuration
type PlacesConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// CacheConfig holds cache-related configuration. Each search category owns
// its own TTL, tuned for a high read/write ratio against provider cost.
type CacheConfig struct {
	Type         string        `mapstructure:"type"`          // "memory" or "redis"
	RedisURL     string        `mapstructure:"redis_url"`
	NearbyTTL    time.Duration `mapstructure:"nearby_ttl"`
	DetailsTTL   time.Duration `mapstructure:"details_ttl"`
	TextTTL      time.Duration `mapstructure:"text_ttl"`
	CityTTL      time.Duration `mapstructure:"city_ttl"`
	ReapInterval time.Duration `mapstructure:"reap_interval"` // memory backend only
}

// StoreConfig holds the venue store boundary configuration
type StoreConfig struct {
	Type        string `mapstructure:"type"` // "memory" or "postgres"
	PostgresDSN string `mapstructure:"postgres_dsn"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP             int           `mapstructure:"per_ip"`              // requests/sec per client IP
	ProviderPerMinute int           `mapstructure:"provider_per_minute"` // fixed-window ceiling
	ProviderCooldown  time.Duration `mapstructure:"provider_cooldown"`   // sleep after a provider 429
}

// SearchConfig holds discovery and ranking configuration. GazetteerFile
// optionally replaces the embedded city dataset.
type SearchConfig struct {
	DefaultRadiusMeters int    `mapstructure:"default_radius_meters"`
	MaxResults          int    `mapstructure:"max_results"`
	MaxQueryVariants    int    `mapstructure:"max_query_variants"`
	GazetteerFile       string `mapstructure:"gazetteer_file"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/vicino/")

	// Environment variable settings
	v.SetEnvPrefix("VICINO")
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Provider defaults
	v.SetDefault("places.base_url", "https://maps.googleapis.com/maps/api/place")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.nearby_ttl", "24h")
	v.SetDefault("cache.details_ttl", "168h") // 7 days
	v.SetDefault("cache.text_ttl", "12h")
	v.SetDefault("cache.city_ttl", "1h")
	v.SetDefault("cache.reap_interval", "10m")

	// Store defaults
	v.SetDefault("store.type", "memory")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.provider_per_minute", 60)
	v.SetDefault("ratelimit.provider_cooldown", "5s")

	// Search defaults
	v.SetDefault("search.default_radius_meters", 1500)
	v.SetDefault("search.max_results", 20)
	v.SetDefault("search.max_query_variants", 3)
	v.SetDefault("search.gazetteer_file", "")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Places.APIKey == "" {
		return fmt.Errorf("places API key is required (set VICINO_PLACES_API_KEY)")
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	if config.Store.Type != "memory" && config.Store.Type != "postgres" {
		return fmt.Errorf("store type must be 'memory' or 'postgres', got: %s", config.Store.Type)
	}

	if config.Store.Type == "postgres" && config.Store.PostgresDSN == "" {
		return fmt.Errorf("Postgres DSN is required when store type is 'postgres'")
	}

	if config.RateLimit.ProviderPerMinute <= 0 {
		return fmt.Errorf("provider rate ceiling must be positive, got: %d", config.RateLimit.ProviderPerMinute)
	}

	return nil
}
