package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the application configuration.
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Server      ServerConfig      `mapstructure:"server"`
	PriceSource PriceSourceConfig `mapstructure:"pricesource"`
	Pricing     PricingConfig     `mapstructure:"pricing"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Breaker     BreakerConfig     `mapstructure:"breaker"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	Directory   DirectoryConfig   `mapstructure:"directory"`
	DedupWindow time.Duration     `mapstructure:"dedup_window"`
	LogLevel    string            `mapstructure:"log_level"`
}

// AppConfig holds application metadata.
type AppConfig struct {
	Env      string `mapstructure:"env"`
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
	Version  string `mapstructure:"version"`
	Name     string `mapstructure:"name"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// PriceSourceConfig configures the upstream text-completion price source.
type PriceSourceConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	APIKey    string        `mapstructure:"api_key"`
	Model     string        `mapstructure:"model"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// PricingConfig configures the resolution pipeline.
type PricingConfig struct {
	BatchSize       int           `mapstructure:"batch_size"`
	UpstreamTimeout time.Duration `mapstructure:"upstream_timeout"`
	PortionFraction float64       `mapstructure:"portion_fraction"`
}

// CacheConfig configures the price cache. Backend selects memory, redis or
// postgres.
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Backend         string        `mapstructure:"backend"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	PostgresDSN     string        `mapstructure:"postgres_dsn"`
	TTL             time.Duration `mapstructure:"ttl"`
	StaleWindow     time.Duration `mapstructure:"stale_window"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// BreakerConfig configures circuit breakers for upstream services.
type BreakerConfig struct {
	FailureThreshold int           `mapstructure:"failure_threshold"`
	SuccessThreshold int           `mapstructure:"success_threshold"`
	Timeout          time.Duration `mapstructure:"timeout"`
	MonitoringPeriod time.Duration `mapstructure:"monitoring_period"`
}

// RateLimitConfig configures both the API middleware limiter and the upstream
// call limiter.
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// DirectoryConfig configures the optional store-directory (address lookup)
// collaborator.
type DirectoryConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LoadConfig loads configuration from .env and environment variables.
func LoadConfig() (*Config, error) {
	// .env is optional outside development.
	_ = godotenv.Load()

	setDefaults()

	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.BindEnv("pricesource.api_key", "PRICE_SOURCE_API_KEY")
	viper.BindEnv("pricesource.model", "PRICE_SOURCE_MODEL")
	viper.BindEnv("pricesource.base_url", "PRICE_SOURCE_BASE_URL")
	viper.BindEnv("cache.enabled", "CACHE_ENABLED")
	viper.BindEnv("cache.backend", "CACHE_BACKEND")
	viper.BindEnv("cache.redis_addr", "CACHE_REDIS_ADDR")
	viper.BindEnv("cache.postgres_dsn", "CACHE_POSTGRES_DSN")
	viper.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	viper.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	viper.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	viper.BindEnv("dedup_window", "DEDUP_WINDOW")
	viper.BindEnv("log_level", "LOG_LEVEL")

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Logger is not initialized yet, so plain prints here.
	fmt.Println("Loading configuration",
		"price_source_api_key:", maskAPIKey(viper.GetString("pricesource.api_key")),
		"price_source_model:", viper.GetString("pricesource.model"))

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// maskAPIKey shows only the first and last 4 characters of a key.
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func setDefaults() {
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.name", "grocery-pricing-engine")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	viper.SetDefault("pricesource.base_url", "https://openrouter.ai/api/v1")
	viper.SetDefault("pricesource.model", "perplexity/sonar")
	viper.SetDefault("pricesource.max_tokens", 2048)
	viper.SetDefault("pricesource.timeout", "30s")

	// 9.5s per batch keeps six sequential batches under the request
	// deadline; batches stay at 2 ingredients so a single completion fits
	// the token limit.
	viper.SetDefault("pricing.batch_size", 2)
	viper.SetDefault("pricing.upstream_timeout", "9500ms")
	viper.SetDefault("pricing.portion_fraction", 0.25)

	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.backend", "memory")
	viper.SetDefault("cache.redis_addr", "localhost:6379")
	viper.SetDefault("cache.postgres_dsn", "")
	viper.SetDefault("cache.ttl", "48h")
	viper.SetDefault("cache.stale_window", "72h")
	viper.SetDefault("cache.cleanup_interval", "1h")

	viper.SetDefault("breaker.failure_threshold", 3)
	viper.SetDefault("breaker.success_threshold", 2)
	viper.SetDefault("breaker.timeout", "30s")
	viper.SetDefault("breaker.monitoring_period", "60s")

	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests", 50)
	viper.SetDefault("rate_limit.window", "1m")

	viper.SetDefault("directory.enabled", false)
	viper.SetDefault("directory.base_url", "")
	viper.SetDefault("directory.timeout", "3s")

	viper.SetDefault("dedup_window", "1s")
}

func validateConfig(config *Config) error {
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	if config.Pricing.BatchSize <= 0 {
		return fmt.Errorf("invalid pricing batch size")
	}
	if config.Pricing.UpstreamTimeout <= 0 {
		return fmt.Errorf("invalid pricing upstream timeout")
	}
	if config.Pricing.PortionFraction <= 0 || config.Pricing.PortionFraction > 1 {
		return fmt.Errorf("invalid pricing portion fraction")
	}

	if config.Cache.Enabled {
		switch config.Cache.Backend {
		case "memory", "redis", "postgres":
		default:
			return fmt.Errorf("invalid cache backend %q", config.Cache.Backend)
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
		if config.Cache.StaleWindow < config.Cache.TTL {
			return fmt.Errorf("cache stale window must be >= ttl")
		}
		if config.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
	}

	if config.Breaker.FailureThreshold <= 0 || config.Breaker.SuccessThreshold <= 0 {
		return fmt.Errorf("invalid breaker thresholds")
	}
	if config.Breaker.Timeout <= 0 || config.Breaker.MonitoringPeriod <= 0 {
		return fmt.Errorf("invalid breaker timing")
	}

	return nil
}
