package config

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type Config struct {
	Database struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`
	Backend struct {
		BaseURL  string `mapstructure:"base_url"`
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
		Timeout  string `mapstructure:"timeout"` // Go duration string like "30s", "1m", etc.
	} `mapstructure:"backend"`
	LogLevel string `mapstructure:"log_level"`
	Cache    struct {
		Provider      string `mapstructure:"provider"` // "memory" or "redis"
		Size          int    `mapstructure:"size"`     // Maximum number of entries in the LRU cache
		TTL           string `mapstructure:"ttl"`      // Go duration string like "1h", "24h", etc.
		RedisAddress  string `mapstructure:"redis_address"`
		RedisPassword string `mapstructure:"redis_password"`
		RedisDB       int    `mapstructure:"redis_db"`
	} `mapstructure:"cache"`
	Metrics struct {
		Enabled bool   `mapstructure:"enabled"`
		Address string `mapstructure:"address"`
		Port    int    `mapstructure:"port"`
	} `mapstructure:"metrics"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// BackendTimeout parses the configured backend timeout, falling back to 30s
// when unset or invalid.
func (c *Config) BackendTimeout() time.Duration {
	if c.Backend.Timeout != "" {
		if d, err := time.ParseDuration(c.Backend.Timeout); err == nil {
			return d
		}
	}
	return 30 * time.Second
}

// CacheTTL parses the configured cache TTL, falling back to 1h.
func (c *Config) CacheTTL() time.Duration {
	if c.Cache.TTL != "" {
		if d, err := time.ParseDuration(c.Cache.TTL); err == nil {
			return d
		}
	}
	return time.Hour
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variable support
	viper.AutomaticEnv()
	viper.SetEnvPrefix("TRRCMS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	_ = viper.BindEnv("log_level", "LOG_LEVEL")

	// Set defaults
	viper.SetDefault("database.path", "trrcms.db")
	viper.SetDefault("backend.base_url", "http://localhost:8080")
	viper.SetDefault("backend.timeout", "30s")
	viper.SetDefault("cache.provider", "memory")
	viper.SetDefault("cache.size", 1024)
	viper.SetDefault("cache.ttl", "1h")
	viper.SetDefault("metrics.enabled", false)
	viper.SetDefault("metrics.address", "localhost")
	viper.SetDefault("metrics.port", 9090)

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// NewLogger builds the application logger with the level taken from config.
func NewLogger(cfg *Config) zerolog.Logger {
	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:     os.Stdout,
		NoColor: false,
	}).With().Timestamp().Logger()

	level := zerolog.InfoLevel // default
	if cfg.LogLevel != "" {
		if parsedLevel, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
			level = parsedLevel
		} else {
			logger.Warn().Str("invalid_level", cfg.LogLevel).Msg("Invalid log level, using default 'info'")
		}
	}

	return logger.Level(level)
}
