// Package config loads application configuration from file and environment
// and bootstraps the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Notion  NotionConfig  `yaml:"notion" mapstructure:"notion"`
	Geocode GeocodeConfig `yaml:"geocode" mapstructure:"geocode"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// NotionConfig holds Notion API credentials and the default database ID.
type NotionConfig struct {
	Token     string  `yaml:"token" mapstructure:"token"`
	Database  string  `yaml:"database" mapstructure:"database"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// GeocodeConfig holds Nominatim settings.
type GeocodeConfig struct {
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	UserAgent string  `yaml:"user_agent" mapstructure:"user_agent"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PINDROP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Token and database default to empty so the keys are
	// registered for env-only configuration.
	v.SetDefault("notion.token", "")
	v.SetDefault("notion.database", "")
	v.SetDefault("notion.rate_limit", 3)
	v.SetDefault("geocode.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocode.user_agent", "pindrop/1.0 (+https://github.com/pindrop/pindrop)")
	v.SetDefault("geocode.rate_limit", 1)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
