package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds settings that are not part of a query
type Config struct {
	Backend BackendConfig
	Log     LogConfig
	PostGIS PostGISConfig
}

// BackendConfig describes the imagery service
type BackendConfig struct {
	URL            string
	Token          string
	Timeout        time.Duration
	FilterProperty string `mapstructure:"filter_property"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// PostGISConfig enables the database sink when DSN is set
type PostGISConfig struct {
	DSN   string
	Table string
}

// Load reads configuration from file and environment variables. An empty
// path searches the default locations; a missing default file is fine.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("gee-subset")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.gee-subset")
	}

	v.SetDefault("backend.url", "https://earthengine.googleapis.com")
	v.SetDefault("backend.token", "")
	v.SetDefault("backend.timeout", "0s")
	v.SetDefault("backend.filter_property", "transmitterReceiverPolarisation")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("postgis.dsn", "")
	v.SetDefault("postgis.table", "gee_subset")

	v.SetEnvPrefix("GEE_SUBSET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// NewLogger creates a slog.Logger writing to w. Verbose forces debug level.
func (c *Config) NewLogger(w io.Writer, verbose bool) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	switch strings.ToLower(c.Log.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}
