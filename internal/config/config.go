// Package config loads server settings from defaults, an optional .env
// file, and process environment variables, in that order of increasing
// precedence.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/akashmaji946/redikv/internal/logging"
)

// Config holds the server's runtime settings.
type Config struct {
	Port        int
	LogLevel    logging.Level
	MetricsAddr string // empty disables the metrics listener
}

const (
	defaultPort        = 6379
	defaultMetricsAddr = ":9121"
)

// Load builds a Config from defaults, an optional .env file, then process
// environment variables, in that order of increasing precedence.
func Load() Config {
	// A missing .env file is expected in most deployments; godotenv.Load
	// returning an error here is not fatal.
	_ = godotenv.Load()

	cfg := Config{
		Port:        defaultPort,
		LogLevel:    logging.LevelInfo,
		MetricsAddr: defaultMetricsAddr,
	}

	if v := os.Getenv("REDIKV_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Port = n
		}
	}
	if v := os.Getenv("REDIKV_LOG_LEVEL"); v != "" {
		cfg.LogLevel = logging.ParseLevel(v)
	}
	if v, ok := os.LookupEnv("REDIKV_METRICS_ADDR"); ok {
		cfg.MetricsAddr = v
	}

	return cfg
}
