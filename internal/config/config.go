// Package config provides configuration management for the dicebear-exporter commands.
// Configuration is loaded from environment variables with sensible defaults;
// command line flags override it.
package config

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"

	"github.com/kataras/dicebear-exporter/internal/logging"
)

const (
	// Default values
	DefaultAddr      = "127.0.0.1:8080"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"

	// Environment variable names
	EnvFigmaToken = "DICEBEAR_EXPORTER_FIGMA_TOKEN"
	EnvLogLevel   = "DICEBEAR_EXPORTER_LOG_LEVEL"
	EnvLogFormat  = "DICEBEAR_EXPORTER_LOG_FORMAT"
	EnvAddr       = "DICEBEAR_EXPORTER_ADDR"
)

// Config holds the settings shared by the build and serve commands.
type Config struct {
	FigmaToken string
	LogLevel   string
	LogFormat  string
	Addr       string
}

// New creates a Config with defaults and environment variable overrides.
func New() (*Config, error) {
	cfg := &Config{
		FigmaToken: os.Getenv(EnvFigmaToken),
		LogLevel:   DefaultLogLevel,
		LogFormat:  DefaultLogFormat,
		Addr:       DefaultAddr,
	}

	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.LogLevel = ll
	}
	if lf := os.Getenv(EnvLogFormat); lf != "" {
		cfg.LogFormat = lf
	}
	if addr := os.Getenv(EnvAddr); addr != "" {
		cfg.Addr = addr
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid %s: %w", EnvLogLevel, err)
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid %s: must be text or json", EnvLogFormat)
	}

	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return fmt.Errorf("invalid %s: %w", EnvAddr, err)
	}

	return nil
}

// Level returns the parsed log level. Call after Validate.
func (c *Config) Level() slog.Level {
	lvl, _ := logging.ParseLevel(c.LogLevel)
	return lvl
}
