// Package config provides application configuration management with support
// for command-line flags, environment variables, and .env files.
package config

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Storage StorageConfig
	Labels  LabelsConfig
	Server  ServerConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// StorageConfig holds persistence configuration.
type StorageConfig struct {
	// DataPath holds the SQLite database and the Badger cache directory.
	DataPath string
}

// DatabasePath returns the SQLite database file.
func (s StorageConfig) DatabasePath() string {
	return filepath.Join(s.DataPath, "productlabel.db")
}

// CachePath returns the Badger cache directory.
func (s StorageConfig) CachePath() string {
	return filepath.Join(s.DataPath, "cache")
}

// LabelsConfig holds label resolution configuration.
type LabelsConfig struct {
	// MediaBaseURL is prepended to label image file names.
	MediaBaseURL string
	// SingleStoreMode treats every label as bound to the default store.
	SingleStoreMode bool
	// CacheNamespace prefixes the per-store catalog cache keys.
	CacheNamespace string
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port               string        // Server port (default: 8080)
	ReadTimeout        time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout       time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout        time.Duration // HTTP idle timeout (default: 60s)
	CORSAllowedOrigins []string      // default: *
	AdminRateLimit     float64       // Admin write requests per second per client (default: 5)
}

// LoadConfig loads configuration from the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load loads configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("productlabel", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := fs.String("data-path", "", "Directory for the database and cache")
	mediaBaseURL := fs.String("media-base-url", "", "Base URL of label images")
	singleStore := fs.String("single-store-mode", "", "Treat all labels as default scope (default: false)")
	cacheNamespace := fs.String("cache-namespace", "", "Catalog cache key prefix")
	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	corsOrigins := fs.String("cors-allowed-origins", "", "Comma-separated CORS origins (default: *)")
	adminRateLimit := fs.String("admin-rate-limit", "", "Admin writes per second per client (default: 5)")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Missing .env files are fine; existing variables are never overridden.
	_ = godotenv.Load(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Storage: StorageConfig{
			DataPath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Labels: LabelsConfig{
			MediaBaseURL:    getConfigValue(*mediaBaseURL, "MEDIA_BASE_URL", "http://localhost:8080/media/productlabel"),
			SingleStoreMode: getBoolConfigValue(*singleStore, "SINGLE_STORE_MODE", false),
			CacheNamespace:  getConfigValue(*cacheNamespace, "CACHE_NAMESPACE", "productlabel_frontend"),
		},
		Server: ServerConfig{
			Port:               getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			CORSAllowedOrigins: splitList(getConfigValue(*corsOrigins, "CORS_ALLOWED_ORIGINS", "*")),
		},
	}

	var err error
	if cfg.Server.ReadTimeout, err = getDurationConfigValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = getDurationConfigValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = getDurationConfigValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}

	rateStr := getConfigValue(*adminRateLimit, "ADMIN_RATE_LIMIT", "5")
	cfg.Server.AdminRateLimit, err = strconv.ParseFloat(rateStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid admin rate limit %q: %w", rateStr, err)
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case "development", "staging", "production":
	case "":
		return errors.New("ENV is required")
	default:
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	switch strings.ToLower(c.Logger.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Storage.DataPath == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	u, err := url.Parse(c.Labels.MediaBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid media base url: %q", c.Labels.MediaBaseURL)
	}

	if c.Labels.CacheNamespace == "" {
		return errors.New("cache namespace cannot be empty")
	}

	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.IdleTimeout <= 0 {
		return errors.New("server timeouts must be positive")
	}

	if c.Server.AdminRateLimit <= 0 {
		return errors.New("admin rate limit must be positive")
	}

	return nil
}

// expandDataPath expands ~ and makes the path absolute.
// Defaults to ~/ProductLabel/data.
func (c *Config) expandDataPath() error {
	path := c.Storage.DataPath
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		c.Storage.DataPath = filepath.Join(homeDir, "ProductLabel", "data")
		return nil
	}

	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, rest)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}
	c.Storage.DataPath = filepath.Clean(abs)
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

func getDurationConfigValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", strings.ToLower(envKey), strValue, err)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
