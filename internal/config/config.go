// Package config provides application configuration management with support
// for command-line flags, environment variables and .env files.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/memorylane/memorylane-server/internal/domain"
	"github.com/memorylane/memorylane-server/internal/logger"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Database  DatabaseConfig
	Server    ServerConfig
	RateLimit RateLimitConfig
	Tags      TagsConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DatabaseConfig holds SQLite configuration.
type DatabaseConfig struct {
	Path string // Database file (default: ~/MemoryLane/memories.db)
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string        // Server port (default: 4001)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
	MaxBodyBytes int64         // Request body cap (default: 50 MiB)
	CORSOrigins  []string      // Allowed browser origins (default: *)

	// MaxConnections caps concurrent connections. Each one may be buffering
	// a body of up to MaxBodyBytes. 0 means unlimited.
	MaxConnections int
}

// RateLimitConfig bounds mutating requests per client IP.
type RateLimitConfig struct {
	WritesPerMinute int // 0 disables limiting
	Burst           int
}

// TagsConfig holds the tag catalog seeded at startup.
type TagsConfig struct {
	Vocabulary []string
}

// DefaultMaxBodyBytes matches the 50mb JSON limit browser clients rely on
// for inline data-URL images.
const DefaultMaxBodyBytes = 50 << 20

// envFiles are loaded in order; earlier files win because godotenv never
// overwrites variables that are already set.
var envFiles = []string{".env.local", ".env"}

// LoadConfig loads configuration from the process arguments and environment.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env.local, then .env.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("memorylane", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dbPath := fs.String("db-path", "", "SQLite database file (default: ~/MemoryLane/memories.db)")

	serverPort := fs.String("port", "", "Server port (default: 4001)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	maxBodyBytes := fs.String("max-body-bytes", "", "Maximum request body size in bytes (default: 52428800)")
	maxConns := fs.String("max-connections", "", "Maximum concurrent connections (default: 64, 0 is unlimited)")
	corsOrigins := fs.String("cors-origins", "", "Comma-separated allowed origins (default: *)")

	writeRate := fs.String("write-rate", "", "Mutating requests per minute per client (default: 120, 0 disables)")
	writeBurst := fs.String("write-burst", "", "Burst size for mutating requests (default: 30)")

	tags := fs.String("tags", "", "Comma-separated tag catalog (default: cooking,traveling,outdoors)")

	envFile := fs.String("env-file", "", "Extra .env file loaded before .env.local and .env")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := loadEnvFiles(*envFile); err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			Path: getConfigValue(*dbPath, "DB_PATH", ""),
		},
		Server: ServerConfig{
			Port:        getConfigValue(*serverPort, "SERVER_PORT", "4001"),
			CORSOrigins: splitList(getConfigValue(*corsOrigins, "CORS_ORIGINS", "*")),
		},
		Tags: TagsConfig{
			Vocabulary: splitList(getConfigValue(*tags, "TAGS", strings.Join(domain.DefaultTagVocabulary, ","))),
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

	body, err := getIntConfigValue(*maxBodyBytes, "MAX_BODY_BYTES", DefaultMaxBodyBytes)
	if err != nil {
		return nil, err
	}
	cfg.Server.MaxBodyBytes = int64(body)

	if cfg.Server.MaxConnections, err = getIntConfigValue(*maxConns, "SERVER_MAX_CONNECTIONS", 64); err != nil {
		return nil, err
	}

	if cfg.RateLimit.WritesPerMinute, err = getIntConfigValue(*writeRate, "WRITE_RATE_PER_MINUTE", 120); err != nil {
		return nil, err
	}
	if cfg.RateLimit.Burst, err = getIntConfigValue(*writeBurst, "WRITE_BURST", 30); err != nil {
		return nil, err
	}

	if err := cfg.expandDatabasePath(); err != nil {
		return nil, fmt.Errorf("invalid database path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	if !logger.ValidLevel(c.Logger.Level) {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Database.Path == "" {
		return errors.New("database path cannot be empty after expansion")
	}

	port, err := strconv.Atoi(c.Server.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid server port: %q", c.Server.Port)
	}

	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("max body bytes must be positive, got %d", c.Server.MaxBodyBytes)
	}

	if c.Server.MaxConnections < 0 {
		return fmt.Errorf("max connections must not be negative, got %d", c.Server.MaxConnections)
	}

	if len(c.Server.CORSOrigins) == 0 {
		return errors.New("at least one CORS origin is required")
	}

	if c.RateLimit.WritesPerMinute < 0 {
		return fmt.Errorf("write rate must not be negative, got %d", c.RateLimit.WritesPerMinute)
	}
	if c.RateLimit.WritesPerMinute > 0 && c.RateLimit.Burst < 1 {
		return fmt.Errorf("write burst must be at least 1, got %d", c.RateLimit.Burst)
	}

	if len(c.Tags.Vocabulary) == 0 {
		return errors.New("tag vocabulary cannot be empty")
	}

	return nil
}

// RateLimitEnabled reports whether mutating requests are rate limited.
func (c *Config) RateLimitEnabled() bool {
	return c.RateLimit.WritesPerMinute > 0
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDatabasePath resolves the database file, defaulting to
// ~/MemoryLane/memories.db.
func (c *Config) expandDatabasePath() error {
	defaultPath := ""
	if c.Database.Path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		defaultPath = filepath.Join(homeDir, "MemoryLane", "memories.db")
	}

	expanded, err := expandPath(c.Database.Path, defaultPath)
	if err != nil {
		return err
	}
	c.Database.Path = expanded
	return nil
}

// loadEnvFiles loads extra (if set) followed by envFiles that exist.
// A missing extra file is an error; missing defaults are skipped.
func loadEnvFiles(extra string) error {
	var files []string
	if extra != "" {
		if _, err := os.Stat(extra); err != nil {
			return fmt.Errorf("env file: %w", err)
		}
		files = append(files, extra)
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			files = append(files, f)
		}
	}
	if len(files) == 0 {
		return nil
	}
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("load env files: %w", err)
	}
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

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) (int, error) {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(strValue))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, strValue, err)
	}
	return n, nil
}

// getDurationConfigValue returns a duration from flag, env var, or default.
func getDurationConfigValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, strValue, err)
	}
	return d, nil
}

// splitList splits a comma-separated value, trimming blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
