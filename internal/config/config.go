// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ashureev/homework-planner/internal/timezone"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config holds all application configuration.
type Config struct {
	Port               string
	DBPath             string
	StoreBackend       string
	SkillID            string
	AllowedOrigins     []string
	LogFile            string
	MaxRequestBodySize int64
	DataRetention      time.Duration
	FlushTimeout       time.Duration
	HealthCheckTimeout time.Duration
	Timezone           TimezoneConfig
	ConversationLog    ConversationLogConfig
	Telemetry          TelemetryConfig
}

// TimezoneConfig controls device timezone lookup.
// APIURL and APIToken override the per-request endpoint and token.
type TimezoneConfig struct {
	Lookup   bool
	APIURL   string
	APIToken string
	Timeout  time.Duration
	Default  string
}

// ConversationLogConfig controls the NDJSON turn transcript.
type ConversationLogConfig struct {
	Enabled   bool
	Path      string
	QueueSize int
}

// TelemetryConfig controls trace and metric export.
type TelemetryConfig struct {
	Enabled bool
	Dir     string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	queueSize := getEnvInt("CONVERSATION_LOG_QUEUE_SIZE", 1000)
	if queueSize <= 0 {
		queueSize = 1000
	}

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		DBPath:             getEnv("DB_PATH", "./data/planner.db"),
		StoreBackend:       strings.ToLower(getEnv("STORE_BACKEND", BackendSQLite)),
		SkillID:            getEnv("SKILL_ID", ""),
		AllowedOrigins:     getEnvList("ALLOWED_ORIGINS"),
		LogFile:            getEnv("LOG_FILE", ""),
		MaxRequestBodySize: int64(getEnvInt("MAX_REQUEST_BODY_SIZE", 1<<20)),
		DataRetention:      getEnvDuration("DATA_RETENTION", 0),
		FlushTimeout:       getEnvDuration("FLUSH_TIMEOUT", 10*time.Second),
		HealthCheckTimeout: getEnvDuration("HEALTH_CHECK_TIMEOUT", 5*time.Second),
		Timezone: TimezoneConfig{
			Lookup:   getEnvBool("TIMEZONE_LOOKUP", true),
			APIURL:   getEnv("TIMEZONE_API_URL", ""),
			APIToken: getEnv("TIMEZONE_API_TOKEN", ""),
			Timeout:  getEnvDuration("TIMEZONE_API_TIMEOUT", 3*time.Second),
			Default:  getEnv("DEFAULT_TIMEZONE", "UTC"),
		},
		ConversationLog: ConversationLogConfig{
			Enabled:   getEnvBool("CONVERSATION_LOG_ENABLED", true),
			Path:      getEnv("CONVERSATION_LOG_PATH", "./data/logs/conversations.ndjson"),
			QueueSize: queueSize,
		},
		Telemetry: TelemetryConfig{
			Enabled: getEnvBool("TELEMETRY_ENABLED", false),
			Dir:     getEnv("TELEMETRY_DIR", "./data/logs/telemetry"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	switch c.StoreBackend {
	case BackendSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("DB_PATH cannot be empty")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendSQLite, BackendMemory, c.StoreBackend)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0")
	}
	if c.FlushTimeout <= 0 {
		return fmt.Errorf("FLUSH_TIMEOUT must be > 0")
	}
	if c.DataRetention < 0 {
		return fmt.Errorf("DATA_RETENTION cannot be negative")
	}
	if err := timezone.Validate(c.Timezone.Default); err != nil {
		return fmt.Errorf("DEFAULT_TIMEZONE: %w", err)
	}
	if c.ConversationLog.Enabled && c.ConversationLog.Path == "" {
		return fmt.Errorf("CONVERSATION_LOG_PATH cannot be empty")
	}
	if c.Telemetry.Enabled && c.Telemetry.Dir == "" {
		return fmt.Errorf("TELEMETRY_DIR cannot be empty")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}

// getEnvList splits a comma-separated value, dropping empty entries.
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
