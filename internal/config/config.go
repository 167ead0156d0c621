// Package config provides application configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Session backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	FrontendURL string
	LogLevel    string

	SessionBackend  string // memory, sqlite or redis
	DBPath          string
	RedisAddr       string
	SessionTTL      time.Duration
	SessionCapacity int // bounds the in-memory store
	SweepInterval   time.Duration

	CollaboratorAddr    string // empty disables remote collaborators
	CollaboratorTimeout time.Duration

	HistoryLimit  int
	TopK          int
	KnowledgePath string // empty uses the embedded corpus

	RateLimitRequests int
	RateLimitWindow   time.Duration
	MaxBodyBytes      int64
	MaxAudioBytes     int64

	ConversationLog ConversationLogConfig
}

// ConversationLogConfig controls JSON conversation logging.
type ConversationLogConfig struct {
	Enabled       bool
	Dir           string
	GlobalEnabled bool
	GlobalPath    string
	QueueSize     int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		SessionBackend:  strings.ToLower(getEnv("SESSION_BACKEND", BackendMemory)),
		DBPath:          getEnv("DB_PATH", "./data/quotes.db"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		SessionTTL:      getEnvDuration("SESSION_TTL", 30*time.Minute),
		SessionCapacity: getEnvInt("SESSION_CAPACITY", 10000),
		SweepInterval:   getEnvDuration("SESSION_SWEEP_INTERVAL", time.Minute),

		CollaboratorAddr:    getEnv("COLLABORATOR_ADDR", ""),
		CollaboratorTimeout: getEnvDuration("COLLABORATOR_TIMEOUT", 20*time.Second),

		HistoryLimit:  getEnvInt("HISTORY_LIMIT", 8),
		TopK:          getEnvInt("RETRIEVAL_TOP_K", 3),
		KnowledgePath: getEnv("KNOWLEDGE_PATH", ""),

		RateLimitRequests: getEnvInt("RATE_LIMIT_REQUESTS", 30),
		RateLimitWindow:   getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		MaxBodyBytes:      int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),
		MaxAudioBytes:     int64(getEnvInt("MAX_AUDIO_BYTES", 10<<20)),

		ConversationLog: ConversationLogConfig{
			Enabled:       getEnvBool("CONVERSATION_LOG_ENABLED", true),
			Dir:           getEnv("CONVERSATION_LOG_DIR", "./data/logs/conversations"),
			GlobalEnabled: getEnvBool("CONVERSATION_LOG_GLOBAL_ENABLED", false),
			GlobalPath:    getEnv("CONVERSATION_LOG_GLOBAL_PATH", "./data/logs/conversations/all.ndjson"),
			QueueSize:     getEnvInt("CONVERSATION_LOG_QUEUE_SIZE", 1000),
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
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	switch c.SessionBackend {
	case BackendMemory:
		if c.SessionCapacity <= 0 {
			return fmt.Errorf("SESSION_CAPACITY must be > 0")
		}
	case BackendSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("DB_PATH cannot be empty")
		}
		if c.SweepInterval <= 0 {
			return fmt.Errorf("SESSION_SWEEP_INTERVAL must be > 0")
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR cannot be empty")
		}
	default:
		return fmt.Errorf("SESSION_BACKEND must be one of memory, sqlite, redis (got %q)", c.SessionBackend)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	if c.CollaboratorAddr != "" && c.CollaboratorTimeout <= 0 {
		return fmt.Errorf("COLLABORATOR_TIMEOUT must be > 0")
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("HISTORY_LIMIT must be >= 0")
	}
	if c.TopK <= 0 {
		return fmt.Errorf("RETRIEVAL_TOP_K must be > 0")
	}
	if c.RateLimitRequests < 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be >= 0")
	}
	if c.RateLimitRequests > 0 && c.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be > 0")
	}
	if c.MaxBodyBytes <= 0 || c.MaxAudioBytes <= 0 {
		return fmt.Errorf("MAX_BODY_BYTES and MAX_AUDIO_BYTES must be > 0")
	}
	if c.ConversationLog.Enabled {
		if c.ConversationLog.Dir == "" {
			return fmt.Errorf("CONVERSATION_LOG_DIR cannot be empty")
		}
		if c.ConversationLog.QueueSize <= 0 {
			return fmt.Errorf("CONVERSATION_LOG_QUEUE_SIZE must be > 0")
		}
	}
	return nil
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return level, fmt.Errorf("LOG_LEVEL %q is not a valid level", c.LogLevel)
	}
	return level, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
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
