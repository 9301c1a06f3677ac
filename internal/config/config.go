// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	FrontendURL string
	DBPath      string
	// PasswordCost is the bcrypt cost for new password hashes.
	PasswordCost    int
	SeedDemoData    bool
	SessionTTL      time.Duration
	SweepInterval   time.Duration
	Assistant       AssistantConfig
	Timeout         TimeoutConfig
	ConversationLog ConversationLogConfig
	Events          EventsConfig
}

// AssistantConfig controls the chat and voice assistants.
type AssistantConfig struct {
	ListenTimeout time.Duration
	HistoryLimit  int
	// RateLimit is the number of assistant requests allowed per user per minute.
	RateLimit int
	// RedisURL shares the rate limit across instances. Empty keeps it in memory.
	RedisURL string
	// VocabularyFile is an optional YAML file overriding the product keywords.
	VocabularyFile string
}

// EventsConfig controls publishing of inventory events. Publishing is
// disabled when RabbitMQURL is empty.
type EventsConfig struct {
	RabbitMQURL      string
	Exchange         string
	QueueSize        int
	PublishTimeout   time.Duration
	BreakerFailures  int
	BreakerOpenDelay time.Duration
}

// TimeoutConfig holds request and lifecycle timeouts.
type TimeoutConfig struct {
	HealthCheck time.Duration
	Shutdown    time.Duration
}

// ConversationLogConfig controls JSON conversation logging.
type ConversationLogConfig struct {
	Enabled       bool
	Dir           string
	GlobalEnabled bool
	GlobalPath    string
	QueueSize     int
	// Rotation of the global log file.
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	queueSize := getEnvInt("CONVERSATION_LOG_QUEUE_SIZE", 1000)
	if queueSize <= 0 {
		queueSize = 1000
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		FrontendURL:   getEnv("FRONTEND_URL", ""),
		DBPath:        getEnv("DB_PATH", "./data/stockflow.db"),
		PasswordCost:  getEnvInt("PASSWORD_HASH_COST", 10),
		SeedDemoData:  getEnvBool("SEED_DEMO_DATA", true),
		SessionTTL:    getEnvDuration("SESSION_TTL", 60*time.Minute),
		SweepInterval: getEnvDuration("SESSION_SWEEP_INTERVAL", 5*time.Minute),
		Assistant: AssistantConfig{
			ListenTimeout:  getEnvDuration("VOICE_LISTEN_TIMEOUT", 10*time.Second),
			HistoryLimit:   getEnvInt("ASSISTANT_HISTORY_LIMIT", 20),
			RateLimit:      getEnvInt("ASSISTANT_RATE_LIMIT", 30),
			RedisURL:       getEnv("REDIS_URL", ""),
			VocabularyFile: getEnv("ASSISTANT_VOCABULARY_FILE", ""),
		},
		Timeout: TimeoutConfig{
			HealthCheck: getEnvDuration("HEALTH_CHECK_TIMEOUT", 5*time.Second),
			Shutdown:    getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		ConversationLog: ConversationLogConfig{
			Enabled:       getEnvBool("CONVERSATION_LOG_ENABLED", true),
			Dir:           getEnv("CONVERSATION_LOG_DIR", "./data/logs/conversations"),
			GlobalEnabled: getEnvBool("CONVERSATION_LOG_GLOBAL_ENABLED", false),
			GlobalPath:    getEnv("CONVERSATION_LOG_GLOBAL_PATH", "./data/logs/conversations/all.ndjson"),
			QueueSize:     queueSize,
			MaxSizeMB:     getEnvInt("CONVERSATION_LOG_MAX_SIZE_MB", 50),
			MaxBackups:    getEnvInt("CONVERSATION_LOG_MAX_BACKUPS", 5),
			MaxAgeDays:    getEnvInt("CONVERSATION_LOG_MAX_AGE_DAYS", 30),
		},
		Events: EventsConfig{
			RabbitMQURL:      getEnv("RABBITMQ_URL", ""),
			Exchange:         getEnv("RABBITMQ_EXCHANGE", "stockflow_events"),
			QueueSize:        getEnvInt("EVENTS_QUEUE_SIZE", 256),
			PublishTimeout:   getEnvDuration("EVENTS_PUBLISH_TIMEOUT", 5*time.Second),
			BreakerFailures:  getEnvInt("EVENTS_BREAKER_FAILURES", 5),
			BreakerOpenDelay: getEnvDuration("EVENTS_BREAKER_OPEN_DELAY", 30*time.Second),
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
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.PasswordCost < 4 || c.PasswordCost > 31 {
		return fmt.Errorf("PASSWORD_HASH_COST must be between 4 and 31")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("SESSION_SWEEP_INTERVAL must be > 0")
	}
	if c.Assistant.ListenTimeout <= 0 {
		return fmt.Errorf("VOICE_LISTEN_TIMEOUT must be > 0")
	}
	if c.Assistant.HistoryLimit <= 0 {
		return fmt.Errorf("ASSISTANT_HISTORY_LIMIT must be > 0")
	}
	if c.Assistant.RateLimit <= 0 {
		return fmt.Errorf("ASSISTANT_RATE_LIMIT must be > 0")
	}
	if c.ConversationLog.Dir == "" {
		return fmt.Errorf("CONVERSATION_LOG_DIR cannot be empty")
	}
	if c.ConversationLog.GlobalPath == "" {
		return fmt.Errorf("CONVERSATION_LOG_GLOBAL_PATH cannot be empty")
	}
	if c.ConversationLog.QueueSize <= 0 {
		return fmt.Errorf("CONVERSATION_LOG_QUEUE_SIZE must be > 0")
	}
	if c.Events.RabbitMQURL != "" {
		if c.Events.Exchange == "" {
			return fmt.Errorf("RABBITMQ_EXCHANGE cannot be empty")
		}
		if c.Events.QueueSize <= 0 || c.Events.BreakerFailures <= 0 {
			return fmt.Errorf("EVENTS_QUEUE_SIZE and EVENTS_BREAKER_FAILURES must be > 0")
		}
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	if env := os.Getenv("APP_ENV"); env != "" {
		return env == "development"
	}
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

// AllowedOrigins returns the CORS origins for the configured frontend.
func (c *Config) AllowedOrigins() []string {
	if c.FrontendURL == "" {
		return []string{"*"}
	}
	return []string{strings.TrimRight(c.FrontendURL, "/")}
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

// getEnvDuration accepts Go duration strings ("90s") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value = strings.TrimSpace(value)
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if n, err := strconv.Atoi(value); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
