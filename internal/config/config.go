// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all server configuration.
type Config struct {
	Port          string
	DBPath        string
	AuditPath     string
	InstituteName string // Used in prompts and the connection greeting

	// Generation service
	Provider string // mistral, openai, anthropic
	Model    string
	BaseURL  string

	// Policy knobs. The defaults mirror the thresholds the product shipped
	// with, but none of them is an invariant.
	SampleRows         int
	FuzzyCutoff        float64
	HistoryBound       int
	MaxAttempts        int
	MinMessageInterval time.Duration
	CallTimeout        time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("PORT", "3001"),
		DBPath:        getEnv("DB_PATH", "./data/college_data.db"),
		AuditPath:     getEnv("AUDIT_LOG_PATH", "./data/logs/turns.log"),
		InstituteName: getEnv("INSTITUTE_NAME", "Chalapathi Institute of Engineering and Technology"),

		Provider: getEnv("LLM_PROVIDER", "mistral"),
		Model:    getEnv("LLM_MODEL", ""),
		BaseURL:  getEnv("LLM_BASE_URL", ""),

		SampleRows:         getEnvInt("SAMPLE_ROWS", 10),
		FuzzyCutoff:        getEnvFloat("FUZZY_CUTOFF", 0.6),
		HistoryBound:       getEnvInt("HISTORY_BOUND", 10),
		MaxAttempts:        getEnvInt("MAX_ATTEMPTS", 3),
		MinMessageInterval: getEnvDuration("MIN_MESSAGE_INTERVAL", time.Second),
		CallTimeout:        getEnvDuration("CALL_TIMEOUT", 30*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are sane.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.SampleRows <= 0 {
		return fmt.Errorf("SAMPLE_ROWS must be > 0")
	}
	if c.FuzzyCutoff <= 0 || c.FuzzyCutoff > 1 {
		return fmt.Errorf("FUZZY_CUTOFF must be in (0, 1]")
	}
	if c.HistoryBound <= 0 {
		return fmt.Errorf("HISTORY_BOUND must be > 0")
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("MAX_ATTEMPTS must be > 0")
	}
	if c.CallTimeout <= 0 {
		return fmt.Errorf("CALL_TIMEOUT must be > 0")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
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

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
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
