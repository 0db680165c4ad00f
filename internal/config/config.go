// Package config reads the process configuration from the environment.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP server
	Port string

	// Database
	DBPath string

	// Bot behaviour
	PendingTimeout  time.Duration
	DefaultCurrency string

	// Space-separated glob patterns of sender identities allowed to use
	// the webhook. Empty allows everyone.
	SenderAllowlist []string

	// Extraction
	GeminiAPIKey string
	GeminiModel  string
}

// Load reads the configuration. Values are read once at startup.
func Load(getenv func(string) string) *Config {
	return &Config{
		Port:            withDefault(getenv("PORT"), "8080"),
		DBPath:          withDefault(getenv("DB_PATH"), "data/ledgerbot.db"),
		PendingTimeout:  time.Duration(intWithDefault(getenv("PENDING_TIMEOUT_MS"), 300000)) * time.Millisecond,
		DefaultCurrency: withDefault(getenv("CURRENCY"), "NGN"),
		SenderAllowlist: strings.Fields(getenv("SENDER_ALLOWLIST")),
		GeminiAPIKey:    getenv("GEMINI_API_KEY"),
		GeminiModel:     getenv("GEMINI_MODEL"),
	}
}

// Validate returns an error describing every invalid value.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port %q: must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.PendingTimeout <= 0 {
		problems = append(problems, "invalid pending timeout: must be positive")
	}

	if len(c.DefaultCurrency) != 3 {
		problems = append(problems, fmt.Sprintf("invalid currency %q: must be a three-letter ISO code", c.DefaultCurrency))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(problems, "; "))
	}

	return nil
}

func withDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func intWithDefault(value string, fallback int) int {
	if value == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
