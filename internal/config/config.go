// Package config loads gitguy configuration from a YAML file and GITGUY_*
// environment variables.
package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/gitguy/gitguy/internal/llm"
)

// Config is the complete gitguy configuration.
type Config struct {
	LLM         LLMConfig         `koanf:"llm"`
	Log         LogConfig         `koanf:"log"`
	Patterns    PatternsConfig    `koanf:"patterns"`
	Store       StoreConfig       `koanf:"store"`
	Sentry      SentryConfig      `koanf:"sentry"`
	Redact      RedactConfig      `koanf:"redact"`
	RepoContext RepoContextConfig `koanf:"repo_context"`
}

// LLMConfig selects and tunes the model provider. An empty Provider means
// the provider is discovered from the standard API key variables.
type LLMConfig struct {
	Provider    string        `koanf:"provider"`
	Model       string        `koanf:"model"`
	APIKey      string        `koanf:"api_key"`
	BaseURL     string        `koanf:"base_url"`
	Timeout     time.Duration `koanf:"timeout"`
	MaxTokens   int           `koanf:"max_tokens"`
	Temperature float64       `koanf:"temperature"`
	Retry       RetryConfig   `koanf:"retry"`
}

// RetryConfig bounds provider retries.
type RetryConfig struct {
	MaxAttempts int `koanf:"max_attempts"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// PatternsConfig points at an optional pattern database file that replaces
// the embedded one.
type PatternsConfig struct {
	File string `koanf:"file"`
}

// StoreConfig locates the LLM audit log database. Events older than
// Retention are pruned when the store is opened; zero keeps everything.
type StoreConfig struct {
	Path      string        `koanf:"path"`
	Retention time.Duration `koanf:"retention"`
}

// SentryConfig enables error reporting when DSN is set.
type SentryConfig struct {
	DSN         string `koanf:"dsn"`
	Environment string `koanf:"environment"`
}

// RedactConfig toggles secret scrubbing of error text sent to the model.
type RedactConfig struct {
	Enabled bool `koanf:"enabled"`
}

// RepoContextConfig toggles adding repository details to the prompt.
type RepoContextConfig struct {
	Enabled bool `koanf:"enabled"`
}

var (
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"console", "json"}
)

// Validate checks values that cannot be repaired by defaults.
func (c *Config) Validate() error {
	if !slices.Contains(validLogLevels, strings.ToLower(c.Log.Level)) {
		return fmt.Errorf("invalid log.level %q (want one of %s)", c.Log.Level, strings.Join(validLogLevels, ", "))
	}
	if !slices.Contains(validLogFormats, strings.ToLower(c.Log.Format)) {
		return fmt.Errorf("invalid log.format %q (want one of %s)", c.Log.Format, strings.Join(validLogFormats, ", "))
	}
	if c.LLM.Timeout < 0 {
		return fmt.Errorf("llm.timeout must not be negative")
	}
	if c.LLM.MaxTokens < 0 {
		return fmt.Errorf("llm.max_tokens must not be negative")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0 and 2")
	}
	if c.LLM.Retry.MaxAttempts < 0 {
		return fmt.Errorf("llm.retry.max_attempts must not be negative")
	}
	if c.Store.Retention < 0 {
		return fmt.Errorf("store.retention must not be negative")
	}
	return nil
}

// LLMSettings builds the provider configuration. When no provider is
// configured, the standard API key variables are checked; ok is false when
// no provider could be determined, in which case diagnosis runs offline.
func (c *Config) LLMSettings() (cfg llm.Config, ok bool) {
	if c.LLM.Provider == "" {
		cfg, ok = llm.DiscoverConfig()
		if !ok {
			return llm.Config{}, false
		}
	} else {
		cfg = llm.DefaultConfig()
		key := c.LLM.APIKey
		if key == "" {
			key = llm.APIKeyFromEnv(c.LLM.Provider)
		}
		cfg.Select(c.LLM.Provider, "", key, "")
	}

	cfg.Select(cfg.Provider, c.LLM.Model, c.LLM.APIKey, c.LLM.BaseURL)
	if c.LLM.Timeout > 0 {
		cfg.Timeout = c.LLM.Timeout
	}
	if c.LLM.Retry.MaxAttempts > 0 {
		cfg.Retry.MaxAttempts = c.LLM.Retry.MaxAttempts
	}
	return cfg, true
}
