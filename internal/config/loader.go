package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix         = "GITGUY_"
	maxConfigFileSize = 1024 * 1024 // 1MB
)

// defaults is loaded first so file and environment values only need to
// name what they change.
var defaults = []byte(`
llm:
  provider: ""
  timeout: 20s
  max_tokens: 1200
  temperature: 0.3
  retry:
    max_attempts: 1
log:
  level: warn
  format: console
patterns:
  file: ""
store:
  path: ""
  retention: 720h
sentry:
  dsn: ""
  environment: production
redact:
  enabled: true
repo_context:
  enabled: true
`)

// DefaultPath returns ~/.config/gitguy/config.yaml, honouring
// XDG_CONFIG_HOME.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "gitguy", "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "gitguy", "config.yaml"), nil
}

// Load reads configuration with this precedence, highest first:
//
//  1. GITGUY_* environment variables (GITGUY_LLM_PROVIDER -> llm.provider)
//  2. the YAML file at path, or DefaultPath when path is empty
//  3. built-in defaults
//
// A missing default file is not an error; a missing explicit path is.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider(defaults), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	content, err := readConfigFile(path)
	switch {
	case err == nil:
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
	default:
		return nil, err
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("config path %s is a directory", path)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}

// envKeys maps upper-cased, underscore-joined key names to their dotted
// form. Underscores are ambiguous (repo_context.enabled, llm.max_tokens),
// so only known keys are taken from the environment.
var envKeys = func() map[string]string {
	keys := []string{
		"llm.provider", "llm.model", "llm.api_key", "llm.base_url",
		"llm.timeout", "llm.max_tokens", "llm.temperature",
		"llm.retry.max_attempts",
		"log.level", "log.format",
		"patterns.file",
		"store.path", "store.retention",
		"sentry.dsn", "sentry.environment",
		"redact.enabled",
		"repo_context.enabled",
	}
	m := make(map[string]string, len(keys))
	for _, k := range keys {
		m[strings.ToUpper(strings.ReplaceAll(k, ".", "_"))] = k
	}
	return m
}()

// envKey transforms GITGUY_LLM_MAX_TOKENS into llm.max_tokens. Unknown
// variables map to "" and are ignored.
func envKey(s string) string {
	return envKeys[strings.TrimPrefix(s, envPrefix)]
}
