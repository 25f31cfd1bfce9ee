// Package config loads genesis configuration from a YAML file with
// built-in defaults and dot-separated key lookup.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultIgnorePatterns excludes version-control and cache directories
// when no repository.ignore_patterns is configured.
var DefaultIgnorePatterns = []string{
	"**/.git/**",
	"**/node_modules/**",
	"**/__pycache__/**",
	"**/*.pyc",
}

// Config holds the merged configuration tree.
type Config struct {
	data map[string]any
}

// Load reads the YAML file at path. A missing file is not an error:
// the built-in defaults apply. Environment variables from a local .env
// file are loaded as a side effect, mirroring the API-key lookup.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	implicit := path == ""
	if implicit {
		path = "config.yaml"
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		// Only the implicit ./config.yaml lookup may fall back to
		// defaults; a path the caller named must exist.
		if os.IsNotExist(err) && implicit {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	data := make(map[string]any)
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &Config{data: data}, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	patterns := make([]any, len(DefaultIgnorePatterns))
	for i, p := range DefaultIgnorePatterns {
		patterns[i] = p
	}
	return &Config{data: map[string]any{
		"repository": map[string]any{
			"path":            "./",
			"ignore_patterns": patterns,
		},
		"llm": map[string]any{
			"provider":    "openai",
			"model":       "gpt-4-turbo-preview",
			"temperature": 0.7,
			"max_tokens":  4000,
		},
		"index": map[string]any{
			"persist_directory": "./.genesis_index",
		},
	}}
}

// Get resolves a dot-separated key ("llm.model") against the config
// tree, returning def when any path segment is absent.
func (c *Config) Get(key string, def any) any {
	value := any(c.data)
	for _, k := range splitKey(key) {
		m, ok := value.(map[string]any)
		if !ok {
			return def
		}
		value, ok = m[k]
		if !ok || value == nil {
			return def
		}
	}
	return value
}

// GetString returns the string at key, or def.
func (c *Config) GetString(key, def string) string {
	if s, ok := c.Get(key, def).(string); ok {
		return s
	}
	return def
}

// GetInt returns the integer at key, or def. YAML numbers decode as int.
func (c *Config) GetInt(key string, def int) int {
	switch v := c.Get(key, def).(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return def
	}
}

// GetFloat returns the float at key, or def.
func (c *Config) GetFloat(key string, def float64) float64 {
	switch v := c.Get(key, def).(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return def
	}
}

// GetBool returns the boolean at key, or def.
func (c *Config) GetBool(key string, def bool) bool {
	if b, ok := c.Get(key, def).(bool); ok {
		return b
	}
	return def
}

// GetStringSlice returns the string list at key, or nil.
func (c *Config) GetStringSlice(key string) []string {
	raw, ok := c.Get(key, nil).([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// IgnorePatterns returns repository.ignore_patterns, falling back to
// the built-in default set.
func (c *Config) IgnorePatterns() []string {
	if patterns := c.GetStringSlice("repository.ignore_patterns"); patterns != nil {
		return patterns
	}
	return DefaultIgnorePatterns
}

// RepoPath returns the configured repository path.
func (c *Config) RepoPath() string {
	return c.GetString("repository.path", "./")
}

// IndexDir returns the directory holding the persisted index and
// system map.
func (c *Config) IndexDir() string {
	return c.GetString("index.persist_directory", "./.genesis_index")
}

// APIKey resolves the LLM API key from the environment.
func (c *Config) APIKey() string {
	if key := os.Getenv("GENESIS_LLM_API_KEY"); key != "" {
		return key
	}
	return os.Getenv("OPENAI_API_KEY")
}

func splitKey(key string) []string {
	return strings.Split(key, ".")
}
