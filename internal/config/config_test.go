package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "openai", cfg.GetString("llm.provider", ""))
	assert.Equal(t, "gpt-4-turbo-preview", cfg.GetString("llm.model", ""))
	assert.Equal(t, 4000, cfg.GetInt("llm.max_tokens", 0))
	assert.InDelta(t, 0.7, cfg.GetFloat("llm.temperature", 0), 1e-9)
	assert.Equal(t, "./.genesis_index", cfg.IndexDir())
	assert.Equal(t, DefaultIgnorePatterns, cfg.IgnorePatterns())
}

func TestLoadMissingImplicitFileUsesDefaults(t *testing.T) {
	oldwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(oldwd) })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "./", cfg.RepoPath())
}

func TestLoadMissingExplicitPathErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.yaml")

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorContains(t, err, path)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `repository:
  path: /srv/repo
  ignore_patterns:
    - "vendor/**"
llm:
  provider: openai
  model: gpt-4o
  temperature: 0.2
index:
  persist_directory: /tmp/idx
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/repo", cfg.RepoPath())
	assert.Equal(t, []string{"vendor/**"}, cfg.IgnorePatterns())
	assert.Equal(t, "gpt-4o", cfg.GetString("llm.model", ""))
	assert.InDelta(t, 0.2, cfg.GetFloat("llm.temperature", 0), 1e-9)
	assert.Equal(t, "/tmp/idx", cfg.IndexDir())
	// Absent keys fall back.
	assert.Equal(t, 4000, cfg.GetInt("llm.max_tokens", 4000))
	assert.Equal(t, "dflt", cfg.GetString("nope.deep.key", "dflt"))
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\n  - ["), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestAPIKeyPrecedence(t *testing.T) {
	t.Setenv("GENESIS_LLM_API_KEY", "primary")
	t.Setenv("OPENAI_API_KEY", "fallback")
	assert.Equal(t, "primary", Default().APIKey())

	t.Setenv("GENESIS_LLM_API_KEY", "")
	assert.Equal(t, "fallback", Default().APIKey())
}
