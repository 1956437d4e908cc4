package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsOnly(t *testing.T) {
	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.HTTPPort)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, "eleven_multilingual_v2", cfg.Speech.SynthesisModel)
	assert.Equal(t, "unitary/toxic-bert", cfg.Classifier.ToxicityModel)
	assert.Equal(t, 1000, cfg.Session.MaxSessions)
	assert.True(t, cfg.Memory.Enabled)
}

func TestLoadFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  http_port: 9001
llm:
  model: gpt-4o-mini
session:
  max_sessions: 5
  generation_timeout: 45s
memory:
  enabled: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, 9001, cfg.Server.HTTPPort)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 5, cfg.Session.MaxSessions)
	assert.Equal(t, 45*time.Second, cfg.Session.GenerationTimeout)
	assert.False(t, cfg.Memory.Enabled)

	// Untouched sections keep their defaults.
	assert.Equal(t, "eleven_multilingual_v2", cfg.Speech.SynthesisModel)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := NewLoader().WithConfigPath("/does/not/exist.yaml").Load()
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.Server.HTTPPort)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: ["), 0o600))

	_, err := NewLoader().WithConfigPath(path).Load()
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TUTOR_SERVER_HTTP_PORT", "9090")
	t.Setenv("TUTOR_LLM_API_KEY", "sk-test")
	t.Setenv("TUTOR_SESSION_GENERATION_TIMEOUT", "90s")
	t.Setenv("TUTOR_MEMORY_ENABLED", "false")
	t.Setenv("TUTOR_SERVER_RATE_LIMIT_RPS", "2.5")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.HTTPPort)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, 90*time.Second, cfg.Session.GenerationTimeout)
	assert.False(t, cfg.Memory.Enabled)
	assert.InDelta(t, 2.5, cfg.Server.RateLimitRPS, 1e-9)
}

func TestEnvOverridesBeatFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  http_port: 9001\n"), 0o600))
	t.Setenv("TUTOR_SERVER_HTTP_PORT", "9002")

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)
	assert.Equal(t, 9002, cfg.Server.HTTPPort)
}

func TestCustomEnvPrefix(t *testing.T) {
	t.Setenv("APP_SERVER_HTTP_PORT", "7070")

	cfg, err := NewLoader().WithEnvPrefix("APP").Load()
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.HTTPPort)
}

func TestValidatorHook(t *testing.T) {
	called := false
	_, err := NewLoader().WithValidator(func(c *Config) error {
		called = true
		return nil
	}).Load()
	require.NoError(t, err)
	assert.True(t, called)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.APIKey = "sk-test"
	cfg.Speech.ElevenLabsAPIKey = "el-test"
	require.NoError(t, cfg.Validate())

	t.Run("missing llm key", func(t *testing.T) {
		c := DefaultConfig()
		c.Speech.ElevenLabsAPIKey = "el-test"
		assert.Error(t, c.Validate())
	})

	t.Run("bad port", func(t *testing.T) {
		c := DefaultConfig()
		c.LLM.APIKey = "sk-test"
		c.Speech.ElevenLabsAPIKey = "el-test"
		c.Server.HTTPPort = -1
		assert.Error(t, c.Validate())
	})

	t.Run("memory enabled without qdrant", func(t *testing.T) {
		c := DefaultConfig()
		c.LLM.APIKey = "sk-test"
		c.Speech.ElevenLabsAPIKey = "el-test"
		c.Memory.QdrantURL = ""
		assert.Error(t, c.Validate())
	})
}
