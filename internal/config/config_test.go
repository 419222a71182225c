package config

import (
	"testing"

	"finhypo/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("LLM_MODEL", "")
	t.Setenv("MAX_TOKENS", "")
	t.Setenv("TEMPERATURE", "")
	t.Setenv("PROMPTS_DIR", "")
	t.Setenv("KNOWLEDGE_DIR", "")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", cfg.AI.OpenAIModel)
	assert.Equal(t, 2000, cfg.AI.MaxTokens)
	assert.Equal(t, 0.7, cfg.AI.Temperature)
	assert.Equal(t, "./prompts", cfg.AI.PromptsDir)
	assert.Equal(t, "./knowledge", cfg.Knowledge.BaseDir)
}

func TestLoadOverridesFromEnvironment(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("LLM_MODEL", "gpt-4o-mini")
	t.Setenv("MAX_TOKENS", "512")
	t.Setenv("TEMPERATURE", "0.1")
	t.Setenv("KNOWLEDGE_DIR", "/srv/knowledge")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.OpenAIModel)
	assert.Equal(t, 512, cfg.AI.MaxTokens)
	assert.Equal(t, 0.1, cfg.AI.Temperature)
	assert.Equal(t, "/srv/knowledge", cfg.Knowledge.BaseDir)
}

func TestLoadOfflineWorksWithoutKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	cfg := LoadOffline()

	require.NotNil(t, cfg)
	assert.Empty(t, cfg.AI.OpenAIKey)
	assert.Equal(t, "gpt-4o", cfg.AI.OpenAIModel)
}

func TestGetEnvIntOrDefaultIgnoresGarbage(t *testing.T) {
	t.Setenv("MAX_TOKENS", "not-a-number")

	assert.Equal(t, 2000, getEnvIntOrDefault("MAX_TOKENS", 2000))
}
