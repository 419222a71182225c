package config

import (
	"os"
	"strconv"

	"finhypo/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	AI        AIConfig
	Knowledge KnowledgeConfig
}

// AIConfig holds AI/LLM related settings
type AIConfig struct {
	OpenAIKey     string
	OpenAIModel   string
	SystemContext string
	MaxTokens     int
	Temperature   float64
	PromptsDir    string
}

// KnowledgeConfig holds document tree settings
type KnowledgeConfig struct {
	BaseDir string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{}

	aiConfig, err := loadAIConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AI configuration")
	}
	config.AI = *aiConfig

	config.Knowledge = KnowledgeConfig{
		BaseDir: getEnvOrDefault("KNOWLEDGE_DIR", "./knowledge"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// LoadOffline reads configuration without requiring model credentials.
// Store and retrieval operations work without an API key; only the
// operations that call the model need one.
func LoadOffline() *Config {
	return &Config{
		AI: AIConfig{
			OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
			OpenAIModel:   getEnvOrDefault("LLM_MODEL", "gpt-4o"),
			SystemContext: "You are a quantitative trading research assistant",
			MaxTokens:     getEnvIntOrDefault("MAX_TOKENS", 2000),
			Temperature:   getEnvFloatOrDefault("TEMPERATURE", 0.7),
			PromptsDir:    getEnvOrDefault("PROMPTS_DIR", "./prompts"),
		},
		Knowledge: KnowledgeConfig{
			BaseDir: getEnvOrDefault("KNOWLEDGE_DIR", "./knowledge"),
		},
	}
}

func loadAIConfig() (*AIConfig, error) {
	openaiKey := os.Getenv("OPENAI_API_KEY")
	if openaiKey == "" {
		return nil, errors.ConfigInvalid("OPENAI_API_KEY is required")
	}

	promptsDir := os.Getenv("PROMPTS_DIR")
	if promptsDir == "" {
		promptsDir = "./prompts" // default
	}

	model := os.Getenv("LLM_MODEL")
	if model == "" {
		model = "gpt-4o" // default
	}

	return &AIConfig{
		OpenAIKey:     openaiKey,
		OpenAIModel:   model,
		SystemContext: "You are a quantitative trading research assistant",
		MaxTokens:     getEnvIntOrDefault("MAX_TOKENS", 2000),
		Temperature:   getEnvFloatOrDefault("TEMPERATURE", 0.7),
		PromptsDir:    promptsDir,
	}, nil
}

func validateConfig(config *Config) error {
	if config.AI.OpenAIKey == "" {
		return errors.ConfigInvalid("OpenAI API key is required")
	}
	if config.AI.PromptsDir == "" {
		return errors.ConfigInvalid("prompts directory is required")
	}
	if config.Knowledge.BaseDir == "" {
		return errors.ConfigInvalid("knowledge directory is required")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
