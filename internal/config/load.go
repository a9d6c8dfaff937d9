package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g.
// FLASHGEN_LLM_GEMINI_API_KEY for llm.gemini_api_key.
const EnvPrefix = "FLASHGEN"

// Default model names per provider, used when llm.model_name is unset.
const (
	DefaultGeminiModel    = "gemini-2.0-flash"
	DefaultAnthropicModel = "claude-sonnet-4-5"
)

// keys lists every configuration key so environment variables bind even
// without a default.
var keys = []string{
	"server.port",
	"server.log_level",
	"server.shutdown_timeout_seconds",
	"llm.provider",
	"llm.gemini_api_key",
	"llm.anthropic_api_key",
	"llm.model_name",
	"llm.temperature",
	"llm.timeout_seconds",
	"llm.max_output_tokens",
	"llm.prompt_template_dir",
	"chunking.size",
	"chunking.overlap",
	"pipeline.concurrency",
	"pipeline.max_attempts",
	"pipeline.retry_delay_ms",
	"extract.http_timeout_seconds",
	"extract.max_upload_mb",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout_seconds", 15)

	v.SetDefault("llm.provider", ProviderGemini)
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.timeout_seconds", 60)
	v.SetDefault("llm.max_output_tokens", 0)

	v.SetDefault("chunking.size", 750)
	v.SetDefault("chunking.overlap", 100)

	v.SetDefault("pipeline.concurrency", 4)
	v.SetDefault("pipeline.max_attempts", 1)
	v.SetDefault("pipeline.retry_delay_ms", 500)

	v.SetDefault("extract.http_timeout_seconds", 30)
	v.SetDefault("extract.max_upload_mb", 25)
}

// Load configuration from environment variables and optionally config files.
// A .env file in the working directory is loaded first; variables already
// present in the environment win over it. Environment variables take
// precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyModelDefault(&cfg.LLM)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func applyModelDefault(llm *LLMConfig) {
	if llm.ModelName != "" {
		return
	}
	switch llm.Provider {
	case ProviderAnthropic:
		llm.ModelName = DefaultAnthropicModel
	default:
		llm.ModelName = DefaultGeminiModel
	}
}
