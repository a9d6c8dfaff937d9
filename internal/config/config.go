package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm" validate:"required"`
	Chunking ChunkingConfig `mapstructure:"chunking" validate:"required"`
	Pipeline PipelineConfig `mapstructure:"pipeline" validate:"required"`
	Extract  ExtractConfig  `mapstructure:"extract" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// ShutdownTimeoutSeconds bounds graceful shutdown of in-flight requests.
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// Supported LLM providers
const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	Provider        string  `mapstructure:"provider" validate:"required,oneof=gemini anthropic"`
	GeminiAPIKey    string  `mapstructure:"gemini_api_key" validate:"required_if=Provider gemini"`
	AnthropicAPIKey string  `mapstructure:"anthropic_api_key" validate:"required_if=Provider anthropic"`
	ModelName       string  `mapstructure:"model_name"`
	Temperature     float64 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	TimeoutSeconds  int     `mapstructure:"timeout_seconds" validate:"gt=0"`
	MaxOutputTokens int     `mapstructure:"max_output_tokens" validate:"gte=0"`
	// PromptTemplateDir optionally holds <kind>.tmpl prompt overrides.
	PromptTemplateDir string `mapstructure:"prompt_template_dir" validate:"omitempty,dir"`
}

// Timeout returns the per-call time budget.
func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ChunkingConfig sets the splitter window.
type ChunkingConfig struct {
	Size    int `mapstructure:"size" validate:"gt=0"`
	Overlap int `mapstructure:"overlap" validate:"gte=0,ltfield=Size"`
}

// PipelineConfig controls the per-chunk fan-out.
type PipelineConfig struct {
	Concurrency int `mapstructure:"concurrency" validate:"gte=1,lte=64"`
	// MaxAttempts is the number of generation calls per chunk; 1 disables retries.
	MaxAttempts  int `mapstructure:"max_attempts" validate:"gte=1,lte=10"`
	RetryDelayMS int `mapstructure:"retry_delay_ms" validate:"gte=0"`
}

// RetryDelay returns the base backoff between attempts.
func (c PipelineConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMS) * time.Millisecond
}

// ExtractConfig contains settings for document and web extraction.
type ExtractConfig struct {
	HTTPTimeoutSeconds int `mapstructure:"http_timeout_seconds" validate:"gt=0"`
	MaxUploadMB        int `mapstructure:"max_upload_mb" validate:"gt=0"`
}

// HTTPTimeout returns the timeout for outbound fetches.
func (c ExtractConfig) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// MaxUploadBytes returns the upload size limit in bytes.
func (c ExtractConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}
