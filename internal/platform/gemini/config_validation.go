package gemini

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/scry-flashgen/internal/config"
	"github.com/phrazzld/scry-flashgen/internal/generation"
)

// validateConfig checks the settings the Gemini provider cannot run without.
func validateConfig(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) error {
	if cfg.GeminiAPIKey == "" {
		logger.ErrorContext(ctx, "Missing Gemini API key", "error", "GeminiAPIKey is empty")
		return fmt.Errorf("%w: GeminiAPIKey cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.ModelName == "" {
		logger.ErrorContext(ctx, "Missing model name", "error", "ModelName is empty")
		return fmt.Errorf("%w: ModelName cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		return fmt.Errorf("%w: temperature %.2f outside [0, 2]", generation.ErrInvalidConfig, cfg.Temperature)
	}

	if cfg.MaxOutputTokens < 0 {
		logger.WarnContext(ctx, "Invalid MaxOutputTokens value",
			"value", cfg.MaxOutputTokens,
			"action", "using model default")
	}

	return nil
}
