// Package bootstrap wires a loaded configuration into the extraction
// registry and the flashcard generation service. Both the HTTP server and
// the CLI build their dependencies here.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/scry-flashgen/internal/chunker"
	"github.com/phrazzld/scry-flashgen/internal/config"
	"github.com/phrazzld/scry-flashgen/internal/extract"
	"github.com/phrazzld/scry-flashgen/internal/generation"
	"github.com/phrazzld/scry-flashgen/internal/pipeline"
	"github.com/phrazzld/scry-flashgen/internal/platform/anthropic"
	"github.com/phrazzld/scry-flashgen/internal/platform/gemini"
)

// ErrUnknownProvider is returned for an llm.provider with no adapter.
var ErrUnknownProvider = errors.New("unknown llm provider")

// ProviderFactory builds the model provider for an LLM configuration.
type ProviderFactory func(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (generation.Provider, error)

// Services holds everything needed to serve a flashcard request.
type Services struct {
	Extractors *extract.Registry
	Flashcards *pipeline.Service
	Provider   string
}

// NewProvider returns the adapter named by cfg.Provider.
func NewProvider(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (generation.Provider, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		p, err := gemini.NewProvider(ctx, logger, cfg)
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.ProviderAnthropic:
		p, err := anthropic.NewProvider(logger, cfg)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

// Build creates the services described by cfg. A nil newProvider uses
// NewProvider.
func Build(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	newProvider ProviderFactory,
) (*Services, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if newProvider == nil {
		newProvider = NewProvider
	}

	provider, err := newProvider(ctx, logger, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM provider: %w", err)
	}

	client, err := generation.NewClient(provider, generation.Config{
		Timeout:     cfg.LLM.Timeout(),
		TemplateDir: cfg.LLM.PromptTemplateDir,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation client: %w", err)
	}

	orchestrator, err := pipeline.NewOrchestrator(client, pipeline.Config{
		Concurrency: cfg.Pipeline.Concurrency,
		MaxAttempts: cfg.Pipeline.MaxAttempts,
		RetryDelay:  cfg.Pipeline.RetryDelay(),
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create orchestrator: %w", err)
	}

	splitter, err := chunker.New(cfg.Chunking.Size, cfg.Chunking.Overlap)
	if err != nil {
		return nil, fmt.Errorf("failed to create chunker: %w", err)
	}

	service, err := pipeline.NewService(splitter, orchestrator, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create flashcard service: %w", err)
	}

	registry := extract.NewRegistry(extract.Config{
		HTTPTimeout:  cfg.Extract.HTTPTimeout(),
		MaxBodyBytes: cfg.Extract.MaxUploadBytes(),
	}, logger)

	logger.Info("flashcard services initialized",
		"provider", provider.Name(),
		"model", cfg.LLM.ModelName,
		"chunk_size", cfg.Chunking.Size,
		"chunk_overlap", cfg.Chunking.Overlap,
		"concurrency", cfg.Pipeline.Concurrency,
		"max_attempts", cfg.Pipeline.MaxAttempts)

	return &Services{
		Extractors: registry,
		Flashcards: service,
		Provider:   provider.Name(),
	}, nil
}
