package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/scry-flashgen/internal/api"
	"github.com/phrazzld/scry-flashgen/internal/bootstrap"
	"github.com/phrazzld/scry-flashgen/internal/config"
	"github.com/phrazzld/scry-flashgen/internal/extract"
)

// application holds the shared application dependencies.
type application struct {
	config *config.Config
	logger *slog.Logger

	services         *bootstrap.Services
	flashcardHandler *api.FlashcardHandler
}

// newApplication creates a new application instance with all dependencies
// initialized. A nil newProvider selects the provider named in the config.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	newProvider bootstrap.ProviderFactory,
) (*application, error) {
	services, err := bootstrap.Build(ctx, cfg, logger, newProvider)
	if err != nil {
		return nil, err
	}

	app := &application{
		config:   cfg,
		logger:   logger,
		services: services,
		flashcardHandler: api.NewFlashcardHandler(
			services.Extractors,
			services.Flashcards,
			extract.PDFImages,
			cfg.Extract.MaxUploadBytes(),
			logger,
		),
	}

	logger.Info("Application initialized successfully",
		"provider", services.Provider,
		"methods", services.Extractors.Methods())
	return app, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
