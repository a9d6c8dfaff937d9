package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/scry-flashgen/internal/chunker"
	"github.com/phrazzld/scry-flashgen/internal/domain"
	"github.com/phrazzld/scry-flashgen/internal/schema"
)

// Runner is the orchestrator behaviour Service depends on.
type Runner interface {
	Run(ctx context.Context, chunks []domain.Chunk, def schema.Definition, images []domain.ImageRef) (*domain.Result, error)
}

// Service turns raw text into flashcards.
type Service struct {
	splitter *chunker.Splitter
	runner   Runner
	logger   *slog.Logger
}

// NewService creates a Service that splits with splitter and generates with runner.
func NewService(splitter *chunker.Splitter, runner Runner, logger *slog.Logger) (*Service, error) {
	if splitter == nil {
		return nil, fmt.Errorf("splitter cannot be nil")
	}
	if runner == nil {
		return nil, fmt.Errorf("runner cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		splitter: splitter,
		runner:   runner,
		logger:   logger.With("component", "pipeline_service"),
	}, nil
}

// GenerateFlashcards resolves schemaTag, splits text and runs every chunk
// through the generator. An unknown tag fails before any work with
// schema.ErrUnsupportedSchema. Text that yields no chunks returns an empty
// result.
func (s *Service) GenerateFlashcards(
	ctx context.Context,
	text string,
	schemaTag string,
	images []domain.ImageRef,
) (*domain.Result, error) {
	def, err := schema.Resolve(schemaTag)
	if err != nil {
		return nil, err
	}

	chunks := s.splitter.Split(text)
	s.logger.InfoContext(ctx, "split text into chunks",
		"schema", def.Kind,
		"text_length", len(text),
		"chunk_count", len(chunks),
		"image_count", len(images))

	if len(chunks) == 0 {
		return &domain.Result{
			Flashcards: []domain.Flashcard{},
			Failures:   []domain.GenerationFailure{},
		}, nil
	}

	return s.runner.Run(ctx, chunks, def, images)
}
