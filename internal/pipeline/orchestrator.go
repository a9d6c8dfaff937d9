package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/phrazzld/scry-flashgen/internal/domain"
	"github.com/phrazzld/scry-flashgen/internal/generation"
	"github.com/phrazzld/scry-flashgen/internal/redact"
	"github.com/phrazzld/scry-flashgen/internal/schema"
)

// Config holds the orchestrator settings.
type Config struct {
	// Concurrency is the maximum number of generation calls in flight.
	Concurrency int

	// MaxAttempts is the number of generation calls per chunk; 1 disables retries.
	MaxAttempts int

	// RetryDelay is the base backoff between attempts.
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with reasonable defaults
func DefaultConfig() Config {
	return Config{
		Concurrency: 4,
		MaxAttempts: 1,
		RetryDelay:  500 * time.Millisecond,
	}
}

// Orchestrator runs chunks through a generator with bounded concurrency.
type Orchestrator struct {
	generator generation.Generator
	cfg       Config
	logger    *slog.Logger
}

// chunkOutcome is the slot one worker fills for its chunk.
type chunkOutcome struct {
	state domain.ChunkState
	cards []domain.Flashcard
	err   error
}

// NewOrchestrator creates an Orchestrator. Invalid config values fall back to
// defaults.
func NewOrchestrator(gen generation.Generator, cfg Config, logger *slog.Logger) (*Orchestrator, error) {
	if gen == nil {
		return nil, ErrNilGenerator
	}
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.Concurrency <= 0 {
		fallback := DefaultConfig().Concurrency
		logger.Warn("invalid concurrency specified, using default",
			"specified", cfg.Concurrency,
			"default", fallback)
		cfg.Concurrency = fallback
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = 0
	}

	return &Orchestrator{
		generator: gen,
		cfg:       cfg,
		logger:    logger.With("component", "orchestrator"),
	}, nil
}

// Run generates flashcards for every chunk and assembles them in chunk order.
//
// Blank chunks are skipped. A failed chunk is recorded in Result.Failures and
// the run continues. When def is the illustrated schema, images are assigned
// one per card in output order until exhausted; remaining cards get a nil
// Image. If the context is cancelled, chunks not yet started are not issued
// and ctx.Err() is returned. If every non-blank chunk failed, the error is an
// *AllChunksFailedError.
func (o *Orchestrator) Run(
	ctx context.Context,
	chunks []domain.Chunk,
	def schema.Definition,
	images []domain.ImageRef,
) (*domain.Result, error) {
	if !def.Kind.IsValid() {
		return nil, fmt.Errorf("%w: %q", schema.ErrUnsupportedSchema, def.Kind)
	}

	start := time.Now()
	outcomes := make([]chunkOutcome, len(chunks))
	for i := range outcomes {
		outcomes[i].state = domain.ChunkPending
	}

	var g errgroup.Group
	g.SetLimit(o.cfg.Concurrency)

	for i := range chunks {
		if ctx.Err() != nil {
			break
		}

		if chunks[i].IsBlank() {
			outcomes[i].state = domain.ChunkSkipped
			o.logger.DebugContext(ctx, "skipping blank chunk", "chunk_index", chunks[i].Index)
			continue
		}

		g.Go(func() error {
			// Each goroutine writes only outcomes[i].
			if ctx.Err() != nil {
				return nil
			}
			cards, err := o.generateWithRetry(ctx, chunks[i], def)
			if err != nil {
				outcomes[i] = chunkOutcome{state: domain.ChunkFailed, err: err}
				return nil
			}
			outcomes[i] = chunkOutcome{state: domain.ChunkSucceeded, cards: cards}
			return nil
		})
	}

	_ = g.Wait() // workers never return errors

	if err := ctx.Err(); err != nil {
		o.logger.WarnContext(ctx, "pipeline run cancelled", "error", err)
		return nil, err
	}

	result := o.assemble(ctx, chunks, outcomes)

	if def.Kind == domain.KindIllustrated {
		attachImages(result.Flashcards, images)
	}

	nonBlank := len(chunks) - len(result.SkippedChunks)
	if nonBlank > 0 && len(result.Failures) == nonBlank {
		o.logger.ErrorContext(ctx, "all chunks failed",
			"chunk_count", len(chunks),
			"failures", len(result.Failures))
		return nil, &AllChunksFailedError{Failures: result.Failures}
	}

	o.logger.InfoContext(ctx, "pipeline run complete",
		"schema", def.Kind,
		"chunk_count", len(chunks),
		"flashcards", len(result.Flashcards),
		"failures", len(result.Failures),
		"skipped", len(result.SkippedChunks),
		"duration_ms", time.Since(start).Milliseconds())

	return result, nil
}

// assemble flushes the per-chunk outcomes in chunk order.
func (o *Orchestrator) assemble(ctx context.Context, chunks []domain.Chunk, outcomes []chunkOutcome) *domain.Result {
	result := &domain.Result{
		Flashcards: []domain.Flashcard{},
		Failures:   []domain.GenerationFailure{},
		ChunkCount: len(chunks),
	}

	for i, out := range outcomes {
		index := chunks[i].Index
		switch out.state {
		case domain.ChunkSkipped:
			result.SkippedChunks = append(result.SkippedChunks, index)
		case domain.ChunkSucceeded:
			for _, card := range out.cards {
				card.ChunkIndex = index
				result.Flashcards = append(result.Flashcards, card)
			}
		case domain.ChunkFailed:
			failure := domain.GenerationFailure{
				ChunkIndex: index,
				Kind:       string(generation.KindOf(out.err)),
				Cause:      redact.Error(out.err),
			}
			o.logger.WarnContext(ctx, "chunk generation failed",
				"chunk_index", index,
				"kind", failure.Kind,
				"error", failure.Cause)
			result.Failures = append(result.Failures, failure)
		}
	}

	return result
}

// attachImages zips images onto cards in order. Cards beyond the last image
// get an explicit nil.
func attachImages(cards []domain.Flashcard, images []domain.ImageRef) {
	for i := range cards {
		if i < len(images) {
			img := images[i]
			cards[i].Image = &img
		} else {
			cards[i].Image = nil
		}
	}
}
