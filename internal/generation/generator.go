package generation

import (
	"context"

	"github.com/phrazzld/scry-flashgen/internal/domain"
	"github.com/phrazzld/scry-flashgen/internal/schema"
)

// Generator defines the interface for generating flashcards from one chunk
// of text. This interface is the boundary between the pipeline and the
// external AI/LLM services.
type Generator interface {
	// Generate creates flashcards of the given schema from chunkText.
	// The returned cards are in the order the model produced them; items that
	// failed schema validation are already removed. Failures are returned as
	// *GenerationError.
	Generate(ctx context.Context, chunkText string, def schema.Definition) ([]domain.Flashcard, error)
}

// Request is a single structured-output call to a model provider.
type Request struct {
	// System is the fixed instruction describing the schema's intent.
	System string

	// Prompt carries the chunk text and the task.
	Prompt string

	// Schema describes the JSON structure the response must follow.
	Schema schema.Definition
}

// Provider is a structured-output-capable language model. Complete returns
// the raw JSON text of the model's answer.
type Provider interface {
	// Name identifies the provider in logs.
	Name() string

	// Complete makes one call. It must honour ctx cancellation and deadlines.
	Complete(ctx context.Context, req Request) (string, error)
}
