package pipeline

import (
	"errors"
	"fmt"

	"github.com/phrazzld/scry-flashgen/internal/domain"
)

var (
	// ErrAllChunksFailed is returned when no non-blank chunk produced a
	// successful generation call.
	ErrAllChunksFailed = errors.New("all chunks failed")

	// ErrNilGenerator is returned when an orchestrator is built without a generator.
	ErrNilGenerator = errors.New("generator cannot be nil")
)

// AllChunksFailedError carries the per-chunk failures of a run that produced
// nothing. It matches ErrAllChunksFailed with errors.Is.
type AllChunksFailedError struct {
	Failures []domain.GenerationFailure
}

// Error implements the error interface.
func (e *AllChunksFailedError) Error() string {
	if len(e.Failures) == 0 {
		return ErrAllChunksFailed.Error()
	}
	first := e.Failures[0]
	return fmt.Sprintf("%s: %d chunk(s) failed, first at chunk %d (%s)",
		ErrAllChunksFailed, len(e.Failures), first.ChunkIndex, first.Kind)
}

// Unwrap returns ErrAllChunksFailed.
func (e *AllChunksFailedError) Unwrap() error {
	return ErrAllChunksFailed
}
