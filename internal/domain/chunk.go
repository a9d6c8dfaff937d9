package domain

import "strings"

// Chunk is a bounded slice of source text used as the unit of one
// generation call. Start is the rune offset of the chunk in the source text.
type Chunk struct {
	Index int    `json:"index"`
	Start int    `json:"start"`
	Text  string `json:"text"`
}

// IsBlank reports whether the chunk holds only whitespace.
func (c Chunk) IsBlank() bool {
	return strings.TrimSpace(c.Text) == ""
}

// ChunkState is the terminal state of a chunk after a pipeline run.
type ChunkState string

// Chunk states. Every chunk starts Pending and ends in exactly one of the
// other three.
const (
	ChunkPending   ChunkState = "pending"
	ChunkSkipped   ChunkState = "skipped"
	ChunkSucceeded ChunkState = "succeeded"
	ChunkFailed    ChunkState = "failed"
)

// GenerationFailure records why a single chunk produced no flashcards.
type GenerationFailure struct {
	ChunkIndex int    `json:"chunk_index"`
	Kind       string `json:"kind"`
	Cause      string `json:"cause"`
}

// Result is the outcome of one pipeline run.
type Result struct {
	Flashcards    []Flashcard         `json:"flashcards"`
	Failures      []GenerationFailure `json:"failures"`
	ChunkCount    int                 `json:"chunk_count"`
	SkippedChunks []int               `json:"skipped_chunks,omitempty"`
}

// FailedChunkIndices returns the indices of failed chunks in ascending order.
func (r *Result) FailedChunkIndices() []int {
	out := make([]int, 0, len(r.Failures))
	for _, f := range r.Failures {
		out = append(out, f.ChunkIndex)
	}
	return out
}
