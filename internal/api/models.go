package api

import (
	"github.com/phrazzld/scry-flashgen/internal/domain"
)

// WelcomeMessage is returned by the root endpoint.
const WelcomeMessage = "Welcome to the flashcard generation prototype!"

// WelcomeResponse is the body of GET /.
type WelcomeResponse struct {
	Message string `json:"message"`
}

// FlashcardForm holds the multipart fields of POST /flashcard.
type FlashcardForm struct {
	Type       string `form:"type"   validate:"required,max=32"`
	Method     string `form:"method" validate:"required,max=32"`
	Text       string `form:"text"`
	URL        string `form:"url"    validate:"omitempty,http_url"`
	WithImages bool   `form:"with_images"`
}

// FlashcardResponse is the successful body of POST /flashcard.
type FlashcardResponse struct {
	RunID         string                     `json:"run_id"`
	Flashcards    []domain.Flashcard         `json:"flashcards"`
	Failures      []domain.GenerationFailure `json:"failures"`
	ChunkCount    int                        `json:"chunk_count"`
	SkippedChunks []int                      `json:"skipped_chunks,omitempty"`
}

func resultToResponse(runID string, res *domain.Result) FlashcardResponse {
	resp := FlashcardResponse{
		RunID:         runID,
		Flashcards:    res.Flashcards,
		Failures:      res.Failures,
		ChunkCount:    res.ChunkCount,
		SkippedChunks: res.SkippedChunks,
	}
	if resp.Flashcards == nil {
		resp.Flashcards = []domain.Flashcard{}
	}
	if resp.Failures == nil {
		resp.Failures = []domain.GenerationFailure{}
	}
	return resp
}
