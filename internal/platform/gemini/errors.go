package gemini

import "errors"

// Error definitions for the gemini package.
var (
	// ErrEmptyPrompt is returned when Complete is called without a prompt.
	ErrEmptyPrompt = errors.New("prompt cannot be empty")

	// ErrNoCandidates is returned when the API answers without any candidate.
	ErrNoCandidates = errors.New("no content generated")
)
