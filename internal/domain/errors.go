package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyQuestion is returned when a flashcard has no question side.
	ErrEmptyQuestion = errors.New("flashcard question cannot be empty")

	// ErrEmptyAnswer is returned when a flashcard has no answer side.
	ErrEmptyAnswer = errors.New("flashcard answer cannot be empty")

	// ErrInvalidKind is returned when a flashcard kind is not recognised.
	ErrInvalidKind = errors.New("invalid flashcard kind")

	// ErrEmptyChunk is returned when a chunk carries no text.
	ErrEmptyChunk = errors.New("chunk text cannot be empty")
)
