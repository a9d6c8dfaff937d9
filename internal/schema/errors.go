package schema

import "errors"

// Error definitions for the schema package.
var (
	// ErrUnsupportedSchema is returned when a caller asks for an unknown
	// flashcard type.
	ErrUnsupportedSchema = errors.New("unsupported flashcard schema")

	// ErrMalformedFlashcard is returned when a generated item fails the
	// validation rule of its schema.
	ErrMalformedFlashcard = errors.New("malformed flashcard")
)
