package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/scry-flashgen/internal/api/shared"
	"github.com/phrazzld/scry-flashgen/internal/extract"
	"github.com/phrazzld/scry-flashgen/internal/pipeline"
	"github.com/phrazzld/scry-flashgen/internal/schema"
)

var (
	// ErrInvalidRequest is returned for malformed or inconsistent form input.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNoText is returned when extraction succeeds but yields only whitespace.
	ErrNoText = errors.New("no text extracted")

	// ErrUploadTooLarge is returned when the request body exceeds the upload limit.
	ErrUploadTooLarge = errors.New("upload too large")
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusInternalServerError

	// Cancellation
	case errors.Is(err, context.Canceled):
		return shared.StatusClientClosedRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable

	case errors.Is(err, ErrUploadTooLarge):
		return http.StatusRequestEntityTooLarge

	// Bad request errors. Missing input and bad URLs are wrapped in
	// ErrExtractionFailed, so they must be checked first.
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, schema.ErrUnsupportedSchema),
		errors.Is(err, extract.ErrUnsupportedMethod),
		errors.Is(err, extract.ErrInvalidFileType),
		errors.Is(err, extract.ErrMissingInput),
		errors.Is(err, extract.ErrInvalidURL):
		return http.StatusBadRequest

	case errors.Is(err, ErrNoText),
		errors.Is(err, extract.ErrExtractionFailed):
		return http.StatusUnprocessableEntity

	case errors.Is(err, pipeline.ErrAllChunksFailed):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err. Raw error
// text is never returned.
func GetSafeErrorMessage(err error) string {
	switch {
	case err == nil:
		return "An unexpected error occurred"
	case errors.Is(err, context.Canceled):
		return "Request cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return "Request timed out"
	case errors.Is(err, ErrUploadTooLarge):
		return "Uploaded file is too large"
	case errors.Is(err, schema.ErrUnsupportedSchema):
		return "Unsupported flashcard type"
	case errors.Is(err, extract.ErrUnsupportedMethod):
		return "Unsupported extraction method"
	case errors.Is(err, extract.ErrInvalidFileType):
		return "File type does not match the extraction method"
	case errors.Is(err, extract.ErrMissingInput):
		return "No input provided for the extraction method"
	case errors.Is(err, extract.ErrInvalidURL):
		return "Invalid URL"
	case errors.Is(err, ErrInvalidRequest):
		return "Invalid request"
	case errors.Is(err, ErrNoText):
		return "No text could be extracted from the input"
	case errors.Is(err, extract.ErrExtractionFailed):
		return "Failed to extract text from the input"
	case errors.Is(err, pipeline.ErrAllChunksFailed):
		return "Flashcard generation failed"
	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the status and safe message for err and logs the
// redacted error. defaultMsg replaces the generic message for 500s.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && defaultMsg != "" {
		message = defaultMsg
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// SanitizeValidationError turns a validator error into a message naming the
// offending form field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation error"
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, "invalid "+strings.ToLower(fe.Field())+": "+validationTagMessage(fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}

func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "url", "http_url":
		return "invalid url"
	case "oneof":
		return "invalid value"
	case "max":
		return "too long"
	default:
		return "validation failed"
	}
}
