package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies why a generation call failed.
type ErrorKind string

// Generation failure kinds
const (
	KindTimeout         ErrorKind = "timeout"
	KindInvalidResponse ErrorKind = "invalid_response"
	KindProviderError   ErrorKind = "provider_error"
	KindRateLimited     ErrorKind = "rate_limited"
)

// Common errors returned by the generation package
var (
	// ErrTimeout is returned when a call exceeds its time budget
	ErrTimeout = errors.New("generation call timed out")

	// ErrInvalidResponse is returned when the LLM response cannot be parsed or is malformed
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrProviderError is returned when the provider fails for any other reason
	ErrProviderError = errors.New("language model provider error")

	// ErrRateLimited is returned when the provider rejects the call for quota reasons
	ErrRateLimited = errors.New("language model rate limit exceeded")

	// ErrContentBlocked is returned when the LLM blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrEmptyChunkText is returned when asked to generate from blank text
	ErrEmptyChunkText = errors.New("chunk text cannot be empty")

	// ErrInvalidConfig is returned when the generator configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")
)

// GenerationError is the error returned by a failed generation call.
type GenerationError struct {
	Kind ErrorKind
	Err  error
}

// NewError wraps err with the given kind.
func NewError(kind ErrorKind, err error) *GenerationError {
	return &GenerationError{Kind: kind, Err: err}
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	if e.Err == nil {
		return e.sentinel().Error()
	}
	return fmt.Sprintf("%s: %v", e.sentinel(), e.Err)
}

// Unwrap exposes both the kind sentinel and the underlying cause, so
// errors.Is matches either.
func (e *GenerationError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.sentinel()}
	}
	return []error{e.sentinel(), e.Err}
}

func (e *GenerationError) sentinel() error {
	switch e.Kind {
	case KindTimeout:
		return ErrTimeout
	case KindInvalidResponse:
		return ErrInvalidResponse
	case KindRateLimited:
		return ErrRateLimited
	default:
		return ErrProviderError
	}
}

// KindOf returns the kind of a generation error, or KindProviderError for
// any other non-nil error.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Kind
	}
	return KindProviderError
}

// IsRetryable reports whether a failed call may succeed if repeated.
// Invalid responses are treated as permanent.
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case KindTimeout, KindRateLimited:
		return true
	case KindProviderError:
		return !errors.Is(err, ErrContentBlocked) && !errors.Is(err, context.Canceled)
	default:
		return false
	}
}

// IsRateLimitError recognises quota errors by the text providers put in
// them (HTTP 429, gRPC RESOURCE_EXHAUSTED, "quota", "rate limit").
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "rate_limit")
}

// Classify wraps a raw provider error in a GenerationError of the right
// kind. Errors that are already classified are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return err
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return NewError(KindTimeout, err)
	case IsRateLimitError(err):
		return NewError(KindRateLimited, err)
	default:
		return NewError(KindProviderError, err)
	}
}
