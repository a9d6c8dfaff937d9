// Package gemini provides an implementation of the generation.Provider interface
// that uses Google's Gemini API for structured flashcard output.
//
// This package is an infrastructure adapter, connecting the generation client
// to Google's external Gemini AI service. It translates a schema definition
// into a Gemini response schema, requests JSON output constrained by it, and
// maps API failures onto generation error kinds:
//
//   - quota and HTTP 429 errors become rate_limited
//   - deadline errors become timeout
//   - safety blocks and every other failure become provider_error
//
// The provider makes exactly one API call per Complete. Retries are the
// caller's decision.
package gemini
