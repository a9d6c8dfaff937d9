// Package generation turns one chunk of text into validated flashcards by
// way of an AI/LLM provider.
//
// The Client assembles the prompt for the requested schema, makes a single
// schema-constrained call through a Provider, decodes the JSON response and
// validates every returned item against the schema. Items that fail
// validation are dropped; a response that cannot be decoded at all fails the
// whole call with a GenerationError. The Client never retries: retry policy
// belongs to the caller.
//
// Provider implementations live under internal/platform (Gemini, Anthropic),
// keeping the Generator interface independent of any external service.
package generation
