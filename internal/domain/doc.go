// Package domain contains the core entities of the flashcard generation
// pipeline: chunks of source text, the flashcards generated from them, the
// images that can be attached to illustrated cards, and the per-chunk
// failures recorded during a run. It has no dependencies on infrastructure.
package domain
