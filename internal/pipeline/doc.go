// Package pipeline runs chunked text through a flashcard generator.
//
// The Orchestrator fans chunks out to a bounded pool of workers, keeps every
// chunk's outcome in its own slot, and assembles the results in chunk order
// once all workers are done. A failed chunk is recorded as data and never
// aborts the run; only a run in which every non-blank chunk failed is an
// error. For the illustrated schema, a caller-supplied ordered image list is
// zipped onto the cards in output order.
//
// Service is the single entry point used by the transports: resolve the
// schema, split the text, run the orchestrator.
package pipeline
