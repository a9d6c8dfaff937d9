// Package chunker splits extracted document text into bounded, overlapping
// windows that are each small enough for a single generation call.
//
// Splitting is recursive: the text is broken on paragraph breaks first, then
// line breaks, then sentence ends, then spaces, and finally on individual
// runes when nothing else fits. The resulting pieces are merged back into
// windows of at most Size runes, and each new window is seeded with trailing
// pieces of the previous one totalling at most Overlap runes.
package chunker
