// Package extract turns uploaded documents, web pages and video transcripts
// into plain text for the flashcard pipeline.
//
// Each source method has an Extractor; the Registry maps method names to
// extractors and normalises their errors. Failures wrap ErrExtractionFailed,
// and unknown methods return ErrUnsupportedMethod. An extractor that reads
// the input successfully but finds no text returns "" and no error.
//
// PDFImages pulls embedded images out of a PDF for illustrated flashcards.
package extract
