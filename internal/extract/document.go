package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"code.sajari.com/docconv"
)

type convertFunc func(io.Reader) (string, map[string]string, error)

// DocumentExtractor converts office documents and PDFs with docconv.
type DocumentExtractor struct {
	kind    string
	convert convertFunc
}

// NewPDFExtractor returns an extractor for PDF files. docconv shells out to
// pdftotext for PDFs, so poppler-utils must be installed.
func NewPDFExtractor() *DocumentExtractor {
	return &DocumentExtractor{kind: MethodPDF, convert: docconv.ConvertPDF}
}

// NewDOCXExtractor returns an extractor for Word documents.
func NewDOCXExtractor() *DocumentExtractor {
	return &DocumentExtractor{kind: MethodDOCX, convert: docconv.ConvertDocx}
}

// NewPPTXExtractor returns an extractor for PowerPoint decks.
func NewPPTXExtractor() *DocumentExtractor {
	return &DocumentExtractor{kind: MethodPPTX, convert: docconv.ConvertPptx}
}

// Extract implements Extractor.
func (e *DocumentExtractor) Extract(ctx context.Context, src Source) (string, error) {
	if len(src.Data) == 0 {
		return "", fmt.Errorf("%w: %w: %s upload is empty", ErrExtractionFailed, ErrMissingInput, e.kind)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	text, _, err := e.convert(bytes.NewReader(src.Data))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrExtractionFailed, e.kind, err)
	}

	return normalizeLines(text), nil
}

// normalizeLines trims every line and collapses runs of blank lines into a
// single paragraph break.
func normalizeLines(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if len(out) > 0 && !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
