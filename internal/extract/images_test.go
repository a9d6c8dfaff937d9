package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPDFImages_InvalidInput(t *testing.T) {
	t.Parallel()

	_, err := PDFImages(context.Background(), nil)
	assert.ErrorIs(t, err, ErrMissingInput)

	_, err = PDFImages(context.Background(), []byte("definitely not a pdf"))
	assert.ErrorIs(t, err, ErrExtractionFailed)
}

func TestMimeType(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"png":   "image/png",
		"JPG":   "image/jpeg",
		"jpeg":  "image/jpeg",
		"tif":   "image/tiff",
		"jpx":   "image/jp2",
		"ccitt": "application/octet-stream",
	}
	for in, want := range tests {
		assert.Equal(t, want, mimeType(in), in)
	}
}
