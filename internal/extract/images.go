package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/phrazzld/scry-flashgen/internal/domain"
)

// PDFImages returns the images embedded in a PDF in page order, then in the
// order pdfcpu reports them within a page. Payloads are base64 encoded.
func PDFImages(ctx context.Context, data []byte) ([]domain.ImageRef, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %w: pdf upload is empty", ErrExtractionFailed, ErrMissingInput)
	}

	var images []domain.ImageRef
	digest := func(img model.Image, _ bool, _ int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if img.Reader == nil {
			return nil
		}
		payload, err := io.ReadAll(img)
		if err != nil {
			return fmt.Errorf("read image %s: %w", img.Name, err)
		}
		images = append(images, domain.ImageRef{
			Name:     imageName(img),
			Page:     img.PageNr,
			MIMEType: mimeType(img.FileType),
			Data:     base64.StdEncoding.EncodeToString(payload),
		})
		return nil
	}

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractImages(bytes.NewReader(data), nil, digest, conf); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: pdf images: %v", ErrExtractionFailed, err)
	}

	sort.SliceStable(images, func(i, j int) bool {
		return images[i].Page < images[j].Page
	})
	return images, nil
}

func imageName(img model.Image) string {
	name := img.Name
	if name == "" {
		name = "image"
	}
	if img.FileType != "" && !strings.HasSuffix(name, "."+img.FileType) {
		name = fmt.Sprintf("page%d_%s.%s", img.PageNr, name, img.FileType)
	}
	return name
}

func mimeType(fileType string) string {
	switch strings.ToLower(fileType) {
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "jpx", "jp2":
		return "image/jp2"
	case "tif", "tiff":
		return "image/tiff"
	case "webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
