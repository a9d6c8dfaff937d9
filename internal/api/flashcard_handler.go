package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/phrazzld/scry-flashgen/internal/api/shared"
	"github.com/phrazzld/scry-flashgen/internal/domain"
	"github.com/phrazzld/scry-flashgen/internal/extract"
	"github.com/phrazzld/scry-flashgen/internal/platform/logger"
	"github.com/phrazzld/scry-flashgen/internal/redact"
	"github.com/phrazzld/scry-flashgen/internal/schema"
)

// multipartMemory is how much of a multipart body is kept in memory before
// parts spill to temporary files.
const multipartMemory = 8 << 20

// TextExtractor turns a source into text for a named method.
type TextExtractor interface {
	Supports(method string) bool
	Extract(ctx context.Context, method string, src extract.Source) (string, error)
}

// FlashcardGenerator runs the generation pipeline over extracted text.
type FlashcardGenerator interface {
	GenerateFlashcards(ctx context.Context, text, schemaTag string, images []domain.ImageRef) (*domain.Result, error)
}

// ImageExtractorFunc returns the images embedded in an uploaded PDF.
type ImageExtractorFunc func(ctx context.Context, data []byte) ([]domain.ImageRef, error)

// FlashcardHandler handles flashcard generation requests.
type FlashcardHandler struct {
	extractor TextExtractor
	generator FlashcardGenerator
	images    ImageExtractorFunc
	maxUpload int64
	logger    *slog.Logger
}

// NewFlashcardHandler creates a new FlashcardHandler. A nil images func uses
// extract.PDFImages and a non-positive maxUpload means 25 MB.
func NewFlashcardHandler(
	extractor TextExtractor,
	generator FlashcardGenerator,
	images ImageExtractorFunc,
	maxUpload int64,
	logger *slog.Logger,
) *FlashcardHandler {
	if extractor == nil || generator == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("extractor and generator cannot be nil for FlashcardHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for FlashcardHandler")
	}
	if images == nil {
		images = extract.PDFImages
	}
	if maxUpload <= 0 {
		maxUpload = 25 << 20
	}

	return &FlashcardHandler{
		extractor: extractor,
		generator: generator,
		images:    images,
		maxUpload: maxUpload,
		logger:    logger.With(slog.String("component", "flashcard_handler")),
	}
}

// upload is the optional file part of a request.
type upload struct {
	name string
	data []byte
}

// Generate handles POST /flashcard requests.
// It extracts text from the submitted input and returns the generated cards.
func (h *FlashcardHandler) Generate(w http.ResponseWriter, r *http.Request) {
	runID := uuid.New()
	log := logger.FromContextOrDefault(r.Context(), h.logger).With(slog.String("run_id", runID.String()))
	ctx := logger.WithLogger(shared.WithRunID(r.Context(), runID), log)
	r = r.WithContext(ctx)

	form, file, err := h.parseForm(w, r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := shared.ValidateRequest(&form); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	if _, err := schema.Resolve(form.Type); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if !h.extractor.Supports(form.Method) {
		HandleAPIError(w, r, fmt.Errorf("%w: %q", extract.ErrUnsupportedMethod, form.Method), "")
		return
	}
	if form.WithImages && form.Method != extract.MethodPDF {
		HandleAPIError(w, r, fmt.Errorf("%w: with_images requires method pdf", ErrInvalidRequest), "")
		return
	}

	src, err := buildSource(form, file)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.InfoContext(ctx, "flashcard request received",
		slog.String("type", form.Type),
		slog.String("method", form.Method),
		slog.String("source", redact.String(src.Name)),
		slog.Bool("with_images", form.WithImages))

	text, err := h.extractor.Extract(ctx, form.Method, src)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to extract text")
		return
	}
	if strings.TrimSpace(text) == "" {
		HandleAPIError(w, r, fmt.Errorf("%w: method %s", ErrNoText, form.Method), "")
		return
	}

	var images []domain.ImageRef
	if form.WithImages {
		images, err = h.images(ctx, src.Data)
		if err != nil {
			if ctx.Err() != nil {
				HandleAPIError(w, r, ctx.Err(), "")
				return
			}
			log.WarnContext(ctx, "image extraction failed, continuing without images",
				slog.String("error", redact.Error(err)))
			images = nil
		}
	}

	result, err := h.generator.GenerateFlashcards(ctx, text, form.Type, images)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate flashcards")
		return
	}

	log.InfoContext(ctx, "flashcards generated",
		slog.Int("flashcard_count", len(result.Flashcards)),
		slog.Int("failure_count", len(result.Failures)),
		slog.Int("chunk_count", result.ChunkCount))

	shared.RespondWithJSON(w, r, http.StatusOK, resultToResponse(runID.String(), result))
}

// parseForm reads the form fields and the optional file part.
func (h *FlashcardHandler) parseForm(w http.ResponseWriter, r *http.Request) (FlashcardForm, *upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return FlashcardForm{}, nil, h.formError(err)
	}

	withImages, err := shared.FormBool(r, "with_images")
	if err != nil {
		return FlashcardForm{}, nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	form := FlashcardForm{
		Type:       shared.FormString(r, "type"),
		Method:     strings.ToLower(shared.FormString(r, "method")),
		Text:       r.FormValue("text"),
		URL:        shared.FormString(r, "url"),
		WithImages: withImages,
	}

	f, header, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return form, nil, nil
	case err != nil:
		return FlashcardForm{}, nil, h.formError(err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return FlashcardForm{}, nil, h.formError(err)
	}
	return form, &upload{name: header.Filename, data: data}, nil
}

func (h *FlashcardHandler) formError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("%w: limit is %d bytes", ErrUploadTooLarge, tooLarge.Limit)
	}
	return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
}

// buildSource picks the input the method reads: the text field for text,
// the uploaded file for document methods and the url for web methods.
// Uploaded HTML is accepted for webpage in place of a url.
func buildSource(form FlashcardForm, file *upload) (extract.Source, error) {
	method := form.Method

	switch {
	case method == extract.MethodText:
		if strings.TrimSpace(form.Text) != "" {
			return extract.Source{Name: "text", Data: []byte(form.Text)}, nil
		}
		if file == nil {
			return extract.Source{}, fmt.Errorf("%w: text requires a text field or a file", extract.ErrMissingInput)
		}
		if err := extract.ValidateFileName(method, file.name); err != nil {
			return extract.Source{}, err
		}
		return extract.Source{Name: file.name, Data: file.data}, nil

	case extract.RequiresFile(method):
		if file == nil {
			return extract.Source{}, fmt.Errorf("%w: %s requires a file", extract.ErrMissingInput, method)
		}
		if err := extract.ValidateFileName(method, file.name); err != nil {
			return extract.Source{}, err
		}
		return extract.Source{Name: file.name, Data: file.data}, nil

	case extract.RequiresURL(method):
		if form.URL != "" {
			return extract.Source{Name: form.URL, URL: form.URL}, nil
		}
		if method == extract.MethodWebpage && file != nil {
			return extract.Source{Name: file.name, Data: file.data}, nil
		}
		return extract.Source{}, fmt.Errorf("%w: %s requires a url", extract.ErrMissingInput, method)

	default:
		src := extract.Source{URL: form.URL}
		if file != nil {
			src.Name, src.Data = file.name, file.data
		}
		return src, nil
	}
}

// Welcome handles GET / requests.
func Welcome(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, WelcomeResponse{Message: WelcomeMessage})
}

// Health handles GET /health requests.
func Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
