package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/phrazzld/scry-flashgen/internal/redact"
)

// Extraction methods
const (
	MethodPDF     = "pdf"
	MethodDOCX    = "docx"
	MethodPPTX    = "pptx"
	MethodCSV     = "csv"
	MethodWebpage = "webpage"
	MethodYouTube = "youtube"
	MethodText    = "text"
)

// fileExtensions lists the accepted upload extensions per method.
var fileExtensions = map[string][]string{
	MethodPDF:  {".pdf"},
	MethodDOCX: {".docx"},
	MethodPPTX: {".pptx"},
	MethodCSV:  {".csv"},
	MethodText: {".txt", ".md"},
}

// Source is the input to an extractor. Upload methods read Data; webpage and
// youtube read URL. Name is the original file name, if any.
type Source struct {
	Name string
	Data []byte
	URL  string
}

// Extractor converts a source into plain text.
type Extractor interface {
	Extract(ctx context.Context, src Source) (string, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, src Source) (string, error)

// Extract implements Extractor.
func (f ExtractorFunc) Extract(ctx context.Context, src Source) (string, error) {
	return f(ctx, src)
}

// Config holds extraction settings.
type Config struct {
	// HTTPTimeout bounds every outbound fetch.
	HTTPTimeout time.Duration

	// MaxBodyBytes caps how much of a fetched page is read.
	MaxBodyBytes int64
}

// DefaultConfig returns a Config with reasonable defaults
func DefaultConfig() Config {
	return Config{
		HTTPTimeout:  30 * time.Second,
		MaxBodyBytes: 10 << 20,
	}
}

// Registry maps method names to extractors.
type Registry struct {
	extractors map[string]Extractor
	logger     *slog.Logger
}

// NewRegistry creates a Registry with every built-in extractor registered.
func NewRegistry(cfg Config, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = DefaultConfig().HTTPTimeout
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultConfig().MaxBodyBytes
	}

	client := &http.Client{Timeout: cfg.HTTPTimeout}

	r := &Registry{
		extractors: make(map[string]Extractor),
		logger:     logger.With("component", "extract"),
	}
	r.Register(MethodPDF, NewPDFExtractor())
	r.Register(MethodDOCX, NewDOCXExtractor())
	r.Register(MethodPPTX, NewPPTXExtractor())
	r.Register(MethodCSV, ExtractorFunc(ExtractCSV))
	r.Register(MethodText, ExtractorFunc(ExtractText))
	r.Register(MethodWebpage, NewWebpageExtractor(client, cfg.MaxBodyBytes))
	r.Register(MethodYouTube, NewYouTubeExtractor(client, cfg.MaxBodyBytes))
	return r
}

// Register adds or replaces the extractor for method.
func (r *Registry) Register(method string, e Extractor) {
	r.extractors[normalizeMethod(method)] = e
}

// Methods returns the registered method names, sorted.
func (r *Registry) Methods() []string {
	methods := make([]string, 0, len(r.extractors))
	for m := range r.extractors {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return methods
}

// Supports reports whether method has a registered extractor.
func (r *Registry) Supports(method string) bool {
	_, ok := r.extractors[normalizeMethod(method)]
	return ok
}

// Extract runs the extractor registered for method.
func (r *Registry) Extract(ctx context.Context, method string, src Source) (string, error) {
	e, ok := r.extractors[normalizeMethod(method)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedMethod, method)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	start := time.Now()
	text, err := e.Extract(ctx, src)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if !errors.Is(err, ErrExtractionFailed) {
			err = fmt.Errorf("%w: %s: %w", ErrExtractionFailed, method, err)
		}
		r.logger.WarnContext(ctx, "extraction failed",
			"method", method,
			"source", src.Name,
			"error", redact.Error(err))
		return "", err
	}

	r.logger.InfoContext(ctx, "extracted text",
		"method", method,
		"source", src.Name,
		"text_length", len(text),
		"duration_ms", time.Since(start).Milliseconds())

	return text, nil
}

// RequiresFile reports whether method reads uploaded bytes rather than a URL.
func RequiresFile(method string) bool {
	_, ok := fileExtensions[normalizeMethod(method)]
	return ok && normalizeMethod(method) != MethodText
}

// RequiresURL reports whether method fetches its input from a URL.
func RequiresURL(method string) bool {
	switch normalizeMethod(method) {
	case MethodWebpage, MethodYouTube:
		return true
	default:
		return false
	}
}

// ValidateFileName checks an upload's extension against the method.
// Methods without a file form accept any name.
func ValidateFileName(method, name string) error {
	allowed, ok := fileExtensions[normalizeMethod(method)]
	if !ok {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, a := range allowed {
		if ext == a {
			return nil
		}
	}
	return fmt.Errorf("%w: %s requires a %s file, got %q",
		ErrInvalidFileType, method, strings.Join(allowed, " or "), filepath.Base(name))
}

func normalizeMethod(method string) string {
	return strings.ToLower(strings.TrimSpace(method))
}
