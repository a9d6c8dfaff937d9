package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/template"
	"time"

	"github.com/phrazzld/scry-flashgen/internal/domain"
	"github.com/phrazzld/scry-flashgen/internal/schema"
)

// DefaultTimeout bounds a single provider call when Config.Timeout is zero.
const DefaultTimeout = 60 * time.Second

// Config holds the Client settings.
type Config struct {
	// Timeout bounds each provider call.
	Timeout time.Duration

	// TemplateDir optionally holds <kind>.tmpl prompt overrides.
	TemplateDir string
}

// Client implements Generator on top of a Provider.
type Client struct {
	provider  Provider
	logger    *slog.Logger
	timeout   time.Duration
	templates map[domain.Kind]*template.Template
}

// Client implements the Generator interface
var _ Generator = (*Client)(nil)

// NewClient creates a Client that sends requests through provider.
func NewClient(provider Provider, cfg Config, logger *slog.Logger) (*Client, error) {
	if provider == nil {
		return nil, fmt.Errorf("%w: provider cannot be nil", ErrInvalidConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("%w: timeout cannot be negative", ErrInvalidConfig)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	templates, err := loadTemplates(cfg.TemplateDir)
	if err != nil {
		return nil, err
	}

	return &Client{
		provider:  provider,
		logger:    logger.With("component", "generation_client", "provider", provider.Name()),
		timeout:   cfg.Timeout,
		templates: templates,
	}, nil
}

// Generate implements Generator. It makes exactly one provider call.
func (c *Client) Generate(
	ctx context.Context,
	chunkText string,
	def schema.Definition,
) ([]domain.Flashcard, error) {
	if strings.TrimSpace(chunkText) == "" {
		return nil, ErrEmptyChunkText
	}

	tmpl, ok := c.templates[def.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", schema.ErrUnsupportedSchema, def.Kind)
	}

	prompt, err := buildPrompt(tmpl, chunkText, def)
	if err != nil {
		return nil, NewError(KindProviderError, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	raw, err := c.provider.Complete(callCtx, Request{
		System: def.Instruction,
		Prompt: prompt,
		Schema: def,
	})
	elapsed := time.Since(start)

	if err != nil {
		// A deadline from the per-call budget is a timeout even when the
		// provider reports it some other way.
		if ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			err = NewError(KindTimeout, err)
		}
		err = Classify(err)
		c.logger.WarnContext(ctx, "provider call failed",
			"schema", def.Kind,
			"kind", KindOf(err),
			"duration_ms", elapsed.Milliseconds(),
			"error", err)
		return nil, err
	}

	cards, dropped, err := decodeCards(raw, def)
	if err != nil {
		c.logger.WarnContext(ctx, "unparseable provider response",
			"schema", def.Kind,
			"response_length", len(raw),
			"error", err)
		return nil, err
	}

	if dropped > 0 {
		c.logger.DebugContext(ctx, "dropped malformed flashcards",
			"schema", def.Kind,
			"dropped", dropped,
			"kept", len(cards))
	}

	c.logger.DebugContext(ctx, "generated flashcards",
		"schema", def.Kind,
		"count", len(cards),
		"duration_ms", elapsed.Milliseconds())

	return cards, nil
}

// responseEnvelope is the structured output shape every schema asks for.
type responseEnvelope struct {
	Flashcards *[]json.RawMessage `json:"flashcards"`
}

// decodeCards parses the provider output and validates each item. It returns
// the valid cards, the number of dropped items, and an error only when the
// response as a whole is unusable.
func decodeCards(raw string, def schema.Definition) ([]domain.Flashcard, int, error) {
	body := stripCodeFence(raw)
	if body == "" {
		return nil, 0, NewError(KindInvalidResponse, errors.New("empty response"))
	}

	var items []json.RawMessage
	if strings.HasPrefix(body, "[") {
		if err := json.Unmarshal([]byte(body), &items); err != nil {
			return nil, 0, NewError(KindInvalidResponse, fmt.Errorf("failed to decode card array: %w", err))
		}
	} else {
		var envelope responseEnvelope
		if err := json.Unmarshal([]byte(body), &envelope); err != nil {
			return nil, 0, NewError(KindInvalidResponse, fmt.Errorf("failed to decode response: %w", err))
		}
		if envelope.Flashcards == nil {
			return nil, 0, NewError(KindInvalidResponse, errors.New("response has no flashcards field"))
		}
		items = *envelope.Flashcards
	}

	cards := make([]domain.Flashcard, 0, len(items))
	dropped := 0
	for _, item := range items {
		var rc schema.RawCard
		if err := json.Unmarshal(item, &rc); err != nil {
			dropped++
			continue
		}
		card, err := def.Validate(rc)
		if err != nil {
			dropped++
			continue
		}
		cards = append(cards, card)
	}

	return cards, dropped, nil
}

// stripCodeFence removes a markdown ```json fence some models wrap around
// their output.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
