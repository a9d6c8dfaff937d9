package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/phrazzld/scry-flashgen/internal/config"
	"github.com/phrazzld/scry-flashgen/internal/generation"
	"github.com/phrazzld/scry-flashgen/internal/schema"
)

// defaultMaxTokens is used when the configuration leaves MaxOutputTokens unset;
// the Messages API requires a value.
const defaultMaxTokens = 4096

// ErrEmptyResponse is returned when a message carries no text blocks.
var ErrEmptyResponse = errors.New("empty response from Claude API")

type messageClient interface {
	New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// Provider implements generation.Provider using Claude.
type Provider struct {
	logger      *slog.Logger
	messages    messageClient
	model       string
	temperature float64
	maxTokens   int64
}

var _ generation.Provider = (*Provider)(nil)

// NewProvider creates a Claude provider from the LLM configuration.
func NewProvider(logger *slog.Logger, cfg config.LLMConfig) (*Provider, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.AnthropicAPIKey == "" {
		return nil, fmt.Errorf("%w: AnthropicAPIKey cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: ModelName cannot be empty", generation.ErrInvalidConfig)
	}

	client := anthropic.NewClient(option.WithAPIKey(cfg.AnthropicAPIKey))
	return newProvider(&client.Messages, logger, cfg), nil
}

func newProvider(messages messageClient, logger *slog.Logger, cfg config.LLMConfig) *Provider {
	maxTokens := int64(cfg.MaxOutputTokens)
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &Provider{
		logger:      logger.With("component", "anthropic_provider", "model", cfg.ModelName),
		messages:    messages,
		model:       cfg.ModelName,
		temperature: cfg.Temperature,
		maxTokens:   maxTokens,
	}
}

// Name implements generation.Provider.
func (p *Provider) Name() string {
	return "anthropic"
}

// Complete implements generation.Provider.
func (p *Provider) Complete(ctx context.Context, req generation.Request) (string, error) {
	system, err := systemPrompt(req.System, req.Schema)
	if err != nil {
		return "", generation.NewError(generation.KindProviderError, err)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: p.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
		System: []anthropic.TextBlockParam{{Text: system}},
	}
	if p.temperature > 0 {
		params.Temperature = anthropic.Float(p.temperature)
	}

	p.logger.DebugContext(ctx, "Making Claude API call",
		"schema", req.Schema.Kind,
		"prompt_length", len(req.Prompt))

	resp, err := p.messages.New(ctx, params)
	if err != nil {
		return "", generation.Classify(err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", generation.NewError(generation.KindInvalidResponse, ErrEmptyResponse)
	}

	return text.String(), nil
}

// systemPrompt appends the response contract to the schema instruction.
func systemPrompt(instruction string, def schema.Definition) (string, error) {
	contract, err := json.Marshal(def.JSONSchema())
	if err != nil {
		return "", fmt.Errorf("failed to encode response schema: %w", err)
	}
	return instruction +
		"\n\nRespond with a single JSON object and nothing else. It must match this JSON schema:\n" +
		string(contract), nil
}
