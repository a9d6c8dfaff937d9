package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/phrazzld/scry-flashgen/internal/config"
	"github.com/phrazzld/scry-flashgen/internal/generation"
)

// modelClient is the part of the genai client the provider uses.
type modelClient interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Provider implements generation.Provider using the Gemini API.
type Provider struct {
	logger          *slog.Logger
	models          modelClient
	model           string
	temperature     float64
	maxOutputTokens int
}

var _ generation.Provider = (*Provider)(nil)

// NewProvider creates a Gemini provider from the LLM configuration.
func NewProvider(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Provider, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if err := validateConfig(ctx, logger, cfg); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return newProvider(client.Models, logger, cfg), nil
}

func newProvider(models modelClient, logger *slog.Logger, cfg config.LLMConfig) *Provider {
	return &Provider{
		logger:          logger.With("component", "gemini_provider", "model", cfg.ModelName),
		models:          models,
		model:           cfg.ModelName,
		temperature:     cfg.Temperature,
		maxOutputTokens: cfg.MaxOutputTokens,
	}
}

// Name implements generation.Provider.
func (p *Provider) Name() string {
	return "gemini"
}

// Complete implements generation.Provider. It requests JSON output
// constrained to the definition's response schema.
func (p *Provider) Complete(ctx context.Context, req generation.Request) (string, error) {
	if req.Prompt == "" {
		return "", generation.NewError(generation.KindProviderError, ErrEmptyPrompt)
	}

	genConfig := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(p.temperature)),
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema(req.Schema),
	}
	if req.System != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if p.maxOutputTokens > 0 {
		genConfig.MaxOutputTokens = int32(p.maxOutputTokens)
	}

	contents := []*genai.Content{genai.NewContentFromText(req.Prompt, genai.RoleUser)}

	p.logger.DebugContext(ctx, "Making Gemini API call",
		"schema", req.Schema.Kind,
		"prompt_length", len(req.Prompt))

	resp, err := p.models.GenerateContent(ctx, p.model, contents, genConfig)
	if err != nil {
		return "", generation.Classify(err)
	}

	return responseText(resp)
}

// responseText extracts the JSON text from a response, translating empty and
// blocked responses into generation errors.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", generation.NewError(generation.KindInvalidResponse, errors.New("nil response"))
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", generation.NewError(generation.KindProviderError,
			fmt.Errorf("%w: prompt blocked (%s)", generation.ErrContentBlocked, resp.PromptFeedback.BlockReason))
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return "", generation.NewError(generation.KindInvalidResponse, ErrNoCandidates)
	}

	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return "", generation.NewError(generation.KindProviderError,
			fmt.Errorf("%w: response blocked by safety filters", generation.ErrContentBlocked))
	}

	text := resp.Text()
	if text == "" {
		return "", generation.NewError(generation.KindInvalidResponse, errors.New("empty text in response"))
	}

	return text, nil
}
