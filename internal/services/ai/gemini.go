package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/bjacksonJaxSun/ideasmatter/internal/common"
	"github.com/bjacksonJaxSun/ideasmatter/internal/interfaces"
	"github.com/ternarybob/arbor"
	"google.golang.org/genai"
)

// GeminiProvider completes prompts with the Google Gemini API
type GeminiProvider struct {
	config *common.GeminiConfig
	client *genai.Client
	logger arbor.ILogger
}

// NewGeminiProvider creates a Gemini adapter. An API key is required.
func NewGeminiProvider(ctx context.Context, config *common.GeminiConfig, logger arbor.ILogger) (*GeminiProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required (set GEMINI_API_KEY or ai.gemini.api_key): %w", interfaces.ErrAIUnavailable)
	}
	if config.Model == "" {
		config.Model = "gemini-pro"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	logger.Debug().
		Str("model", config.Model).
		Int("max_tokens", config.MaxTokens).
		Msg("Gemini provider initialized")

	return &GeminiProvider{
		config: config,
		client: client,
		logger: logger,
	}, nil
}

func (p *GeminiProvider) Name() string {
	return string(common.AIProviderGemini)
}

func (p *GeminiProvider) Generate(ctx context.Context, prompt string, opts interfaces.GenerateOptions) (string, error) {
	temperature := opts.Temperature
	if temperature <= 0 {
		temperature = p.config.Temperature
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = p.config.MaxTokens
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temperature),
	}
	if maxTokens > 0 {
		config.MaxOutputTokens = int32(maxTokens)
	}
	if opts.SystemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(opts.SystemInstruction, genai.RoleUser)
	}
	if opts.JSON {
		config.ResponseMIMEType = "application/json"
	}

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	resp, err := p.client.Models.GenerateContent(ctx, p.config.Model, contents, config)
	if err != nil {
		return "", fmt.Errorf("Gemini generation failed: %w", err)
	}

	// Use the first candidate that carries text
	var response strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					response.WriteString(part.Text)
				}
			}
			if response.Len() > 0 {
				break
			}
		}
	}

	if response.Len() == 0 {
		return "", fmt.Errorf("no response generated from Gemini API")
	}
	return response.String(), nil
}

func (p *GeminiProvider) Validate(ctx context.Context) error {
	_, err := p.Generate(ctx, "ping", interfaces.GenerateOptions{MaxTokens: 5})
	return err
}
