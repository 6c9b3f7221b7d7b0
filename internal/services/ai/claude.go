package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/bjacksonJaxSun/ideasmatter/internal/common"
	"github.com/bjacksonJaxSun/ideasmatter/internal/interfaces"
	"github.com/ternarybob/arbor"
)

// ClaudeProvider completes prompts with the Anthropic Messages API
type ClaudeProvider struct {
	config *common.ClaudeConfig
	client anthropic.Client
	logger arbor.ILogger
}

// NewClaudeProvider creates a Claude adapter. An API key is required.
func NewClaudeProvider(config *common.ClaudeConfig, logger arbor.ILogger, opts ...option.RequestOption) (*ClaudeProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required (set ANTHROPIC_API_KEY or ai.claude.api_key): %w", interfaces.ErrAIUnavailable)
	}
	if config.Model == "" {
		config.Model = "claude-3-opus-20240229"
	}

	clientOpts := append([]option.RequestOption{option.WithAPIKey(config.APIKey)}, opts...)
	client := anthropic.NewClient(clientOpts...)

	logger.Debug().
		Str("model", config.Model).
		Int("max_tokens", config.MaxTokens).
		Msg("Claude provider initialized")

	return &ClaudeProvider{
		config: config,
		client: client,
		logger: logger,
	}, nil
}

func (p *ClaudeProvider) Name() string {
	return string(common.AIProviderClaude)
}

func (p *ClaudeProvider) Generate(ctx context.Context, prompt string, opts interfaces.GenerateOptions) (string, error) {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = p.config.MaxTokens
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.config.Model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	temperature := opts.Temperature
	if temperature <= 0 {
		temperature = p.config.Temperature
	}
	if temperature > 0 {
		params.Temperature = anthropic.Float(float64(temperature))
	}

	if system := systemText(opts); system != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: system},
		}
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("Claude API call failed: %w", err)
	}

	var response strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			response.WriteString(block.Text)
		}
	}

	if response.Len() == 0 {
		return "", fmt.Errorf("no response generated from Claude API")
	}
	return response.String(), nil
}

func (p *ClaudeProvider) Validate(ctx context.Context) error {
	_, err := p.Generate(ctx, "ping", interfaces.GenerateOptions{MaxTokens: 5})
	return err
}
