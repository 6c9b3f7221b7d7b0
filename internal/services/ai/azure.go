package ai

import (
	"context"
	"fmt"

	"github.com/bjacksonJaxSun/ideasmatter/internal/common"
	"github.com/bjacksonJaxSun/ideasmatter/internal/interfaces"
	"github.com/openai/openai-go/v3/azure"
	"github.com/openai/openai-go/v3/option"
	"github.com/ternarybob/arbor"
)

// AzureProvider completes prompts with an Azure OpenAI deployment
type AzureProvider struct {
	config *common.AzureConfig
	chat   *chatCompleter
	logger arbor.ILogger
}

// NewAzureProvider creates an Azure OpenAI adapter.
// Endpoint, deployment and API key are all required.
func NewAzureProvider(config *common.AzureConfig, logger arbor.ILogger, opts ...option.RequestOption) (*AzureProvider, error) {
	if config.APIKey == "" || config.Endpoint == "" || config.Deployment == "" {
		return nil, fmt.Errorf("Azure OpenAI requires api_key, endpoint and deployment (AZURE_OPENAI_*): %w", interfaces.ErrAIUnavailable)
	}
	if config.APIVersion == "" {
		config.APIVersion = "2024-02-15-preview"
	}

	clientOpts := append([]option.RequestOption{
		azure.WithEndpoint(config.Endpoint, config.APIVersion),
		azure.WithAPIKey(config.APIKey),
	}, opts...)

	logger.Debug().
		Str("deployment", config.Deployment).
		Str("api_version", config.APIVersion).
		Msg("Azure OpenAI provider initialized")

	// The azure middleware routes by the model field, so the deployment goes there
	return &AzureProvider{
		config: config,
		chat:   newChatCompleter("Azure OpenAI", config.Deployment, config.MaxTokens, config.Temperature, clientOpts...),
		logger: logger,
	}, nil
}

func (p *AzureProvider) Name() string {
	return string(common.AIProviderAzure)
}

func (p *AzureProvider) Generate(ctx context.Context, prompt string, opts interfaces.GenerateOptions) (string, error) {
	return p.chat.complete(ctx, prompt, opts)
}

func (p *AzureProvider) Validate(ctx context.Context) error {
	_, err := p.Generate(ctx, "ping", interfaces.GenerateOptions{MaxTokens: 5})
	return err
}
