package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bjacksonJaxSun/ideasmatter/internal/common"
	"github.com/bjacksonJaxSun/ideasmatter/internal/interfaces"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/ternarybob/arbor"
)

// chatCompleter runs chat completions through the OpenAI SDK.
// Azure OpenAI shares it with a client built from the azure options.
type chatCompleter struct {
	client      openai.Client
	vendor      string
	model       string
	maxTokens   int
	temperature float32
}

// Retries are owned by Service, so the SDK must not retry on its own
func newChatCompleter(vendor, model string, maxTokens int, temperature float32, opts ...option.RequestOption) *chatCompleter {
	clientOpts := append([]option.RequestOption{
		option.WithMaxRetries(0),
		option.WithRequestTimeout(2 * time.Minute),
	}, opts...)

	return &chatCompleter{
		client:      openai.NewClient(clientOpts...),
		vendor:      vendor,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

func (c *chatCompleter) complete(ctx context.Context, prompt string, opts interfaces.GenerateOptions) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if system := systemText(opts); system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	messages = append(messages, openai.UserMessage(prompt))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: messages,
	}

	temperature := opts.Temperature
	if temperature <= 0 {
		temperature = c.temperature
	}
	if temperature > 0 {
		params.Temperature = openai.Float(float64(temperature))
	}

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}
	if maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(maxTokens))
	}

	if opts.JSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("%s API error %d: %s: %w", c.vendor, apiErr.StatusCode, apiErr.Message, err)
		}
		return "", fmt.Errorf("%s API call failed: %w", c.vendor, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("no response generated from %s API", c.vendor)
	}
	return resp.Choices[0].Message.Content, nil
}

// OpenAIProvider completes prompts with the OpenAI chat completions API
type OpenAIProvider struct {
	config *common.OpenAIConfig
	chat   *chatCompleter
	logger arbor.ILogger
}

// NewOpenAIProvider creates an OpenAI adapter. An API key is required.
func NewOpenAIProvider(config *common.OpenAIConfig, logger arbor.ILogger, opts ...option.RequestOption) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required (set OPENAI_API_KEY or ai.openai.api_key): %w", interfaces.ErrAIUnavailable)
	}
	if config.Model == "" {
		config.Model = "gpt-4-turbo-preview"
	}
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	clientOpts := append([]option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithBaseURL(baseURL + "/"),
	}, opts...)

	logger.Debug().
		Str("model", config.Model).
		Str("base_url", baseURL).
		Msg("OpenAI provider initialized")

	return &OpenAIProvider{
		config: config,
		chat:   newChatCompleter("OpenAI", config.Model, config.MaxTokens, config.Temperature, clientOpts...),
		logger: logger,
	}, nil
}

func (p *OpenAIProvider) Name() string {
	return string(common.AIProviderOpenAI)
}

func (p *OpenAIProvider) Generate(ctx context.Context, prompt string, opts interfaces.GenerateOptions) (string, error) {
	return p.chat.complete(ctx, prompt, opts)
}

func (p *OpenAIProvider) Validate(ctx context.Context) error {
	_, err := p.Generate(ctx, "ping", interfaces.GenerateOptions{MaxTokens: 5})
	return err
}
