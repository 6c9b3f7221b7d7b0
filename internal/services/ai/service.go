package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bjacksonJaxSun/ideasmatter/internal/common"
	"github.com/bjacksonJaxSun/ideasmatter/internal/interfaces"
	"github.com/bjacksonJaxSun/ideasmatter/internal/metrics"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

const (
	defaultMaxTokens    = 2000
	defaultTemperature  = 0.7
	jsonOnlyInstruction = "Respond with a single valid JSON object and nothing else."
)

// Service fronts one provider with rate limiting, a per-call timeout and
// bounded retries on rate limit errors.
type Service struct {
	provider interfaces.AIProvider
	limiter  *rate.Limiter
	timeout  time.Duration
	retry    *RetryConfig
	logger   arbor.ILogger
}

// NewService selects the configured provider. When the provider has no
// credentials and fallback_to_mock is set, an unscripted mock is used so
// every orchestrator serves its canned payloads.
func NewService(ctx context.Context, config *common.AIConfig, logger arbor.ILogger) (*Service, error) {
	provider, err := newProvider(ctx, config, logger)
	if err != nil {
		if !errors.Is(err, interfaces.ErrAIUnavailable) || !config.FallbackToMock {
			return nil, err
		}
		logger.Warn().
			Err(err).
			Str("provider", string(config.DefaultProvider)).
			Msg("AI provider not configured, falling back to canned responses")
		provider = NewMockProvider()
	}

	return NewServiceWithProvider(provider, config, logger), nil
}

// NewServiceWithProvider wraps an existing provider
func NewServiceWithProvider(provider interfaces.AIProvider, config *common.AIConfig, logger arbor.ILogger) *Service {
	service := &Service{
		provider: provider,
		limiter:  newLimiter(config.RateLimitPerMinute),
		timeout:  common.ParseDuration(config.Timeout, 60*time.Second),
		retry:    NewRetryConfig(config.MaxRetries),
		logger:   logger,
	}

	logger.Info().
		Str("provider", provider.Name()).
		Int("rate_limit_per_minute", config.RateLimitPerMinute).
		Dur("timeout", service.timeout).
		Msg("AI service initialized")

	return service
}

func newProvider(ctx context.Context, config *common.AIConfig, logger arbor.ILogger) (interfaces.AIProvider, error) {
	switch config.DefaultProvider {
	case common.AIProviderOpenAI, "":
		return NewOpenAIProvider(&config.OpenAI, logger)
	case common.AIProviderClaude:
		return NewClaudeProvider(&config.Claude, logger)
	case common.AIProviderGemini:
		return NewGeminiProvider(ctx, &config.Gemini, logger)
	case common.AIProviderAzure:
		return NewAzureProvider(&config.Azure, logger)
	case common.AIProviderMock:
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", config.DefaultProvider)
	}
}

// SetRetryConfig replaces the retry policy
func (s *Service) SetRetryConfig(retry *RetryConfig) {
	s.retry = retry
}

func (s *Service) ProviderName() string {
	return s.provider.Name()
}

// Generate sends prompt to the provider. Rate limit errors are retried with
// backoff; any other failure is returned immediately.
func (s *Service) Generate(ctx context.Context, prompt string, opts interfaces.GenerateOptions) (string, error) {
	if opts.Temperature <= 0 {
		opts.Temperature = defaultTemperature
	}

	name := s.provider.Name()
	var lastErr error

	for attempt := 0; attempt <= s.retry.MaxRetries; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter: %w", err)
		}

		start := time.Now()
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		response, err := s.provider.Generate(callCtx, prompt, opts)
		cancel()
		metrics.AIRequestDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

		if err == nil {
			metrics.AIRequests.WithLabelValues(name, "success").Inc()
			s.logger.Debug().
				Str("provider", name).
				Int("prompt_length", len(prompt)).
				Int("response_length", len(response)).
				Dur("duration", time.Since(start)).
				Msg("AI generation completed")
			return response, nil
		}

		lastErr = err
		if errors.Is(err, interfaces.ErrAIUnavailable) {
			metrics.AIRequests.WithLabelValues(name, "unavailable").Inc()
			return "", err
		}
		if !IsRateLimitError(err) {
			metrics.AIRequests.WithLabelValues(name, "error").Inc()
			s.logger.Warn().Err(err).Str("provider", name).Msg("AI generation failed")
			return "", err
		}

		metrics.AIRequests.WithLabelValues(name, "rate_limited").Inc()
		if attempt == s.retry.MaxRetries {
			break
		}

		backoff := s.retry.CalculateBackoff(attempt, ExtractRetryDelay(err))
		s.logger.Warn().
			Str("provider", name).
			Int("attempt", attempt+1).
			Dur("backoff", backoff).
			Msg("AI provider rate limited, retrying")

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
	}

	return "", fmt.Errorf("AI provider %s still rate limited after %d retries: %w", name, s.retry.MaxRetries, lastErr)
}

// GenerateJSON calls Generate in JSON mode and decodes the reply into out
func (s *Service) GenerateJSON(ctx context.Context, prompt string, opts interfaces.GenerateOptions, schema map[string]interface{}, out interface{}) error {
	opts.JSON = true
	response, err := s.Generate(ctx, prompt, opts)
	if err != nil {
		return err
	}
	return DecodeJSON(response, schema, out)
}

func (s *Service) Close() error {
	s.logger.Debug().Str("provider", s.provider.Name()).Msg("Closing AI service")
	return nil
}

// systemText returns the system instruction, extended with a JSON-only
// directive when JSON output is requested
func systemText(opts interfaces.GenerateOptions) string {
	if !opts.JSON {
		return opts.SystemInstruction
	}
	if opts.SystemInstruction == "" {
		return jsonOnlyInstruction
	}
	return opts.SystemInstruction + "\n\n" + jsonOnlyInstruction
}
