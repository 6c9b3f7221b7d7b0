package interfaces

import "context"

// GenerateOptions tunes a single AI generation call
type GenerateOptions struct {
	SystemInstruction string
	Temperature       float32
	MaxTokens         int
	// JSON asks the provider to answer with a JSON document only
	JSON bool
}

// AIProvider is a vendor adapter able to complete a prompt
type AIProvider interface {
	Name() string
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	// Validate performs a minimal call to confirm the credentials work
	Validate(ctx context.Context) error
}

// AIService is what the orchestrators call. It selects a provider,
// applies rate limiting and retries, and reports ErrAIUnavailable when
// nothing is configured.
type AIService interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	// ProviderName returns the active provider name ("mock" when none is configured)
	ProviderName() string
	Close() error
}
