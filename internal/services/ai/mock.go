package ai

import (
	"context"
	"fmt"
	"sync"

	"github.com/bjacksonJaxSun/ideasmatter/internal/common"
	"github.com/bjacksonJaxSun/ideasmatter/internal/interfaces"
)

// MockHandler produces a scripted reply for a prompt
type MockHandler func(prompt string, opts interfaces.GenerateOptions) (string, error)

// MockProvider is a deterministic provider. Without a script every call
// reports ErrAIUnavailable, which makes callers use their canned payloads.
type MockProvider struct {
	mu        sync.Mutex
	responses []string
	handler   MockHandler
	calls     []string
}

// NewMockProvider returns a provider that replays responses in order.
// The last response repeats once the list is exhausted.
func NewMockProvider(responses ...string) *MockProvider {
	return &MockProvider{responses: responses}
}

// NewMockProviderFunc returns a provider backed by handler
func NewMockProviderFunc(handler MockHandler) *MockProvider {
	return &MockProvider{handler: handler}
}

func (p *MockProvider) Name() string {
	return string(common.AIProviderMock)
}

func (p *MockProvider) Generate(ctx context.Context, prompt string, opts interfaces.GenerateOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	callIndex := len(p.calls)
	p.calls = append(p.calls, prompt)

	if p.handler != nil {
		return p.handler(prompt, opts)
	}
	if len(p.responses) == 0 {
		return "", fmt.Errorf("mock provider has no scripted response: %w", interfaces.ErrAIUnavailable)
	}
	if callIndex >= len(p.responses) {
		callIndex = len(p.responses) - 1
	}
	return p.responses[callIndex], nil
}

func (p *MockProvider) Validate(ctx context.Context) error {
	return nil
}

// Calls returns the prompts received so far
func (p *MockProvider) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.calls))
	copy(out, p.calls)
	return out
}
