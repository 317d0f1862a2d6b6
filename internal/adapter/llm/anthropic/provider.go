package anthropic

import (
	"context"
	"fmt"

	"github.com/prtriage/prtriage/internal/usecase/review"
)

const providerName = "anthropic"

// Client abstracts the HTTP client behaviour the provider needs.
type Client interface {
	Call(ctx context.Context, prompt string, maxTokens int) (*APIResponse, error)
}

// Provider implements the review.Provider port.
type Provider struct {
	client Client
}

// NewProvider constructs a Provider around the supplied client.
func NewProvider(client Client) *Provider {
	return &Provider{client: client}
}

// Complete sends the prompt to Anthropic and returns the raw response text.
func (p *Provider) Complete(ctx context.Context, req review.ProviderRequest) (string, error) {
	if p.client == nil {
		return "", fmt.Errorf("anthropic client missing")
	}

	resp, err := p.client.Call(ctx, req.Prompt, req.MaxTokens)
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}
