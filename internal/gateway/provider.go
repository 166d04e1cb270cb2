package gateway

import (
	"context"
	"fmt"

	"github.com/JaimeStill/clerk/internal/config"
)

// Request is one model completion: system instructions plus the user input.
// JSON asks the provider for a JSON-only response where it supports that.
type Request struct {
	System      string
	Input       string
	JSON        bool
	MaxTokens   int
	Temperature float64
}

// Provider performs a single completion with no retries of its own.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

func NewProvider(cfg *config.GatewayConfig) (Provider, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAI(cfg)
	case config.ProviderAnthropic:
		return NewAnthropic(cfg), nil
	}
	return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
}
