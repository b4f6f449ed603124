package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/feichai0017/concept-graph/pkg/logger"
)

// Provider is one model backend capable of answering a prompt.
// Implementations wrap the upstream API behind a synchronous call with
// an explicit timeout; callers decide what a failure means.
type Provider interface {
	Ask(ctx context.Context, prompt string) (string, error)
	Name() string
}

// FallbackProvider walks an ordered list of providers and returns the
// first successful answer.
type FallbackProvider struct {
	providers []Provider
	logger    logger.Logger
}

// Fallback builds a provider chain. The order of the arguments is the
// order of preference.
func Fallback(log logger.Logger, providers ...Provider) (*FallbackProvider, error) {
	if len(providers) == 0 {
		return nil, errors.New("at least one provider is required")
	}
	return &FallbackProvider{providers: providers, logger: log}, nil
}

func (f *FallbackProvider) Name() string {
	return "fallback"
}

func (f *FallbackProvider) Ask(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for _, p := range f.providers {
		answer, err := p.Ask(ctx, prompt)
		if err == nil {
			return answer, nil
		}
		f.logger.Warn("Provider failed, trying next",
			logger.String("provider", p.Name()),
			logger.Error(err),
		)
		lastErr = err

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}
	return "", fmt.Errorf("all providers failed: %w", lastErr)
}
