package gateway

import (
	"context"
	"time"

	"github.com/JaimeStill/clerk/internal/config"
)

// RetryPolicy bounds a model call: MaxRetries+1 attempts, each limited to
// Timeout, with attempt×Backoff between them.
type RetryPolicy struct {
	MaxRetries int
	Backoff    time.Duration
	Timeout    time.Duration
}

func PolicyFromConfig(cfg *config.GatewayConfig) RetryPolicy {
	return RetryPolicy{
		MaxRetries: cfg.Retries(),
		Backoff:    cfg.BackoffDuration(),
		Timeout:    cfg.TimeoutDuration(),
	}
}

func (p RetryPolicy) attempts() int {
	return max(p.MaxRetries, 0) + 1
}

// wait sleeps before the given retry. It returns early with the context error.
func (p RetryPolicy) wait(ctx context.Context, attempt int) error {
	delay := time.Duration(attempt) * p.Backoff
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p RetryPolicy) attemptContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.Timeout)
}
