package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/JaimeStill/clerk/internal/config"
)

func TestStatusFromText(t *testing.T) {
	tests := []struct {
		msg  string
		code int
	}{
		{"API returned unexpected status code: 429: too many requests", 429},
		{"API returned unexpected status code 401", 401},
		{"dial tcp: connection refused", 0},
	}

	for _, tt := range tests {
		err := statusFromText(errors.New(tt.msg))
		var se *StatusError
		got := 0
		if errors.As(err, &se) {
			got = se.Code
		}
		if got != tt.code {
			t.Errorf("statusFromText(%q) code = %d, want %d", tt.msg, got, tt.code)
		}
	}
}

func TestRetryable(t *testing.T) {
	live := context.Background()
	dead, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name string
		ctx  context.Context
		err  error
		want bool
	}{
		{"attempt timeout", live, context.DeadlineExceeded, true},
		{"cancelled error", live, context.Canceled, false},
		{"parent cancelled", dead, errors.New("x"), false},
		{"404", live, &StatusError{Code: 404}, false},
		{"429", live, &StatusError{Code: 429}, true},
		{"502", live, &StatusError{Code: 502}, true},
	}

	for _, tt := range tests {
		if got := retryable(tt.ctx, tt.err); got != tt.want {
			t.Errorf("%s: retryable = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestPolicyWait(t *testing.T) {
	p := RetryPolicy{Backoff: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := p.wait(ctx, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if err := (RetryPolicy{}).wait(context.Background(), 3); err != nil {
		t.Errorf("zero backoff err = %v", err)
	}
	if got := (RetryPolicy{MaxRetries: 2}).attempts(); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
}

func TestPolicyFromConfigNoRetries(t *testing.T) {
	cfg := &config.GatewayConfig{MaxRetries: config.NoRetries, Timeout: "5s", Backoff: "1s"}

	p := PolicyFromConfig(cfg)
	if p.MaxRetries != 0 || p.attempts() != 1 {
		t.Errorf("policy = %+v, attempts = %d; want a single attempt", p, p.attempts())
	}
}
