package gateway_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/JaimeStill/clerk/internal/analysis"
	"github.com/JaimeStill/clerk/internal/categories"
	"github.com/JaimeStill/clerk/internal/gateway"
	"github.com/JaimeStill/clerk/internal/prompts"
)

type result struct {
	content string
	err     error
}

type scriptedProvider struct {
	results  []result
	requests []gateway.Request
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Complete(_ context.Context, req gateway.Request) (string, error) {
	p.requests = append(p.requests, req)
	if len(p.results) == 0 {
		return "", errors.New("no scripted result")
	}
	r := p.results[0]
	p.results = p.results[1:]
	return r.content, r.err
}

type stubRetriever struct {
	text string
	err  error
}

func (r stubRetriever) Retrieve(context.Context, string) (string, error) {
	return r.text, r.err
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func noSleep(retries int) gateway.Options {
	return gateway.Options{Policy: gateway.RetryPolicy{MaxRetries: retries}}
}

var transient = &gateway.StatusError{Code: 503, Err: errors.New("unavailable")}

func TestAnalyzeRetriesThenSucceeds(t *testing.T) {
	p := &scriptedProvider{results: []result{
		{err: transient},
		{err: transient},
		{content: `{"topic_category": 2, "criticality_level": 3}`},
	}}
	gw := gateway.New(p, nil, noSleep(2), discard())

	raw, err := gw.Analyze(context.Background(), "text", categories.Defaults())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw.IsAbsent() {
		t.Fatal("result is absent, want mapping")
	}
	if len(p.requests) != 3 {
		t.Errorf("attempts = %d, want 3", len(p.requests))
	}
	if !p.requests[0].JSON {
		t.Error("first attempt should request JSON mode")
	}
}

func TestAnalyzeExhaustion(t *testing.T) {
	p := &scriptedProvider{results: []result{
		{err: transient}, {err: transient}, {err: transient}, {content: "{}"},
	}}
	gw := gateway.New(p, nil, noSleep(2), discard())

	raw, err := gw.Analyze(context.Background(), "text", categories.Defaults())
	if !errors.Is(err, gateway.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
	if !raw.IsAbsent() {
		t.Errorf("kind = %v, want absent", raw.Kind())
	}
	if len(p.requests) != 3 {
		t.Errorf("attempts = %d, want exactly MaxRetries+1 = 3", len(p.requests))
	}
}

func TestNonRetryableStopsLoop(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"bad request", &gateway.StatusError{Code: 400, Err: errors.New("bad")}, 1},
		{"unauthorized", &gateway.StatusError{Code: 401, Err: errors.New("auth")}, 1},
		{"rate limited", &gateway.StatusError{Code: 429, Err: errors.New("slow down")}, 3},
		{"server error", &gateway.StatusError{Code: 500, Err: errors.New("boom")}, 3},
		{"transport", errors.New("connection reset"), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &scriptedProvider{results: []result{{err: tt.err}, {err: tt.err}, {err: tt.err}}}
			gw := gateway.New(p, nil, noSleep(2), discard())

			_, err := gw.Analyze(context.Background(), "text", categories.Defaults())
			if !errors.Is(err, gateway.ErrUnavailable) {
				t.Errorf("err = %v, want ErrUnavailable", err)
			}
			if len(p.requests) != tt.want {
				t.Errorf("attempts = %d, want %d", len(p.requests), tt.want)
			}
		})
	}
}

func TestCancelledContextStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := &scriptedProvider{results: []result{{err: transient}, {err: transient}}}
	gw := gateway.New(p, nil, noSleep(2), discard())
	cancel()

	raw, err := gw.Analyze(ctx, "text", categories.Defaults())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if !raw.IsAbsent() {
		t.Error("result should be absent")
	}
	if len(p.requests) != 0 {
		t.Errorf("attempts = %d, want 0", len(p.requests))
	}
}

func TestAnalyzePlainSecondaryPath(t *testing.T) {
	t.Run("plain attempt parses", func(t *testing.T) {
		p := &scriptedProvider{results: []result{
			{content: "not json at all"},
			{content: "Вот ответ:\n```json\n{\"topic_category\": 5}\n```"},
		}}
		gw := gateway.New(p, nil, noSleep(2), discard())

		raw, err := gw.Analyze(context.Background(), "text", categories.Defaults())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if raw.Kind() != analysis.KindMapping {
			t.Errorf("kind = %v, want mapping", raw.Kind())
		}
		if len(p.requests) != 2 {
			t.Fatalf("attempts = %d, want 2", len(p.requests))
		}
		if p.requests[1].JSON {
			t.Error("secondary attempt should not request JSON mode")
		}
	})

	t.Run("plain attempt unparseable", func(t *testing.T) {
		p := &scriptedProvider{results: []result{{content: "nope"}, {content: "still nope"}}}
		gw := gateway.New(p, nil, noSleep(2), discard())

		raw, err := gw.Analyze(context.Background(), "text", categories.Defaults())
		if !errors.Is(err, gateway.ErrUnparseable) {
			t.Errorf("err = %v, want ErrUnparseable", err)
		}
		if !raw.IsAbsent() {
			t.Error("result should be absent")
		}
		if len(p.requests) != 2 {
			t.Errorf("attempts = %d, want 2", len(p.requests))
		}
	})
}

func TestEmptyContentIsRetried(t *testing.T) {
	p := &scriptedProvider{results: []result{{content: "  "}, {content: `{"topic_category": 1}`}}}
	gw := gateway.New(p, nil, noSleep(1), discard())

	if _, err := gw.Analyze(context.Background(), "text", categories.Defaults()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.requests) != 2 {
		t.Errorf("attempts = %d, want 2", len(p.requests))
	}
}

func TestRetrievalIsBestEffort(t *testing.T) {
	t.Run("failure still calls model", func(t *testing.T) {
		p := &scriptedProvider{results: []result{{content: `{"topic_category": 1}`}}}
		gw := gateway.New(p, stubRetriever{err: errors.New("qdrant down")}, noSleep(0), discard())

		if _, err := gw.Analyze(context.Background(), "text", categories.Defaults()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(p.requests[0].System, "Справочный контекст") {
			t.Error("instructions should not carry a context heading")
		}
	})

	t.Run("context appended", func(t *testing.T) {
		p := &scriptedProvider{results: []result{{content: `{"topic_category": 1}`}}}
		gw := gateway.New(p, stubRetriever{text: "похожее письмо"}, noSleep(0), discard())

		if _, err := gw.Analyze(context.Background(), "text", categories.Defaults()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(p.requests[0].System, "похожее письмо") {
			t.Error("instructions should include retrieved context")
		}
	})
}

func TestGenerateReply(t *testing.T) {
	tests := []struct {
		name     string
		results  []result
		want     string
		attempts int
		wantErr  error
	}{
		{
			name:     "structured",
			results:  []result{{content: `{"response_email": "Уважаемый клиент,\nответ."}`}},
			want:     "Уважаемый клиент,\nответ.",
			attempts: 1,
		},
		{
			name:     "unparseable falls back to plain",
			results:  []result{{content: "garbage"}, {content: "  Ответ\x07  банка \n\n готов "}},
			want:     "Ответ банка готов",
			attempts: 2,
		},
		{
			name:     "exhaustion falls back to plain",
			results:  []result{{err: transient}, {err: transient}, {content: "Простой ответ"}},
			want:     "Простой ответ",
			attempts: 3,
		},
		{
			name:     "plain also fails",
			results:  []result{{err: transient}, {err: transient}, {err: transient}},
			attempts: 3,
			wantErr:  gateway.ErrUnavailable,
		},
		{
			name:     "empty structured email falls back",
			results:  []result{{content: `{"response_email": ""}`}, {content: "\x01\x02"}},
			want:     prompts.EmptyReply,
			attempts: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &scriptedProvider{results: tt.results}
			gw := gateway.New(p, nil, noSleep(1), discard())

			got, err := gw.GenerateReply(context.Background(), "original", "", analysis.StyleClient)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("reply = %q, want %q", got, tt.want)
			}
			if len(p.requests) != tt.attempts {
				t.Errorf("attempts = %d, want %d", len(p.requests), tt.attempts)
			}
			if n := len(p.requests); n > 1 && p.requests[n-1].System != prompts.PlainReplyInstructions {
				t.Errorf("plain attempt system = %q", p.requests[n-1].System)
			}
		})
	}
}

func TestAnswer(t *testing.T) {
	t.Run("structured", func(t *testing.T) {
		p := &scriptedProvider{results: []result{{content: `{"response": "Срок 5 дней."}`}}}
		gw := gateway.New(p, nil, noSleep(0), discard())

		got, err := gw.Answer(context.Background(), "письмо", "Какой срок?")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "Срок 5 дней." {
			t.Errorf("answer = %q", got)
		}
	})

	t.Run("plain text", func(t *testing.T) {
		p := &scriptedProvider{results: []result{{content: "Срок   пять дней"}}}
		gw := gateway.New(p, nil, noSleep(0), discard())

		got, err := gw.Answer(context.Background(), "письмо", "Какой срок?")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "Срок пять дней" {
			t.Errorf("answer = %q", got)
		}
	})

	t.Run("unavailable", func(t *testing.T) {
		p := &scriptedProvider{results: []result{{err: transient}}}
		gw := gateway.New(p, nil, noSleep(0), discard())

		if _, err := gw.Answer(context.Background(), "письмо", "?"); !errors.Is(err, gateway.ErrUnavailable) {
			t.Errorf("err = %v, want ErrUnavailable", err)
		}
	})
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := &scriptedProvider{results: []result{{err: transient}, {err: transient}}}
	opts := noSleep(1)
	opts.Metrics = gateway.NewMetrics(reg)
	gw := gateway.New(p, nil, opts, discard())

	gw.Analyze(context.Background(), "text", categories.Defaults())

	if n, err := testutil.GatherAndCount(reg, "clerk_gateway_failures_total"); err != nil || n != 1 {
		t.Errorf("failures series = %d (err %v), want 1", n, err)
	}
	if n, err := testutil.GatherAndCount(reg, "clerk_gateway_attempts_total"); err != nil || n != 1 {
		t.Errorf("attempts series = %d (err %v), want 1", n, err)
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"hello\x00 world", "hello world"},
		{"a\t\tb\r\nc", "a b c"},
		{"\x1F\x7F", prompts.EmptyReply},
		{"", prompts.EmptyReply},
		{"Ответ", "Ответ"},
	}

	for _, tt := range tests {
		if got := gateway.Clean(tt.in); got != tt.want {
			t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMapHTTPStatus(t *testing.T) {
	if got := gateway.MapHTTPStatus(gateway.ErrUnavailable); got != 503 {
		t.Errorf("status = %d, want 503", got)
	}
	if got := gateway.MapHTTPStatus(errors.New("x")); got != 500 {
		t.Errorf("status = %d, want 500", got)
	}
}
