// Package gateway performs model calls for analysis, reply drafting and
// questions. Every call runs under a RetryPolicy and a shared rate limiter.
// Failures surface as ErrUnavailable with the cause logged.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/JaimeStill/clerk/internal/analysis"
	"github.com/JaimeStill/clerk/internal/categories"
	"github.com/JaimeStill/clerk/internal/config"
	"github.com/JaimeStill/clerk/internal/prompts"
	"github.com/JaimeStill/clerk/pkg/formatting"
)

const (
	opAnalyze      = "analyze"
	opAnalyzePlain = "analyze_plain"
	opReply        = "reply"
	opReplyPlain   = "reply_plain"
	opAnswer       = "answer"
)

type System interface {
	Analyze(ctx context.Context, text string, cats []categories.Category) (analysis.RawResult, error)
	GenerateReply(ctx context.Context, original, guidance string, style analysis.Style) (string, error)
	Answer(ctx context.Context, original, question string) (string, error)
}

// Retriever supplies reference context for a query. Errors are tolerated.
type Retriever interface {
	Retrieve(ctx context.Context, query string) (string, error)
}

// Options tune a gateway. A nil Limiter means no rate limit.
type Options struct {
	Policy      RetryPolicy
	Limiter     *rate.Limiter
	MaxTokens   int
	Temperature float64
	Metrics     *Metrics
}

func OptionsFromConfig(cfg *config.GatewayConfig, metrics *Metrics) Options {
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	return Options{
		Policy:      PolicyFromConfig(cfg),
		Limiter:     rate.NewLimiter(limit, cfg.Burst),
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		Metrics:     metrics,
	}
}

type gateway struct {
	provider    Provider
	retriever   Retriever
	policy      RetryPolicy
	limiter     *rate.Limiter
	maxTokens   int
	temperature float64
	metrics     *Metrics
	logger      *slog.Logger
}

func New(provider Provider, retriever Retriever, opts Options, logger *slog.Logger) System {
	limiter := opts.Limiter
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &gateway{
		provider:    provider,
		retriever:   retriever,
		policy:      opts.Policy,
		limiter:     limiter,
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
		metrics:     opts.Metrics,
		logger:      logger.With("system", "gateway", "provider", provider.Name()),
	}
}

// Analyze requests a structured classification. An unparseable response gets
// one plain-mode attempt. Absent is returned alongside any error.
func (g *gateway) Analyze(ctx context.Context, text string, cats []categories.Category) (analysis.RawResult, error) {
	req := g.request(prompts.Analysis(cats, g.enrich(ctx, text)), text, true)

	content, err := g.call(ctx, opAnalyze, req, g.policy.MaxRetries)
	if err != nil {
		return analysis.Absent(), err
	}

	raw, err := parseAnalysis(content)
	if err == nil {
		return raw, nil
	}
	g.logger.Warn("analysis response unparseable, retrying in plain mode", "error", err)

	req.JSON = false
	content, err = g.call(ctx, opAnalyzePlain, req, 0)
	if err != nil {
		return analysis.Absent(), err
	}

	raw, err = parseAnalysis(content)
	if err != nil {
		g.logger.Error("plain analysis response unparseable", "error", err)
		return analysis.Absent(), fmt.Errorf("%w: %w", ErrUnparseable, err)
	}
	return raw, nil
}

type replyResponse struct {
	ResponseEmail string `json:"response_email"`
}

// GenerateReply drafts a reply in style. When the structured call fails or
// its output cannot be parsed, one plain-text call is made and cleaned.
func (g *gateway) GenerateReply(ctx context.Context, original, guidance string, style analysis.Style) (string, error) {
	if retrieved := g.enrich(ctx, original); retrieved != "" {
		guidance = strings.TrimSpace(guidance + "\n\nСправочный контекст:\n" + retrieved)
	}
	input := prompts.Reply(style, original, guidance)

	content, err := g.call(ctx, opReply, g.request(prompts.ReplyInstructions(style), input, true), g.policy.MaxRetries)
	if err == nil {
		parsed, perr := formatting.Parse[replyResponse](content)
		if text := strings.TrimSpace(parsed.ResponseEmail); perr == nil && text != "" {
			return text, nil
		}
		g.logger.Warn("reply response unparseable, falling back to plain text", "error", perr)
	} else if ctx.Err() != nil {
		return "", ctx.Err()
	}

	content, err = g.call(ctx, opReplyPlain, g.request(prompts.PlainReplyInstructions, input, false), 0)
	if err != nil {
		return "", err
	}
	return Clean(content), nil
}

type answerResponse struct {
	Response string `json:"response"`
}

// Answer responds to a question about a letter. Content that is not the
// expected JSON object is used as plain text.
func (g *gateway) Answer(ctx context.Context, original, question string) (string, error) {
	input := prompts.Question(original, question, g.enrich(ctx, question))

	content, err := g.call(ctx, opAnswer, g.request(prompts.QuestionInstructions, input, true), g.policy.MaxRetries)
	if err != nil {
		return "", err
	}

	parsed, err := formatting.Parse[answerResponse](content)
	if text := strings.TrimSpace(parsed.Response); err == nil && text != "" {
		return text, nil
	}
	return Clean(content), nil
}

func (g *gateway) request(system, input string, json bool) Request {
	return Request{
		System:      system,
		Input:       input,
		JSON:        json,
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	}
}

// call runs up to retries+1 attempts. A cancelled parent context is returned
// as is; every other failure becomes ErrUnavailable.
func (g *gateway) call(ctx context.Context, op string, req Request, retries int) (string, error) {
	policy := g.policy
	policy.MaxRetries = retries
	attempts := policy.attempts()

	var lastErr error
	for attempt := range attempts {
		if attempt > 0 {
			if err := policy.wait(ctx, attempt); err != nil {
				return "", err
			}
		}

		content, err := g.attempt(ctx, op, policy, req)
		if err == nil {
			return content, nil
		}

		lastErr = err
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		g.logger.Warn("model attempt failed", "op", op, "attempt", attempt+1, "of", attempts, "error", err)
		if !retryable(ctx, err) {
			break
		}
	}

	g.metrics.failure(op)
	g.logger.Error("model call failed", "op", op, "error", lastErr)
	return "", fmt.Errorf("%w: %s", ErrUnavailable, op)
}

func (g *gateway) attempt(ctx context.Context, op string, policy RetryPolicy, req Request) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", err
	}

	actx, cancel := policy.attemptContext(ctx)
	defer cancel()

	started := time.Now()
	content, err := g.provider.Complete(actx, req)
	if err == nil && strings.TrimSpace(content) == "" {
		err = ErrEmptyResponse
	}
	g.metrics.attempt(op, started, err)
	return content, err
}

// enrich asks the retriever for context. Failures yield no context.
func (g *gateway) enrich(ctx context.Context, query string) string {
	if g.retriever == nil {
		return ""
	}
	retrieved, err := g.retriever.Retrieve(ctx, query)
	if err != nil {
		g.logger.Warn("context retrieval failed", "error", err)
		return ""
	}
	return retrieved
}

func parseAnalysis(content string) (analysis.RawResult, error) {
	m, err := formatting.Parse[map[string]any](content)
	if err != nil {
		return analysis.Absent(), err
	}
	if m == nil {
		return analysis.Absent(), formatting.ErrParseFailed
	}
	return analysis.FromMap(m), nil
}
