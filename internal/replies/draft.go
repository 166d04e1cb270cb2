package replies

import (
	"context"
	"log/slog"
	"strings"

	"github.com/JaimeStill/clerk/internal/analysis"
	"github.com/JaimeStill/clerk/internal/categories"
	"github.com/JaimeStill/clerk/internal/gateway"
	"github.com/JaimeStill/clerk/internal/letters"
	"github.com/JaimeStill/clerk/internal/prompts"
	"github.com/JaimeStill/clerk/pkg/formatting"
)

// drafter produces reply text for a letter. It never fails on model errors;
// those yield the holding message.
type drafter struct {
	categories categories.System
	gateway    gateway.System
	logger     *slog.Logger
}

type draft struct {
	style    analysis.Style
	text     string
	fallback bool
}

func (d *drafter) run(ctx context.Context, l *letters.Letter, cmd GenerateCommand) (draft, error) {
	style := styleFor(cmd, l)

	guidance := strings.TrimSpace(cmd.Guidance)
	if guidance == "" {
		guidance = d.defaultGuidance(ctx, l)
	}

	text, err := d.gateway.GenerateReply(ctx, l.Body, guidance, style)
	if err != nil {
		if ctx.Err() != nil {
			return draft{}, ctx.Err()
		}
		d.logger.Warn("reply generation unavailable, storing holding message", "letter_id", l.ID, "error", err)
		return draft{style: style, text: prompts.HoldingMessage, fallback: true}, nil
	}

	return draft{style: style, text: formatting.TruncateRunes(text, MaxTextRunes)}, nil
}

// defaultGuidance describes the letter's analysis. A missing category set
// leaves the type blank.
func (d *drafter) defaultGuidance(ctx context.Context, l *letters.Letter) string {
	var summary, classification, criticality string

	if l.Summary != nil {
		summary = *l.Summary
	}
	if l.Classification != nil {
		if cats, err := d.categories.Active(ctx); err == nil {
			classification = categories.NameOf(cats, *l.Classification)
		}
	}
	if l.CriticalityLevel != nil {
		criticality = l.CriticalityLevel.Label()
	}

	return prompts.DefaultGuidance(summary, classification, criticality)
}

func styleFor(cmd GenerateCommand, l *letters.Letter) analysis.Style {
	switch {
	case cmd.Style != nil:
		return *cmd.Style
	case l.ResponseStyle != nil && l.ResponseStyle.Valid():
		return *l.ResponseStyle
	}
	return analysis.StyleCorporate
}
