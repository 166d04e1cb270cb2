package replies

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/JaimeStill/clerk/internal/analysis"
	"github.com/JaimeStill/clerk/internal/categories"
	"github.com/JaimeStill/clerk/internal/gateway"
	"github.com/JaimeStill/clerk/internal/letters"
	"github.com/JaimeStill/clerk/internal/prompts"
)

type fakeCategories struct {
	categories.System
	err error
}

func (f *fakeCategories) Active(context.Context) ([]categories.Category, error) {
	return categories.Defaults(), f.err
}

type fakeGateway struct {
	gateway.System
	replyFn func(ctx context.Context, original, guidance string, style analysis.Style) (string, error)
}

func (f *fakeGateway) GenerateReply(ctx context.Context, original, guidance string, style analysis.Style) (string, error) {
	return f.replyFn(ctx, original, guidance, style)
}

func testDrafter(gw gateway.System, cats categories.System) *drafter {
	return &drafter{categories: cats, gateway: gw, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func analyzedLetter() *letters.Letter {
	summary := "Клиент просит выписку"
	class := 1
	crit := analysis.CriticalityHigh
	style := analysis.StyleOfficial
	return &letters.Letter{
		ID:               uuid.New(),
		Body:             "Прошу предоставить выписку по счёту",
		Status:           letters.StatusAnalyzed,
		Summary:          &summary,
		Classification:   &class,
		CriticalityLevel: &crit,
		ResponseStyle:    &style,
	}
}

func TestDrafterDerivesGuidanceAndStyle(t *testing.T) {
	var gotGuidance, gotOriginal string
	var gotStyle analysis.Style

	gw := &fakeGateway{replyFn: func(_ context.Context, original, guidance string, style analysis.Style) (string, error) {
		gotOriginal, gotGuidance, gotStyle = original, guidance, style
		return "Уважаемый клиент...", nil
	}}

	l := analyzedLetter()
	d, err := testDrafter(gw, &fakeCategories{}).run(context.Background(), l, GenerateCommand{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if gotOriginal != l.Body {
		t.Errorf("original = %q", gotOriginal)
	}
	if gotStyle != analysis.StyleOfficial || d.style != analysis.StyleOfficial {
		t.Errorf("style = %d, want the analyzed style", gotStyle)
	}
	want := prompts.DefaultGuidance("Клиент просит выписку", "Запрос информации/документов", "Высокий")
	if gotGuidance != want {
		t.Errorf("guidance = %q\nwant %q", gotGuidance, want)
	}
	if d.fallback || d.text != "Уважаемый клиент..." {
		t.Errorf("draft = %+v", d)
	}
}

func TestDrafterExplicitStyleAndGuidance(t *testing.T) {
	var gotGuidance string
	var gotStyle analysis.Style
	gw := &fakeGateway{replyFn: func(_ context.Context, _, guidance string, style analysis.Style) (string, error) {
		gotGuidance, gotStyle = guidance, style
		return "ok", nil
	}}

	brief := analysis.StyleBrief
	_, err := testDrafter(gw, &fakeCategories{}).run(context.Background(), analyzedLetter(),
		GenerateCommand{Style: &brief, Guidance: "  Отказать вежливо  "})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if gotStyle != analysis.StyleBrief {
		t.Errorf("style = %d, want brief", gotStyle)
	}
	if gotGuidance != "Отказать вежливо" {
		t.Errorf("guidance = %q", gotGuidance)
	}
}

func TestDrafterHoldingMessageOnFailure(t *testing.T) {
	gw := &fakeGateway{replyFn: func(context.Context, string, string, analysis.Style) (string, error) {
		return "", gateway.ErrUnavailable
	}}

	d, err := testDrafter(gw, &fakeCategories{}).run(context.Background(), analyzedLetter(), GenerateCommand{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !d.fallback || d.text != prompts.HoldingMessage {
		t.Errorf("draft = %+v, want holding message", d)
	}
}

func TestDrafterCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	gw := &fakeGateway{replyFn: func(context.Context, string, string, analysis.Style) (string, error) {
		cancel()
		return "", context.Canceled
	}}

	_, err := testDrafter(gw, &fakeCategories{}).run(ctx, analyzedLetter(), GenerateCommand{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("run error = %v, want context.Canceled", err)
	}
}

func TestDrafterTruncates(t *testing.T) {
	gw := &fakeGateway{replyFn: func(context.Context, string, string, analysis.Style) (string, error) {
		return strings.Repeat("ж", MaxTextRunes+50), nil
	}}

	d, err := testDrafter(gw, &fakeCategories{}).run(context.Background(), analyzedLetter(), GenerateCommand{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if n := utf8.RuneCountInString(d.text); n != MaxTextRunes {
		t.Errorf("text runes = %d, want %d", n, MaxTextRunes)
	}
}

func TestDefaultGuidanceWithoutCategories(t *testing.T) {
	d := testDrafter(nil, &fakeCategories{err: categories.ErrNoActiveSet})
	got := d.defaultGuidance(context.Background(), analyzedLetter())
	want := prompts.DefaultGuidance("Клиент просит выписку", "", "Высокий")
	if got != want {
		t.Errorf("guidance = %q, want %q", got, want)
	}
}

func TestStyleFor(t *testing.T) {
	client := analysis.StyleClient

	tests := []struct {
		name   string
		cmd    GenerateCommand
		letter letters.Letter
		want   analysis.Style
	}{
		{"explicit", GenerateCommand{Style: &client}, letters.Letter{}, analysis.StyleClient},
		{"analyzed", GenerateCommand{}, *analyzedLetter(), analysis.StyleOfficial},
		{"default", GenerateCommand{}, letters.Letter{}, analysis.StyleCorporate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := styleFor(tt.cmd, &tt.letter); got != tt.want {
				t.Errorf("styleFor = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGenerateCommandValidate(t *testing.T) {
	bad := analysis.Style(7)
	cmd := GenerateCommand{Style: &bad}
	if err := cmd.validate(); !errors.Is(err, ErrInvalidStyle) {
		t.Errorf("validate = %v, want ErrInvalidStyle", err)
	}

	if err := (&GenerateCommand{}).validate(); err != nil {
		t.Errorf("empty command validate = %v", err)
	}
}

func TestArchiveKey(t *testing.T) {
	letterID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	replyID := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	want := "replies/11111111-1111-1111-1111-111111111111/22222222-2222-2222-2222-222222222222.txt"
	if got := ArchiveKey(letterID, replyID); got != want {
		t.Errorf("ArchiveKey = %q", got)
	}
}
