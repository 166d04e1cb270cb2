package formatting_test

import (
	"errors"
	"testing"

	"github.com/JaimeStill/clerk/pkg/formatting"
)

type analysisPayload struct {
	Classification any    `json:"classification"`
	Summary        string `json:"summary"`
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"bare json", `{"classification": 1, "summary": "ok"}`, "ok", false},
		{"fenced json", "Ответ:\n```json\n{\"summary\": \"fenced\"}\n```", "fenced", false},
		{"fence without tag", "```\n{\"summary\": \"plain fence\"}\n```", "plain fence", false},
		{"prose around object", `Вот результат: {"summary": "inline"} спасибо`, "inline", false},
		{"not json", "Извините, не могу помочь.", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatting.Parse[analysisPayload](tt.input)
			if tt.wantErr {
				if !errors.Is(err, formatting.ErrParseFailed) {
					t.Errorf("Parse() error = %v, want ErrParseFailed", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got.Summary != tt.want {
				t.Errorf("Summary = %q, want %q", got.Summary, tt.want)
			}
		})
	}
}

func TestParseBytes(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"512", 512, false},
		{"1KB", 1024, false},
		{"10 mb", 10 << 20, false},
		{"1.5KB", 1536, false},
		{"", 0, true},
		{"12 parsecs", 0, true},
		{"MB", 0, true},
		{"2GB", 2 << 30, false},
		{"1TB", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := formatting.ParseBytes(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseBytes(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseBytes(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		input string
		n     int
		want  string
	}{
		{"Справка", 3, "Спр"},
		{"abc", 10, "abc"},
		{"abc", 0, ""},
		{"Жалоба", 6, "Жалоба"},
	}

	for _, tt := range tests {
		if got := formatting.TruncateRunes(tt.input, tt.n); got != tt.want {
			t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tt.input, tt.n, got, tt.want)
		}
	}
}

func TestEllipsize(t *testing.T) {
	long := "Запрос информации о движении средств по счёту за третий квартал"
	got := formatting.Ellipsize(long, 50)

	if n := len([]rune(got)); n != 50 {
		t.Errorf("rune length = %d, want 50", n)
	}
	if got[len(got)-3:] != "..." {
		t.Errorf("Ellipsize() = %q, want trailing ...", got)
	}
	if short := formatting.Ellipsize("Справка", 50); short != "Справка" {
		t.Errorf("Ellipsize(short) = %q, want unchanged", short)
	}
}
