package letters_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/clerk/internal/letters"
)

func TestCreateCommandValidate(t *testing.T) {
	tests := []struct {
		name    string
		cmd     letters.CreateCommand
		wantErr bool
	}{
		{"valid", letters.CreateCommand{Sender: "ООО Ромашка", Subject: "Запрос", Body: "Текст"}, false},
		{"blank sender", letters.CreateCommand{Sender: "  ", Subject: "Запрос", Body: "Текст"}, true},
		{"blank subject", letters.CreateCommand{Sender: "a", Subject: "", Body: "Текст"}, true},
		{"blank body", letters.CreateCommand{Sender: "a", Subject: "b", Body: "\n\t"}, true},
		{"long sender", letters.CreateCommand{Sender: strings.Repeat("я", 256), Subject: "b", Body: "c"}, true},
		{"max sender", letters.CreateCommand{Sender: strings.Repeat("я", 255), Subject: "b", Body: "c"}, false},
		{"long subject", letters.CreateCommand{Sender: "a", Subject: strings.Repeat("я", 501), Body: "c"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()
			if tt.wantErr {
				if !errors.Is(err, letters.ErrInvalidLetter) {
					t.Errorf("Validate() = %v, want ErrInvalidLetter", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestCreateCommandTrims(t *testing.T) {
	cmd := letters.CreateCommand{Sender: "  Банк  ", Subject: " Тема ", Body: "Текст"}
	if err := cmd.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cmd.Sender != "Банк" || cmd.Subject != "Тема" {
		t.Errorf("trimmed = %q/%q", cmd.Sender, cmd.Subject)
	}
}

func TestOverdue(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name   string
		letter letters.Letter
		want   bool
	}{
		{"no deadline", letters.Letter{Status: letters.StatusNew}, false},
		{"open past", letters.Letter{Status: letters.StatusAnalyzed, SLADeadline: &past}, true},
		{"open future", letters.Letter{Status: letters.StatusAnalyzed, SLADeadline: &future}, false},
		{"done past", letters.Letter{Status: letters.StatusDone, SLADeadline: &past}, false},
		{"archived past", letters.Letter{Status: letters.StatusArchived, SLADeadline: &past}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.letter.Overdue(now); got != tt.want {
				t.Errorf("Overdue = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{letters.ErrNotFound, 404},
		{letters.ErrAnalysisNotFound, 404},
		{letters.ErrInvalidTransition, 409},
		{fmt.Errorf("persist: %w", letters.ErrStaleCategories), 409},
		{letters.ErrManualStatus, 400},
		{letters.ErrInvalidLetter, 400},
		{errors.New("boom"), 500},
	}

	for _, tt := range tests {
		if got := letters.MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
