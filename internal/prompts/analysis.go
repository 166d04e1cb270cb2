package prompts

import (
	"fmt"
	"strings"

	"github.com/JaimeStill/clerk/internal/analysis"
	"github.com/JaimeStill/clerk/internal/categories"
)

// Analysis returns the instructions for classifying one letter against cats.
// A non-empty retrieved context is appended under its own heading.
func Analysis(cats []categories.Category, retrieved string) string {
	var b strings.Builder

	b.WriteString("Ты - аналитик входящей корреспонденции банка. ")
	b.WriteString("Определи тему письма, уровень критичности, подходящий стиль ответа и срок обработки.\n\n")

	b.WriteString("Категории (выбери ровно одну):\n")
	for _, c := range cats {
		if c.Description != "" {
			fmt.Fprintf(&b, "%d. %s — %s\n", c.Number, c.Name, c.Description)
		} else {
			fmt.Fprintf(&b, "%d. %s\n", c.Number, c.Name)
		}
	}

	b.WriteString("\nУровни критичности:\n")
	for _, c := range analysis.Criticalities() {
		fmt.Fprintf(&b, "%d. %s (срок по умолчанию %d ч)\n", c, c.Label(), analysis.HoursFor(c))
	}

	b.WriteString("\nСтили ответа:\n")
	for _, s := range analysis.Styles() {
		fmt.Fprintf(&b, "%d. %s\n", s, s.Label())
	}

	if ctx := strings.TrimSpace(retrieved); ctx != "" {
		b.WriteString("\nСправочный контекст (похожие письма и регламенты):\n")
		b.WriteString(ctx)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(analysisSpec)
	return b.String()
}

// AnalysisInput lays out a letter as model input.
func AnalysisInput(sender, subject, body string) string {
	return fmt.Sprintf("ОТПРАВИТЕЛЬ: %s\nТЕМА: %s\nТЕКСТ ПИСЬМА:\n%s", sender, subject, body)
}
