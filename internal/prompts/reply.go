package prompts

import (
	"fmt"
	"strings"

	"github.com/JaimeStill/clerk/internal/analysis"
)

const (
	PlainReplyInstructions = "Ты - AI ассистент для генерации ответов на банковские письма. Генерируй профессиональные ответы."
	HoldingMessage         = "Автоматический ответ: Благодарим за обращение. Ваше письмо получено и находится в обработке. С уважением, Банк."
	EmptyReply             = "Не удалось сгенерировать ответ."
	defaultGuidance        = "Сгенерируй профессиональный ответ на письмо."
)

var styleTemplates = map[analysis.Style]string{
	analysis.StyleOfficial: "Составь ответ на письмо в строгом официальном стиле. " +
		"Используй нормативные формулировки, ссылайся на применимые положения и регламенты, " +
		"избегай эмоциональных оценок. Подпись: от имени банка.",
	analysis.StyleCorporate: "Составь ответ на письмо в деловом корпоративном стиле. " +
		"Будь вежлив и конкретен, изложи позицию банка и дальнейшие шаги, " +
		"сохраняй нейтральный профессиональный тон.",
	analysis.StyleClient: "Составь клиентоориентированный ответ на письмо. " +
		"Прояви внимание к ситуации клиента, поблагодари за обращение, " +
		"предложи понятное решение и способ связаться с банком.",
	analysis.StyleBrief: "Составь краткий информационный ответ на письмо. " +
		"Сообщи только существенную информацию в двух-трёх предложениях.",
}

// Reply builds the generation prompt for style. Blank guidance is replaced
// with a generic instruction.
func Reply(style analysis.Style, original, guidance string) string {
	template, ok := styleTemplates[style]
	if !ok {
		template = styleTemplates[analysis.StyleCorporate]
	}
	if strings.TrimSpace(guidance) == "" {
		guidance = defaultGuidance
	}
	return fmt.Sprintf("%s\nТекст письма:\n%s\n\nДополнительные указания:\n%s", template, original, guidance)
}

// ReplyInstructions returns the structured-output instructions for style.
func ReplyInstructions(style analysis.Style) string {
	template, ok := styleTemplates[style]
	if !ok {
		template = styleTemplates[analysis.StyleCorporate]
	}
	return template + "\n\n" + replySpec
}

// DefaultGuidance is the guidance used when an operator supplies none.
func DefaultGuidance(summary, classification, criticality string) string {
	return fmt.Sprintf(
		"Краткое содержание письма: %s\nТип письма: %s\nУровень критичности: %s",
		summary, classification, criticality,
	)
}
