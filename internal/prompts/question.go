package prompts

import (
	"fmt"
	"strings"
)

// QuestionInstructions frames the model as an assistant answering about one letter.
const QuestionInstructions = "Ты - AI ассистент сотрудника банка. Отвечай на вопросы по содержанию входящего письма."

// UnavailableAnswer is stored when no answer could be generated.
const UnavailableAnswer = "Не удалось получить ответ на вопрос. Попробуйте повторить запрос позже."

// Question builds the Q&A input over the original letter text.
func Question(original, question, retrieved string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Текст письма:\n%s\n\nВопрос:\n%s\n", original, strings.TrimSpace(question))
	if ctx := strings.TrimSpace(retrieved); ctx != "" {
		fmt.Fprintf(&b, "\nСправочный контекст:\n%s\n", ctx)
	}
	b.WriteString("\n")
	b.WriteString(questionSpec)
	return b.String()
}
