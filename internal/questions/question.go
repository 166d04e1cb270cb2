// Package questions answers operator questions about a letter and keeps the
// question history.
package questions

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/JaimeStill/clerk/internal/letters"
)

const MaxQuestionRunes = 2000

var (
	ErrInvalidQuestion = errors.New("invalid question")
	ErrDuplicate       = errors.New("question already exists")
)

type Question struct {
	ID       uuid.UUID `json:"id"`
	LetterID uuid.UUID `json:"letter_id"`
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	Fallback bool      `json:"fallback"`
	AskedAt  time.Time `json:"asked_at"`
}

type AskCommand struct {
	Question string `json:"question"`
}

func (c *AskCommand) Validate() error {
	c.Question = strings.TrimSpace(c.Question)
	switch {
	case c.Question == "":
		return fmt.Errorf("%w: question required", ErrInvalidQuestion)
	case utf8.RuneCountInString(c.Question) > MaxQuestionRunes:
		return fmt.Errorf("%w: question exceeds %d characters", ErrInvalidQuestion, MaxQuestionRunes)
	}
	return nil
}

func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidQuestion):
		return http.StatusBadRequest
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	}
	return letters.MapHTTPStatus(err)
}
