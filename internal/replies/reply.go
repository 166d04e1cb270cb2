// Package replies drafts, selects and archives reply text for analyzed letters.
package replies

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/clerk/internal/analysis"
)

// MaxTextRunes bounds stored reply text.
const MaxTextRunes = 10000

// Reply is one generated draft. At most one reply per letter is selected.
type Reply struct {
	ID          uuid.UUID      `json:"id"`
	LetterID    uuid.UUID      `json:"letter_id"`
	Style       analysis.Style `json:"style"`
	StyleLabel  string         `json:"style_label"`
	Text        string         `json:"text"`
	Selected    bool           `json:"selected"`
	Fallback    bool           `json:"fallback"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// GenerateCommand requests a draft. A nil Style uses the letter's analyzed
// style. Blank Guidance is derived from the letter's analysis.
type GenerateCommand struct {
	Style    *analysis.Style `json:"style,omitempty"`
	Guidance string          `json:"guidance"`
}

func (c *GenerateCommand) validate() error {
	if c.Style != nil && !c.Style.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidStyle, *c.Style)
	}
	return nil
}

// ArchiveKey is the blob key of a selected reply's archived text.
func ArchiveKey(letterID, replyID uuid.UUID) string {
	return fmt.Sprintf("replies/%s/%s.txt", letterID, replyID)
}
