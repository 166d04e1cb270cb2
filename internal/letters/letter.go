// Package letters implements inbound correspondence: registration, model
// analysis with SLA derivation, the status lifecycle and statistics.
package letters

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/JaimeStill/clerk/internal/analysis"
	"github.com/JaimeStill/clerk/internal/prompts"
	"github.com/JaimeStill/clerk/pkg/formatting"
)

const (
	MaxSenderRunes  = 255
	MaxSubjectRunes = 500
	shortSubject    = 50
)

// Letter is a registered letter plus the fields its latest analysis set.
// Analysis fields are nil until the letter is analyzed.
type Letter struct {
	ID                  uuid.UUID             `json:"id"`
	Sender              string                `json:"sender"`
	Subject             string                `json:"subject"`
	ShortSubject        string                `json:"short_subject"`
	Body                string                `json:"body"`
	Status              Status                `json:"status"`
	StatusLabel         string                `json:"status_label"`
	UploadedAt          time.Time             `json:"uploaded_at"`
	UpdatedAt           time.Time             `json:"updated_at"`
	Summary             *string               `json:"summary"`
	Classification      *int                  `json:"classification"`
	CriticalityLevel    *analysis.Criticality `json:"criticality_level"`
	ResponseStyle       *analysis.Style       `json:"response_style"`
	ProcessingTimeHours *int                  `json:"processing_time_hours"`
	SLADeadline         *time.Time            `json:"sla_deadline"`
	FinalResponse       *string               `json:"final_response"`
}

// AnalysisInput renders the letter as the model input text.
func (l *Letter) AnalysisInput() string {
	return prompts.AnalysisInput(l.Sender, l.Subject, l.Body)
}

// Overdue reports whether the SLA deadline passed while the letter was still open.
func (l *Letter) Overdue(now time.Time) bool {
	return l.SLADeadline != nil && !l.Status.Terminal() && l.SLADeadline.Before(now)
}

func (l *Letter) decorate() {
	l.ShortSubject = formatting.Ellipsize(l.Subject, shortSubject)
	l.StatusLabel = l.Status.Label()
}

// CreateCommand registers a letter with status new.
type CreateCommand struct {
	Sender  string `json:"sender"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (c *CreateCommand) Validate() error {
	c.Sender = strings.TrimSpace(c.Sender)
	c.Subject = strings.TrimSpace(c.Subject)

	switch {
	case c.Sender == "":
		return fmt.Errorf("%w: sender required", ErrInvalidLetter)
	case utf8.RuneCountInString(c.Sender) > MaxSenderRunes:
		return fmt.Errorf("%w: sender exceeds %d characters", ErrInvalidLetter, MaxSenderRunes)
	case c.Subject == "":
		return fmt.Errorf("%w: subject required", ErrInvalidLetter)
	case utf8.RuneCountInString(c.Subject) > MaxSubjectRunes:
		return fmt.Errorf("%w: subject exceeds %d characters", ErrInvalidLetter, MaxSubjectRunes)
	case strings.TrimSpace(c.Body) == "":
		return fmt.Errorf("%w: body required", ErrInvalidLetter)
	}
	return nil
}

// StatusCommand is a manual status change.
type StatusCommand struct {
	Status Status `json:"status"`
}

// Analysis is the stored outcome of a letter's latest analysis.
type Analysis struct {
	LetterID           uuid.UUID        `json:"letter_id"`
	Outcome            analysis.Outcome `json:"outcome"`
	Source             analysis.Source  `json:"source"`
	ClassificationName string           `json:"classification_name"`
	CriticalityLabel   string           `json:"criticality_label"`
	StyleLabel         string           `json:"style_label"`
	AnalyzedAt         time.Time        `json:"analyzed_at"`
}

// BatchResult reports one pending letter's analysis within AnalyzePending.
type BatchResult struct {
	LetterID uuid.UUID       `json:"letter_id"`
	Source   analysis.Source `json:"source,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// BatchSummary aggregates an AnalyzePending run.
type BatchSummary struct {
	Total    int           `json:"total"`
	Analyzed int           `json:"analyzed"`
	Failed   int           `json:"failed"`
	Results  []BatchResult `json:"results"`
}
