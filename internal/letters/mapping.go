package letters

import (
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	"github.com/JaimeStill/clerk/pkg/query"
	"github.com/JaimeStill/clerk/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "letters", "l").
	Project("id", "ID").
	Project("sender", "Sender").
	Project("subject", "Subject").
	Project("body", "Body").
	Project("status", "Status").
	Project("uploaded_at", "UploadedAt").
	Project("updated_at", "UpdatedAt").
	Project("summary", "Summary").
	Project("classification", "Classification").
	Project("criticality_level", "CriticalityLevel").
	Project("response_style", "ResponseStyle").
	Project("processing_time_hours", "ProcessingTimeHours").
	Project("sla_deadline", "SLADeadline").
	Project("final_response", "FinalResponse")

var defaultSort = query.SortField{
	Field:      "UploadedAt",
	Descending: true,
}

// Filters narrows letter listings. Nil fields are ignored. Overdue selects
// open letters whose SLA deadline has passed.
type Filters struct {
	Status           *string `json:"status,omitempty"`
	Classification   *int    `json:"classification,omitempty"`
	CriticalityLevel *int    `json:"criticality_level,omitempty"`
	Sender           *string `json:"sender,omitempty"`
	Overdue          *bool   `json:"overdue,omitempty"`
}

// Apply adds filter conditions to b. now is the overdue reference time.
func (f Filters) Apply(b *query.Builder, now time.Time) *query.Builder {
	b.
		WhereEquals("Status", f.Status).
		WhereEquals("Classification", f.Classification).
		WhereEquals("CriticalityLevel", f.CriticalityLevel).
		WhereContains("Sender", f.Sender)

	if f.Overdue != nil && *f.Overdue {
		b.
			WhereBefore("SLADeadline", now).
			WhereNotIn("Status", []any{string(StatusDone), string(StatusArchived)})
	}
	return b
}

// FiltersFromQuery reads filters from URL query values. Malformed numbers
// and booleans are ignored.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}

	if c := values.Get("classification"); c != "" {
		if v, err := strconv.Atoi(c); err == nil {
			f.Classification = &v
		}
	}

	if c := values.Get("criticality_level"); c != "" {
		if v, err := strconv.Atoi(c); err == nil {
			f.CriticalityLevel = &v
		}
	}

	if s := values.Get("sender"); s != "" {
		f.Sender = &s
	}

	if o := values.Get("overdue"); o != "" {
		if v, err := strconv.ParseBool(o); err == nil {
			f.Overdue = &v
		}
	}

	return f
}

func scanLetter(s repository.Scanner) (Letter, error) {
	var l Letter
	err := s.Scan(
		&l.ID,
		&l.Sender,
		&l.Subject,
		&l.Body,
		&l.Status,
		&l.UploadedAt,
		&l.UpdatedAt,
		&l.Summary,
		&l.Classification,
		&l.CriticalityLevel,
		&l.ResponseStyle,
		&l.ProcessingTimeHours,
		&l.SLADeadline,
		&l.FinalResponse,
	)
	if err == nil {
		l.decorate()
	}
	return l, err
}

const analysisColumns = "letter_id, outcome, source, analyzed_at"

func scanAnalysis(s repository.Scanner) (Analysis, error) {
	var (
		a       Analysis
		outcome []byte
	)
	if err := s.Scan(&a.LetterID, &outcome, &a.Source, &a.AnalyzedAt); err != nil {
		return a, err
	}
	if err := json.Unmarshal(outcome, &a.Outcome); err != nil {
		return a, err
	}
	a.CriticalityLabel = a.Outcome.CriticalityLevel.Label()
	a.StyleLabel = a.Outcome.ResponseStyle.Label()
	return a, nil
}
