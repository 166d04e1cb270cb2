package analysis

import "time"

// DeadlineLayout is the wire format of Outcome.SLADeadline.
const DeadlineLayout = "2006-01-02 15:04:05"

const (
	MaxSummaryRunes  = 500
	MinProcessingHrs = 1
	MaxProcessingHrs = 720
)

const (
	// SummaryNotAnalyzed is the summary of the fallback record, used when the
	// model returned nothing usable.
	SummaryNotAnalyzed = "Автоматический анализ не выполнен. Требуется ручная обработка."
	// SummaryMissing fills the summary of a present result whose summary
	// field is absent, blank, or not text.
	SummaryMissing = "Не удалось сгенерировать краткое содержание."
)

// Outcome is the fully populated result of analyzing one letter.
type Outcome struct {
	Classification      int         `json:"classification"`
	CriticalityLevel    Criticality `json:"criticality_level"`
	ResponseStyle       Style       `json:"response_style"`
	ProcessingTimeHours int         `json:"processing_time_hours"`
	SLADeadline         string      `json:"sla_deadline"`
	Summary             string      `json:"summary"`
}

// Source records whether an Outcome came from the model or from the fallback record.
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

var deadlineHours = map[Criticality]int{
	CriticalityLow:      48,
	CriticalityMedium:   24,
	CriticalityHigh:     8,
	CriticalityCritical: 4,
}

// HoursFor returns the processing time and SLA offset for c. Values outside
// the scale are treated as critical.
func HoursFor(c Criticality) int {
	if h, ok := deadlineHours[c]; ok {
		return h
	}
	return deadlineHours[CriticalityCritical]
}

// FormatDeadline renders now+hours in UTC using DeadlineLayout.
func FormatDeadline(now time.Time, hours int) string {
	return now.UTC().Add(time.Duration(hours) * time.Hour).Format(DeadlineLayout)
}

var deadlineLayouts = []string{
	DeadlineLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"02.01.2006",
}

// ParseDeadline reads a deadline string in any of the layouts models commonly
// produce. Layouts without a zone are read as UTC.
func ParseDeadline(s string) (time.Time, bool) {
	for _, layout := range deadlineLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
