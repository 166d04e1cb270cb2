package analysis

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/JaimeStill/clerk/internal/categories"
	"github.com/JaimeStill/clerk/pkg/formatting"
)

const (
	defaultCriticality = CriticalityMedium
	defaultStyle       = StyleCorporate
)

var embeddedInt = regexp.MustCompile(`\d+`)

// Normalizer derives Outcomes. Its clock only affects derived SLA deadlines.
type Normalizer struct {
	now func() time.Time
}

func NewNormalizer(now func() time.Time) *Normalizer {
	if now == nil {
		now = time.Now
	}
	return &Normalizer{now: now}
}

// Normalize maps raw onto the active set. It never fails. Each field is derived
// independently, so one unusable field does not discard the others.
func (n *Normalizer) Normalize(raw RawResult, active []categories.Category) Outcome {
	now := n.now()
	if raw.IsAbsent() {
		return Fallback(active, now)
	}

	f := raw.fields
	crit := resolveCriticality(f.criticality)

	return Outcome{
		Classification:      resolveClassification(f.classification, active),
		CriticalityLevel:    crit,
		ResponseStyle:       resolveStyle(f.style),
		ProcessingTimeHours: resolveProcessingTime(f.processingTime, crit),
		SLADeadline:         resolveDeadline(f.deadline, crit, now),
		Summary:             resolveSummary(f.summary),
	}
}

// Fallback is the record used when there is no usable model output.
func Fallback(active []categories.Category, now time.Time) Outcome {
	hours := HoursFor(defaultCriticality)
	return Outcome{
		Classification:      firstNumber(active),
		CriticalityLevel:    defaultCriticality,
		ResponseStyle:       defaultStyle,
		ProcessingTimeHours: hours,
		SLADeadline:         FormatDeadline(now, hours),
		Summary:             SummaryNotAnalyzed,
	}
}

func firstNumber(active []categories.Category) int {
	if len(active) == 0 {
		return 1
	}
	return active[0].Number
}

func isActive(active []categories.Category, number int) bool {
	for _, c := range active {
		if c.Number == number {
			return true
		}
	}
	return false
}

func resolveClassification(f field, active []categories.Category) int {
	if n, ok := asInt(f.value); ok {
		if isActive(active, n) {
			return n
		}
		return firstNumber(active)
	}

	text, ok := f.value.(string)
	if !ok {
		return firstNumber(active)
	}

	if lower := strings.ToLower(strings.TrimSpace(text)); lower != "" {
		for _, c := range active {
			name := strings.ToLower(c.Name)
			if strings.Contains(lower, name) || strings.Contains(name, lower) {
				return c.Number
			}
		}
	}

	if digits := embeddedInt.FindString(text); digits != "" {
		if n, err := strconv.Atoi(digits); err == nil && isActive(active, n) {
			return n
		}
	}

	return firstNumber(active)
}

func resolveCriticality(f field) Criticality {
	return Criticality(resolveScale(f, criticalityKeywords, int(defaultCriticality)))
}

func resolveStyle(f field) Style {
	return Style(resolveScale(f, styleKeywords, int(defaultStyle)))
}

func resolveScale(f field, keywords []rule, fallback int) int {
	if n, ok := asInt(f.value); ok {
		return clamp(n, 1, 4)
	}
	if text, ok := f.value.(string); ok {
		if v, ok := match(text, keywords, scaleDigits); ok {
			return v
		}
	}
	return fallback
}

// resolveProcessingTime uses the provided value whenever it is present and in
// range. A provided 24 is kept as 24.
func resolveProcessingTime(f field, crit Criticality) int {
	if f.set {
		if n, ok := asCount(f.value); ok && n >= MinProcessingHrs && n <= MaxProcessingHrs {
			return n
		}
	}
	return HoursFor(crit)
}

func resolveDeadline(f field, crit Criticality, now time.Time) string {
	if text, ok := asText(f.value); ok {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			return trimmed
		}
	}
	return FormatDeadline(now, HoursFor(crit))
}

func resolveSummary(f field) string {
	text, ok := asText(f.value)
	if !ok || strings.TrimSpace(text) == "" {
		return SummaryMissing
	}
	return formatting.TruncateRunes(text, MaxSummaryRunes)
}
