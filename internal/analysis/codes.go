// Package analysis turns whatever the model returned, including nothing at all,
// into a complete Outcome over the active category set. Normalization never
// fails: every field has a deterministic fallback.
package analysis

// Criticality is the four-point urgency scale.
type Criticality int

const (
	CriticalityLow Criticality = iota + 1
	CriticalityMedium
	CriticalityHigh
	CriticalityCritical
)

var criticalityLabels = map[Criticality]string{
	CriticalityLow:      "Низкий",
	CriticalityMedium:   "Средний",
	CriticalityHigh:     "Высокий",
	CriticalityCritical: "Критический",
}

func (c Criticality) Label() string {
	return criticalityLabels[c]
}

func (c Criticality) Valid() bool {
	return c >= CriticalityLow && c <= CriticalityCritical
}

// Style selects the reply template.
type Style int

const (
	StyleOfficial Style = iota + 1
	StyleCorporate
	StyleClient
	StyleBrief
)

var styleLabels = map[Style]string{
	StyleOfficial:  "Строгий официальный стиль",
	StyleCorporate: "Деловой корпоративный стиль",
	StyleClient:    "Клиентоориентированный вариант",
	StyleBrief:     "Краткий информационный ответ",
}

func (s Style) Label() string {
	return styleLabels[s]
}

func (s Style) Valid() bool {
	return s >= StyleOfficial && s <= StyleBrief
}

// Styles lists every style in scale order.
func Styles() []Style {
	return []Style{StyleOfficial, StyleCorporate, StyleClient, StyleBrief}
}

// Criticalities lists every criticality in scale order.
func Criticalities() []Criticality {
	return []Criticality{CriticalityLow, CriticalityMedium, CriticalityHigh, CriticalityCritical}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
