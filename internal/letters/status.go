package letters

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Status is a letter's position in its processing lifecycle.
type Status string

const (
	StatusNew               Status = "new"
	StatusAnalyzed          Status = "analyzed"
	StatusResponseGenerated Status = "response_generated"
	StatusDone              Status = "done"
	StatusArchived          Status = "archived"
)

var statuses = []Status{
	StatusNew,
	StatusAnalyzed,
	StatusResponseGenerated,
	StatusDone,
	StatusArchived,
}

var statusLabels = map[Status]string{
	StatusNew:               "Новое",
	StatusAnalyzed:          "Проанализировано",
	StatusResponseGenerated: "Ответ сгенерирован",
	StatusDone:              "Завершено",
	StatusArchived:          "В архиве",
}

// transitions lists the targets reachable from each status. Archived has none.
var transitions = map[Status][]Status{
	StatusNew:               {StatusAnalyzed, StatusArchived},
	StatusAnalyzed:          {StatusAnalyzed, StatusResponseGenerated, StatusArchived},
	StatusResponseGenerated: {StatusResponseGenerated, StatusDone, StatusAnalyzed, StatusArchived},
	StatusDone:              {StatusResponseGenerated, StatusAnalyzed, StatusArchived},
}

// Statuses lists every status in lifecycle order.
func Statuses() []Status {
	return slices.Clone(statuses)
}

func ParseStatus(s string) (Status, error) {
	v := Status(s)
	if !v.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return v, nil
}

func (s Status) Valid() bool {
	return slices.Contains(statuses, s)
}

func (s Status) Label() string {
	return statusLabels[s]
}

// CanTransition reports whether a letter in s may move to next.
func (s Status) CanTransition(next Status) bool {
	return slices.Contains(transitions[s], next)
}

// Terminal reports whether the letter no longer counts toward SLA tracking.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusArchived
}

// From returns every status that may move to next, in lifecycle order.
func From(next Status) []Status {
	var out []Status
	for _, s := range statuses {
		if s.CanTransition(next) {
			out = append(out, s)
		}
	}
	return out
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}
