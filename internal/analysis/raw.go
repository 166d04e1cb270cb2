package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind tags the shape a RawResult arrived in.
type Kind int

const (
	KindAbsent Kind = iota
	KindStructured
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindStructured:
		return "structured"
	case KindMapping:
		return "mapping"
	}
	return "absent"
}

// Response is the structured shape the model is instructed to return.
// Fields are loosely typed because models return numbers as strings and
// labels in place of numbers.
type Response struct {
	TopicCategory       any `json:"topic_category,omitempty"`
	Classification      any `json:"classification,omitempty"`
	Category            any `json:"category,omitempty"`
	CriticalityLevel    any `json:"criticality_level,omitempty"`
	ResponseStyle       any `json:"response_style,omitempty"`
	ProcessingTimeHours any `json:"processing_time_hours,omitempty"`
	Summary             any `json:"summary,omitempty"`
	SLADeadline         any `json:"sla_deadline,omitempty"`
}

// RawResult is the model output in one of three shapes. Construct it with
// Structured, FromMap or Absent.
type RawResult struct {
	kind   Kind
	fields fields
}

// field is an optional value. set is false when the key was missing or null.
type field struct {
	set   bool
	value any
}

type fields struct {
	classification field
	criticality    field
	style          field
	processingTime field
	summary        field
	deadline       field
}

func Absent() RawResult {
	return RawResult{kind: KindAbsent}
}

func Structured(r Response) RawResult {
	return RawResult{
		kind: KindStructured,
		fields: fields{
			classification: first(r.TopicCategory, r.Classification, r.Category),
			criticality:    opt(r.CriticalityLevel),
			style:          opt(r.ResponseStyle),
			processingTime: opt(r.ProcessingTimeHours),
			summary:        opt(r.Summary),
			deadline:       opt(r.SLADeadline),
		},
	}
}

// FromMap adapts a decoded JSON object. Classification is read from
// topic_category, then classification, then category.
func FromMap(m map[string]any) RawResult {
	if m == nil {
		return Absent()
	}
	return RawResult{
		kind: KindMapping,
		fields: fields{
			classification: first(m["topic_category"], m["classification"], m["category"]),
			criticality:    opt(m["criticality_level"]),
			style:          opt(m["response_style"]),
			processingTime: opt(m["processing_time_hours"]),
			summary:        opt(m["summary"]),
			deadline:       opt(m["sla_deadline"]),
		},
	}
}

// Decode parses model content into a mapping RawResult. Decoding into a map
// keeps every key, so unknown extras do not fail the parse.
func Decode(content []byte) (RawResult, error) {
	var m map[string]any
	if err := json.Unmarshal(content, &m); err != nil {
		return Absent(), fmt.Errorf("decode analysis response: %w", err)
	}
	if m == nil {
		return Absent(), fmt.Errorf("decode analysis response: null object")
	}
	return FromMap(m), nil
}

func (r RawResult) Kind() Kind {
	return r.kind
}

func (r RawResult) IsAbsent() bool {
	return r.kind == KindAbsent
}

func opt(v any) field {
	return field{set: v != nil, value: v}
}

func first(vs ...any) field {
	for _, v := range vs {
		if v != nil {
			return opt(v)
		}
	}
	return field{}
}

// asInt accepts Go integers, integral floats (JSON numbers) and json.Number.
// Strings are not integers here; they go through the text rules.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return saturate(n), true
		}
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return saturate(float64(i)), true
		}
		if f, err := n.Float64(); err == nil || math.IsInf(f, 0) {
			if f == math.Trunc(f) {
				return saturate(f), true
			}
		}
	}
	return 0, false
}

// saturate converts an integral float to int, pinning values outside the
// int32 range to its extremes so callers can clamp them.
func saturate(f float64) int {
	switch {
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	}
	return int(f)
}

// asCount is asInt extended to numeric strings, used for processing hours.
func asCount(v any) (int, bool) {
	if n, ok := asInt(v); ok {
		return n, true
	}
	if s, ok := v.(string); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n, true
		}
	}
	return 0, false
}

// asText renders scalars as text. Nested objects and arrays are not text.
func asText(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64, int, int64, json.Number, bool:
		return fmt.Sprint(t), true
	}
	return "", false
}
