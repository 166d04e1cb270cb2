// Package prompts builds the instructions and inputs sent to the model.
// Every function is pure and deterministic in its arguments.
package prompts

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Stage names a model interaction that has a response contract.
type Stage string

const (
	StageAnalyze  Stage = "analyze"
	StageReply    Stage = "reply"
	StageQuestion Stage = "question"
)

var stages = []Stage{StageAnalyze, StageReply, StageQuestion}

func Stages() []Stage {
	return slices.Clone(stages)
}

func (s *Stage) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseStage(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func ParseStage(s string) (Stage, error) {
	v := Stage(s)
	if !slices.Contains(stages, v) {
		return "", fmt.Errorf("unknown prompt stage %q", s)
	}
	return v, nil
}

// Spec returns the response contract appended to a stage's instructions.
func Spec(stage Stage) string {
	switch stage {
	case StageAnalyze:
		return analysisSpec
	case StageReply:
		return replySpec
	case StageQuestion:
		return questionSpec
	}
	return ""
}
