package formatting

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrParseFailed is returned when content is neither JSON nor contains a fenced JSON block.
var ErrParseFailed = errors.New("failed to parse response")

var fenced = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

// Parse decodes content as JSON into T. Model output often wraps JSON in a
// markdown fence or surrounds it with prose, so Parse falls back to the first
// fenced block and then to the outermost {...} span.
func Parse[T any](content string) (T, error) {
	var result T
	content = strings.TrimSpace(content)

	for _, candidate := range candidates(content) {
		if err := json.Unmarshal([]byte(candidate), &result); err == nil {
			return result, nil
		}
		var zero T
		result = zero
	}

	return result, fmt.Errorf("%w: %s", ErrParseFailed, TruncateRunes(content, 200))
}

func candidates(content string) []string {
	out := []string{content}
	if m := fenced.FindStringSubmatch(content); len(m) >= 2 {
		out = append(out, strings.TrimSpace(m[1]))
	}
	if start, end := strings.Index(content, "{"), strings.LastIndex(content, "}"); start >= 0 && end > start {
		out = append(out, content[start:end+1])
	}
	return out
}
