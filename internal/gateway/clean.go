package gateway

import (
	"regexp"
	"strings"

	"github.com/JaimeStill/clerk/internal/prompts"
)

var controlChars = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)

// Clean strips control characters from plain model text and collapses runs
// of whitespace. Empty output becomes the placeholder reply.
func Clean(s string) string {
	s = controlChars.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return prompts.EmptyReply
	}
	return s
}
