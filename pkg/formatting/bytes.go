// Package formatting parses model output and human-readable byte sizes,
// and shortens text by rune count.
package formatting

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// byteUnits are base-1024 multipliers. Request limits never need more than GB.
var byteUnits = map[string]int64{
	"":   1,
	"B":  1,
	"KB": 1 << 10,
	"MB": 1 << 20,
	"GB": 1 << 30,
}

// ParseBytes parses a size such as "512", "1.5KB" or "10 mb" into bytes.
// Units are case-insensitive and may be separated from the number by spaces.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size")
	}

	split := strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.'
	})
	number, unit := s, ""
	if split >= 0 {
		number, unit = s[:split], strings.ToUpper(strings.TrimSpace(s[split:]))
	}

	value, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size %q: %w", s, err)
	}

	mult, ok := byteUnits[unit]
	if !ok {
		return 0, fmt.Errorf("unknown byte size unit %q", unit)
	}
	return int64(value * float64(mult)), nil
}
