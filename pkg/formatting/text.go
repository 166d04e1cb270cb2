package formatting

// TruncateRunes returns s cut to at most n runes.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// Ellipsize shortens s to limit runes, replacing the tail with "..." when s is longer.
func Ellipsize(s string, limit int) string {
	if limit <= 3 || len([]rune(s)) <= limit {
		return s
	}
	return TruncateRunes(s, limit-3) + "..."
}
