package analysis

import "strings"

// rule maps any of its needles, found as a substring, to value.
type rule struct {
	value   int
	needles []string
}

// Tables are checked in order and the first matching rule wins. Keyword
// tables run before digit tables, so "высокий (3)" and "3" both resolve to 3
// while "уровень 2, критично" resolves by keyword.
var (
	criticalityKeywords = []rule{
		{1, []string{"низк", "low"}},
		{2, []string{"средн", "medium"}},
		{3, []string{"высок", "high"}},
		{4, []string{"критич", "critical"}},
	}

	styleKeywords = []rule{
		{1, []string{"официал", "строг"}},
		{2, []string{"делов", "корпоратив"}},
		{3, []string{"клиент", "ориентир"}},
		{4, []string{"кратк", "информац"}},
	}

	scaleDigits = []rule{
		{1, []string{"1"}},
		{2, []string{"2"}},
		{3, []string{"3"}},
		{4, []string{"4"}},
	}
)

func match(text string, tables ...[]rule) (int, bool) {
	lower := strings.ToLower(text)
	for _, table := range tables {
		for _, r := range table {
			for _, needle := range r.needles {
				if strings.Contains(lower, needle) {
					return r.value, true
				}
			}
		}
	}
	return 0, false
}
