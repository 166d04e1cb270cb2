package categories

import "strings"

func trim(s string) string { return strings.TrimSpace(s) }

// Validate checks a candidate set. Names are compared after trimming and
// case folding. The first violated rule is reported.
func Validate(cats []Category) error {
	if len(cats) < MinCategories {
		return ErrTooFewCategories
	}
	if len(cats) > MaxCategories {
		return ErrTooManyCategories
	}

	numbers := make(map[int]bool, len(cats))
	names := make(map[string]bool, len(cats))

	for _, c := range cats {
		name := strings.ToLower(trim(c.Name))
		if name == "" {
			return ErrEmptyName
		}
		if numbers[c.Number] {
			return ErrDuplicateNumber
		}
		numbers[c.Number] = true
		if names[name] {
			return ErrDuplicateName
		}
		names[name] = true
	}

	for n := 1; n <= len(cats); n++ {
		if !numbers[n] {
			return ErrNonContiguous
		}
	}
	return nil
}
