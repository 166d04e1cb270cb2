package categories

import (
	"errors"
	"net/http"
)

var (
	ErrTooFewCategories  = errors.New("at least 2 categories are required")
	ErrTooManyCategories = errors.New("at most 9 categories are allowed")
	ErrEmptyName         = errors.New("category name must not be empty")
	ErrDuplicateNumber   = errors.New("category numbers must be unique")
	ErrNonContiguous     = errors.New("category numbers must run 1..N without gaps")
	ErrDuplicateName     = errors.New("category names must be unique")
	ErrNotConfirmed      = errors.New("replacing categories resets all letter analysis and requires confirm: true")
	ErrNoActiveSet       = errors.New("no active category set")
)

func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrTooFewCategories),
		errors.Is(err, ErrTooManyCategories),
		errors.Is(err, ErrEmptyName),
		errors.Is(err, ErrDuplicateNumber),
		errors.Is(err, ErrNonContiguous),
		errors.Is(err, ErrDuplicateName),
		errors.Is(err, ErrNotConfirmed):
		return http.StatusBadRequest
	case errors.Is(err, ErrNoActiveSet):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
