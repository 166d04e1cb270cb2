package letters

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/clerk/internal/categories"
)

var (
	ErrNotFound          = errors.New("letter not found")
	ErrDuplicate         = errors.New("letter already exists")
	ErrAnalysisNotFound  = errors.New("letter has not been analyzed")
	ErrInvalidStatus     = errors.New("invalid letter status")
	ErrInvalidTransition = errors.New("status change not allowed")
	ErrManualStatus      = errors.New("only archiving may be set manually")
	ErrInvalidLetter     = errors.New("invalid letter")
	ErrStaleCategories   = errors.New("category set changed during analysis")
)

func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrAnalysisNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrStaleCategories):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrManualStatus), errors.Is(err, ErrInvalidLetter):
		return http.StatusBadRequest
	case errors.Is(err, categories.ErrNoActiveSet):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
