package replies

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/clerk/internal/letters"
	"github.com/JaimeStill/clerk/pkg/storage"
)

var (
	ErrNotFound        = errors.New("reply not found")
	ErrDuplicate       = errors.New("reply already exists")
	ErrInvalidStyle    = errors.New("invalid response style")
	ErrNotAnalyzed     = errors.New("letter must be analyzed before replying")
	ErrArchiveNotFound = errors.New("reply archive not found")
)

func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrArchiveNotFound), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidStyle):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotAnalyzed), errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	}
	return letters.MapHTTPStatus(err)
}
