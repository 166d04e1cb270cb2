package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
)

var (
	// ErrUnavailable is returned once every attempt of a call has failed.
	ErrUnavailable   = errors.New("model gateway unavailable")
	ErrEmptyResponse = errors.New("model returned empty content")
	ErrUnparseable   = errors.New("model response could not be parsed")
)

// StatusError carries the HTTP status a provider rejected a request with.
type StatusError struct {
	Code int
	Err  error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider status %d: %v", e.Code, e.Err)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

var statusPattern = regexp.MustCompile(`status code:? (\d{3})`)

// statusFromText recovers a StatusError from clients that only report the
// status inside the error message.
func statusFromText(err error) error {
	if err == nil {
		return nil
	}
	if m := statusPattern.FindStringSubmatch(err.Error()); len(m) == 2 {
		if code, convErr := strconv.Atoi(m[1]); convErr == nil {
			return &StatusError{Code: code, Err: err}
		}
	}
	return err
}

// retryable reports whether another attempt may succeed. A cancelled parent
// context and client errors other than 429 stop the loop. An attempt that
// only hit its own timeout is retried.
func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		if se.Code == http.StatusTooManyRequests {
			return true
		}
		return se.Code < 400 || se.Code >= 500
	}
	return true
}

func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrUnavailable) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
