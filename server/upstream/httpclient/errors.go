package httpclient

import (
	"fmt"
	"net/http"

	"github.com/go-faster/errors"
)

var (
	ErrClientClosed = errors.New("httpclient: client is closed")
	ErrInvalidProxy = errors.New("httpclient: invalid proxy url")
	ErrBaseURL      = errors.New("httpclient: base url is required")
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("httpclient: %s %s: %s", e.Method, e.URL, e.Status)
}

// Retryable reports whether the response status is worth another attempt.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// AsStatusError extracts a *StatusError from an error chain.
func AsStatusError(err error) (*StatusError, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
