// Package httpclient is the JSON-over-HTTP transport shared by the GitHub and
// CI server clients.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

//go:generate mockgen -destination=mocks/mock_client.go -package=mocks -source=types.go Client

// Client performs JSON requests and returns the raw response body.
type Client interface {
	// Get fetches url and returns the body of a 2xx response.
	Get(ctx context.Context, url string) ([]byte, error)

	// Do sends a request with body JSON-encoded (nil for no body) and returns
	// the body of a 2xx response.
	Do(ctx context.Context, method, url string, body any) ([]byte, error)
}

// HTTPError is returned for any non-2xx response.
type HTTPError struct {
	StatusCode int
	URL        string
	Message    string
}

// NewHTTPError creates an HTTPError.
func NewHTTPError(statusCode int, url, message string) error {
	return &HTTPError{
		StatusCode: statusCode,
		URL:        url,
		Message:    message,
	}
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d for URL %s: %s", e.StatusCode, e.URL, e.Message)
}

// IsStatus reports whether err is an HTTPError with the given status code.
func IsStatus(err error, statusCode int) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == statusCode
}

// retryable reports whether the status code is worth another attempt.
func retryable(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode >= http.StatusInternalServerError
}
