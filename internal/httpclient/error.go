package httpclient

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"

	ierr "github.com/alexanderramin/invoicer/internal/errors"
)

// Error is a non-2xx response.
type Error struct {
	StatusCode int
	Response   []byte
}

func (e *Error) Error() string {
	return fmt.Sprintf("http %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// NewError wraps a non-2xx response, marked as an upstream fetch error.
func NewError(statusCode int, response []byte) error {
	b := ierr.WithError(&Error{StatusCode: statusCode, Response: response})
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		b = b.WithHint("check the API key in the profile or environment")
	case statusCode == http.StatusTooManyRequests:
		b = b.WithHint("the service is rate limiting requests; try again later")
	}
	return b.Mark(ierr.ErrUpstreamFetch)
}

// IsHTTPError checks if an error is a non-2xx response.
func IsHTTPError(err error) (*Error, bool) {
	var httpErr *Error
	if errors.As(err, &httpErr) {
		return httpErr, true
	}
	return nil, false
}
