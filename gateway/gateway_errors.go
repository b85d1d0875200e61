package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNetwork marks a transport-level failure. It never terminates the
	// session; callers handle it locally (retry UI and the like).
	ErrNetwork = errors.New("network error")

	// ErrRenewalFailed marks a rejected or unreachable token renewal. The
	// session has already been cleared and navigation forced to the login
	// entry point by the time a caller observes it.
	ErrRenewalFailed = errors.New("token renewal failed")
)

// APIError is a non-2xx backend response surfaced unchanged to the caller
// (validation failures, not-found, and the 401 that survives the renewal
// protocol when no refresh token exists).
type APIError struct {
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	if len(e.Body) == 0 {
		return fmt.Sprintf("backend returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("backend returned %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, statusCode int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == statusCode
}
