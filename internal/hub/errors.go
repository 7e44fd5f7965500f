package hub

import (
	"errors"
	"fmt"
	"net/http"
)

// Error categories returned by the client.
var (
	ErrNotFound     = errors.New("not found on hub")
	ErrUnauthorized = errors.New("hub access denied")
	ErrOffline      = errors.New("model not cached and hub access is disabled")
)

// HTTPError is a non-success hub response.
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("GET %s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Is maps status codes onto the error categories.
func (e *HTTPError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	}
	return false
}
