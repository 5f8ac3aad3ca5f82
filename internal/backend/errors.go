package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx backend response.
type APIError struct {
	StatusCode int
	Op         string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend %s: %d %s: %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode), e.Message)
	}
	return fmt.Sprintf("backend %s: %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
}

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
