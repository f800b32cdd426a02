package backend

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned when the backend answers 401.
var ErrUnauthorized = errors.New("backend: login required")

// ErrNotFound is returned when the backend answers 404.
var ErrNotFound = errors.New("backend: not found")

// APIError is any other non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend: unexpected status %d", e.Status)
	}
	return fmt.Sprintf("backend: status %d: %s", e.Status, e.Message)
}
