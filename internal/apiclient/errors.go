package apiclient

import (
	"errors"
	"fmt"
)

// ErrUnavailable wraps transport failures and responses that are not the JSON envelope.
var ErrUnavailable = errors.New("backend unavailable")

// APIError is a business error reported by the backend with success=false.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend rejected request (status %d)", e.Status)
	}
	return fmt.Sprintf("backend rejected request (status %d): %s", e.Status, e.Message)
}

// IsUnauthorized reports whether the backend refused the bearer token.
func (e *APIError) IsUnauthorized() bool {
	return e.Status == 401 || e.Status == 403
}
