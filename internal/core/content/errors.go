package content

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrInvalidCursor is returned for cursors the source did not issue.
	ErrInvalidCursor = errors.New("invalid cursor")

	// ErrInvalidPreviewToken is returned when a preview token cannot be used.
	ErrInvalidPreviewToken = errors.New("invalid preview token")

	// ErrUnavailable is returned while the source is considered down.
	ErrUnavailable = errors.New("content source unavailable")
)

// APIError is a non-success response from the content API.
type APIError struct {
	Operation  string
	Message    string
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: content api returned %d: %s", e.Operation, e.StatusCode, e.Message)
}

// Unwrap maps the status to the matching sentinel so callers can use errors.Is.
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == 404:
		return ErrNotFound
	case e.StatusCode == 429 || e.StatusCode >= 500:
		return ErrUnavailable
	default:
		return nil
	}
}

// IsNotFound checks if err means the document does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAPIError checks if err carries an API status.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
