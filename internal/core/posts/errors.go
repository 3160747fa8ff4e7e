package posts

import (
	"errors"
	"fmt"

	"SpaceTraveling/internal/core/content"
)

// ErrInvalidSlug is returned for slugs that cannot name a post.
var ErrInvalidSlug = errors.New("invalid slug")

// NotFoundError represents a post that does not exist.
type NotFoundError struct {
	UID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("post not found: %s", e.UID)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(uid string) error {
	return &NotFoundError{UID: uid}
}

// IsNotFound checks if error is a not found error
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr) || errors.Is(err, content.ErrNotFound)
}
