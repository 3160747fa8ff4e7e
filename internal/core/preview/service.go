// Package preview validates editorial preview tokens and decides where a
// preview session starts.
package preview

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"SpaceTraveling/internal/core/content"
)

// HomePath is where a preview lands when the document has no page of its own.
const HomePath = "/"

// Service resolves preview requests.
type Service interface {
	// Resolve validates token for documentID and returns the local path to open.
	// Returns content.ErrInvalidPreviewToken when the token is rejected.
	Resolve(ctx context.Context, token, documentID string) (string, error)
}

type service struct {
	source content.Source
}

// NewService creates a preview service backed by source.
func NewService(source content.Source) Service {
	return &service{source: source}
}

func (s *service) Resolve(ctx context.Context, token, documentID string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", content.ErrInvalidPreviewToken
	}

	location, err := s.source.ResolvePreview(ctx, token, documentID)
	if err != nil {
		if errors.Is(err, content.ErrInvalidPreviewToken) {
			return "", err
		}
		if content.IsNotFound(err) {
			return HomePath, nil
		}
		return "", fmt.Errorf("failed to resolve preview: %w", err)
	}

	return localPath(location), nil
}

// localPath keeps redirects on this site. Anything absolute or
// protocol-relative falls back to HomePath.
func localPath(location string) string {
	if location == "" || !strings.HasPrefix(location, "/") || strings.HasPrefix(location, "//") || strings.HasPrefix(location, "/\\") {
		return HomePath
	}

	u, err := url.Parse(location)
	if err != nil || u.Host != "" || u.Scheme != "" {
		return HomePath
	}
	return location
}
