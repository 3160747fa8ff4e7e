package web

import (
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"

	"SpaceTraveling/internal/core/pagination"
)

const (
	// ListingCookieName identifies a visitor's load more session.
	ListingCookieName = "spacetraveling_listing"
	listingIDKey      = "id"
)

// ListingSessions maps browser sessions to their pagination controllers.
// The browser only holds a signed session id.
type ListingSessions struct {
	store    *sessions.CookieStore
	registry *pagination.Registry
}

// NewListingSessions creates the session layer over registry.
func NewListingSessions(secret []byte, registry *pagination.Registry, secure bool) *ListingSessions {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   0,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &ListingSessions{store: store, registry: registry}
}

// id returns the session id carried by the request, or "".
func (s *ListingSessions) id(r *http.Request) string {
	session, err := s.store.Get(r, ListingCookieName)
	if err != nil {
		return ""
	}
	id, _ := session.Values[listingIDKey].(string)
	return id
}

// Ensure returns the request's session id, issuing a new one when absent.
func (s *ListingSessions) Ensure(w http.ResponseWriter, r *http.Request) (string, error) {
	if id := s.id(r); id != "" {
		return id, nil
	}

	session, _ := s.store.New(r, ListingCookieName)
	id := pagination.NewSessionID()
	session.Values[listingIDKey] = id
	if err := session.Save(r, w); err != nil {
		return "", fmt.Errorf("failed to save listing session: %w", err)
	}
	return id, nil
}

// Controller returns the controller of session id, if still live.
func (s *ListingSessions) Controller(id string) (*pagination.Controller, bool) {
	return s.registry.Get(id)
}

// Attach stores c as the controller of session id.
func (s *ListingSessions) Attach(id string, c *pagination.Controller) {
	s.registry.Put(id, c)
}

// Discard drops the request's controller, if any.
func (s *ListingSessions) Discard(r *http.Request) {
	s.registry.Discard(s.id(r))
}
