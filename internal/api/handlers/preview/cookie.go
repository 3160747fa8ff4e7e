package preview

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
)

// MinCookieSecretLength is the shortest accepted signing secret.
const MinCookieSecretLength = 32

const refKey = "ref"

// CookieStore keeps the preview ref in a signed cookie.
type CookieStore struct {
	store *sessions.CookieStore
	name  string
}

// NewCookieStore creates the preview marker store.
func NewCookieStore(secret []byte, name string, maxAge time.Duration, secure bool) (*CookieStore, error) {
	if len(secret) < MinCookieSecretLength {
		return nil, fmt.Errorf("preview cookie secret must be at least %d bytes", MinCookieSecretLength)
	}
	if name == "" {
		return nil, fmt.Errorf("preview cookie name is required")
	}

	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}

	return &CookieStore{store: store, name: name}, nil
}

// Ref returns the preview ref carried by the request, or "" outside preview mode.
// Tampered or expired cookies read as "".
func (c *CookieStore) Ref(r *http.Request) string {
	session, err := c.store.Get(r, c.name)
	if err != nil {
		return ""
	}
	ref, _ := session.Values[refKey].(string)
	return ref
}

// Save marks the response as entering preview mode with ref.
func (c *CookieStore) Save(w http.ResponseWriter, r *http.Request, ref string) error {
	// A bad existing cookie still yields a usable new session.
	session, _ := c.store.New(r, c.name)
	session.Values[refKey] = ref
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("failed to save preview cookie: %w", err)
	}
	return nil
}

// Clear removes the preview marker.
func (c *CookieStore) Clear(w http.ResponseWriter, r *http.Request) error {
	session, _ := c.store.New(r, c.name)
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("failed to clear preview cookie: %w", err)
	}
	return nil
}
