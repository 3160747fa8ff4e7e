package content

import "context"

// Source is the headless content API as seen by the site.
type Source interface {
	// Query returns one page of documents matching q.
	Query(ctx context.Context, q Query) (*Response, error)

	// GetByUID returns the document of docType with the given uid.
	// Returns ErrNotFound when no such document exists in the ref.
	GetByUID(ctx context.Context, docType, uid, ref string) (*Document, error)

	// ResolvePreview validates a preview token for documentID and returns the
	// site URL to open. Returns ErrInvalidPreviewToken when the token is rejected.
	ResolvePreview(ctx context.Context, token, documentID string) (string, error)
}
