package posts

import "context"

// Service defines the read side of the blog.
type Service interface {
	// FirstPage returns the first listing page.
	FirstPage(ctx context.Context, ref string) (*Listing, error)

	// NextPage returns the listing page identified by cursor.
	NextPage(ctx context.Context, cursor, ref string) (*Listing, error)

	// GetPost returns the formatted post and its neighbours.
	// Returns a NotFoundError when the slug does not name a post.
	GetPost(ctx context.Context, uid, ref string) (*Page, error)

	// AllUIDs walks every listing page and returns the uid of every post.
	AllUIDs(ctx context.Context, ref string) ([]string, error)
}
