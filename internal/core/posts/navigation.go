package posts

import (
	"context"
	"fmt"

	"SpaceTraveling/internal/core/content"
)

// NavigationResolver finds the published neighbours of a post in
// first-publication order.
type NavigationResolver struct {
	source  content.Source
	docType string
}

// NewNavigationResolver creates a resolver for documents of docType.
func NewNavigationResolver(source content.Source, docType string) *NavigationResolver {
	return &NavigationResolver{
		source:  source,
		docType: docType,
	}
}

// Resolve returns the post published immediately before doc and the one
// immediately after it. Only published content is considered.
func (r *NavigationResolver) Resolve(ctx context.Context, doc content.Document) (Navigation, error) {
	previous, err := r.neighbour(ctx, doc.ID, content.NewestFirst())
	if err != nil {
		return Navigation{}, fmt.Errorf("failed to resolve previous post: %w", err)
	}

	next, err := r.neighbour(ctx, doc.ID, content.OldestFirst())
	if err != nil {
		return Navigation{}, fmt.Errorf("failed to resolve next post: %w", err)
	}

	return Navigation{Previous: previous, Next: next}, nil
}

func (r *NavigationResolver) neighbour(ctx context.Context, id string, order content.Ordering) (*NavLink, error) {
	resp, err := r.source.Query(ctx, content.Query{
		Predicates: []content.Predicate{content.TypeIs(r.docType)},
		Fetch:      []string{r.docType + ".title"},
		PageSize:   1,
		After:      id,
		Orderings:  []content.Ordering{order},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}

	first := resp.Results[0]
	return &NavLink{Title: first.Title, UID: first.UID}, nil
}
