// Package posts turns content source documents into the listing and post
// pages of the blog.
package posts

import (
	"context"
	"fmt"
	"strings"

	"SpaceTraveling/internal/core/content"
)

const (
	defaultDocumentType = "post"
	defaultPageSize     = 2
	maxSlugLength       = 256
	// maxListingPages bounds AllUIDs against a source that never stops paging.
	maxListingPages = 10000
)

type service struct {
	source     content.Source
	formatter  *Formatter
	navigation *NavigationResolver
	docType    string
	ordering   content.Ordering
	pageSize   int
}

// ServiceOption configures the service
type ServiceOption func(*service)

// WithDocumentType sets the custom type that holds posts.
func WithDocumentType(docType string) ServiceOption {
	return func(s *service) {
		s.docType = docType
	}
}

// WithPageSize sets the listing page size.
func WithPageSize(size int) ServiceOption {
	return func(s *service) {
		s.pageSize = size
	}
}

// WithListingOrder sets the listing order.
func WithListingOrder(order content.Ordering) ServiceOption {
	return func(s *service) {
		s.ordering = order
	}
}

// NewService creates a new posts service
func NewService(source content.Source, formatter *Formatter, opts ...ServiceOption) Service {
	s := &service{
		source:    source,
		formatter: formatter,
		docType:   defaultDocumentType,
		pageSize:  defaultPageSize,
		ordering:  content.NewestFirst(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.navigation = NewNavigationResolver(source, s.docType)
	return s
}

func (s *service) summaryFields() []string {
	return []string{s.docType + ".title", s.docType + ".subtitle", s.docType + ".author"}
}

// listingQuery is the query behind every listing page. A cursor only moves
// through its pages.
func (s *service) listingQuery(ref string) content.Query {
	return content.Query{
		Ref:        ref,
		Predicates: []content.Predicate{content.TypeIs(s.docType)},
		Fetch:      s.summaryFields(),
		PageSize:   s.pageSize,
		Orderings:  []content.Ordering{s.ordering},
	}
}

// FirstPage returns the first listing page.
func (s *service) FirstPage(ctx context.Context, ref string) (*Listing, error) {
	resp, err := s.source.Query(ctx, s.listingQuery(ref))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing: %w", err)
	}

	return s.listing(resp), nil
}

// NextPage returns the listing page at cursor.
func (s *service) NextPage(ctx context.Context, cursor, ref string) (*Listing, error) {
	if cursor == "" {
		return nil, content.ErrInvalidCursor
	}

	q := s.listingQuery(ref)
	q.Cursor = cursor
	resp, err := s.source.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing page: %w", err)
	}

	return s.listing(resp), nil
}

func (s *service) listing(resp *content.Response) *Listing {
	return &Listing{
		Results:  s.formatter.Summaries(resp.Results),
		NextPage: resp.NextPage,
	}
}

// GetPost returns the formatted post and its neighbours.
func (s *service) GetPost(ctx context.Context, uid, ref string) (*Page, error) {
	if err := ValidateSlug(uid); err != nil {
		return nil, err
	}

	doc, err := s.source.GetByUID(ctx, s.docType, uid, ref)
	if err != nil {
		if content.IsNotFound(err) {
			return nil, NewNotFoundError(uid)
		}
		return nil, fmt.Errorf("failed to fetch post %s: %w", uid, err)
	}

	nav, err := s.navigation.Resolve(ctx, *doc)
	if err != nil {
		return nil, err
	}

	return &Page{
		Post:       s.formatter.Detail(*doc),
		Navigation: nav,
	}, nil
}

// AllUIDs walks every listing page and collects post uids in listing order.
func (s *service) AllUIDs(ctx context.Context, ref string) ([]string, error) {
	var uids []string

	listing, err := s.FirstPage(ctx, ref)
	if err != nil {
		return nil, err
	}

	for pages := 1; ; pages++ {
		for _, summary := range listing.Results {
			uids = append(uids, summary.UID)
		}
		if !listing.HasMore() {
			return uids, nil
		}
		if pages >= maxListingPages {
			return nil, fmt.Errorf("listing did not terminate after %d pages", pages)
		}

		listing, err = s.NextPage(ctx, listing.NextPage, ref)
		if err != nil {
			return nil, err
		}
	}
}

// ValidateSlug checks that uid can be looked up and used as one URL path
// segment or directory name.
func ValidateSlug(uid string) error {
	if uid == "" || len(uid) > maxSlugLength {
		return NewNotFoundError(uid)
	}
	if uid == "." || uid == ".." || strings.ContainsAny(uid, "/\\?#") {
		return fmt.Errorf("%w: %q", ErrInvalidSlug, uid)
	}
	return nil
}
