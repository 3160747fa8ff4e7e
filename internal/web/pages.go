package web

import (
	"context"
	"sync"

	"SpaceTraveling/internal/core/pagecache"
	"SpaceTraveling/internal/core/posts"
)

// HomePageData holds data for the listing template.
type HomePageData struct {
	// Notice is shown above the load more control after a failed load.
	Notice    string
	Summaries []posts.Summary
	HasMore   bool
	Preview   bool
}

// PostPageData holds data for the post template.
type PostPageData struct {
	Post       *posts.DetailView
	Navigation posts.Navigation
	Preview    bool
}

// ErrorPageData holds data for the 404 and error templates.
type ErrorPageData struct {
	Message string
	Status  int
	Preview bool
}

// HomeKey is the page cache key of the listing.
const HomeKey = "/"

// PostKey returns the page cache key of a post page.
func PostKey(slug string) string {
	return "/post/" + slug
}

// Pages renders the site's pages to bytes, for the page cache and the
// static exporter.
type Pages struct {
	templates *Templates
	posts     posts.Service

	// home is the listing behind the last published home page render.
	home   *posts.Listing
	homeMu sync.Mutex
}

// NewPages creates a page renderer.
func NewPages(templates *Templates, postService posts.Service) *Pages {
	return &Pages{templates: templates, posts: postService}
}

// Home renders the first listing page as seen through ref.
func (p *Pages) Home(ref string) pagecache.RenderFunc {
	return func(ctx context.Context) ([]byte, string, error) {
		listing, err := p.posts.FirstPage(ctx, ref)
		if err != nil {
			return nil, "", err
		}
		if ref == "" {
			p.rememberHome(listing)
		}

		body, err := p.templates.Execute("home.html", HomePageData{
			Summaries: listing.Results,
			HasMore:   listing.HasMore(),
			Preview:   ref != "",
		})
		if err != nil {
			return nil, "", err
		}
		return body, htmlContentType, nil
	}
}

// PublishedHome returns the first listing page the published home page was
// last rendered from, so load more can continue the page a visitor saw.
func (p *Pages) PublishedHome() (*posts.Listing, bool) {
	p.homeMu.Lock()
	defer p.homeMu.Unlock()

	if p.home == nil {
		return nil, false
	}
	listing := *p.home
	listing.Results = append([]posts.Summary(nil), p.home.Results...)
	return &listing, true
}

func (p *Pages) rememberHome(listing *posts.Listing) {
	p.homeMu.Lock()
	defer p.homeMu.Unlock()

	kept := *listing
	kept.Results = append([]posts.Summary(nil), listing.Results...)
	p.home = &kept
}

// Post renders the page of slug as seen through ref.
func (p *Pages) Post(slug, ref string) pagecache.RenderFunc {
	return func(ctx context.Context) ([]byte, string, error) {
		page, err := p.posts.GetPost(ctx, slug, ref)
		if err != nil {
			return nil, "", err
		}

		body, err := p.templates.Execute("post.html", PostPageData{
			Post:       page.Post,
			Navigation: page.Navigation,
			Preview:    ref != "",
		})
		if err != nil {
			return nil, "", err
		}
		return body, htmlContentType, nil
	}
}

// NotFound renders the standalone 404 page.
func (p *Pages) NotFound() ([]byte, error) {
	return p.templates.Execute("not_found.html", ErrorPageData{Status: 404})
}
