package routes

import (
	"github.com/go-chi/chi/v5"

	"SpaceTraveling/internal/api/middleware"
	"SpaceTraveling/internal/web"
)

// RegisterWebRoutes registers the blog pages and static assets.
func RegisterWebRoutes(r chi.Router, handlers *web.Handlers, staticDir string, loadMoreLimiter *middleware.RateLimiter) {
	// Listing
	r.Get("/", handlers.HomeHandler)
	r.With(loadMoreLimiter.Middleware).Post("/posts/more", handlers.LoadMoreHandler)

	// Post pages
	r.Get("/post/{slug}", handlers.PostHandler)

	// Static files (logo, styles)
	r.Handle("/static/*", web.ProjectStaticFileServer(staticDir))

	r.NotFound(handlers.NotFoundHandler)
}
