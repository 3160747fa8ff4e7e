package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"SpaceTraveling/internal/api/handlers/posts"
	postsCore "SpaceTraveling/internal/core/posts"
)

// RegisterPostsRoutes registers the JSON listing endpoint for script clients
func RegisterPostsRoutes(r chi.Router, service postsCore.Service, refs posts.RefReader, allowedOrigins []string) {
	listHandler := posts.NewListHandler(service, refs)

	corsMiddleware := cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})

	// GET /api/posts?cursor=...
	r.With(corsMiddleware).Get("/api/posts", listHandler.HandleList)
	r.With(corsMiddleware).Options("/api/posts", func(w http.ResponseWriter, r *http.Request) {})
}
