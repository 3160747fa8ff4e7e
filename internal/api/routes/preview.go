package routes

import (
	"github.com/go-chi/chi/v5"

	"SpaceTraveling/internal/api/handlers/preview"
	"SpaceTraveling/internal/api/middleware"
	previewCore "SpaceTraveling/internal/core/preview"
)

// RegisterPreviewRoutes registers the preview entry and exit endpoints
func RegisterPreviewRoutes(r chi.Router, service previewCore.Service, cookies *preview.CookieStore, limiter *middleware.RateLimiter) {
	handler := preview.NewHandler(service, cookies)

	// GET /api/preview?token=...&documentId=...
	// Rate limited: each attempt hits the content API
	r.With(limiter.Middleware).Get("/api/preview", handler.HandleEnter)

	// GET /api/exit-preview
	r.Get("/api/exit-preview", handler.HandleExit)
}
