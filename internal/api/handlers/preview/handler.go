// Package preview implements the editorial preview entry and exit endpoints.
package preview

import (
	"errors"
	"net/http"

	slogctx "github.com/veqryn/slog-context"

	"SpaceTraveling/internal/api/handlers"
	"SpaceTraveling/internal/core/content"
	previewCore "SpaceTraveling/internal/core/preview"
	"SpaceTraveling/internal/metrics"
)

// Handler serves /api/preview and /api/exit-preview.
type Handler struct {
	service previewCore.Service
	cookies *CookieStore
}

// NewHandler creates a preview handler
func NewHandler(service previewCore.Service, cookies *CookieStore) *Handler {
	return &Handler{
		service: service,
		cookies: cookies,
	}
}

// HandleEnter validates the preview token and starts a preview session.
// GET /api/preview?token=...&documentId=...
func (h *Handler) HandleEnter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := r.URL.Query().Get("token")
	documentID := r.URL.Query().Get("documentId")

	location, err := h.service.Resolve(ctx, token, documentID)
	if err != nil {
		outcome := "invalid"
		if !errors.Is(err, content.ErrInvalidPreviewToken) {
			outcome = "error"
		}
		slogctx.FromCtx(ctx).WarnContext(ctx, "preview rejected", "document_id", documentID, "error", err)
		metrics.RecordPreview(outcome)
		handlers.WriteJSON(w, http.StatusUnauthorized, handlers.ErrorResponse{Message: "Invalid token"})
		return
	}

	if err := h.cookies.Save(w, r, token); err != nil {
		slogctx.FromCtx(ctx).ErrorContext(ctx, "failed to start preview", "error", err)
		metrics.RecordPreview("error")
		handlers.WriteError(w, http.StatusInternalServerError, "InternalServerError", "Could not start preview")
		return
	}

	metrics.RecordPreview("entered")
	http.Redirect(w, r, location, http.StatusFound)
}

// HandleExit clears the preview marker.
// GET /api/exit-preview
func (h *Handler) HandleExit(w http.ResponseWriter, r *http.Request) {
	if err := h.cookies.Clear(w, r); err != nil {
		slogctx.FromCtx(r.Context()).ErrorContext(r.Context(), "failed to exit preview", "error", err)
	}
	metrics.RecordPreview("exited")
	http.Redirect(w, r, previewCore.HomePath, http.StatusFound)
}
