// Package posts serves the listing as JSON for script clients.
package posts

import (
	"errors"
	"net/http"

	slogctx "github.com/veqryn/slog-context"

	"SpaceTraveling/internal/api/handlers"
	"SpaceTraveling/internal/core/content"
	"SpaceTraveling/internal/core/posts"
)

// RefReader returns the content ref a request should read, "" for published content.
type RefReader interface {
	Ref(r *http.Request) string
}

// ListResponse is one listing page. NextPage is null on the last page.
type ListResponse struct {
	NextPage *string         `json:"next_page"`
	Results  []posts.Summary `json:"results"`
}

// ListHandler handles listing page retrieval
type ListHandler struct {
	service posts.Service
	refs    RefReader
}

// NewListHandler creates a new listing handler
func NewListHandler(service posts.Service, refs RefReader) *ListHandler {
	return &ListHandler{
		service: service,
		refs:    refs,
	}
}

// HandleList returns the first listing page, or the page at cursor.
// GET /api/posts?cursor=...
func (h *ListHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ref := h.refs.Ref(r)

	var (
		listing *posts.Listing
		err     error
	)
	if cursor := r.URL.Query().Get("cursor"); cursor != "" {
		listing, err = h.service.NextPage(ctx, cursor, ref)
	} else {
		listing, err = h.service.FirstPage(ctx, ref)
	}
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	resp := ListResponse{Results: listing.Results}
	if resp.Results == nil {
		resp.Results = []posts.Summary{}
	}
	if listing.HasMore() {
		next := listing.NextPage
		resp.NextPage = &next
	}

	if ref != "" {
		w.Header().Set("Cache-Control", "private, no-store")
	}
	handlers.WriteJSON(w, http.StatusOK, resp)
}

// handleServiceError maps service errors to HTTP responses
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, content.ErrInvalidCursor):
		handlers.WriteError(w, http.StatusBadRequest, "InvalidCursor", "The provided cursor is invalid")
	case errors.Is(err, content.ErrUnavailable):
		slogctx.FromCtx(r.Context()).WarnContext(r.Context(), "content source unavailable", "error", err)
		handlers.WriteError(w, http.StatusServiceUnavailable, "ContentUnavailable", "The content source is unavailable")
	default:
		slogctx.FromCtx(r.Context()).ErrorContext(r.Context(), "listing fetch failed", "error", err)
		handlers.WriteError(w, http.StatusBadGateway, "ContentFetchFailed", "An error occurred while fetching posts")
	}
}
