package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	slogctx "github.com/veqryn/slog-context"

	"SpaceTraveling/internal/core/pagecache"
	"SpaceTraveling/internal/core/pagination"
	"SpaceTraveling/internal/core/posts"
	"SpaceTraveling/internal/metrics"
)

const (
	loadMoreFailedNotice = "Não foi possível carregar mais posts. Tente novamente."
	fetchFailedMessage   = "Não foi possível carregar o conteúdo. Tente novamente em instantes."
	internalErrorMessage = "Ocorreu um erro inesperado."
)

// RefReader returns the content ref a request should read, "" for published content.
type RefReader interface {
	Ref(r *http.Request) string
}

// Handlers provides HTTP handlers for the blog pages.
type Handlers struct {
	templates *Templates
	pages     *Pages
	posts     posts.Service
	cache     pagecache.Service
	sessions  *ListingSessions
	refs      RefReader
}

// NewHandlers creates a new Handlers instance with the provided dependencies.
func NewHandlers(templates *Templates, postService posts.Service, cache pagecache.Service, sessions *ListingSessions, refs RefReader) *Handlers {
	return &Handlers{
		templates: templates,
		pages:     NewPages(templates, postService),
		posts:     postService,
		cache:     cache,
		sessions:  sessions,
		refs:      refs,
	}
}

// HomeHandler handles GET / and renders the first listing page.
// Visiting the listing starts a fresh load more session.
func (h *Handlers) HomeHandler(w http.ResponseWriter, r *http.Request) {
	h.sessions.Discard(r)
	h.serve(w, r, HomeKey, h.pages.Home)
}

// PostHandler handles GET /post/{slug}.
func (h *Handlers) PostHandler(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	h.serve(w, r, PostKey(slug), func(ref string) pagecache.RenderFunc {
		return h.pages.Post(slug, ref)
	})
}

// LoadMoreHandler handles POST /posts/more. It advances the visitor's
// controller by one page and re-renders the whole accumulated listing.
func (h *Handlers) LoadMoreHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ref := h.refs.Ref(r)
	preview := ref != ""

	id, err := h.sessions.Ensure(w, r)
	if err != nil {
		slogctx.FromCtx(ctx).ErrorContext(ctx, "failed to start listing session", "error", err)
		h.renderStatus(w, r, http.StatusInternalServerError, internalErrorMessage, preview)
		return
	}

	ctrl, ok := h.sessions.Controller(id)
	if !ok {
		listing, err := h.firstListing(ctx, ref)
		if err != nil {
			metrics.RecordPaginationLoad("failed")
			h.renderError(w, r, err, preview)
			return
		}
		ctrl = pagination.New(h.pageFetcher(ref))
		ctrl.Initialize(listing.Results, listing.NextPage)
		h.sessions.Attach(id, ctrl)
	}

	status := http.StatusOK
	data := HomePageData{Preview: preview}

	if ctrl.Snapshot().State == pagination.Exhausted {
		metrics.RecordPaginationLoad("exhausted")
	} else {
		switch err := ctrl.LoadMore(ctx); {
		case err == nil:
			metrics.RecordPaginationLoad("loaded")
		case errors.Is(err, pagination.ErrLoadInProgress):
			metrics.RecordPaginationLoad("in_progress")
		default:
			metrics.RecordPaginationLoad("failed")
			slogctx.FromCtx(ctx).WarnContext(ctx, "load more failed", "error", err)
			status = http.StatusBadGateway
			data.Notice = loadMoreFailedNotice
		}
	}

	snap := ctrl.Snapshot()
	data.Summaries = snap.Summaries
	data.HasMore = snap.HasMore()

	w.Header().Set("Cache-Control", "private, no-store")
	if err := h.templates.Render(w, status, "home.html", data); err != nil {
		slogctx.FromCtx(ctx).ErrorContext(ctx, "failed to render listing", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// NotFoundHandler renders the 404 page for unknown routes.
func (h *Handlers) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	h.renderNotFound(w, r, h.refs.Ref(r) != "")
}

// firstListing seeds a new load more session. Published listings continue
// from the page the cached home page was rendered from.
func (h *Handlers) firstListing(ctx context.Context, ref string) (*posts.Listing, error) {
	if ref == "" {
		if listing, ok := h.pages.PublishedHome(); ok {
			return listing, nil
		}
	}
	return h.posts.FirstPage(ctx, ref)
}

func (h *Handlers) pageFetcher(ref string) pagination.PageFetcher {
	return func(ctx context.Context, cursor string) (*posts.Listing, error) {
		return h.posts.NextPage(ctx, cursor, ref)
	}
}

// serve answers a page request. Published pages go through the page cache;
// preview requests are always rendered fresh and never stored.
func (h *Handlers) serve(w http.ResponseWriter, r *http.Request, key string, render func(ref string) pagecache.RenderFunc) {
	ctx := r.Context()

	if ref := h.refs.Ref(r); ref != "" {
		body, contentType, err := render(ref)(ctx)
		if err != nil {
			h.renderError(w, r, err, true)
			return
		}
		metrics.RecordCacheLookup(string(pagecache.StatusBypass))
		w.Header().Set("Cache-Control", "private, no-store")
		writePage(w, pagecache.StatusBypass, contentType, body)
		return
	}

	entry, status, err := h.cache.Serve(ctx, key, render(""))
	if err != nil {
		h.renderError(w, r, err, false)
		return
	}
	writePage(w, status, entry.ContentType, entry.Body)
}

func writePage(w http.ResponseWriter, status pagecache.Status, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set(pagecache.HeaderName, string(status))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// renderError maps a content failure to the 404 or 502 page.
func (h *Handlers) renderError(w http.ResponseWriter, r *http.Request, err error, preview bool) {
	if posts.IsNotFound(err) || errors.Is(err, posts.ErrInvalidSlug) {
		h.renderNotFound(w, r, preview)
		return
	}

	slogctx.FromCtx(r.Context()).ErrorContext(r.Context(), "content fetch failed", "error", err)
	h.renderStatus(w, r, http.StatusBadGateway, fetchFailedMessage, preview)
}

func (h *Handlers) renderNotFound(w http.ResponseWriter, r *http.Request, preview bool) {
	if err := h.templates.Render(w, http.StatusNotFound, "not_found.html", ErrorPageData{Status: http.StatusNotFound, Preview: preview}); err != nil {
		slogctx.FromCtx(r.Context()).ErrorContext(r.Context(), "failed to render not found page", "error", err)
		http.NotFound(w, r)
	}
}

func (h *Handlers) renderStatus(w http.ResponseWriter, r *http.Request, status int, message string, preview bool) {
	data := ErrorPageData{Status: status, Message: message, Preview: preview}
	if err := h.templates.Render(w, status, "error.html", data); err != nil {
		slogctx.FromCtx(r.Context()).ErrorContext(r.Context(), "failed to render error page", "error", err)
		http.Error(w, message, status)
	}
}
