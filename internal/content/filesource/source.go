// Package filesource is a content.Source that reads Markdown posts with YAML
// front matter from a directory. It answers the same queries as the Prismic
// client, which makes it useful for local writing and for tests.
package filesource

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"SpaceTraveling/internal/core/content"
	"SpaceTraveling/internal/core/richtext"
)

const (
	defaultDocumentType = "post"
	defaultPageSize     = 20
	cursorPrefix        = "fs:"
)

// Source serves documents parsed from *.md files in one directory.
type Source struct {
	logger       *slog.Logger
	linkResolver richtext.LinkResolver
	dir          string
	previewToken string
	docType      string
	files        []parsedFile
	mu           sync.RWMutex
}

// Option configures the source
type Option func(*Source)

// WithPreviewToken sets the ref under which drafts become visible.
func WithPreviewToken(token string) Option {
	return func(s *Source) {
		s.previewToken = token
	}
}

// WithDocumentType sets the type given to files without a type in front matter.
func WithDocumentType(docType string) Option {
	return func(s *Source) {
		s.docType = docType
	}
}

// WithLogger sets the source logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) {
		s.logger = logger
	}
}

// New loads every post in dir.
func New(dir string, opts ...Option) (*Source, error) {
	s := &Source{
		dir:          dir,
		docType:      defaultDocumentType,
		logger:       slog.Default(),
		linkResolver: richtext.DefaultLinkResolver,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the directory. Files that fail to parse are skipped and logged.
func (s *Source) Reload() error {
	paths, err := filepath.Glob(filepath.Join(s.dir, "*.md"))
	if err != nil {
		return fmt.Errorf("failed to list content dir: %w", err)
	}
	if _, err := os.Stat(s.dir); err != nil {
		return fmt.Errorf("failed to read content dir: %w", err)
	}

	files := make([]parsedFile, 0, len(paths))
	seen := make(map[string]string)
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn("skipping unreadable post", "path", path, "error", err)
			continue
		}

		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		parsed, err := parseFile(name, raw, s.docType)
		if err != nil {
			s.logger.Warn("skipping invalid post", "path", path, "error", err)
			continue
		}
		if other, dup := seen[parsed.doc.ID]; dup {
			s.logger.Warn("skipping duplicate uid", "path", path, "uid", parsed.doc.UID, "first", other)
			continue
		}
		seen[parsed.doc.ID] = path
		files = append(files, *parsed)
	}

	s.mu.Lock()
	s.files = files
	s.mu.Unlock()

	s.logger.Debug("content dir loaded", "dir", s.dir, "documents", len(files))
	return nil
}

// Dir returns the watched directory.
func (s *Source) Dir() string {
	return s.dir
}

// Query implements content.Source.
func (s *Source) Query(ctx context.Context, q content.Query) (*content.Response, error) {
	page := 1
	if q.Cursor != "" {
		var err error
		if page, err = decodeCursor(q.Cursor, &q); err != nil {
			return nil, err
		}
	}
	return s.page(q, page), nil
}

// GetByUID implements content.Source.
func (s *Source) GetByUID(ctx context.Context, docType, uid, ref string) (*content.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, f := range s.files {
		if f.doc.Type == docType && f.doc.UID == uid && s.visible(f, ref) {
			doc := f.doc
			return &doc, nil
		}
	}
	return nil, fmt.Errorf("get %s %q: %w", docType, uid, content.ErrNotFound)
}

// ResolvePreview implements content.Source.
func (s *Source) ResolvePreview(ctx context.Context, token, documentID string) (string, error) {
	if s.previewToken == "" || token != s.previewToken {
		return "", content.ErrInvalidPreviewToken
	}
	if documentID == "" {
		return "/", nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.files {
		if f.doc.ID == documentID {
			return s.linkResolver(richtext.SpanData{ID: f.doc.ID, UID: f.doc.UID, Type: f.doc.Type}), nil
		}
	}
	return "", fmt.Errorf("preview %q: %w", documentID, content.ErrNotFound)
}

// visible hides drafts unless ref is the preview token.
func (s *Source) visible(f parsedFile, ref string) bool {
	if !f.draft {
		return true
	}
	return s.previewToken != "" && ref == s.previewToken
}

func (s *Source) page(q content.Query, page int) *content.Response {
	s.mu.RLock()
	matched := make([]content.Document, 0, len(s.files))
	for _, f := range s.files {
		if s.visible(f, q.Ref) && matches(f.doc, q.Predicates) {
			matched = append(matched, f.doc)
		}
	}
	s.mu.RUnlock()

	sortDocuments(matched, q.Orderings)

	// An anchor outside the visible set has no neighbours.
	if q.After != "" {
		anchored := matched[:0]
		for i, doc := range matched {
			if doc.ID == q.After {
				anchored = matched[i+1:]
				break
			}
		}
		matched = anchored
	}

	size := q.PageSize
	if size <= 0 {
		size = defaultPageSize
	}
	totalPages := (len(matched) + size - 1) / size

	start := (page - 1) * size
	if start > len(matched) {
		start = len(matched)
	}
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}

	resp := &content.Response{
		Results:    append([]content.Document(nil), matched[start:end]...),
		Page:       page,
		TotalPages: totalPages,
	}
	if end < len(matched) {
		resp.NextPage = encodeCursor(q, page+1)
	}
	return resp
}

func matches(doc content.Document, predicates []content.Predicate) bool {
	for _, p := range predicates {
		var value string
		switch {
		case p.Path == content.FieldDocumentType:
			value = doc.Type
		case p.Path == content.FieldDocumentID:
			value = doc.ID
		case strings.HasPrefix(p.Path, "my.") && strings.HasSuffix(p.Path, ".uid"):
			if strings.TrimSuffix(strings.TrimPrefix(p.Path, "my."), ".uid") != doc.Type {
				return false
			}
			value = doc.UID
		default:
			return false
		}
		if value != p.Value {
			return false
		}
	}
	return true
}

// sortDocuments orders by first publication date. Undated documents sort last
// in either direction and ties fall back to uid.
func sortDocuments(docs []content.Document, orderings []content.Ordering) {
	descending := false
	for _, o := range orderings {
		if o.Field == content.FieldFirstPublicationDate {
			descending = o.Descending
			break
		}
	}

	sort.SliceStable(docs, func(i, j int) bool {
		a, b := docs[i].FirstPublicationDate, docs[j].FirstPublicationDate
		at, aok := a.Get()
		bt, bok := b.Get()
		switch {
		case aok && bok && !at.Equal(bt):
			if descending {
				return at.After(bt)
			}
			return at.Before(bt)
		case aok != bok:
			return aok
		default:
			return docs[i].UID < docs[j].UID
		}
	})
}

// encodeCursor records the position within q. The query itself is not part
// of the cursor; the caller supplies it again with the next request.
func encodeCursor(q content.Query, page int) string {
	v := url.Values{}
	v.Set("page", strconv.Itoa(page))
	if q.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	if q.After != "" {
		v.Set("after", q.After)
	}
	return cursorPrefix + base64.RawURLEncoding.EncodeToString([]byte(v.Encode()))
}

// decodeCursor applies the cursor's position to q and returns its page.
func decodeCursor(cursor string, q *content.Query) (int, error) {
	encoded, ok := strings.CutPrefix(cursor, cursorPrefix)
	if !ok {
		return 0, content.ErrInvalidCursor
	}
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", content.ErrInvalidCursor, err)
	}
	v, err := url.ParseQuery(string(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", content.ErrInvalidCursor, err)
	}

	page, err := strconv.Atoi(v.Get("page"))
	if err != nil || page < 1 {
		return 0, content.ErrInvalidCursor
	}
	if size := v.Get("pageSize"); size != "" {
		n, err := strconv.Atoi(size)
		if err != nil || n < 1 {
			return 0, content.ErrInvalidCursor
		}
		q.PageSize = n
	}
	if after := v.Get("after"); after != "" {
		q.After = after
	}
	return page, nil
}
