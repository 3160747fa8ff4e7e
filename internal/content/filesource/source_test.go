package filesource

import (
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"SpaceTraveling/internal/core/content"
	"SpaceTraveling/internal/core/posts"
	"SpaceTraveling/internal/core/richtext"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hooksPost = `---
title: Como utilizar Hooks
subtitle: Pensando em sincronização em vez de ciclos de vida
author: Joseph Oliveira
banner: https://images.example.com/hooks.png
first_publication_date: 2021-03-15T19:25:28+0000
last_publication_date: 2021-03-20T10:00:00+0000
---

Intro paragraph with **bold** and *soft* text.

## Proin et varius

Nullam dolor sapien, [see docs](https://example.com) and [the other post](/post/criando-um-app).

- first item
- second item

1. ordered

` + "```go\nfmt.Println(\"hi\")\n```" + `

## Cras laoreet

![rocket](https://images.example.com/rocket.png)
`

const appPost = `---
uid: criando-um-app
title: Criando um app CRA do zero
author: Danilo Vieira
first_publication_date: 2021-03-25
---

## Section

Body.
`

const draftPost = `---
title: Rascunho
author: Ana
draft: true
first_publication_date: 2021-04-01
---

Secret.
`

func writePosts(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"como-utilizar-hooks.md": hooksPost,
		"app.md":                 appPost,
		"rascunho.md":            draftPost,
		"notes.txt":              "ignored",
		"broken.md":              "---\ntitle: [unterminated\n---\n",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	}
	return dir
}

func newTestSource(t *testing.T, dir string) *Source {
	t.Helper()
	s, err := New(dir,
		WithPreviewToken("preview-secret"),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, err)
	return s
}

func uids(docs []content.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.UID
	}
	return out
}

func TestParseFile(t *testing.T) {
	parsed, err := parseFile("como-utilizar-hooks", []byte(hooksPost), "post")
	require.NoError(t, err)

	doc := parsed.doc
	assert.Equal(t, "como-utilizar-hooks", doc.UID)
	assert.Equal(t, "post:como-utilizar-hooks", doc.ID)
	assert.Equal(t, "Como utilizar Hooks", doc.Title)
	assert.True(t, doc.HasBanner())
	assert.True(t, doc.LastPublicationDate.Valid())

	require.Len(t, doc.Content, 3)

	intro := doc.Content[0]
	assert.Equal(t, "", intro.Heading)
	require.Len(t, intro.Body, 1)
	assert.Equal(t, "Intro paragraph with bold and soft text.", intro.Body[0].Text)
	assert.Equal(t, []richtext.Span{
		{Type: richtext.SpanStrong, Start: 21, End: 25},
		{Type: richtext.SpanEm, Start: 30, End: 34},
	}, intro.Body[0].Spans)

	second := doc.Content[1]
	assert.Equal(t, "Proin et varius", second.Heading)
	require.Len(t, second.Body, 5)
	assert.Equal(t, richtext.TypeParagraph, second.Body[0].Type)
	require.Len(t, second.Body[0].Spans, 2)
	assert.Equal(t, richtext.LinkWeb, second.Body[0].Spans[0].Data.LinkType)
	assert.Equal(t, richtext.LinkDocument, second.Body[0].Spans[1].Data.LinkType)
	assert.Equal(t, "criando-um-app", second.Body[0].Spans[1].Data.UID)
	assert.Equal(t, richtext.TypeListItem, second.Body[1].Type)
	assert.Equal(t, "second item", second.Body[2].Text)
	assert.Equal(t, richtext.TypeOListItem, second.Body[3].Type)
	assert.Equal(t, richtext.Block{Type: richtext.TypePreformatted, Text: `fmt.Println("hi")`}, second.Body[4])

	third := doc.Content[2]
	assert.Equal(t, "Cras laoreet", third.Heading)
	require.Len(t, third.Body, 1)
	assert.Equal(t, richtext.TypeImage, third.Body[0].Type)
	assert.Equal(t, "https://images.example.com/rocket.png", third.Body[0].URL)
	assert.Equal(t, "rocket", third.Body[0].Alt)
}

func TestParseFile_InvalidDate(t *testing.T) {
	_, err := parseFile("x", []byte("---\nfirst_publication_date: yesterday\n---\nbody\n"), "post")
	assert.Error(t, err)
}

func TestSource_QueryOrderingAndPaging(t *testing.T) {
	s := newTestSource(t, writePosts(t))
	ctx := context.Background()

	listing := content.Query{
		Predicates: []content.Predicate{content.TypeIs("post")},
		Orderings:  []content.Ordering{content.NewestFirst()},
		PageSize:   1,
	}
	first, err := s.Query(ctx, listing)
	require.NoError(t, err)
	assert.Equal(t, []string{"criando-um-app"}, uids(first.Results))
	assert.Equal(t, 2, first.TotalPages)
	require.NotEmpty(t, first.NextPage)

	listing.Cursor = first.NextPage
	second, err := s.Query(ctx, listing)
	require.NoError(t, err)
	assert.Equal(t, []string{"como-utilizar-hooks"}, uids(second.Results))
	assert.Empty(t, second.NextPage)

	_, err = s.Query(ctx, content.Query{Cursor: "https://repo.cdn.prismic.io/api/v2/documents/search?page=2"})
	assert.ErrorIs(t, err, content.ErrInvalidCursor)
}

func TestSource_CursorCarriesOnlyPosition(t *testing.T) {
	s := newTestSource(t, writePosts(t))
	ctx := context.Background()

	forged := cursorPrefix + base64.RawURLEncoding.EncodeToString([]byte(url.Values{
		"page":     {"1"},
		"pageSize": {"10"},
		"ref":      {"preview-secret"},
		"q":        {"document.id\x00post:rascunho"},
	}.Encode()))

	resp, err := s.Query(ctx, content.Query{
		Cursor:     forged,
		Predicates: []content.Predicate{content.TypeIs("post")},
		Orderings:  []content.Ordering{content.OldestFirst()},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"como-utilizar-hooks", "criando-um-app"}, uids(resp.Results))

	tests := []string{"fs:!!!", cursorPrefix, cursorPrefix + "cGFnZT0w"}
	for _, cursor := range tests {
		_, err := s.Query(ctx, content.Query{Cursor: cursor})
		assert.ErrorIs(t, err, content.ErrInvalidCursor, cursor)
	}
}

func TestSource_DraftsNeedPreviewRef(t *testing.T) {
	s := newTestSource(t, writePosts(t))
	ctx := context.Background()
	q := content.Query{Predicates: []content.Predicate{content.TypeIs("post")}, Orderings: []content.Ordering{content.OldestFirst()}}

	published, err := s.Query(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, []string{"como-utilizar-hooks", "criando-um-app"}, uids(published.Results))

	q.Ref = "preview-secret"
	withDrafts, err := s.Query(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, []string{"como-utilizar-hooks", "criando-um-app", "rascunho"}, uids(withDrafts.Results))

	_, err = s.GetByUID(ctx, "post", "rascunho", "")
	assert.True(t, content.IsNotFound(err))

	doc, err := s.GetByUID(ctx, "post", "rascunho", "preview-secret")
	require.NoError(t, err)
	assert.Equal(t, "Rascunho", doc.Title)
}

func TestSource_Neighbours(t *testing.T) {
	s := newTestSource(t, writePosts(t))
	ctx := context.Background()

	older, err := s.Query(ctx, content.Query{
		Predicates: []content.Predicate{content.TypeIs("post")},
		Orderings:  []content.Ordering{content.NewestFirst()},
		After:      "post:criando-um-app",
		PageSize:   1,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"como-utilizar-hooks"}, uids(older.Results))

	newer, err := s.Query(ctx, content.Query{
		Predicates: []content.Predicate{content.TypeIs("post")},
		Orderings:  []content.Ordering{content.OldestFirst()},
		After:      "post:criando-um-app",
		PageSize:   1,
	})
	require.NoError(t, err)
	assert.Empty(t, newer.Results)

	// A draft is not in the published set, so nothing is adjacent to it.
	fromDraft, err := s.Query(ctx, content.Query{
		Predicates: []content.Predicate{content.TypeIs("post")},
		Orderings:  []content.Ordering{content.NewestFirst()},
		After:      "post:rascunho",
		PageSize:   1,
	})
	require.NoError(t, err)
	assert.Empty(t, fromDraft.Results)
	assert.Empty(t, fromDraft.NextPage)
}

func TestSource_DraftNavigation(t *testing.T) {
	s := newTestSource(t, writePosts(t))
	ctx := context.Background()

	draft, err := s.GetByUID(ctx, "post", "rascunho", "preview-secret")
	require.NoError(t, err)

	nav, err := posts.NewNavigationResolver(s, "post").Resolve(ctx, *draft)
	require.NoError(t, err)
	assert.Nil(t, nav.Previous)
	assert.Nil(t, nav.Next)

	published, err := s.GetByUID(ctx, "post", "criando-um-app", "")
	require.NoError(t, err)

	nav, err = posts.NewNavigationResolver(s, "post").Resolve(ctx, *published)
	require.NoError(t, err)
	require.NotNil(t, nav.Previous)
	assert.Equal(t, "como-utilizar-hooks", nav.Previous.UID)
	assert.Nil(t, nav.Next)
}

func TestSource_ResolvePreview(t *testing.T) {
	s := newTestSource(t, writePosts(t))
	ctx := context.Background()

	location, err := s.ResolvePreview(ctx, "preview-secret", "post:rascunho")
	require.NoError(t, err)
	assert.Equal(t, "/post/rascunho", location)

	_, err = s.ResolvePreview(ctx, "wrong", "post:rascunho")
	assert.ErrorIs(t, err, content.ErrInvalidPreviewToken)

	_, err = s.ResolvePreview(ctx, "preview-secret", "post:missing")
	assert.True(t, content.IsNotFound(err))
}

func TestSource_Watch(t *testing.T) {
	dir := writePosts(t)
	s := newTestSource(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- s.Watch(ctx, func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "novo.md"), []byte("---\ntitle: Novo\nfirst_publication_date: 2021-05-01\n---\nbody\n"), 0o600))

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not report the change")
	}

	doc, err := s.GetByUID(context.Background(), "post", "novo", "")
	require.NoError(t, err)
	assert.Equal(t, "Novo", doc.Title)

	cancel()
	assert.NoError(t, <-done)
}
