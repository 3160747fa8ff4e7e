package build

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SpaceTraveling/internal/content/filesource"
	"SpaceTraveling/internal/core/dates"
	"SpaceTraveling/internal/core/posts"
	"SpaceTraveling/internal/core/richtext"
	"SpaceTraveling/internal/web"
)

func writeSite(t *testing.T, extra map[string]string) (contentDir, staticDir string) {
	t.Helper()
	contentDir = t.TempDir()
	staticDir = t.TempDir()

	for i, uid := range []string{"primeiro", "segundo", "terceiro"} {
		post := fmt.Sprintf(`---
title: Post %s
author: Danilo Vieira
first_publication_date: "2021-03-%02dT10:00:00Z"
---
## Seção

Texto do post %s.
`, uid, 10+i, uid)
		require.NoError(t, os.WriteFile(filepath.Join(contentDir, uid+".md"), []byte(post), 0o600))
	}
	draft := `---
title: Rascunho
draft: true
first_publication_date: "2021-03-20T10:00:00Z"
---
Ainda não.
`
	require.NoError(t, os.WriteFile(filepath.Join(contentDir, "rascunho.md"), []byte(draft), 0o600))
	for name, body := range extra {
		require.NoError(t, os.WriteFile(filepath.Join(contentDir, name), []byte(body), 0o600))
	}

	require.NoError(t, os.MkdirAll(filepath.Join(staticDir, "images"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "styles.css"), []byte("body{}"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "images", "logo.svg"), []byte("<svg/>"), 0o600))
	return contentDir, staticDir
}

func newTestExporter(t *testing.T, outDir string, extra map[string]string) *Exporter {
	t.Helper()
	contentDir, staticDir := writeSite(t, extra)

	source, err := filesource.New(contentDir, filesource.WithPreviewToken("preview"))
	require.NoError(t, err)

	formatter := posts.NewFormatter(dates.MustFormatter("pt-BR", "UTC"), richtext.NewRenderer())
	service := posts.NewService(source, formatter)

	templates, err := web.NewTemplates()
	require.NoError(t, err)

	return NewExporter(web.NewPages(templates, service), service, outDir,
		WithStaticDir(staticDir),
		WithConcurrency(2),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func readDoc(t *testing.T, path string) *goquery.Document {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	doc, err := goquery.NewDocumentFromReader(f)
	require.NoError(t, err)
	return doc
}

func TestExport(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, os.MkdirAll(outDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(outDir, "stale.html"), []byte("old"), 0o600))

	result, err := newTestExporter(t, outDir, nil).Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Posts)

	assert.NoFileExists(t, filepath.Join(outDir, "stale.html"))
	assert.FileExists(t, filepath.Join(outDir, "404.html"))
	assert.FileExists(t, filepath.Join(outDir, "static", "styles.css"))
	assert.FileExists(t, filepath.Join(outDir, "static", "images", "logo.svg"))
	assert.NoDirExists(t, filepath.Join(outDir, "post", "rascunho"))

	home := readDoc(t, filepath.Join(outDir, "index.html"))
	var titles []string
	home.Find(".post-summary h1").Each(func(_ int, s *goquery.Selection) {
		titles = append(titles, s.Text())
	})
	assert.Equal(t, []string{"Post terceiro", "Post segundo"}, titles)
	assert.Equal(t, 1, home.Find("form[action='/posts/more']").Length())

	middle := readDoc(t, filepath.Join(outDir, "post", "segundo", "index.html"))
	assert.Equal(t, "Post segundo", middle.Find("article h1").Text())
	assert.Equal(t, "Post primeiro", middle.Find(".post-navigation .previous p").Text())
	assert.Equal(t, "Post terceiro", middle.Find(".post-navigation .next p").Text())
	assert.Zero(t, middle.Find(".button-preview").Length())

	for _, uid := range []string{"primeiro", "terceiro"} {
		assert.FileExists(t, filepath.Join(outDir, "post", uid, "index.html"))
	}
}

func TestExport_RequiresOutputDir(t *testing.T) {
	_, err := newTestExporter(t, "", nil).Export(context.Background())
	assert.Error(t, err)
}

func TestExport_SkipsUnsafeUIDs(t *testing.T) {
	root := t.TempDir()
	outDir := filepath.Join(root, "site", "out")

	unsafe := func(uid string) string {
		return fmt.Sprintf("---\nuid: %q\ntitle: Fora\nfirst_publication_date: \"2021-03-01T10:00:00Z\"\n---\nTexto.\n", uid)
	}
	result, err := newTestExporter(t, outDir, map[string]string{
		"escape.md": unsafe("../../escaped"),
		"parent.md": unsafe(".."),
	}).Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Posts)

	assert.NoFileExists(t, filepath.Join(root, "site", "escaped", "index.html"))
	assert.NoFileExists(t, filepath.Join(root, "escaped", "index.html"))

	home := readDoc(t, filepath.Join(outDir, "index.html"))
	assert.Equal(t, 2, home.Find(".post-summary").Length())
}
