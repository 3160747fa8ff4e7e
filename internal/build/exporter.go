// Package build exports the published site as static HTML files.
package build

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"SpaceTraveling/internal/core/posts"
	"SpaceTraveling/internal/web"
)

const defaultConcurrency = 4

// Result summarizes an export.
type Result struct {
	OutputDir string
	Posts     int
}

// Exporter renders every published page into a directory tree that any
// static file server can serve.
type Exporter struct {
	pages       *web.Pages
	posts       posts.Service
	logger      *slog.Logger
	outputDir   string
	staticDir   string
	concurrency int
}

// Option configures the exporter
type Option func(*Exporter)

// WithStaticDir copies the directory to <output>/static.
func WithStaticDir(dir string) Option {
	return func(e *Exporter) {
		e.staticDir = dir
	}
}

// WithConcurrency bounds how many post pages render at once.
func WithConcurrency(n int) Option {
	return func(e *Exporter) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithLogger sets the exporter logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Exporter) {
		e.logger = logger
	}
}

// NewExporter creates an exporter writing into outputDir.
func NewExporter(pages *web.Pages, postService posts.Service, outputDir string, opts ...Option) *Exporter {
	e := &Exporter{
		pages:       pages,
		posts:       postService,
		outputDir:   outputDir,
		logger:      slog.Default(),
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export writes index.html, 404.html and post/<uid>/index.html for every
// published post. The output directory is replaced.
func (e *Exporter) Export(ctx context.Context) (*Result, error) {
	if e.outputDir == "" {
		return nil, fmt.Errorf("output directory is required")
	}

	uids, err := e.posts.AllUIDs(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	if err := os.RemoveAll(e.outputDir); err != nil {
		return nil, fmt.Errorf("failed to clean output directory: %w", err)
	}
	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	home, _, err := e.pages.Home("")(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to render listing: %w", err)
	}
	if err := e.write("index.html", home); err != nil {
		return nil, err
	}

	notFound, err := e.pages.NotFound()
	if err != nil {
		return nil, fmt.Errorf("failed to render 404 page: %w", err)
	}
	if err := e.write("404.html", notFound); err != nil {
		return nil, err
	}

	exported := uids[:0]
	for _, uid := range uids {
		if err := posts.ValidateSlug(uid); err != nil {
			e.logger.WarnContext(ctx, "skipping post with unusable uid", "uid", uid, "error", err)
			continue
		}
		exported = append(exported, uid)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for _, uid := range exported {
		g.Go(func() error {
			body, _, err := e.pages.Post(uid, "")(gctx)
			if err != nil {
				return fmt.Errorf("failed to render post %s: %w", uid, err)
			}
			return e.write(filepath.Join("post", uid, "index.html"), body)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if e.staticDir != "" {
		if _, err := os.Stat(e.staticDir); err == nil {
			if err := copyDirContents(e.staticDir, filepath.Join(e.outputDir, "static")); err != nil {
				return nil, fmt.Errorf("failed to copy static assets: %w", err)
			}
		} else {
			e.logger.WarnContext(ctx, "static directory not found, skipping copy", "dir", e.staticDir)
		}
	}

	e.logger.InfoContext(ctx, "site exported", "output_dir", e.outputDir, "posts", len(exported))
	return &Result{OutputDir: e.outputDir, Posts: len(exported)}, nil
}

func (e *Exporter) write(rel string, body []byte) error {
	if !filepath.IsLocal(rel) {
		return fmt.Errorf("refusing to write %q outside the output directory", rel)
	}
	path := filepath.Join(e.outputDir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", rel, err)
	}
	if err := os.WriteFile(path, body, 0o644); err != nil { //nolint:gosec
		return fmt.Errorf("failed to write %s: %w", rel, err)
	}
	return nil
}

// copyDirContents recursively copies contents from src to dst.
func copyDirContents(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path for %s: %w", path, err)
		}
		dstPath := filepath.Join(dst, relPath)

		if d.IsDir() {
			return os.MkdirAll(dstPath, 0o755)
		}
		return copyFile(path, dstPath)
	})
}

func copyFile(srcFile, dstFile string) error {
	srcF, err := os.Open(srcFile)
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", srcFile, err)
	}
	defer srcF.Close()

	dstF, err := os.Create(dstFile)
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", dstFile, err)
	}
	defer dstF.Close()

	if _, err := io.Copy(dstF, srcF); err != nil {
		return fmt.Errorf("failed to copy data from %s to %s: %w", srcFile, dstFile, err)
	}
	return nil
}
