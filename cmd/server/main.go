package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/securecookie"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"SpaceTraveling/internal/api/handlers/preview"
	"SpaceTraveling/internal/api/middleware"
	"SpaceTraveling/internal/api/routes"
	"SpaceTraveling/internal/app"
	"SpaceTraveling/internal/config"
	"SpaceTraveling/internal/core/pagination"
	"SpaceTraveling/internal/web"
)

func main() {
	cfgFile := flag.String("config", "", "config file (default is ./spacetraveling.yaml)")
	flag.Parse()

	cfg, err := config.Load(*cfgFile)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := cfg.Log.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Content source and services
	contentServices, err := app.NewContent(cfg, logger)
	if err != nil {
		return err
	}

	pageCache, closeCache, err := app.NewPageCache(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeCache(); err != nil {
			logger.Warn("failed to close page cache", "error", err)
		}
	}()

	if contentServices.Files != nil && cfg.Content.Watch {
		go func() {
			err := contentServices.Files.Watch(ctx, func() {
				if err := pageCache.Invalidate(ctx); err != nil {
					logger.Warn("failed to purge page cache after content change", "error", err)
					return
				}
				logger.Info("content changed, page cache purged")
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("content watcher stopped", "error", err)
			}
		}()
	}

	// Cookies: the listing session is always signed; without a configured
	// secret the key only lives as long as the process.
	secret := []byte(cfg.Preview.CookieSecret)
	if len(secret) == 0 {
		secret = securecookie.GenerateRandomKey(preview.MinCookieSecretLength)
	}
	previewCookies, err := preview.NewCookieStore(secret, cfg.Preview.CookieName, cfg.Preview.MaxAge, cfg.Preview.Secure)
	if err != nil {
		return err
	}

	registry, err := pagination.NewRegistry(cfg.Server.SessionSize)
	if err != nil {
		return err
	}

	templates, err := web.NewTemplates()
	if err != nil {
		return err
	}
	webHandlers := web.NewHandlers(
		templates,
		contentServices.Posts,
		pageCache,
		web.NewListingSessions(secret, registry, cfg.Preview.Secure),
		previewCookies,
	)

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chiMiddleware.Recoverer)

	// Rate limiting on routes that always reach the content API
	loadMoreLimiter := middleware.NewRateLimiter(cfg.Server.LoadMoreRate, time.Minute)
	defer loadMoreLimiter.Stop()
	previewLimiter := middleware.NewRateLimiter(cfg.Server.LoadMoreRate, time.Minute)
	defer previewLimiter.Stop()

	routes.RegisterWebRoutes(r, webHandlers, cfg.Server.StaticDir, loadMoreLimiter)
	routes.RegisterPostsRoutes(r, contentServices.Posts, previewCookies, cfg.Server.AllowedOrigins)
	if cfg.PreviewEnabled() {
		routes.RegisterPreviewRoutes(r, contentServices.Preview, previewCookies, previewLimiter)
	} else {
		logger.Info("preview disabled: preview.cookie_secret is not set")
	}

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Space Traveling starting",
			"port", cfg.Server.Port,
			"content_backend", cfg.Content.Backend,
			"cache_backend", cfg.Cache.Backend)
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	// Let background page regeneration finish writing.
	pageCache.Wait()
	return nil
}
