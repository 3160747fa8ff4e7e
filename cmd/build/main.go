package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"SpaceTraveling/internal/app"
	"SpaceTraveling/internal/build"
	"SpaceTraveling/internal/config"
	"SpaceTraveling/internal/web"
)

var (
	cfgFile     string
	outputDir   string
	staticDir   string
	concurrency int
)

var rootCmd = &cobra.Command{
	Use:   "build",
	Short: "Export the published blog as static HTML",
	Long: `build renders the listing page and every published post into an
output directory (default './out/') that any static file server can host.
Preview drafts are never exported.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBuild(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVar(&cfgFile, "config", "", "config file (default is ./spacetraveling.yaml)")
	rootCmd.Flags().StringVarP(&outputDir, "out", "o", "", "output directory (overrides build.output_dir)")
	rootCmd.Flags().StringVar(&staticDir, "static", "", "static assets directory (overrides server.static_dir)")
	rootCmd.Flags().IntVar(&concurrency, "concurrency", 4, "post pages rendered in parallel")
}

func runBuild(ctx context.Context) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if outputDir != "" {
		cfg.Build.OutputDir = outputDir
	}
	if staticDir != "" {
		cfg.Server.StaticDir = staticDir
	}

	logger := cfg.Log.NewLogger(os.Stderr)

	contentServices, err := app.NewContent(cfg, logger)
	if err != nil {
		return err
	}

	templates, err := web.NewTemplates()
	if err != nil {
		return err
	}

	exporter := build.NewExporter(
		web.NewPages(templates, contentServices.Posts),
		contentServices.Posts,
		cfg.Build.OutputDir,
		build.WithStaticDir(cfg.Server.StaticDir),
		build.WithConcurrency(concurrency),
		build.WithLogger(logger),
	)

	result, err := exporter.Export(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Exported %d posts to %s\n", result.Posts, result.OutputDir)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
