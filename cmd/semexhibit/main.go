// Package main provides the semexhibit binary entry point.
// Semexhibit walks a linked-data exhibit graph and imports it into an
// Omeka installation through the admin web forms.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/c360studio/semexhibit/config"
	"github.com/c360studio/semexhibit/extract"
	"github.com/c360studio/semexhibit/fetch"
	"github.com/c360studio/semexhibit/graph"
	"github.com/c360studio/semexhibit/metric"
	"github.com/c360studio/semexhibit/omeka"
	"github.com/c360studio/semexhibit/pipeline"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "semexhibit"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, context.Canceled) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

type flags struct {
	exhibitURI string
	omekaURL   string
	user       string
	password   string
	configPath string
	logLevel   string
	logDest    string
	metrics    string
}

func rootCmd() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "semexhibit",
		Short: "Import a linked-data exhibit into Omeka",
		Long: `Semexhibit fetches an exhibit description from a linked-data graph,
drills down to the exhibited items, and creates the exhibit and its
items in an Omeka installation via the admin forms.

Graph requests are throttled to a configurable minimum interval so the
source endpoint is never hammered. One item failing to import never
aborts the run; the failure is logged and the import continues.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), f)
		},
	}

	cmd.Flags().StringVarP(&f.exhibitURI, "exhibit-uri", "e", "", "Graph identifier of the exhibit to import")
	cmd.Flags().StringVarP(&f.omekaURL, "omeka", "o", "", "Base URL of the target Omeka installation")
	cmd.Flags().StringVarP(&f.user, "user", "u", "", "Omeka admin user")
	cmd.Flags().StringVarP(&f.password, "passwd", "p", "", "Omeka admin password")
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "normal", "Log level (very-quiet, quiet, normal, verbose)")
	cmd.Flags().StringVar(&f.logDest, "log-dest", "STDERR", "Log destination (STDOUT, STDERR, or a file path)")
	cmd.Flags().StringVar(&f.metrics, "metrics-listen", "", "Address to serve Prometheus metrics on (empty disables)")

	// Version command
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

// logLevelFor maps the CLI verbosity names onto slog levels.
func logLevelFor(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "very-quiet":
		return slog.LevelError, nil
	case "quiet":
		return slog.LevelWarn, nil
	case "normal":
		return slog.LevelInfo, nil
	case "verbose":
		return slog.LevelDebug, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
}

// logDestination opens the log sink named by the --log-dest flag. The
// returned closer is a no-op for the standard streams.
func logDestination(dest string) (*os.File, func(), error) {
	switch dest {
	case "STDOUT":
		return os.Stdout, func() {}, nil
	case "STDERR":
		return os.Stderr, func() {}, nil
	}
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log destination: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// flagOverrides turns the CLI flags into a Config fragment for merging
// over the file-provided values.
func flagOverrides(f flags) *config.Config {
	override := &config.Config{}
	override.Exhibit.RootURI = f.exhibitURI
	override.Omeka.URL = f.omekaURL
	override.Omeka.User = f.user
	override.Omeka.Password = f.password
	override.Metrics.Listen = f.metrics
	return override
}

func run(ctx context.Context, f flags) error {
	level, err := logLevelFor(f.logLevel)
	if err != nil {
		return err
	}
	sink, closeSink, err := logDestination(f.logDest)
	if err != nil {
		return err
	}
	defer closeSink()

	logger := slog.New(slog.NewTextHandler(sink, &slog.HandlerOptions{Level: level})).
		With("run_id", uuid.NewString())
	slog.SetDefault(logger)

	cfg, err := config.NewLoader(logger).Load(f.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.Merge(flagOverrides(f))
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := metric.NewMetrics()
	registry := prometheus.NewRegistry()
	if err := metrics.Register(registry); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	if cfg.Metrics.Listen != "" {
		metric.Serve(ctx, cfg.Metrics.Listen, registry, logger)
	}

	fetcher := fetch.NewFetcher(fetch.Options{
		MinInterval: cfg.Fetch.MinInterval.Std(),
		Timeout:     cfg.Fetch.Timeout.Std(),
		UserAgent:   cfg.Fetch.UserAgent,
		Retry:       retryConfig(cfg.Fetch.MaxAttempts),
	}, logger)
	resolver := metric.InstrumentResolver(fetcher, metrics)
	nav := graph.NewNavigator(graph.NewStore(), resolver, logger)

	blurb := fetch.NewBlurbClient(cfg.Services.BlurbURL, cfg.Services.BlurbMaxLength, cfg.Fetch.Timeout.Std(), logger)
	media := fetch.NewMediaClient(cfg.Services.RawURL, cfg.Fetch.Timeout.Std(), logger)
	extractor := extract.NewExtractor(nav, blurb, media, cfg.Exhibit.Language, logger)

	cms, err := omeka.NewClient(cfg.Omeka.URL, cfg.Omeka.Timeout.Std(), logger)
	if err != nil {
		return fmt.Errorf("create omeka client: %w", err)
	}
	if err := cms.Login(ctx, cfg.Omeka.User, cfg.Omeka.Password); err != nil {
		if ctx.Err() != nil {
			return context.Canceled
		}
		return err
	}

	listing := make([]graph.Identifier, len(cfg.Exhibit.ListingPath))
	for i, p := range cfg.Exhibit.ListingPath {
		listing[i] = graph.Identifier(p)
	}

	logger.Info("starting import",
		"exhibit", cfg.Exhibit.RootURI,
		"omeka", cfg.Omeka.URL,
		"version", Version)

	start := time.Now()
	runErr := pipeline.New(nav, extractor, cms, listing, metrics, logger).
		Run(ctx, graph.Identifier(cfg.Exhibit.RootURI))
	elapsed := time.Since(start)

	if runErr != nil {
		logger.Error("import failed", "elapsed", elapsed.Round(time.Millisecond), "error", runErr)
		if ctx.Err() != nil {
			return context.Canceled
		}
		return runErr
	}
	logger.Info("import finished", "elapsed", elapsed.Round(time.Millisecond))
	return nil
}

// retryConfig keeps the stock backoff curve and only lets configuration
// change how many attempts it bounds.
func retryConfig(maxAttempts int) fetch.RetryConfig {
	rc := fetch.DefaultRetryConfig()
	if maxAttempts > 0 {
		rc.MaxAttempts = maxAttempts
	}
	return rc
}
