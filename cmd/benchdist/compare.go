package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/benchdist/internal/config"
	"github.com/nao1215/benchdist/internal/crawler"
	"github.com/nao1215/benchdist/internal/database"
	"github.com/nao1215/benchdist/internal/pipeline"
)

// NewCompareCmd creates the compare command.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <identifier>...",
		Short: "Compare the score distributions of one or more processors",
		Long: `Compare acquires the benchmark results of every identifier and reports
their single-core and multi-core score distributions.

Identifiers already in the local cache are read from it without any network
access. The others are looked up on the result browser first: if any of them
has no results, nothing is downloaded and every missing identifier is
reported. Otherwise all result pages are downloaded, parsed and stored.

Examples:
  # Compare two processors
  benchdist compare "Intel i7 3770" "AMD Ryzen 5 3600"

  # Output a Markdown report to a file
  benchdist compare --markdown -o report.md "Intel i7 3770"

  # Be gentler with the remote site
  benchdist compare --rate 0.5 --fetch-concurrency 1 "Intel i7 3770"

Configuration file (.benchdist) example:
  source:
    userAgent: "my-benchdist"
  aliases:
    "Intel i7 3770": "Ivy Bridge"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCompareCmd,
	}

	// Source flags
	cmd.Flags().String("base-url", config.DefaultBaseURL,
		"Search endpoint of the result browser")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with every request")

	// Request behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each request")
	cmd.Flags().Int("retries", config.DefaultRetries,
		"Retries of a request failing with a transport error, 429 or 5xx")
	cmd.Flags().Float64("rate", config.DefaultRequestsPerSecond,
		"Maximum requests per second (0 disables the limit)")
	cmd.Flags().IntP("concurrency", "b", config.DefaultConcurrency,
		"Number of identifiers processed at once")
	cmd.Flags().Int("fetch-concurrency", config.DefaultFetchConcurrency,
		"Number of pages of one identifier downloaded at once")

	addReportFlags(cmd)

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd, cfg)

	// Cancel in-flight requests on interrupt
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runCompare(ctx, cfg, cmd.OutOrStdout(), logger)
}

// runCompare acquires the series of cfg.Identifiers and writes the report.
func runCompare(ctx context.Context, cfg *config.Config, stdout io.Writer, logger *slog.Logger) error {
	logger.Info("starting comparison",
		"identifiers", cfg.Identifiers,
		"baseURL", cfg.BaseURL,
		"concurrency", cfg.Concurrency,
	)

	opts := database.DefaultOptions()
	opts.Logger = logger
	db, err := database.Open(cfg.DBDir, opts)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	logger.Info("database opened", "path", db.Path())

	acquirer, err := newAcquirer(cfg, db, logger)
	if err != nil {
		return err
	}

	startTime := time.Now()
	series, err := acquirer.Acquire(ctx, cfg.Identifiers)
	if err != nil {
		return err
	}
	logger.Info("acquisition completed",
		"identifiers", len(series),
		"elapsed", time.Since(startTime).Round(time.Millisecond),
	)

	return outputReport(cfg, stdout, series)
}

// newAcquirer wires the crawler and the store into an Acquirer.
func newAcquirer(cfg *config.Config, store pipeline.Store, logger *slog.Logger) (*pipeline.Acquirer, error) {
	headers := cfg.File.RequestHeaders()
	logger.Debug("request headers", "headers", headers)

	fetcher, err := crawler.NewFetcher(cfg.BaseURL,
		crawler.WithTimeout(cfg.Timeout),
		crawler.WithRetries(cfg.Retries),
		crawler.WithRequestsPerSecond(cfg.RequestsPerSecond),
		crawler.WithConcurrency(cfg.FetchConcurrency),
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithHeaders(headers),
		crawler.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create fetcher: %w", err)
	}

	selectors := cfg.File.Source.Selectors
	extractor, err := crawler.NewExtractor(
		crawler.WithSingleCoreSelector(selectors.SingleCore),
		crawler.WithMultiCoreSelector(selectors.MultiCore),
		crawler.WithPaginationSelector(selectors.Pagination),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid selector in config file: %w", err)
	}

	return pipeline.NewAcquirer(store,
		crawler.NewProber(fetcher, extractor),
		fetcher,
		extractor,
		pipeline.WithAcquirerLogger(logger),
		pipeline.WithTargetConcurrency(cfg.Concurrency),
		pipeline.WithAliases(cfg.File.Aliases),
	), nil
}
