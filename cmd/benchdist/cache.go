package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/nao1215/benchdist/internal/config"
	"github.com/nao1215/benchdist/internal/database"
	"github.com/nao1215/benchdist/internal/model"
)

// NewCacheCmd creates the cache command and its subcommands.
// Cache commands only read the store; nothing is ever deleted from it.
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the local score cache",
		Long: `Cache inspects the local score cache without any network access.

Examples:
  # List every cached series
  benchdist cache list

  # Report the cached scores of a processor
  benchdist cache show "Intel i7 3770"`,
	}

	cmd.AddCommand(newCacheListCmd())
	cmd.AddCommand(newCacheShowCmd())

	return cmd
}

// newCacheListCmd creates the cache list command.
func newCacheListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached series",
		Args:  cobra.NoArgs,
		RunE:  runCacheListCmd,
	}
}

// newCacheShowCmd creates the cache show command.
func newCacheShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <identifier>...",
		Short: "Report cached series without downloading",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runCacheShowCmd,
	}
	addReportFlags(cmd)
	return cmd
}

// openCache opens an existing score cache read-only in intent.
// A missing database is reported instead of created.
func openCache(cmd *cobra.Command, cfg *config.Config) (*database.ScoreDB, error) {
	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	opts.Logger = setupLogger(cmd, cfg)

	db, err := database.Open(cfg.DBDir, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// runCacheListCmd executes the cache list command.
func runCacheListCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd, nil)
	if err != nil {
		return err
	}

	db, err := openCache(cmd, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	infos, err := db.ListSeries(cmd.Context())
	if err != nil {
		return err
	}

	writeSeriesList(cmd.OutOrStdout(), infos)
	return nil
}

// writeSeriesList renders infos as a table.
func writeSeriesList(w io.Writer, infos []database.SeriesInfo) {
	if len(infos) == 0 {
		fmt.Fprintln(w, "No cached series.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Key", "Identifier", "Samples", "Created"})
	for _, info := range infos {
		created := "-"
		if !info.CreatedAt.IsZero() {
			created = info.CreatedAt.Local().Format("2006-01-02 15:04:05")
		}
		t.AppendRow(table.Row{info.Key, info.Identifier, info.Samples, created})
	}
	t.AppendFooter(table.Row{"Total", len(infos), "", ""})
	t.SetStyle(table.StyleRounded)
	t.Render()
}

// runCacheShowCmd executes the cache show command.
func runCacheShowCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	db, err := openCache(cmd, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	aliases := make(map[string]string, len(cfg.File.Aliases))
	for identifier, name := range cfg.File.Aliases {
		aliases[database.NormalizeKey(identifier)] = name
	}

	series := make([]*model.Series, 0, len(args))
	var missing []string
	for _, identifier := range args {
		key := database.NormalizeKey(identifier)
		pairs, err := db.Read(cmd.Context(), key)
		if errors.Is(err, database.ErrSeriesNotFound) {
			missing = append(missing, identifier)
			continue
		}
		if err != nil {
			return err
		}

		s := model.NewSeries(identifier, key, pairs)
		if name := aliases[key]; name != "" {
			s.Name = name
		}
		series = append(series, s)
	}

	if len(missing) > 0 {
		return fmt.Errorf("not in cache: %q (run 'benchdist compare' first)", missing)
	}

	return outputReport(cfg, cmd.OutOrStdout(), series)
}
