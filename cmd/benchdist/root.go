// Package main provides the entry point for the benchdist CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/benchdist/internal/config"
	"github.com/nao1215/benchdist/internal/log"
)

// NewRootCmd creates the root command for benchdist.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "benchdist",
		Short: "Compare benchmark score distributions of processors",
		Long: `benchdist compares the distribution of published benchmark scores
of one or more processors.

Results are downloaded once from the public result browser, stored in a
local SQLite cache and reused on every later run. Reports summarize the
single-core and multi-core scores of each processor and show them as
histograms over a shared range.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON lines")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .benchdist in current or home directory)")
	cmd.PersistentFlags().String("db-dir", "",
		"Directory of the score cache (default: "+config.XDGDataDir()+")")

	// Add subcommands
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewCacheCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getBoolFlag retrieves a boolean flag from the command or its parent.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

// getStringFlag retrieves a string flag from the command or its parent.
func getStringFlag(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetString(name)
		if err != nil {
			return ""
		}
	}
	return v
}

// setupLogger creates the structured logger on the command's stderr.
func setupLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	return log.New(cmd.ErrOrStderr(), log.Options{
		Verbose: cfg.Verbose,
		JSON:    cfg.LogJSON,
	})
}
