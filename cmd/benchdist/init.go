package main

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/benchdist/internal/config"
)

//go:embed templates/benchdist.yaml
var configTemplate []byte

// configFileName is the default configuration file name.
const configFileName = config.DefaultConfigFile

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented benchdist configuration file",
		Long: `Init writes a configuration file for the result browser source and
identifier aliases. Every setting in it is commented out, so the file
changes nothing until you edit it.

benchdist reads the first file it finds in this order:
  --config <path>, ./.benchdist, ~/.benchdist, <XDG config dir>/config.yaml

Use --xdg to write the last of these instead of ./.benchdist.

Examples:
  # Write ./.benchdist
  benchdist init

  # Write the per-user file under the XDG config directory
  benchdist init --xdg

  # Replace an existing file
  benchdist init -o team.yaml -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", configFileName,
		"Path of the configuration file to write")
	cmd.Flags().Bool("xdg", false,
		"Write config.yaml in the XDG config directory")
	cmd.Flags().BoolP("force", "f", false,
		"Replace the file if it already exists")
	cmd.MarkFlagsMutuallyExclusive("output", "xdg")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := initPath(cmd)
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if err := writeTemplate(outputPath, force); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nUncomment the settings you need:")
	fmt.Fprintln(out, "  source   base URL, user agent, cookie, headers and selectors")
	fmt.Fprintln(out, "  aliases  display names for identifiers in reports")

	return nil
}

// initPath resolves where the template is written.
func initPath(cmd *cobra.Command) (string, error) {
	useXDG, err := cmd.Flags().GetBool("xdg")
	if err != nil {
		return "", err
	}
	if useXDG {
		return filepath.Join(config.XDGConfigDir(), "config.yaml"), nil
	}
	return cmd.Flags().GetString("output")
}

// writeTemplate writes the embedded template to path with owner-only
// permissions. Without force an existing file is left alone.
func writeTemplate(path string, force bool) (err error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_EXCL
	if force {
		flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	}

	f, err := os.OpenFile(path, flags, 0600)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", path)
	}
	if err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close configuration file: %w", cerr)
		}
	}()

	if _, err := f.Write(configTemplate); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}
	return nil
}
