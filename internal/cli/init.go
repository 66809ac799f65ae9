package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/saeedalam/stubgen/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize stubgen in the current directory",
	Long: `Initialize stubgen in the current directory (or --dir).

This creates a .stubgen/ directory holding:
  config.toml        Settings for generation, watching and logging
  manifest.json      The last stub generated for each source
  cache/history.db   Generation history and searchable declarations

Example:
  stubgen init
  stubgen init --dir ./native`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	root, err := filepath.Abs(projectDir)
	if err != nil {
		return err
	}
	dir := filepath.Join(root, config.DirName)

	if _, err := os.Stat(dir); err == nil {
		fmt.Fprintf(out, "stubgen already initialized in %s\n", dir)
		return nil
	}

	if err := os.MkdirAll(filepath.Join(dir, "cache"), 0755); err != nil {
		return err
	}
	if err := config.Save(filepath.Join(dir, config.FileName), config.Default()); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Fprintf(out, "Initialized stubgen in %s\n", dir)
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  stubgen generate <file.cpp>   Generate and record a stub")
	fmt.Fprintln(out, "  stubgen watch                 Keep every stub up to date")
	return nil
}
