package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/saeedalam/stubgen/internal/config"
)

var (
	projectDir string
	logLevel   string

	// Resolved in PersistentPreRunE
	cfg      *config.Config
	stateDir string
)

var rootCmd = &cobra.Command{
	Use:   "stubgen",
	Short: "Generate Python type stubs for C/C++ sources",
	Long: `stubgen - heuristic .pyi stubs for C and C++ files

stubgen scans a C/C++ source line by line and writes a sibling .pyi file
listing the classes, free functions, member variables and arrays it finds,
so a Python type checker can annotate calls into bindings for that file.

It is a best-effort pattern matcher, not a parser: unrecognised lines are
skipped and unknown types become typing.Any.

Quick Start:
  stubgen generate human.cpp   Write human.pyi next to human.cpp
  stubgen init                 Track stubs for this project in .stubgen/
  stubgen watch                Regenerate stubs as sources change
  stubgen search hello         Find recorded declarations`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&projectDir, "dir", "d", ".", "Directory to search upwards for "+config.DirName)
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides config")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup locates the project, loads its config and configures logging
func setup(cmd *cobra.Command, args []string) error {
	stateDir = ""
	dir, err := config.FindDir(projectDir)
	switch {
	case err == nil:
		stateDir = dir
	case !errors.Is(err, config.ErrNotInitialized):
		return err
	}

	configPath := ""
	if stateDir != "" {
		configPath = filepath.Join(stateDir, config.FileName)
	}
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}

	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()

	log.Debug().Str("state_dir", stateDir).Msg("Configuration loaded")
	return nil
}
