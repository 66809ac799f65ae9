package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saeedalam/stubgen/internal/config"
	"github.com/saeedalam/stubgen/internal/stubs"
)

var (
	generateDryRun bool
	generateLegacy bool
)

var generateCmd = &cobra.Command{
	Use:     "generate <file>...",
	Aliases: []string{"gen"},
	Short:   "Write a .pyi stub next to each C/C++ source",
	Long: `Generate a Python stub for each C/C++ source.

The stub path is the source path with ".c" or ".cpp" replaced by ".pyi".
Files are processed in order and the first failure stops the run.

Inside an initialized project every stub is also recorded in the manifest
and the searchable history.

Example:
  stubgen generate human.cpp
  stubgen generate src/*.c --legacy-params
  stubgen generate human.cpp --dry-run`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().BoolVarP(&generateDryRun, "dry-run", "n", false, "Print stubs to stdout instead of writing them")
	generateCmd.Flags().BoolVar(&generateLegacy, "legacy-params", false, "Skip multi-parameter functions and join parameters without a separator")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if generateLegacy {
		cfg.Generate.LegacyParams = true
	}
	emitter := stubs.NewEmitter(stubs.Options{LegacyParams: cfg.Generate.LegacyParams})

	if generateDryRun {
		for _, path := range args {
			res, err := emitter.EmitFile(path)
			if err != nil {
				return err
			}
			fmt.Fprint(out, res.Stub)
		}
		return nil
	}

	p, err := openProject()
	if errors.Is(err, config.ErrNotInitialized) {
		// Standalone: write stubs without recording them
		for _, path := range args {
			res, err := emitter.GenerateFile(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s -> %s (%d declarations)\n", path, res.StubPath, len(res.Declarations))
		}
		return nil
	}
	if err != nil {
		return err
	}
	defer p.Close()

	for _, path := range args {
		res, err := p.manager.Generate(path)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s -> %s (%d declarations)\n", path, stubs.StubPath(path), len(res.Declarations))
	}
	return nil
}
