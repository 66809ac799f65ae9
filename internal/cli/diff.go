package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/saeedalam/stubgen/internal/render"
	"github.com/saeedalam/stubgen/internal/stubs"
)

var diffCheck bool

// errStubOutdated is returned by diff --check when a stub would change
var errStubOutdated = errors.New("stub is out of date")

var diffCmd = &cobra.Command{
	Use:   "diff <file>...",
	Short: "Show how regenerating would change existing stubs",
	Long: `Compare the stub on disk with a fresh one for each source.

Nothing is written. With --check the command fails when any stub differs,
which is useful in CI.

Example:
  stubgen diff human.cpp
  stubgen diff src/*.cpp --check`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().BoolVar(&diffCheck, "check", false, "Exit with an error if any stub is out of date")
}

func runDiff(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	emitter := stubs.NewEmitter(stubs.Options{LegacyParams: cfg.Generate.LegacyParams})

	outdated := 0
	for _, path := range args {
		res, err := emitter.EmitFile(path)
		if err != nil {
			return err
		}

		current, err := os.ReadFile(res.StubPath)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}

		if d := render.Diff(res.StubPath, string(current), res.Stub); d != "" {
			outdated++
			fmt.Fprint(out, d)
		}
	}

	if outdated == 0 {
		fmt.Fprintln(out, "All stubs are up to date.")
		return nil
	}
	if diffCheck {
		return fmt.Errorf("%w: %d of %d", errStubOutdated, outdated, len(args))
	}
	return nil
}
