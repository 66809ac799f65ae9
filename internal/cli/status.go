package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/saeedalam/stubgen/internal/stubs"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recorded stubs and whether they are current",
	Long: `Show the current status of stubgen.

Displays:
- Manifest and history statistics
- Each recorded source: ok, stale (source changed) or missing
- Recent generation runs`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	out := cmd.OutOrStdout()
	root := filepath.Dir(p.store.BasePath())

	manifest, err := p.store.GetManifest()
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}
	storeStats, err := p.store.GetStats()
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}
	indexStats, err := p.index.GetStats()
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}

	fmt.Fprintln(out, "stubgen Status")
	fmt.Fprintln(out, "==============")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Location: %s\n", p.store.BasePath())
	fmt.Fprintln(out)

	fmt.Fprintln(out, "History:")
	fmt.Fprintf(out, "  Sources:          %d\n", storeStats.Sources)
	fmt.Fprintf(out, "  Runs:             %d\n", indexStats.Runs)
	fmt.Fprintf(out, "  Declarations:     %d\n", indexStats.Declarations)
	kinds := make([]string, 0, len(indexStats.ByKind))
	for kind := range indexStats.ByKind {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		fmt.Fprintf(out, "    %-15s %d\n", kind+":", indexStats.ByKind[kind])
	}
	if !storeStats.LastGenerated.IsZero() {
		fmt.Fprintf(out, "  Last generated:   %s\n", storeStats.LastGenerated.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintln(out)

	sources := make([]string, 0, len(manifest))
	for src := range manifest {
		sources = append(sources, src)
	}
	sort.Strings(sources)
	if len(sources) > 0 {
		fmt.Fprintln(out, "Stubs:")
		for _, src := range sources {
			fmt.Fprintf(out, "  %-8s %s\n", sourceState(root, src, manifest[src].ContentHash), src)
		}
		fmt.Fprintln(out)
	}

	runs, err := p.index.RecentRuns("", 5)
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}
	if len(runs) > 0 {
		fmt.Fprintln(out, "Recent runs:")
		for _, r := range runs {
			fmt.Fprintf(out, "  %s  %s  %s (%d declarations)\n",
				r.GeneratedAt.Format("2006-01-02 15:04:05"), r.ID, r.Source, r.Declarations)
		}
		fmt.Fprintln(out)
	}

	return nil
}

// sourceState compares a recorded source with what is on disk
func sourceState(root, rel, hash string) string {
	data, err := os.ReadFile(filepath.Join(root, rel))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "missing"
	case err != nil:
		return "error"
	case stubs.ContentHash(data) != hash:
		return "stale"
	}
	return "ok"
}
