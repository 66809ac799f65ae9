package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Regenerate stubs whenever C/C++ sources change",
	Long: `Poll the project for C/C++ sources and regenerate stubs whose content
changed since the last recorded run. Sources that disappear are dropped from
the manifest and search index; their stub files are left alone.

The project is found by searching upwards from dir, which defaults to --dir.
The poll interval, extensions and skipped directories come from the [watch]
section of .stubgen/config.toml. Stop with Ctrl-C.

Example:
  stubgen watch
  stubgen watch ./native
  STUBGEN_WATCH_INTERVAL=500ms stubgen watch`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		// Resolve the project and its config from the given directory instead
		projectDir = args[0]
		if err := setup(cmd, args); err != nil {
			return err
		}
	}

	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := p.manager.Start(); err != nil {
		return err
	}
	log.Info().
		Str("interval", cfg.Watch.Interval.String()).
		Strs("extensions", cfg.Watch.Extensions).
		Msg("Watching for changes")

	<-ctx.Done()
	p.manager.Stop()

	stats := p.manager.GetStats()
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "")
	fmt.Fprintf(out, "  Scans:            %d\n", stats.Scans)
	fmt.Fprintf(out, "  Stubs generated:  %d\n", stats.StubsGenerated)
	fmt.Fprintf(out, "  Cache hits:       %d\n", stats.CacheHits)
	fmt.Fprintf(out, "  Sources removed:  %d\n", stats.SourcesRemoved)
	if stats.ErrorCount > 0 {
		fmt.Fprintf(out, "  Errors:           %d (last: %s)\n", stats.ErrorCount, stats.LastError)
	}
	return nil
}
