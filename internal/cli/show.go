package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saeedalam/stubgen/internal/render"
	"github.com/saeedalam/stubgen/internal/stubs"
)

var (
	showTheme string
	showPlain bool
)

var showCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Print the stub for a source with syntax highlighting",
	Long: `Render the stub for a C/C++ source and print it without writing it.
Output is highlighted only when stdout is a terminal.

Example:
  stubgen show human.cpp
  stubgen show human.cpp --theme dracula
  stubgen show human.cpp --plain`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVar(&showTheme, "theme", render.DefaultTheme, "Chroma style name")
	showCmd.Flags().BoolVar(&showPlain, "plain", false, "Disable highlighting even on a terminal")
}

func runShow(cmd *cobra.Command, args []string) error {
	res, err := stubs.NewEmitter(stubs.Options{LegacyParams: cfg.Generate.LegacyParams}).EmitFile(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	text := res.Stub
	if !showPlain && render.IsTerminal(out) {
		text = render.Highlight(text, showTheme)
	}
	fmt.Fprint(out, text)
	return nil
}
