package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var searchKind string
var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search recorded declarations",
	Long: `Search the declarations of every recorded stub.

The query matches names, resolved types and source paths by prefix.

Example:
  stubgen search hello
  stubgen search Human --kind class
  stubgen search "" --kind array --limit 50`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchKind, "kind", "k", "", "Filter by kind: function, class, variable, array")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "l", 20, "Max results")
}

func runSearch(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	out := cmd.OutOrStdout()
	query := args[0]

	results, err := p.index.SearchDeclarations(query, searchKind, searchLimit)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	fmt.Fprintf(out, "Searching for: %s\n", query)
	fmt.Fprintln(out, strings.Repeat("-", 40))

	if len(results) == 0 {
		fmt.Fprintln(out, "No declarations found.")
		return nil
	}

	for _, d := range results {
		decl := d.Name
		if d.Type != "" {
			decl += ": " + d.Type
		}
		fmt.Fprintf(out, "  %s:%d  %-8s  %s\n", d.Source, d.Line, d.Kind, decl)
	}
	fmt.Fprintln(out, "")
	fmt.Fprintf(out, "%d result(s)\n", len(results))
	return nil
}
