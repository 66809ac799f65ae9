// Package render formats stub text for the terminal.
package render

import (
	"io"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/mattn/go-isatty"
)

// DefaultTheme is the Chroma style used when none is configured
const DefaultTheme = "monokai"

// Highlight returns stub text with ANSI colours for the Python lexer.
// Any lexer or formatter failure returns the text unchanged.
func Highlight(text, theme string) string {
	lex := lexers.Get("python")
	if lex == nil {
		return text
	}
	lex = chroma.Coalesce(lex)

	if theme == "" {
		theme = DefaultTheme
	}
	sty := styles.Get(theme)

	fmtr := formatters.Get("terminal256")
	if fmtr == nil {
		fmtr = formatters.Fallback
	}

	it, err := lex.Tokenise(nil, text)
	if err != nil {
		return text
	}
	var buf strings.Builder
	if err := fmtr.Format(&buf, sty, it); err != nil {
		return text
	}
	return buf.String()
}

// IsTerminal reports whether w is a TTY. Anything that is not an *os.File
// counts as not a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
