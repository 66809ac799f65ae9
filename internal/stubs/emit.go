package stubs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/saeedalam/stubgen/pkg/types"
)

// IndentUnit is the number of spaces per nesting level in the stub
const IndentUnit = 4

// Preamble opens every stub file. _MutableCollection types raw arrays.
const Preamble = "import typing\n" +
	"\n" +
	"T = typing.TypeVar('T')\n" +
	"\n" +
	"\n" +
	"class _MutableCollection(typing.Collection[T]):  # this is made to type arrays\n" +
	"    def __getitem__(self, index: int) -> T: ...\n" +
	"    def __setitem__(self, index: int, value: T) -> None: ...\n" +
	"    def __delitem__(self, index: int) -> None: ...\n" +
	"\n" +
	"# typing for C++ below\n" +
	"\n"

// ErrMalformedParameter is returned when a function parameter does not split
// into exactly a type and a name. It aborts the whole file.
var ErrMalformedParameter = errors.New("malformed parameter")

var pointerOrAddress = strings.NewReplacer("*", "", "&", "")

// Options tunes stub rendering
type Options struct {
	// LegacyParams restores the earlier function pattern, whose parameter
	// list may not contain commas. Functions with several parameters and
	// calls with several arguments are skipped instead of stubbed or
	// rejected. Parameters are joined with no separator.
	LegacyParams bool
}

// Result is the outcome of emitting one source text
type Result struct {
	Source       string
	StubPath     string
	ContentHash  string
	Stub         string
	Classes      []string
	Declarations []types.Declaration
}

// Emitter turns C/C++ source text into stub text. It holds no per-run state
// and is safe for concurrent use.
type Emitter struct {
	opts     Options
	matchers []lineMatcher
}

// NewEmitter creates an emitter with the given options
func NewEmitter(opts Options) *Emitter {
	matchers := lineMatchers
	if opts.LegacyParams {
		matchers = legacyLineMatchers
	}
	return &Emitter{opts: opts, matchers: matchers}
}

// Emit classifies code line by line and renders the stub.
func (e *Emitter) Emit(code string) (*Result, error) {
	known := KnownClasses(code)

	var b strings.Builder
	b.Grow(len(Preamble) + len(code)/2)
	b.WriteString(Preamble)

	res := &Result{Classes: sortedNames(known)}
	level := 0

	for lineNum, line := range strings.Split(code, "\n") {
		lineNo := lineNum + 1
		isFunction := false

		for _, m := range classify(e.matchers, line) {
			m.Line = lineNo
			decl, err := e.writeMatch(&b, m, known, level)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			res.Declarations = append(res.Declarations, decl)
			if m.Kind == KindFunction {
				isFunction = true
			}
		}

		// A function line is a one-line stub and never opens a scope
		if isFunction {
			continue
		}
		if strings.Contains(line, "{") {
			level += IndentUnit
		}
		if strings.Contains(line, "}") && level >= IndentUnit {
			level -= IndentUnit
		}
	}

	res.Stub = b.String()
	return res, nil
}

func (e *Emitter) writeMatch(b *strings.Builder, m Match, known map[string]struct{}, level int) (types.Declaration, error) {
	pad := strings.Repeat(" ", level)
	decl := types.Declaration{
		Kind: m.Kind.String(),
		Name: m.Name,
		Line: m.Line,
	}

	switch m.Kind {
	case KindFunction:
		params, err := e.renderParams(m.Params, known)
		if err != nil {
			return decl, err
		}
		decl.Type = Resolve(returnToken(m.Type), known)
		fmt.Fprintf(b, "%sdef %s(%s) -> %s: ...\n\n", pad, m.Name, params, decl.Type)
	case KindClass:
		fmt.Fprintf(b, "%sclass %s:\n%s...\n", pad, m.Name, strings.Repeat(" ", level+IndentUnit))
	case KindVariable:
		decl.Type = Resolve(m.Type, known)
		fmt.Fprintf(b, "%s%s: %s\n", pad, m.Name, decl.Type)
	case KindArray:
		decl.Type = "_MutableCollection[" + Resolve(m.Type, known) + "]"
		fmt.Fprintf(b, "%s%s: %s\n", pad, m.Name, decl.Type)
	}
	return decl, nil
}

func (e *Emitter) renderParams(raw string, known map[string]struct{}) (string, error) {
	inner := strings.TrimSuffix(strings.TrimPrefix(raw, "("), ")")

	var rendered []string
	for _, param := range strings.Split(inner, ",") {
		param = strings.TrimSpace(param)
		if param == "" {
			continue
		}
		fields := strings.Fields(param)
		if len(fields) != 2 {
			return "", fmt.Errorf("%w: %q", ErrMalformedParameter, param)
		}
		typeToken := pointerOrAddress.Replace(fields[0])
		name := pointerOrAddress.Replace(fields[1])
		rendered = append(rendered, name+": "+Resolve(typeToken, known))
	}

	sep := ", "
	if e.opts.LegacyParams {
		sep = ""
	}
	return strings.Join(rendered, sep), nil
}

// returnToken drops one leading pointer sigil and unsigned/long qualifiers
func returnToken(token string) string {
	token = strings.TrimPrefix(token, "*")
	token = strings.TrimPrefix(token, "unsigned ")
	token = strings.TrimPrefix(token, "long ")
	return token
}
