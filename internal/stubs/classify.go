package stubs

import (
	"regexp"
	"sort"
)

// Kind tags the declaration a line matcher recognised
type Kind int

const (
	KindFunction Kind = iota
	KindClass
	KindVariable
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindClass:
		return "class"
	case KindVariable:
		return "variable"
	case KindArray:
		return "array"
	}
	return "unknown"
}

// Match is one declaration found on a source line
type Match struct {
	Kind   Kind
	Name   string
	Type   string // raw type token; the return type for functions
	Params string // raw parameter list with parens, functions only
	Line   int
}

// C/C++ line patterns
var (
	cppFunctionDecl = regexp.MustCompile(`(\w+) (\w+)(\([\w*\s\[\],]+\))`)
	cppClassDecl    = regexp.MustCompile(`\bclass\s+(\w+)`)
	cppVarDecl      = regexp.MustCompile(`(\w+)\s+[*&]*(\w+);`)
	cppArrayDecl    = regexp.MustCompile(`(\w+)\s+[*&]*(\w+)\s*\[\s*.*\s*\]`)

	// No comma in the parameter list, so only single-parameter functions match
	cppFunctionDeclLegacy = regexp.MustCompile(`(\w+) (\w+)(\([\w*\s\[\]]+\))`)

	// Applied to the whole text, not per line
	cppClassBlock = regexp.MustCompile(`\bclass\s+(\w+)\s*\{`)
)

type lineMatcher struct {
	kind    Kind
	pattern *regexp.Regexp
	build   func(m []string) Match
}

// lineMatchers run in this order on every line. A line may satisfy several.
var lineMatchers = []lineMatcher{
	{
		kind:    KindFunction,
		pattern: cppFunctionDecl,
		build: func(m []string) Match {
			return Match{Type: m[1], Name: m[2], Params: m[3]}
		},
	},
	{
		kind:    KindClass,
		pattern: cppClassDecl,
		build: func(m []string) Match {
			return Match{Name: m[1]}
		},
	},
	{
		kind:    KindVariable,
		pattern: cppVarDecl,
		build: func(m []string) Match {
			return Match{Type: m[1], Name: m[2]}
		},
	},
	{
		kind:    KindArray,
		pattern: cppArrayDecl,
		build: func(m []string) Match {
			return Match{Type: m[1], Name: m[2]}
		},
	},
}

// legacyLineMatchers swaps in the comma-free function pattern
var legacyLineMatchers = func() []lineMatcher {
	matchers := append([]lineMatcher(nil), lineMatchers...)
	matchers[0].pattern = cppFunctionDeclLegacy
	return matchers
}()

// Classify returns every declaration recognised on line, in matcher order.
// An empty result means the line is ignored.
func Classify(line string) []Match {
	return classify(lineMatchers, line)
}

func classify(matchers []lineMatcher, line string) []Match {
	var matches []Match
	for _, lm := range matchers {
		if m := lm.pattern.FindStringSubmatch(line); m != nil {
			match := lm.build(m)
			match.Kind = lm.kind
			matches = append(matches, match)
		}
	}
	return matches
}

// KnownClasses collects every class name directly followed by an opening brace
func KnownClasses(code string) map[string]struct{} {
	known := make(map[string]struct{})
	for _, m := range cppClassBlock.FindAllStringSubmatch(code, -1) {
		known[m[1]] = struct{}{}
	}
	return known
}

func sortedNames(set map[string]struct{}) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
