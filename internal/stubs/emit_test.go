package stubs

import (
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/x/exp/golden"
)

const sampleSource = `#include <stdio.h>

class Human {
public:
    char name;
    unsigned long age;
};

class Shape {
    double area;
    float *points[4];
};

void hello(Human human) {
    int count;
    int values[10];
}

int add(int a, int *b)
`

func emit(t *testing.T, code string, opts Options) *Result {
	t.Helper()
	res, err := NewEmitter(opts).Emit(code)
	if err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	return res
}

func TestEmitGolden(t *testing.T) {
	res := emit(t, sampleSource, Options{})
	golden.RequireEqual(t, []byte(res.Stub))
}

func TestEmitNoConstructs(t *testing.T) {
	for _, code := range []string{"", "// comment only\n", "#include <vector>\n\n"} {
		res := emit(t, code, Options{})
		if res.Stub != Preamble {
			t.Errorf("Expected bare preamble for %q, got:\n%s", code, res.Stub)
		}
		if len(res.Declarations) != 0 {
			t.Errorf("Expected no declarations for %q, got %d", code, len(res.Declarations))
		}
	}
}

func TestEmitClassBlock(t *testing.T) {
	res := emit(t, "class Foo {", Options{})

	want := Preamble + "class Foo:\n    ...\n"
	if res.Stub != want {
		t.Errorf("Unexpected stub:\n%q\nwant:\n%q", res.Stub, want)
	}
	if len(res.Classes) != 1 || res.Classes[0] != "Foo" {
		t.Errorf("Expected known classes [Foo], got %v", res.Classes)
	}
}

func TestEmitScalarIndent(t *testing.T) {
	res := emit(t, "int count;", Options{})
	if !strings.HasSuffix(res.Stub, "\ncount: int\n") {
		t.Errorf("Expected top-level count, got:\n%s", res.Stub)
	}

	res = emit(t, "struct Counter {\nint count;\n", Options{})
	if !strings.HasSuffix(res.Stub, "\n    count: int\n") {
		t.Errorf("Expected count indented one unit, got:\n%s", res.Stub)
	}
}

func TestEmitFunctionWithKnownClass(t *testing.T) {
	code := "class Human {\n};\nint hello(Human human)\nint count;\n"
	res := emit(t, code, Options{})

	want := "def hello(human: Human) -> int: ...\n\ncount: int\n"
	if !strings.HasSuffix(res.Stub, want) {
		t.Errorf("Expected suffix %q, got:\n%s", want, res.Stub)
	}
}

func TestEmitFunctionLineNeverIndents(t *testing.T) {
	res := emit(t, "int run(int n) {\nint x;\n}\nint y;\n", Options{})

	if !strings.Contains(res.Stub, "\nx: int\n") {
		t.Errorf("Expected x at zero indent, got:\n%s", res.Stub)
	}
	if !strings.HasSuffix(res.Stub, "\ny: int\n") {
		t.Errorf("Expected y at zero indent, got:\n%s", res.Stub)
	}
}

func TestEmitDeclarationDepthBeforeBrace(t *testing.T) {
	code := "class Outer {\nclass Inner {\nint depth;\n};\n};\nint after;\n"
	res := emit(t, code, Options{})

	want := "class Outer:\n    ...\n    class Inner:\n        ...\n        depth: int\nafter: int\n"
	if !strings.HasSuffix(res.Stub, want) {
		t.Errorf("Unexpected nesting:\n%s\nwant suffix:\n%s", res.Stub, want)
	}
}

func TestEmitIndentFloor(t *testing.T) {
	res := emit(t, "}\n}\nint top;\n", Options{})
	if !strings.HasSuffix(res.Stub, "\ntop: int\n") {
		t.Errorf("Indent should never go below zero, got:\n%s", res.Stub)
	}
}

func TestEmitArray(t *testing.T) {
	res := emit(t, "int values[10];", Options{})
	if !strings.Contains(res.Stub, "values: _MutableCollection[int]\n") {
		t.Errorf("Expected array annotation, got:\n%s", res.Stub)
	}
}

func TestEmitParamSeparator(t *testing.T) {
	res := emit(t, "long add(int a, double *b)", Options{})
	if !strings.Contains(res.Stub, "def add(a: int, b: float) -> int: ...\n\n") {
		t.Errorf("Expected comma-separated params, got:\n%s", res.Stub)
	}
}

func TestEmitLegacyParams(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{"multi-parameter function skipped", "long add(int a, double *b)\n", Preamble},
		{"single parameter still stubbed", "int twice(int n)\n", Preamble + "def twice(n: int) -> int: ...\n\n"},
		{"call with two arguments ignored", "int x;\nint f(int a)\n    return max(a, b);\n",
			Preamble + "x: int\ndef f(a: int) -> int: ...\n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := emit(t, tt.code, Options{LegacyParams: true})
			if res.Stub != tt.want {
				t.Errorf("Unexpected stub:\n%q\nwant:\n%q", res.Stub, tt.want)
			}
		})
	}
}

func TestEmitCallWithSeveralArguments(t *testing.T) {
	code := "int x;\nint f(int a)\n    return max(a, b);\n"

	_, err := NewEmitter(Options{}).Emit(code)
	if !errors.Is(err, ErrMalformedParameter) {
		t.Fatalf("Expected ErrMalformedParameter, got %v", err)
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Errorf("Expected line 3 in error, got %v", err)
	}
}

func TestRenderParamsStripsSigils(t *testing.T) {
	known := map[string]struct{}{"Human": {}}
	e := NewEmitter(Options{})

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"reference on name", "(Human &h)", "h: Human"},
		{"reference on type", "(Human& h)", "h: Human"},
		{"primitive reference", "(int &n)", "n: int"},
		{"pointer and reference", "(double *&v)", "v: float"},
		{"pointer on type", "(char* s, int n)", "s: str, n: int"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.renderParams(tt.raw, known)
			if err != nil {
				t.Fatalf("renderParams(%q) failed: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("renderParams(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestEmitVoidReturn(t *testing.T) {
	res := emit(t, "void reset(Widget *w)", Options{})
	if !strings.Contains(res.Stub, "def reset(w: typing.Any) -> None: ...") {
		t.Errorf("Expected None return and Any param, got:\n%s", res.Stub)
	}
}

func TestEmitMalformedParameter(t *testing.T) {
	_, err := NewEmitter(Options{}).Emit("int x;\nint main(void)\n")
	if err == nil {
		t.Fatal("Expected error for parameter without a name")
	}
	if !errors.Is(err, ErrMalformedParameter) {
		t.Errorf("Expected ErrMalformedParameter, got %v", err)
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("Expected line number in error, got %v", err)
	}
}

func TestEmitIdempotent(t *testing.T) {
	first := emit(t, sampleSource, Options{})
	second := emit(t, sampleSource, Options{})
	if first.Stub != second.Stub {
		t.Error("Emitting the same source twice produced different stubs")
	}
}

func TestEmitDeclarations(t *testing.T) {
	res := emit(t, sampleSource, Options{})

	byName := make(map[string]string)
	for _, d := range res.Declarations {
		byName[d.Name] = d.Kind + ":" + d.Type
	}

	tests := map[string]string{
		"Human":  "class:",
		"name":   "variable:str",
		"hello":  "function:None",
		"values": "array:_MutableCollection[int]",
		"add":    "function:int",
	}
	for name, want := range tests {
		if got := byName[name]; got != want {
			t.Errorf("Declaration %s = %q, want %q", name, got, want)
		}
	}
}

func TestReturnToken(t *testing.T) {
	tests := map[string]string{
		"int":           "int",
		"*char":         "char",
		"unsigned int":  "int",
		"long double":   "double",
		"unsigned long": "long",
		"longest":       "longest",
	}
	for in, want := range tests {
		if got := returnToken(in); got != want {
			t.Errorf("returnToken(%q) = %q, want %q", in, got, want)
		}
	}
}
