package stubs

import (
	"reflect"
	"testing"
)

func kinds(matches []Match) []Kind {
	var out []Kind
	for _, m := range matches {
		out = append(out, m.Kind)
	}
	return out
}

func TestClassifyKinds(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []Kind
	}{
		{"function", "int hello(Human human)", []Kind{KindFunction}},
		{"function with body brace", "void run(int n) {", []Kind{KindFunction}},
		{"class", "class Foo {", []Kind{KindClass}},
		{"forward class falls through", "class Foo;", []Kind{KindClass, KindVariable}},
		{"variable", "int count;", []Kind{KindVariable}},
		{"pointer variable", "char *name;", []Kind{KindVariable}},
		{"array", "int values[10];", []Kind{KindArray}},
		{"array without semicolon", "double grid [3]", []Kind{KindArray}},
		{"comment", "// nothing here", nil},
		{"brace only", "}", nil},
		{"empty params", "int main()", nil},
		{"default value", "int f(int a = 1)", nil},
		{"reference parameter", "void f(Human &h)", nil},
		{"classify is not a class", "int classify;", []Kind{KindVariable}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := kinds(Classify(tt.line))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Classify(%q) kinds = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

func TestClassifyFallThrough(t *testing.T) {
	// Class, variable and array all fire on the same line
	matches := Classify("class Grid { int cells[4]; int size; };")

	got := kinds(matches)
	want := []Kind{KindClass, KindVariable, KindArray}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Expected kinds %v, got %v", want, got)
	}
	if matches[1].Name != "size" || matches[1].Type != "int" {
		t.Errorf("Unexpected variable match: %+v", matches[1])
	}
	if matches[2].Name != "cells" || matches[2].Type != "int" {
		t.Errorf("Unexpected array match: %+v", matches[2])
	}
}

func TestClassifyFunctionFields(t *testing.T) {
	matches := Classify("int add(int a, int *b)")
	if len(matches) != 1 {
		t.Fatalf("Expected 1 match, got %d", len(matches))
	}

	m := matches[0]
	if m.Type != "int" || m.Name != "add" || m.Params != "(int a, int *b)" {
		t.Errorf("Unexpected function match: %+v", m)
	}
}

func TestKnownClasses(t *testing.T) {
	code := `
class Human {
};
class Robot{ };
class Forward;
class
Split
{
};
`
	known := KnownClasses(code)

	for _, name := range []string{"Human", "Robot", "Split"} {
		if _, ok := known[name]; !ok {
			t.Errorf("Expected %q in known classes", name)
		}
	}
	if _, ok := known["Forward"]; ok {
		t.Error("Forward declaration should not be a known class")
	}
}

func TestKindString(t *testing.T) {
	if KindArray.String() != "array" || Kind(42).String() != "unknown" {
		t.Errorf("Unexpected kind names: %s, %s", KindArray, Kind(42))
	}
}
