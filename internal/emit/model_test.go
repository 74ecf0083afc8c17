package emit

import (
	"strings"
	"testing"
)

func TestRenderOrdersByDependency(t *testing.T) {
	m := &Model{Preamble: "#include <stdio.h>\n"}
	m.Add("main", "int main() {}", "helpers")
	m.Add("helpers", "void helper() {}", "types")
	m.Add("types", "struct S {};")

	out, err := Render(m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := string(out)
	typesAt := strings.Index(s, "struct S")
	helpersAt := strings.Index(s, "void helper")
	mainAt := strings.Index(s, "int main")
	if !(typesAt < helpersAt && helpersAt < mainAt) {
		t.Fatalf("expected types before helpers before main, got:\n%s", s)
	}
}

func TestRenderDetectsCycle(t *testing.T) {
	m := &Model{}
	m.Add("a", "A", "b")
	m.Add("b", "B", "a")
	if _, err := Render(m); err == nil {
		t.Fatal("expected a cycle error")
	}
}

func TestRenderPreservesSourceOrderForUnrelatedSections(t *testing.T) {
	m := &Model{}
	m.Add("first", "F")
	m.Add("second", "S")
	out, _ := Render(m)
	s := string(out)
	if strings.Index(s, "F") > strings.Index(s, "S") {
		t.Fatalf("expected source order preserved, got:\n%s", s)
	}
}
