package index

import (
	"testing"

	"github.com/vamos-lang/vamosc/internal/ast"
)

func TestBuildPartitionsByKindPreservingOrder(t *testing.T) {
	st1 := &ast.StreamType{Name: "A"}
	bg := &ast.BufferGroupDecl{Name: "g"}
	st2 := &ast.StreamType{Name: "B"}
	mf := &ast.MatchFunDecl{Name: "helper"}
	sp := &ast.StreamProcessor{Name: "p"}
	src := &ast.EventSourceDecl{InstanceName: "s1", StreamType: "A"}

	prog := &ast.Program{
		Components:   []ast.Component{st1, bg, st2, mf, sp},
		EventSources: []*ast.EventSourceDecl{src},
	}
	idx := Build(prog)

	if len(idx.StreamTypes) != 2 || idx.StreamTypes[0].Name != "A" || idx.StreamTypes[1].Name != "B" {
		t.Fatalf("unexpected stream types: %+v", idx.StreamTypes)
	}
	if len(idx.BufferGroups) != 1 || idx.BufferGroups[0].Name != "g" {
		t.Fatalf("unexpected buffer groups: %+v", idx.BufferGroups)
	}
	if len(idx.MatchFuns) != 1 || idx.MatchFuns[0].Name != "helper" {
		t.Fatalf("unexpected match funs: %+v", idx.MatchFuns)
	}
	if len(idx.StreamProcessors) != 1 || idx.StreamProcessors[0].Name != "p" {
		t.Fatalf("unexpected stream processors: %+v", idx.StreamProcessors)
	}
	if idx.EventSource("s1") == nil {
		t.Fatal("expected to find event source s1")
	}
	if idx.StreamType("A") != st1 {
		t.Fatal("expected StreamType(A) to return st1")
	}
}

func TestEventKindLookup(t *testing.T) {
	st := &ast.StreamType{Name: "A", Events: []*ast.EventDecl{{Name: "X"}, {Name: "Y"}}}
	if EventKind(st, "Y") == nil {
		t.Fatal("expected to find event Y")
	}
	if EventKind(st, "Z") != nil {
		t.Fatal("expected nil for undeclared event")
	}
}
