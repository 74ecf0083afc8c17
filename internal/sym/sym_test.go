package sym

import (
	"testing"

	"github.com/vamos-lang/vamosc/internal/ast"
	"github.com/vamos-lang/vamosc/internal/lex"
	"github.com/vamos-lang/vamosc/internal/verr"
)

func TestKindIdsContiguousAndHoleReserved(t *testing.T) {
	e := New(lex.Keywords)
	st := &ast.StreamType{Name: "S", Events: []*ast.EventDecl{
		{Name: "A"}, {Name: "B"}, {Name: "C"},
	}}
	e.RegisterStreamType(st)
	if e.EventsToKinds["hole"] != HoleKind {
		t.Fatalf("hole kind = %d, want %d", e.EventsToKinds["hole"], HoleKind)
	}
	order := e.KindsInOrder()
	if len(order) != 3 || order[0] != "A" || order[1] != "B" || order[2] != "C" {
		t.Fatalf("unexpected kind order: %v", order)
	}
	for i, name := range order {
		if e.EventsToKinds[name] != i+1 {
			t.Fatalf("kind %s = %d, want %d", name, e.EventsToKinds[name], i+1)
		}
	}
}

func TestDeclareRejectsReservedAndDuplicate(t *testing.T) {
	e := New(lex.Keywords)
	pos := verr.Pos{File: "t", Line: 1, Col: 1}
	if err := e.Declare(pos, "event_source", "stream"); err == nil {
		t.Fatal("expected reserved-name error")
	}
	if err := e.Declare(pos, "event_source", "a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := e.Declare(pos, "event_source", "a"); err == nil {
		t.Fatal("expected redeclaration error")
	}
	if err := e.Declare(pos, "stream_type", "a"); err != nil {
		t.Fatalf("same name in a different namespace should be fine: %v", err)
	}
}

func TestRegisterEventSourceTracksExistingBuffers(t *testing.T) {
	e := New(lex.Keywords)
	src := &ast.EventSourceDecl{InstanceName: "s1", StreamType: "S"}
	e.RegisterEventSource(src)
	if !e.ExistingBuffers["s1"] {
		t.Fatal("expected s1 in existing buffers")
	}
	if e.StreamTypes["s1"].Input != "S" || e.StreamTypes["s1"].Output != "S" {
		t.Fatalf("unexpected stream types: %+v", e.StreamTypes["s1"])
	}
}
