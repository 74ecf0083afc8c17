package parser

import (
	"strings"
	"testing"

	"github.com/vamos-lang/vamosc/internal/lex"
	"github.com/vamos-lang/vamosc/internal/sym"
	"github.com/vamos-lang/vamosc/internal/verr"
)

const minimalProgram = `
components {
	stream type Reading {
		event Temp(value: float, ts: int)
	}
	buffer group g = { s1 } order by head.ts asc
}
event sources {
	source s1 : Reading via stdin
}
arbiter {
	rule set main {
		on s1 : Temp(v, t) emit Reading(value: v, ts: t) drop s1 1;
	}
}
monitor {
	on s1 : Temp(v, t) emit Reading(value: v, ts: t);
}
`

func TestParseMinimalProgram(t *testing.T) {
	env := sym.New(lex.Keywords)
	prog, err := Parse("t.vamos", minimalProgram, env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prog.Components) != 2 {
		t.Fatalf("expected 2 components, got %d", len(prog.Components))
	}
	if len(prog.EventSources) != 1 || prog.EventSources[0].InstanceName != "s1" {
		t.Fatalf("unexpected event sources: %+v", prog.EventSources)
	}
	if len(prog.Arbiter.RuleSets) != 1 || len(prog.Arbiter.RuleSets[0].Rules) != 1 {
		t.Fatalf("unexpected arbiter shape: %+v", prog.Arbiter)
	}
	if len(prog.Monitor.Rules) != 1 {
		t.Fatalf("unexpected monitor shape: %+v", prog.Monitor)
	}
	if env.EventsToKinds["Temp"] != 1 {
		t.Fatalf("expected Temp assigned kind 1, got %d", env.EventsToKinds["Temp"])
	}
}

func TestParseRejectsReservedIdentifier(t *testing.T) {
	src := strings.Replace(minimalProgram, "Reading", "stream", -1)
	env := sym.New(lex.Keywords)
	_, err := Parse("t.vamos", src, env)
	if err == nil {
		t.Fatal("expected error for reserved identifier")
	}
	ve, ok := verr.As(err)
	if !ok {
		t.Fatalf("expected a verr.Error, got %T: %v", err, err)
	}
	if ve.Kind() != "reserved-name" && ve.Kind() != "syntax" {
		t.Fatalf("unexpected error kind %q", ve.Kind())
	}
}

func TestParseRejectsDuplicateDeclaration(t *testing.T) {
	src := `
components {
	stream type A {
		event E(x: int)
	}
	stream type A {
		event F(y: int)
	}
}
event sources {
}
arbiter {
}
monitor {
}
`
	env := sym.New(lex.Keywords)
	_, err := Parse("t.vamos", src, env)
	if err == nil {
		t.Fatal("expected redeclaration error")
	}
	ve, ok := verr.As(err)
	if !ok || ve.Kind() != "redeclaration" {
		t.Fatalf("expected redeclaration error, got %v", err)
	}
}

func TestParseMalformedSyntax(t *testing.T) {
	src := `
components {
	stream type A {
		event E(x int)
	}
}
event sources {
}
arbiter {
}
monitor {
}
`
	env := sym.New(lex.Keywords)
	_, err := Parse("t.vamos", src, env)
	if err == nil {
		t.Fatal("expected syntax error for missing ':' in field")
	}
	ve, ok := verr.As(err)
	if !ok || ve.Kind() != "syntax" {
		t.Fatalf("expected syntax error, got %v", err)
	}
}

func TestParseChooserAndGuard(t *testing.T) {
	src := `
components {
	stream type S {
		event A(x: int)
	}
	buffer group g = { s1, s2 } order by head.x desc
}
event sources {
	source s1 : S via stdin
	source s2 : S via stdin
}
arbiter {
	rule set r {
		choose first 2 from g matching x > 0: on $0 : A(x) where x > 1 emit S(x: x);
	}
}
monitor {
}
`
	env := sym.New(lex.Keywords)
	prog, err := Parse("t.vamos", src, env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rule := prog.Arbiter.RuleSets[0].Rules[0]
	if rule.Chooser == nil || rule.Chooser.N != 2 || rule.Chooser.Group != "g" {
		t.Fatalf("unexpected chooser: %+v", rule.Chooser)
	}
	if rule.Guard == nil {
		t.Fatal("expected a guard expression")
	}
}
