package check

import (
	"testing"

	"github.com/vamos-lang/vamosc/internal/index"
	"github.com/vamos-lang/vamosc/internal/lex"
	"github.com/vamos-lang/vamosc/internal/parser"
	"github.com/vamos-lang/vamosc/internal/sym"
	"github.com/vamos-lang/vamosc/internal/verr"
	"github.com/vamos-lang/vamosc/internal/vlog"
)

func build(t *testing.T, src string) (*index.Index, *sym.Env, error) {
	t.Helper()
	env := sym.New(lex.Keywords)
	prog, err := parser.Parse("t.vamos", src, env)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	idx := index.Build(prog)
	return idx, env, Check(prog, env, idx, vlog.Root)
}

const okProgram = `
components {
	stream type S {
		event A(x: int)
	}
}
event sources {
	source s1 : S via stdin
}
arbiter {
	rule set r {
		on s1 : A(x) emit S(x: x);
	}
}
monitor {
	on s1 : A(x) emit S(x: x);
}
`

func TestCheckAcceptsWellFormedProgram(t *testing.T) {
	_, env, err := build(t, okProgram)
	if err != nil {
		t.Fatalf("unexpected check error: %v", err)
	}
	if env.ArbiterOutputType != "S" {
		t.Fatalf("expected arbiter output type S, got %q", env.ArbiterOutputType)
	}
}

func TestCheckRejectsUnknownStreamType(t *testing.T) {
	src := `
components {
	stream type S {
		event A(x: int)
	}
}
event sources {
	source s1 : Missing via stdin
}
arbiter {
}
monitor {
}
`
	_, _, err := build(t, src)
	if err == nil {
		t.Fatal("expected an error")
	}
	ve, ok := verr.As(err)
	if !ok || ve.Kind() != "unknown-reference" {
		t.Fatalf("expected unknown-reference error, got %v", err)
	}
}

func TestCheckRejectsFieldCountMismatch(t *testing.T) {
	src := `
components {
	stream type S {
		event A(x: int, y: int)
	}
}
event sources {
	source s1 : S via stdin
}
arbiter {
	rule set r {
		on s1 : A(x) emit S(x: x, y: x);
	}
}
monitor {
}
`
	_, _, err := build(t, src)
	if err == nil {
		t.Fatal("expected a shape error")
	}
	ve, ok := verr.As(err)
	if !ok || ve.Kind() != "shape" {
		t.Fatalf("expected shape error, got %v", err)
	}
}

func TestCheckRejectsRuleSetChooserOverlap(t *testing.T) {
	src := `
components {
	stream type S {
		event A(x: int)
	}
	buffer group g1 = { s1, s2 } order by head.x asc
	buffer group g2 = { s2, s3 } order by head.x asc
}
event sources {
	source s1 : S via stdin
	source s2 : S via stdin
	source s3 : S via stdin
}
arbiter {
	rule set main {
		choose first 1 from g1: on $0 : A(x) emit A(x: x);
		choose first 1 from g2: on $0 : A(x) emit A(x: x);
	}
}
monitor {
}
`
	_, _, err := build(t, src)
	if err == nil {
		t.Fatal("expected an error: s2 appears in both g1 and g2 within rule set main")
	}
	ve, ok := verr.As(err)
	if !ok || ve.Kind() != "shape" {
		t.Fatalf("expected shape error, got %v", err)
	}
}

func TestCheckAcceptsChoosersFromDisjointGroups(t *testing.T) {
	src := `
components {
	stream type S {
		event A(x: int)
	}
	buffer group g1 = { s1, s2 } order by head.x asc
	buffer group g2 = { s3, s4 } order by head.x asc
}
event sources {
	source s1 : S via stdin
	source s2 : S via stdin
	source s3 : S via stdin
	source s4 : S via stdin
}
arbiter {
	rule set main {
		choose first 1 from g1: on $0 : A(x) emit A(x: x);
		choose first 1 from g2: on $0 : A(x) emit A(x: x);
	}
}
monitor {
}
`
	_, _, err := build(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckRejectsAmbiguousArbiterOutput(t *testing.T) {
	src := `
components {
	stream type S {
		event A(x: int)
	}
	stream type T {
		event B(y: int)
	}
}
event sources {
	source s1 : S via stdin
	source s2 : T via stdin
}
arbiter {
	rule set r {
		on s1 : A(x) emit S(x: x);
		on s2 : B(y) emit T(y: y);
	}
}
monitor {
}
`
	_, _, err := build(t, src)
	if err == nil {
		t.Fatal("expected ambiguous arbiter output error")
	}
	ve, ok := verr.As(err)
	if !ok || ve.Kind() != "ambiguous-arbiter-output" {
		t.Fatalf("expected ambiguous-arbiter-output error, got %v", err)
	}
}
