package emittessla

import (
	"strings"
	"testing"

	"github.com/vamos-lang/vamosc/internal/index"
	"github.com/vamos-lang/vamosc/internal/lex"
	"github.com/vamos-lang/vamosc/internal/parser"
	"github.com/vamos-lang/vamosc/internal/sym"
)

const program = `
components {
	stream type Reading {
		event Temp(value: float)
	}
}
event sources {
	source s1 : Reading via stdin
}
arbiter {
	rule set main {
		on s1 : Temp(v) emit Reading(value: v);
	}
}
monitor {
}
`

func TestHeaderIncludesArbiterOutputType(t *testing.T) {
	env := sym.New(lex.Keywords)
	prog, err := parser.Parse("t.vamos", program, env)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	idx := index.Build(prog)
	env.ArbiterOutputType = "Reading"
	h := string(Header(env, idx))
	if !strings.Contains(h, "Reading_event_t") {
		t.Fatalf("expected header to declare Reading_event_t, got:\n%s", h)
	}
}

func TestMergeSourceReplacesPreviousGeneratedBlock(t *testing.T) {
	first := MergeSource("hand written\n", "glue v1")
	if !strings.Contains(first, "glue v1") || !strings.Contains(first, "hand written") {
		t.Fatalf("unexpected first merge: %q", first)
	}
	second := MergeSource(first, "glue v2")
	if strings.Contains(second, "glue v1") {
		t.Fatalf("expected old generated block to be replaced: %q", second)
	}
	if !strings.Contains(second, "glue v2") || !strings.Contains(second, "hand written") {
		t.Fatalf("unexpected second merge: %q", second)
	}
}
