// Package emittessla is VAMOS's secondary backend, selected by --with-tessla (spec.md §4.10,
// "DOMAIN STACK" expansion). Where internal/emit/emitc emits one self-contained C file, this
// backend instead emits a small C interface header (the arbiter-output event struct and a
// callback registration function) plus generated glue appended into a companion, otherwise
// hand-maintained source file, so a TeSSLa stream-runtime interop layer can subscribe to arbiter
// output without vamosc owning that file outright. The append/replace dance is the teacher's own
// gen/genpg split (a second backend reusing the first's checked program, not its printer) plus
// mig/include.go's strip-then-append marker convention, now wired through internal/buildmanifest.
package emittessla

import (
	"fmt"
	"strings"

	"github.com/vamos-lang/vamosc/internal/ast"
	"github.com/vamos-lang/vamosc/internal/buildmanifest"
	"github.com/vamos-lang/vamosc/internal/index"
	"github.com/vamos-lang/vamosc/internal/sym"
)

// Header renders the C interface header TeSSLa's companion Rust source binds against: the
// arbiter's output event struct plus an extern registration hook.
func Header(env *sym.Env, idx *index.Index) []byte {
	st := idx.StreamType(env.ArbiterOutputType)
	var b strings.Builder
	b.WriteString("/* generated by vamosc --with-tessla; do not edit by hand */\n")
	b.WriteString("#pragma once\n#include <stdint.h>\n#include <stdbool.h>\n\n")
	if st != nil {
		fmt.Fprintf(&b, "typedef union {\n")
		for _, ev := range st.Events {
			fmt.Fprintf(&b, "\tstruct { int kind; } %s;\n", strings.ToLower(ev.Name))
		}
		fmt.Fprintf(&b, "} %s_event_t;\n\n", st.Name)
		fmt.Fprintf(&b, "typedef void (*vamos_tessla_callback_t)(const %s_event_t *ev);\n", st.Name)
		b.WriteString("extern void vamos_tessla_register(vamos_tessla_callback_t cb);\n")
	}
	return []byte(b.String())
}

// MergeSource splices a freshly generated glue block into the companion source file's previous
// contents, replacing any block vamosc itself wrote on an earlier run and leaving the rest of the
// (hand-maintained) file untouched.
func MergeSource(existing string, glue string) string {
	stripped := buildmanifest.StripGenerated(existing)
	if stripped == "" {
		return buildmanifest.WithGenerated(glue)
	}
	return strings.TrimRight(stripped, "\n") + "\n\n" + buildmanifest.WithGenerated(glue)
}

// Glue renders the glue for a program's arbiter output events as `//` comment lines: the output
// stream type's name and each event with its typed fields. It contains no registration code.
func Glue(prog *ast.Program, env *sym.Env, idx *index.Index) string {
	st := idx.StreamType(env.ArbiterOutputType)
	if st == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "// arbiter output stream type: %s\n", st.Name)
	for _, ev := range st.Events {
		fmt.Fprintf(&b, "// event %s(", ev.Name)
		for i, f := range ev.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s: %s", f.Name, f.Type.String())
		}
		b.WriteString(")\n")
	}
	return b.String()
}
