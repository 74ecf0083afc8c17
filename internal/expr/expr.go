// Package expr embeds github.com/mb0/xelf's expression core as the scalar expression language
// for VAMOS match-rule guards, actions, and buffer-group order expressions (spec.md §4.9).
//
// Rather than hand-roll a second grammar for "x > 3 and y.kind == A", the compiler parses these
// fragments with xelf's reader and resolves operator names (add, sub, eq, and, or, not, if, ...)
// against the same exp.Std/exp.Core builtins the teacher's dom and qry packages use. Field
// references that VAMOS binds from a head pattern (e.g. "x" bound from `A(x)`) are modeled as
// typed-but-unresolved symbols: the compiler does not evaluate expressions at compile time (it
// has no values to evaluate against — spec.md Non-goals, "does not perform full type inference"),
// it only resolves the operator tree to check that a fragment parses and its names are in scope.
// The C that internal/emit/cexpr prints is produced from the fragment's tokens, not from this tree.
package expr

import (
	"strings"

	"github.com/mb0/xelf/exp"
	"github.com/mb0/xelf/typ"
	"github.com/pkg/errors"

	"github.com/vamos-lang/vamosc/internal/verr"
)

// Expr is a parsed and operator-resolved expression fragment.
type Expr = exp.El

// Scope provides the names available to an expression fragment, as chosen by the caller: a match
// rule's head-pattern binds, a rewrite rule's input-event field names, or "head" for a buffer
// group's order expression. The compiler does not track
// concrete scalar types for these (spec.md Non-goals), so every name resolves to typ.Any.
type Scope []string

func (s Scope) has(name string) bool {
	for _, n := range s {
		if n == name {
			return true
		}
	}
	return false
}

// boundEnv exposes Scope's names as typed-but-unresolved symbols, the same pattern the teacher's
// dom.ModelEnv/dom.SchemaEnv use for previously declared fields (dom/env.go modelElem).
type boundEnv struct {
	parent exp.Env
	scope  Scope
}

func (b *boundEnv) Parent() exp.Env      { return b.parent }
func (b *boundEnv) Supports(x byte) bool { return false }
func (b *boundEnv) Def(sym string, r exp.Resolver) error { return exp.ErrNoDefEnv }
func (b *boundEnv) Get(sym string) exp.Resolver {
	if b.scope.has(sym) {
		return exp.TypedUnresolver{typ.Any}
	}
	return nil
}

// Builtin is the operator environment every fragment resolves against: xelf's core arithmetic,
// comparison, and boolean operators, the same set the teacher wires into dom.Env and qry.Builtin.
var Builtin exp.Env = exp.Builtin{exp.Std, exp.Core}

// Parse reads src as a single xelf expression and resolves its operators (but not its free
// variables, which remain Scope references) against Builtin. pos is used only for diagnostics.
func Parse(src string, scope Scope, pos verr.Pos) (Expr, error) {
	x, err := exp.Read(strings.NewReader(src))
	if err != nil {
		return nil, verr.Wrap(err, "%s: parse expression %q", pos, src)
	}
	env := &boundEnv{parent: Builtin, scope: scope}
	c := exp.NewCtx()
	x, err = c.Resl(env, x, typ.Void)
	if err != nil && errors.Cause(err) != exp.ErrUnres {
		return nil, verr.Wrap(err, "%s: resolve expression %q", pos, src)
	}
	return x, nil
}

// ParseInfix parses src as VAMOS's concrete infix expression syntax (the only form guard/action/
// order expressions are ever written in) by first rewriting it to xelf's prefix syntax, then
// handing it to Parse. tokens is the expression's already-tokenized, space-joined text as produced
// by internal/parser's exprUntil.
func ParseInfix(tokens []string, raw string, scope Scope, pos verr.Pos) (Expr, error) {
	prefix, err := infixToPrefix(tokens, raw, pos)
	if err != nil {
		return nil, err
	}
	return Parse(prefix, scope, pos)
}
