// Package cexpr prints a VAMOS guard/action/order expression fragment as a C expression.
//
// VAMOS's concrete expression syntax is already infix (spec.md §4.9), so printing as C is close to
// the identity transform: the work here is token substitution (VAMOS's word operators and dotted
// field access become C's && / || / ! / -> ) rather than the prefix-tree walk a Lisp-shaped source
// language would need. Structural validity (balanced parens, a well-formed operator tree) is
// instead checked once up front during semantic analysis by internal/expr.ParseInfix, which
// resolves the same fragment against xelf's operator environment; cexpr only runs on fragments that
// have already passed that check (mirrors the teacher's own split between qry's expression
// validation and gen/genpg's pure text emission).
package cexpr

import "strings"

var wordOps = map[string]string{
	"and": "&&",
	"or":  "||",
	"not": "!",
}

// Render translates a tokenized VAMOS expression fragment (as produced by internal/parser's
// exprUntil, i.e. already whitespace-normalized) into C source text.
func Render(tokens []string) string {
	return RenderScoped(tokens, nil)
}

// RenderScoped is Render with an extra substitution table: a token found verbatim in subst is
// replaced by its mapped C text outright, bypassing the word-op and dot-to-arrow rules below (the
// replacement text is expected to already be valid C). This is how internal/emit/emitc binds a
// bound field name (e.g. a stream-processor rule's "v") to the C expression that actually reaches
// it at emission time (e.g. "raw->tag.v"), without teaching cexpr anything about event structs.
func RenderScoped(tokens []string, subst map[string]string) string {
	var b strings.Builder
	for i, t := range tokens {
		if rep, ok := subst[t]; ok {
			t = rep
		} else if rep, ok := wordOps[t]; ok {
			t = rep
		} else if strings.Contains(t, ".") && !isNumber(t) {
			t = strings.ReplaceAll(t, ".", "->")
		}
		if i > 0 {
			prev := tokens[i-1]
			// no space between a unary '!' and its operand
			if !(prev == "not") {
				b.WriteByte(' ')
			}
		}
		b.WriteString(t)
	}
	return b.String()
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	return true
}

// Tokens splits exprUntil's single-space-joined text back into tokens for Render. exprUntil never
// emits runs of internal whitespace other than the single separators it inserts, so a plain Fields
// split round-trips exactly.
func Tokens(src string) []string {
	return strings.Fields(src)
}
