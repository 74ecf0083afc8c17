package expr

import (
	"strconv"
	"strings"

	"github.com/vamos-lang/vamosc/internal/verr"
)

// VAMOS's concrete guard/action/order-expression syntax is infix ("x.ts > 0 and not done"), not
// xelf's native prefix s-expression syntax. infixToPrefix rewrites a flat, space-joined token run
// (as produced by internal/parser's exprUntil) into the prefix form exp.Read expects, so the rest
// of this package's machinery — operator resolution against Builtin — applies unchanged. This is
// a small precedence-climbing
// parser over the token text, not a second token stream; it never touches internal/lex.
var precedence = map[string]int{
	"or": 1, "and": 2,
	"==": 3, "!=": 3, "<": 3, "<=": 3, ">": 3, ">=": 3,
	"+": 4, "-": 4,
	"*": 5, "/": 5,
}

var opKey = map[string]string{
	"or": "or", "and": "and",
	"==": "eq", "!=": "ne", "<": "lt", "<=": "le", ">": "gt", ">=": "ge",
	"+": "add", "-": "sub", "*": "mul", "/": "div",
}

type infixParser struct {
	toks []string
	pos  int
	src  string
	pos0 verr.Pos
}

func (ip *infixParser) cur() string {
	if ip.pos >= len(ip.toks) {
		return ""
	}
	return ip.toks[ip.pos]
}

func (ip *infixParser) err() error {
	return &verr.SyntaxError{Pos: ip.pos0, Got: ip.src, Expected: []string{"expression"}}
}

// infixToPrefix parses the full token run as one expression and returns its xelf prefix-syntax
// rendering, e.g. ["x",">","0"] -> "(gt x 0)".
func infixToPrefix(tokens []string, src string, pos verr.Pos) (string, error) {
	ip := &infixParser{toks: tokens, src: src, pos0: pos}
	out, err := ip.expr(0)
	if err != nil {
		return "", err
	}
	if ip.pos != len(ip.toks) {
		return "", ip.err()
	}
	return out, nil
}

func (ip *infixParser) expr(minPrec int) (string, error) {
	left, err := ip.unary()
	if err != nil {
		return "", err
	}
	for {
		op := ip.cur()
		prec, ok := precedence[op]
		if !ok || prec < minPrec {
			break
		}
		ip.pos++
		right, err := ip.expr(prec + 1)
		if err != nil {
			return "", err
		}
		left = "(" + opKey[op] + " " + left + " " + right + ")"
	}
	return left, nil
}

func (ip *infixParser) unary() (string, error) {
	if ip.cur() == "not" {
		ip.pos++
		operand, err := ip.unary()
		if err != nil {
			return "", err
		}
		return "(not " + operand + ")", nil
	}
	if ip.cur() == "-" {
		ip.pos++
		operand, err := ip.unary()
		if err != nil {
			return "", err
		}
		return "(neg " + operand + ")", nil
	}
	return ip.primary()
}

func (ip *infixParser) primary() (string, error) {
	t := ip.cur()
	if t == "" {
		return "", ip.err()
	}
	if t == "(" {
		ip.pos++
		inner, err := ip.expr(0)
		if err != nil {
			return "", err
		}
		if ip.cur() != ")" {
			return "", ip.err()
		}
		ip.pos++
		return inner, nil
	}
	ip.pos++
	if _, err := strconv.ParseFloat(t, 64); err == nil {
		return t, nil
	}
	if strings.HasPrefix(t, "\"") && strings.HasSuffix(t, "\"") && len(t) >= 2 {
		return t, nil
	}
	if t == "true" || t == "false" {
		return t, nil
	}
	// bare identifier, possibly dotted field access (e.g. "head.ts")
	return t, nil
}
