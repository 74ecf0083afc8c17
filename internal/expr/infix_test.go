package expr

import (
	"strings"
	"testing"

	"github.com/vamos-lang/vamosc/internal/verr"
)

func mustInfix(t *testing.T, src string) string {
	t.Helper()
	out, err := infixToPrefix(strings.Fields(src), src, verr.Pos{})
	if err != nil {
		t.Fatalf("infixToPrefix(%q): %v", src, err)
	}
	return out
}

func TestInfixToPrefixPrecedence(t *testing.T) {
	cases := map[string]string{
		"x > 1 and not done":     "(and (gt x 1) (not done))",
		"a or b and c":           "(or a (and b c))",
		"1 + 2 * 3":              "(add 1 (mul 2 3))",
		"( 1 + 2 ) * 3":          "(mul (add 1 2) 3)",
		"x.ts >= head.ts":        "(ge x.ts head.ts)",
		"- x + 1":                "(add (neg x) 1)",
		"x == 1 or y != 2":       "(or (eq x 1) (ne y 2))",
	}
	for src, want := range cases {
		if got := mustInfix(t, src); got != want {
			t.Errorf("infixToPrefix(%q) = %q, want %q", src, got, want)
		}
	}
}

func TestInfixToPrefixRejectsTrailingGarbage(t *testing.T) {
	if _, err := infixToPrefix(strings.Fields("x > 1 )"), "x > 1 )", verr.Pos{}); err == nil {
		t.Fatal("expected a syntax error for unbalanced parens")
	}
}

func TestParseInfixResolvesBoundNames(t *testing.T) {
	x, err := ParseInfix(strings.Fields("x > 0 and not done"), "x > 0 and not done", Scope{"x", "done"}, verr.Pos{})
	if err != nil {
		t.Fatalf("ParseInfix: %v", err)
	}
	if x == nil {
		t.Fatal("expected a resolved expression")
	}
}

func TestParseInfixOnBareIdentifier(t *testing.T) {
	if _, err := ParseInfix(strings.Fields("x"), "x", Scope{"x"}, verr.Pos{}); err != nil {
		t.Fatalf("ParseInfix on a bare identifier: %v", err)
	}
}
