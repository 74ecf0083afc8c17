package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/peterh/liner"

	"github.com/vamos-lang/vamosc/internal/devserver/auth"
	"github.com/vamos-lang/vamosc/internal/expr"
	"github.com/vamos-lang/vamosc/internal/verr"
)

// replCmd either hashes a watch token (-hash-token) or runs an interactive loop that parses and
// resolves guard/action expression fragments the same way internal/check does, without a whole
// program around them to bind field scopes against.
func replCmd(args []string) error {
	fs := flag.NewFlagSet("repl", flag.ExitOnError)
	hashToken := fs.Bool("hash-token", false, "read a token from stdin and print its bcrypt hash, for -token-hash")
	scopeFlag := fs.String("scope", "", "comma-separated field names available to typed expressions, e.g. x,y.kind")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *hashToken {
		return hashTokenCmd()
	}
	return evalLoop(parseScope(*scopeFlag))
}

func parseScope(s string) expr.Scope {
	if s == "" {
		return nil
	}
	var scope expr.Scope
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			scope = append(scope, name)
		}
	}
	return scope
}

func hashTokenCmd() error {
	lin := liner.NewLiner()
	defer lin.Close()
	token, err := lin.PasswordPrompt("token: ")
	if err != nil {
		return verr.Wrap(err, "read token")
	}
	hash, err := auth.HashToken(token)
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}

// evalLoop reads infix guard/action fragments (spec.md §4.9's concrete syntax, "x > 1 and not
// done") and prints the resolved xelf prefix expression (the emitted C is produced separately, by
// internal/emit/cexpr from the fragment's tokens), so a
// rule author can check an expression parses and its names resolve before it's embedded in a
// .vamos source file.
func evalLoop(scope expr.Scope) error {
	lin := liner.NewLiner()
	defer lin.Close()
	lin.SetMultiLineMode(true)

	pos := verr.Pos{File: "<repl>"}
	for i := 0; ; i++ {
		var got string
		var err error
		if i == 0 {
			got, err = lin.PromptWithSuggestion("> ", "x > 0", 2)
		} else {
			got, err = lin.Prompt("> ")
		}
		if err != nil {
			if err == io.EOF {
				fmt.Println()
				return nil
			}
			log.Printf("unexpected error reading prompt: %v", err)
			continue
		}
		got = strings.TrimSpace(got)
		if got == "" {
			continue
		}
		lin.AppendHistory(got)

		pos.Line = i + 1
		x, err := expr.ParseInfix(strings.Fields(got), got, scope, pos)
		if err != nil {
			log.Printf("error: %v", err)
			continue
		}
		fmt.Printf("= %s\n\n", x)
	}
}
