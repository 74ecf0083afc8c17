// Package verr declares the compiler's fatal diagnostic error kinds.
//
// Every error the compiler reports to a user implements this package's Error interface so that
// the CLI driver can unwrap to a one-line, file-and-position diagnostic regardless of how deep in
// parse/check/emit the error originated.
package verr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error is implemented by every diagnostic kind the compiler can produce.
type Error interface {
	error
	// Kind is a short machine-stable name for the diagnostic, e.g. "syntax", "redeclaration".
	Kind() string
}

// Pos is a source position: 1-based line and column plus the originating file path.
type Pos struct {
	File string
	Line int
	Col  int
}

func (p Pos) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Col)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

type SyntaxError struct {
	Pos      Pos
	Expected []string
	Got      string
}

func (e *SyntaxError) Kind() string { return "syntax" }
func (e *SyntaxError) Error() string {
	if len(e.Expected) == 0 {
		return fmt.Sprintf("%s: syntax error near %q", e.Pos, e.Got)
	}
	return fmt.Sprintf("%s: syntax error near %q, expected one of %v", e.Pos, e.Got, e.Expected)
}

type RedeclarationError struct {
	Pos       Pos
	Name      string
	Namespace string
}

func (e *RedeclarationError) Kind() string { return "redeclaration" }
func (e *RedeclarationError) Error() string {
	return fmt.Sprintf("%s: %q is already declared in %s", e.Pos, e.Name, e.Namespace)
}

type ReservedNameError struct {
	Pos  Pos
	Name string
}

func (e *ReservedNameError) Kind() string { return "reserved-name" }
func (e *ReservedNameError) Error() string {
	return fmt.Sprintf("%s: %q is a reserved keyword and cannot be used as an identifier", e.Pos, e.Name)
}

type UnknownReferenceError struct {
	Pos  Pos
	What string // "event", "stream type", "buffer group", "event source", "stream processor", "chooser slot"
	Name string
}

func (e *UnknownReferenceError) Kind() string { return "unknown-reference" }
func (e *UnknownReferenceError) Error() string {
	return fmt.Sprintf("%s: unknown %s %q", e.Pos, e.What, e.Name)
}

type ShapeError struct {
	Pos    Pos
	Reason string
}

func (e *ShapeError) Kind() string  { return "shape" }
func (e *ShapeError) Error() string { return fmt.Sprintf("%s: %s", e.Pos, e.Reason) }

type AmbiguousArbiterOutputError struct {
	Pos   Pos
	First string
	Other string
}

func (e *AmbiguousArbiterOutputError) Kind() string { return "ambiguous-arbiter-output" }
func (e *AmbiguousArbiterOutputError) Error() string {
	return fmt.Sprintf("%s: arbiter rule action produces stream type %q, but an earlier rule produces %q; all arbiter rules must agree on one output type", e.Pos, e.Other, e.First)
}

type IOError struct {
	Path string
	Op   string
	Err  error
}

func (e *IOError) Kind() string  { return "io" }
func (e *IOError) Error() string { return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err) }
func (e *IOError) Unwrap() error { return e.Err }

type BackendUnavailableError struct {
	Backend string
	Reason  string
}

func (e *BackendUnavailableError) Kind() string { return "backend-unavailable" }
func (e *BackendUnavailableError) Error() string {
	return fmt.Sprintf("backend %s unavailable: %s", e.Backend, e.Reason)
}

// Wrap attaches a message to err using the same convention the emitter and driver use everywhere
// else, without discarding an underlying Error kind if err already carries one.
func Wrap(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, format, args...)
}

// As finds the first wrapped Error in err's chain, mirroring errors.As without forcing callers to
// name a concrete type.
func As(err error) (Error, bool) {
	for err != nil {
		if ve, ok := err.(Error); ok {
			return ve, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return nil, false
}
