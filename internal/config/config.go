// Package config resolves one compilation's settings: source/output paths and the buffer-size
// placeholders internal/lex.Preprocess substitutes before tokenizing (spec.md testable property
// B1, "@BUFSIZE").
package config

import (
	"strconv"

	"github.com/vamos-lang/vamosc/internal/lex"
	"github.com/vamos-lang/vamosc/internal/policy"
	"github.com/vamos-lang/vamosc/internal/verr"
)

// Config is one compile invocation's resolved settings.
type Config struct {
	// Source is the path to the .vamos program to compile.
	Source string
	// Out is the path the emitted C file is written to.
	Out string
	// Bufsize is the per-source-instance ring buffer capacity, substituted for @BUFSIZE.
	Bufsize int
	// MonitorBufsize is the ring buffer capacity between arbiter and monitor, substituted for
	// @MONITOR_BUFSIZE.
	MonitorBufsize int
	// WithTessla selects the secondary TeSSLa-interop backend (internal/emit/emittessla) in
	// addition to the primary C backend.
	WithTessla bool
	// TesslaDir, when WithTessla is set, is the directory the TeSSLa interface header
	// (vamos_tessla.h) and the companion Rust source (monitor.rs) are written under. No build
	// manifest is written there.
	TesslaDir string
	// Policy restricts which directories Out (and, when WithTessla is set, TesslaDir) may land in.
	// A nil Policy allows any path (policy.New with no roots has the same effect).
	Policy *policy.Policy
}

// Default returns a Config with the same buffer sizes the original compiler hard-codes absent any
// command-line override.
func Default() Config {
	return Config{Bufsize: 256, MonitorBufsize: 1024}
}

// Validate rejects a Config whose buffer sizes could never hold a single event, that names no
// source file, or that selects the TeSSLa backend without a TesslaDir.
func (c Config) Validate() error {
	if c.Bufsize < 1 {
		return &verr.ShapeError{Reason: "bufsize must be at least 1"}
	}
	if c.MonitorBufsize < 1 {
		return &verr.ShapeError{Reason: "monitor bufsize must be at least 1"}
	}
	if c.Source == "" {
		return &verr.ShapeError{Reason: "no source file given"}
	}
	if c.WithTessla && c.TesslaDir == "" {
		return &verr.BackendUnavailableError{Backend: "tessla", Reason: "--with-tessla requires --tessla-dir"}
	}
	return nil
}

// Placeholders builds the @NAME substitution table internal/lex.Preprocess uses.
func (c Config) Placeholders() lex.Placeholders {
	return lex.Placeholders{
		"@BUFSIZE":         strconv.Itoa(c.Bufsize),
		"@MONITOR_BUFSIZE": strconv.Itoa(c.MonitorBufsize),
	}
}
