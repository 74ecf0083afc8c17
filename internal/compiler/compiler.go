// Package compiler is VAMOS's top-level deterministic driver: it ties internal/lex, internal/
// parser, internal/index, internal/check, and the emit backends together into the single
// lex -> parse -> index -> check -> emit pipeline original_source/compiler/main.py runs linearly,
// and the teacher's cmd/daql/gen.go drives the same way for its own generators. Compile has no
// goroutines and no global state beyond the symbol environment it constructs fresh every call, so
// running it twice on the same input always produces byte-identical output.
package compiler

import (
	"os"
	"path/filepath"

	"github.com/vamos-lang/vamosc/internal/ast"
	"github.com/vamos-lang/vamosc/internal/check"
	"github.com/vamos-lang/vamosc/internal/config"
	"github.com/vamos-lang/vamosc/internal/emit/emitc"
	"github.com/vamos-lang/vamosc/internal/emit/emittessla"
	"github.com/vamos-lang/vamosc/internal/index"
	"github.com/vamos-lang/vamosc/internal/lex"
	"github.com/vamos-lang/vamosc/internal/parser"
	"github.com/vamos-lang/vamosc/internal/sym"
	"github.com/vamos-lang/vamosc/internal/verr"
	"github.com/vamos-lang/vamosc/internal/vlog"
)

// Result is everything a successful compile produced, beyond the files it wrote, for callers that
// want to inspect the symbol environment, the component index, or the emitted C without
// recompiling.
type Result struct {
	Env *sym.Env
	Idx *index.Index
	C   []byte
}

// Compile runs the full pipeline against cfg, writing cfg.Out (and, when cfg.WithTessla is set,
// the TeSSLa interface header and companion glue) before returning.
func Compile(cfg config.Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(cfg.Source)
	if err != nil {
		return nil, &verr.IOError{Path: cfg.Source, Op: "read", Err: err}
	}
	src := lex.Preprocess(string(raw), cfg.Placeholders())

	env := sym.New(lex.Keywords)
	env.ArbiterBufSize = cfg.Bufsize
	env.MonitorBufferSize = cfg.MonitorBufsize
	prog, err := parser.Parse(cfg.Source, src, env)
	if err != nil {
		return nil, err
	}
	idx := index.Build(prog)
	if err := check.Check(prog, env, idx, vlog.Root); err != nil {
		return nil, err
	}
	out, err := emitc.Emit(prog, env, idx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Policy != nil {
		if err := cfg.Policy.Allow(cfg.Out); err != nil {
			return nil, err
		}
		if cfg.WithTessla {
			if err := cfg.Policy.Allow(cfg.TesslaDir); err != nil {
				return nil, err
			}
		}
	}
	if err := os.WriteFile(cfg.Out, out, 0o644); err != nil {
		return nil, &verr.IOError{Path: cfg.Out, Op: "write", Err: err}
	}

	if cfg.WithTessla {
		if err := writeTessla(cfg, prog, env, idx); err != nil {
			return nil, err
		}
	}
	return &Result{Env: env, Idx: idx, C: out}, nil
}

// writeTessla emits the TeSSLa interface header plus the companion glue merged into whatever
// hand-maintained source already lives at cfg.TesslaDir (spec.md §4.10). cfg.Validate already
// rejected WithTessla without a TesslaDir (verr.BackendUnavailableError), so dir is always set.
func writeTessla(cfg config.Config, prog *ast.Program, env *sym.Env, idx *index.Index) error {
	dir := cfg.TesslaDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &verr.IOError{Path: dir, Op: "mkdir", Err: err}
	}

	headerPath := filepath.Join(dir, "vamos_tessla.h")
	if err := os.WriteFile(headerPath, emittessla.Header(env, idx), 0o644); err != nil {
		return &verr.IOError{Path: headerPath, Op: "write", Err: err}
	}

	srcPath := filepath.Join(dir, "monitor.rs")
	existing, err := os.ReadFile(srcPath)
	if err != nil && !os.IsNotExist(err) {
		return &verr.IOError{Path: srcPath, Op: "read", Err: err}
	}
	merged := emittessla.MergeSource(string(existing), emittessla.Glue(prog, env, idx))
	if err := os.WriteFile(srcPath, []byte(merged), 0o644); err != nil {
		return &verr.IOError{Path: srcPath, Op: "write", Err: err}
	}
	return nil
}
