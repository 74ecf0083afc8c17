package main

import (
	"flag"
	"fmt"

	"github.com/vamos-lang/vamosc/internal/compiler"
	"github.com/vamos-lang/vamosc/internal/config"
	"github.com/vamos-lang/vamosc/internal/policy"
)

func compileCmd(args []string) error {
	fs := flag.NewFlagSet("compile", flag.ExitOnError)
	out := fs.String("out", "out.c", "path to write the generated C file")
	bufsize := fs.Int("bufsize", 256, "per-source ring buffer capacity (ARBITER_BUFSIZE)")
	monitorBufsize := fs.Int("monitor-bufsize", 1024, "arbiter-to-monitor ring buffer capacity")
	withTessla := fs.Bool("with-tessla", false, "also emit the TeSSLa interop interface and glue")
	tesslaDir := fs.String("tessla-dir", "", "directory for the TeSSLa companion files (required with -with-tessla)")
	allowedRoot := fs.String("allow-dir", "", "restrict all writes to this directory and its subdirectories")
	fs.StringVar(out, "o", "out.c", "shorthand for -out")
	fs.IntVar(bufsize, "b", 256, "shorthand for -bufsize")
	fs.BoolVar(withTessla, "t", false, "shorthand for -with-tessla")
	fs.StringVar(tesslaDir, "dir", "", "same as -tessla-dir")
	fs.StringVar(tesslaDir, "d", "", "shorthand for -tessla-dir")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 && fs.NArg() != 2 {
		return fmt.Errorf("usage: vamosc compile [flags] <source.vamos> [<output>]")
	}

	cfg := config.Default()
	cfg.Source = fs.Arg(0)
	cfg.Out = *out
	if fs.NArg() == 2 {
		cfg.Out = fs.Arg(1)
	}
	cfg.Bufsize = *bufsize
	cfg.MonitorBufsize = *monitorBufsize
	cfg.WithTessla = *withTessla
	cfg.TesslaDir = *tesslaDir
	if *allowedRoot != "" {
		cfg.Policy = policy.New(*allowedRoot)
	}

	_, err := compiler.Compile(cfg)
	return err
}
