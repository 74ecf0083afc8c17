package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/vamos-lang/vamosc/internal/config"
	"github.com/vamos-lang/vamosc/internal/devserver"
	"github.com/vamos-lang/vamosc/internal/vlog"
)

func watchCmd(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	out := fs.String("out", "out.c", "path to write the generated C file on every recompile")
	addr := fs.String("addr", "127.0.0.1:7357", "address to serve the websocket diagnostics feed on")
	tokenHash := fs.String("token-hash", "", "path to a bcrypt-hashed watch token (see vamosc repl -hash-token)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: vamosc watch [flags] <source.vamos>")
	}

	cfg := config.Default()
	cfg.Source = fs.Arg(0)
	cfg.Out = *out

	srv, err := devserver.New(cfg, *tokenHash, vlog.Root)
	if err != nil {
		return err
	}
	srv.Recompile()
	go pollSource(cfg.Source, srv)

	vlog.Root.Warn("watch server listening", "addr", *addr, "source", cfg.Source)
	return http.ListenAndServe(*addr, srv)
}

// pollSource recompiles srv whenever cfg.Source's mtime advances. A stat-based poll rather than an
// inotify watch, since nothing in the pack's dependency set gives us one cheaply.
func pollSource(path string, srv *devserver.Server) {
	var last time.Time
	if fi, err := os.Stat(path); err == nil {
		last = fi.ModTime()
	}
	for range time.Tick(500 * time.Millisecond) {
		fi, err := os.Stat(path)
		if err != nil {
			continue
		}
		if fi.ModTime().After(last) {
			last = fi.ModTime()
			srv.Recompile()
		}
	}
}
