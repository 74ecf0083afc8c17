package compiler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vamos-lang/vamosc/internal/config"
)

func TestCompileEndToEnd(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Source = "testdata/reading.vamos"
	cfg.Out = filepath.Join(dir, "out.c")

	res, err := Compile(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Env.ArbiterOutputType != "Reading" {
		t.Fatalf("unexpected arbiter output type: %q", res.Env.ArbiterOutputType)
	}
	data, err := os.ReadFile(cfg.Out)
	if err != nil {
		t.Fatalf("expected output file to exist: %v", err)
	}
	if !strings.Contains(string(data), "Reading_event_t") {
		t.Fatalf("expected emitted C to declare Reading_event_t")
	}
}

func TestCompileWithTesslaWritesCompanionFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Source = "testdata/reading.vamos"
	cfg.Out = filepath.Join(dir, "out.c")
	cfg.WithTessla = true
	cfg.TesslaDir = dir

	if _, err := Compile(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "vamos_tessla.h")); err != nil {
		t.Fatalf("expected tessla header to be written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "monitor.rs")); err != nil {
		t.Fatalf("expected tessla companion source to be written: %v", err)
	}
}

func TestCompileRejectsMissingSource(t *testing.T) {
	cfg := config.Default()
	cfg.Source = "testdata/does-not-exist.vamos"
	cfg.Out = filepath.Join(t.TempDir(), "out.c")
	if _, err := Compile(cfg); err == nil {
		t.Fatal("expected an error for a missing source file")
	}
}
