package policy

import (
	"path/filepath"
	"testing"
)

func TestEmptyPolicyAllowsEverything(t *testing.T) {
	p := New()
	if err := p.Allow("/anywhere/out.c"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPolicyAllowsPathsUnderRoot(t *testing.T) {
	dir := t.TempDir()
	p := New(dir)
	if err := p.Allow(filepath.Join(dir, "sub", "out.c")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPolicyRejectsPathsOutsideRoot(t *testing.T) {
	dir := t.TempDir()
	p := New(dir)
	if err := p.Allow("/etc/passwd"); err == nil {
		t.Fatal("expected an error for a path outside the allowed root")
	}
}
