package config

import (
	"testing"

	"github.com/vamos-lang/vamosc/internal/verr"
)

func TestValidateRejectsZeroBufsize(t *testing.T) {
	c := Default()
	c.Source = "x.vamos"
	c.Bufsize = 0
	if err := c.Validate(); err == nil {
		t.Fatal("expected an error for zero bufsize")
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	c := Default()
	c.Source = "x.vamos"
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsTesslaWithoutDir(t *testing.T) {
	c := Default()
	c.Source = "x.vamos"
	c.WithTessla = true
	err := c.Validate()
	if err == nil {
		t.Fatal("expected an error for -with-tessla without a tessla dir")
	}
	ve, ok := verr.As(err)
	if !ok || ve.Kind() != "backend-unavailable" {
		t.Fatalf("expected a backend-unavailable error, got %v", err)
	}
}

func TestValidateAcceptsTesslaWithDir(t *testing.T) {
	c := Default()
	c.Source = "x.vamos"
	c.WithTessla = true
	c.TesslaDir = "tessla-out"
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPlaceholdersUsesAtPrefixedKeys(t *testing.T) {
	c := Default()
	ph := c.Placeholders()
	if _, ok := ph["@BUFSIZE"]; !ok {
		t.Fatal("expected @BUFSIZE placeholder key")
	}
}
