package auth

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHashAndVerifyRoundTrip(t *testing.T) {
	hash, err := HashToken("s3cret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !Verify(hash, "s3cret") {
		t.Fatal("expected token to verify against its own hash")
	}
	if Verify(hash, "wrong") {
		t.Fatal("expected mismatched token to fail verification")
	}
}

func TestCheckerAllowsEverythingWithNoConfiguredHash(t *testing.T) {
	c, err := LoadChecker("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.Allow("anything") {
		t.Fatal("expected an unconfigured checker to allow any token")
	}
}

func TestLoadCheckerEnforcesStoredHash(t *testing.T) {
	hash, _ := HashToken("topsecret")
	dir := t.TempDir()
	path := filepath.Join(dir, "token.hash")
	if err := os.WriteFile(path, []byte(hash), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c, err := LoadChecker(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.Allow("topsecret") {
		t.Fatal("expected correct token to be allowed")
	}
	if c.Allow("wrong") {
		t.Fatal("expected incorrect token to be rejected")
	}
}
