package devserver

import (
	"net/http/httptest"
	"testing"

	"github.com/vamos-lang/vamosc/internal/config"
)

func TestServeHTTPRejectsNonWebsocketRequest(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Source = "testdata/missing.vamos"
	cfg.Out = dir + "/out.c"

	hashPath := dir + "/token.hash"
	// no token file written: an unconfigured checker allows everything, so this request should
	// fail only on the websocket upgrade (plain HTTP GET has no Upgrade header), not on auth.
	s, err := New(cfg, hashPath, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/watch", nil)
	s.ServeHTTP(rec, req)
	if rec.Code == 200 {
		t.Fatalf("expected a non-websocket GET to fail the upgrade, got 200")
	}
}

func TestRecompileBroadcastsFailureDiagnostic(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Source = "testdata/missing.vamos"
	cfg.Out = dir + "/out.c"

	s, err := New(cfg, "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.Recompile() // must not panic even though compilation fails
}
