package hub

import "testing"

func TestNewHubStartsEmpty(t *testing.T) {
	h := New(nil)
	if h.Len() != 0 {
		t.Fatalf("expected empty hub, got %d clients", h.Len())
	}
}

func TestBroadcastWithNoClientsDoesNotPanic(t *testing.T) {
	h := New(nil)
	h.Broadcast(Diagnostic{Source: "a.vamos", OK: true})
}
