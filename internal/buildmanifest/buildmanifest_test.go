package buildmanifest

import "testing"

func TestStripGeneratedRemovesMarkerBlock(t *testing.T) {
	src := "before\n" + WithGenerated("int x;") + "after\n"
	got := StripGenerated(src)
	want := "before\nafter\n"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestStripGeneratedNoopWithoutMarker(t *testing.T) {
	src := "plain file\n"
	if StripGenerated(src) != src {
		t.Fatal("expected no-op on a file with no marker block")
	}
}

func TestManifestAddReplacesExistingEntry(t *testing.T) {
	m := &Manifest{}
	m.Add("a.rs", "hash1")
	m.Add("a.rs", "hash2")
	if len(m.Entries) != 1 || m.Entries[0].Hash != "hash2" {
		t.Fatalf("expected single updated entry, got %+v", m.Entries)
	}
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	m := &Manifest{Entries: []Entry{{Path: "a.rs", Hash: "h"}}}
	data, err := m.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got.Entries) != 1 || got.Entries[0] != m.Entries[0] {
		t.Fatalf("round trip mismatch: %+v", got.Entries)
	}
}
