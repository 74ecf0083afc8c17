// Package buildmanifest tracks which files the TeSSLa-interop backend (internal/emit/emittessla)
// has previously written, so a re-run can detect and cleanly replace its own earlier output rather
// than append to it indefinitely. This is a direct repurposing of the teacher's migration manifest
// (mig/manifest.go records which migrations have already been applied to a database; here the same
// shape records which generated files a previous compile already wrote) plus its include/marker
// convention (mig/include.go strips a previously-generated include block by a delimiter comment
// before regenerating it).
package buildmanifest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vamos-lang/vamosc/internal/verr"
)

const (
	markerBegin = "// vamosc:begin-generated"
	markerEnd   = "// vamosc:end-generated"
)

// Entry records one file vamosc has written as part of a build.
type Entry struct {
	Path string `json:"path"`
	Hash string `json:"hash"`
}

// Manifest is the JSON-serializable record of everything a compile run wrote.
type Manifest struct {
	Entries []Entry `json:"entries"`
}

// Marshal renders m as indented JSON, the same human-diffable format the teacher's manifest uses.
func (m *Manifest) Marshal() ([]byte, error) {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, verr.Wrap(err, "marshal build manifest")
	}
	return b, nil
}

// Unmarshal populates m from previously written JSON.
func Unmarshal(data []byte) (*Manifest, error) {
	var m Manifest
	if len(data) == 0 {
		return &m, nil
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, verr.Wrap(err, "unmarshal build manifest")
	}
	return &m, nil
}

// Add records path having been (re)written with the given content hash, replacing any existing
// entry for the same path.
func (m *Manifest) Add(path, hash string) {
	for i, e := range m.Entries {
		if e.Path == path {
			m.Entries[i].Hash = hash
			return
		}
	}
	m.Entries = append(m.Entries, Entry{Path: path, Hash: hash})
}

// StripGenerated removes a previously emitted marker block from src, returning the remainder
// unchanged. A file with no marker block is returned as-is: the first compile of a fresh file has
// nothing to strip.
func StripGenerated(src string) string {
	start := strings.Index(src, markerBegin)
	if start < 0 {
		return src
	}
	end := strings.Index(src[start:], markerEnd)
	if end < 0 {
		return src[:start]
	}
	end += start + len(markerEnd)
	if end < len(src) && src[end] == '\n' {
		end++ // the newline WithGenerated writes after the end marker belongs to the block
	}
	return src[:start] + src[end:]
}

// WithGenerated wraps body in the marker comments StripGenerated recognizes, for appending to a
// hand-maintained file (spec.md §4.10's companion Rust/C interop source).
func WithGenerated(body string) string {
	return fmt.Sprintf("%s\n%s\n%s\n", markerBegin, body, markerEnd)
}
