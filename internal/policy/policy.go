// Package policy enforces where a compile's output files may be written (spec.md §4.11), adapted
// from the teacher's own pol package (there: which directories a dataset migration may touch; here:
// which directories a generated C file, and its optional TeSSLa companions, may land in).
package policy

import (
	"path/filepath"
	"strings"

	"github.com/vamos-lang/vamosc/internal/verr"
)

// Policy restricts writes to a set of allowed root directories. An empty Policy allows any path,
// matching the devserver's own default-open posture for local development.
type Policy struct {
	roots []string
}

// New builds a Policy that allows writes under any of roots (and their subdirectories).
func New(roots ...string) *Policy {
	p := &Policy{}
	for _, r := range roots {
		abs, err := filepath.Abs(r)
		if err != nil {
			abs = r
		}
		p.roots = append(p.roots, filepath.Clean(abs))
	}
	return p
}

// Allow reports whether path is permitted under p, returning an error naming the violated root
// otherwise.
func (p *Policy) Allow(path string) error {
	if len(p.roots) == 0 {
		return nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	abs = filepath.Clean(abs)
	for _, root := range p.roots {
		if abs == root || strings.HasPrefix(abs, root+string(filepath.Separator)) {
			return nil
		}
	}
	return &verr.ShapeError{Reason: "output path " + path + " is outside every allowed root directory"}
}
