// Package emit holds the EmissionModel shared by both code-generation backends (spec.md Design
// Note §9): rather than each backend hand-interleaving sections of the emitted file in a fixed
// procedural order (as the original Python compiler's single linear main.py does), sections are
// built as independent, named, dependency-tagged chunks and the model topologically sorts them
// before printing. This mirrors the teacher's gen.Ctx import-collection pattern (gen/gen.go), which
// also defers a global ordering decision (import lines) until every generator has contributed.
package emit

import (
	"github.com/vamos-lang/vamosc/internal/verr"
)

// Section is one named, independently ordered chunk of emitted source (a struct definition, a
// thread body, the arbiter main loop, ...).
type Section struct {
	Name string
	Body string
	// DependsOn lists Section names that must appear earlier in the rendered output.
	DependsOn []string
}

// Model is an emission unit: an ordered-by-dependency set of sections plus whatever free-standing
// preamble (includes, file header) always comes first verbatim.
type Model struct {
	Preamble string
	Sections []Section
}

// Add appends a section to the model.
func (m *Model) Add(name, body string, dependsOn ...string) {
	m.Sections = append(m.Sections, Section{Name: name, Body: body, DependsOn: dependsOn})
}

// Render topologically sorts m's sections by DependsOn (stable on ties, preserving the order
// sections were Added in) and concatenates Preamble followed by each section body.
func Render(m *Model) ([]byte, error) {
	order, err := topoSort(m.Sections)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 0, len(m.Preamble)+estimateSize(m.Sections))
	buf = append(buf, m.Preamble...)
	byName := make(map[string]Section, len(m.Sections))
	for _, s := range m.Sections {
		byName[s.Name] = s
	}
	for _, name := range order {
		buf = append(buf, byName[name].Body...)
		buf = append(buf, '\n')
	}
	return buf, nil
}

func estimateSize(sections []Section) int {
	n := 0
	for _, s := range sections {
		n += len(s.Body) + 1
	}
	return n
}

// topoSort orders sections so every DependsOn name precedes its dependent, breaking ties by the
// sections' original Add order (a stable sort keeps unrelated sections in source order, matching
// the predictability the original compiler's fixed linear layout gave readers).
func topoSort(sections []Section) ([]string, error) {
	index := make(map[string]int, len(sections))
	for i, s := range sections {
		index[s.Name] = i
	}
	const (
		white = iota
		gray
		black
	)
	state := make([]int, len(sections))
	var order []string
	var visit func(i int) error
	visit = func(i int) error {
		switch state[i] {
		case black:
			return nil
		case gray:
			return &verr.ShapeError{Reason: "emission model has a dependency cycle at section " + sections[i].Name}
		}
		state[i] = gray
		for _, dep := range sections[i].DependsOn {
			j, ok := index[dep]
			if !ok {
				continue // a dependency on a section that was never added is not an emission error
			}
			if err := visit(j); err != nil {
				return err
			}
		}
		state[i] = black
		order = append(order, sections[i].Name)
		return nil
	}
	for i := range sections {
		if err := visit(i); err != nil {
			return nil, err
		}
	}
	return order, nil
}
