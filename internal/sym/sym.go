// Package sym holds the compiler's symbol environment: the explicit replacement for the original
// process-wide TypeChecker singleton (spec.md §9, Design Note "Process-wide symbol table").
//
// clean_checker becomes New, add_reserved_keywords becomes part of New's construction with a
// fixed set, and the environment is threaded by value (well, by pointer-to-value, constructed
// once per compilation) through parse → check → emit instead of being mutated from a global.
package sym

import (
	"sort"

	"github.com/vamos-lang/vamosc/internal/ast"
	"github.com/vamos-lang/vamosc/internal/verr"
)

// HoleKind is the reserved event kind id for the synthetic "hole" event every program owns,
// representing coalesced dropped events (spec.md §3, I4).
const HoleKind = 0

// HoleEventName is the reserved name of the synthetic coalesced-drop event.
const HoleEventName = "hole"

// Env is one compilation's symbol environment; New builds a fresh one for each compilation.
type Env struct {
	// ReservedKeywords holds names forbidden for user identifiers (I1); sourced from the lexer's
	// keyword set plus a handful of emitted-code identifiers that would collide with generated
	// globals (e.g. "hole", "chosen_streams").
	ReservedKeywords map[string]bool

	// EventsToKinds maps event name to its kind id, assigned in declaration order starting at 1
	// (I2, I4). HoleEventName always maps to HoleKind, assigned at construction.
	EventsToKinds map[string]int
	nextKind      int

	// StreamEvents maps stream-type name to its ordered event list as declared; stream processors
	// do not change it (a source's processed output type is recorded in StreamTypes below).
	StreamEvents map[string][]*ast.EventDecl

	// StreamArgs maps stream-type name to its shared-args fields.
	StreamArgs map[string][]ast.Field

	// StreamProcessorsData maps stream-processor name to its rewrite rules.
	StreamProcessorsData map[string][]*ast.RewriteRule

	// ExistingBuffers is the set of instance names for which arbiter buffers must be emitted
	// (every named event source, plus every member of every buffer group).
	ExistingBuffers map[string]bool

	// StreamTypes maps event-source instance name to (input_type, output_type): input_type is
	// the source's declared stream type, output_type is what downstream stages (the arbiter)
	// observe, i.e. the stream processor's output type when one is applied, else input_type
	// unchanged (spec.md §3, "Event source").
	StreamTypes map[string]StreamTypePair

	// BufferGroups maps buffer-group name to its declaration, for order-expression lookups.
	BufferGroups map[string]*ast.BufferGroupDecl

	// ArbiterOutputType is the stream type every arbiter rule's action must agree on (I5).
	ArbiterOutputType string

	// MonitorBufferSize is the ring size between arbiter and monitor.
	MonitorBufferSize int

	// ArbiterBufSize is the per-source ring buffer capacity (ARBITER_BUFSIZE).
	ArbiterBufSize int

	declared map[string]string // name -> namespace, for I1 uniqueness checks
}

// StreamTypePair is the (input, output) stream-type-name pair recorded per event source.
type StreamTypePair struct {
	Input, Output string
}

// defaultReserved lists identifiers reserved for the emitted C program's own use (not all of them
// are emitted by every backend); a VAMOS
// program cannot reuse them regardless of the host grammar's own keywords (spec.md §6, "Emitted
// file layout").
var defaultReserved = []string{
	"hole", "chosen_streams", "arbiter_counter", "monitor_buffer",
	"is_selection_successful", "count_event_streams", "arbiter_outevent",
	"no_matches_count", "no_consecutive_matches_limit", "ARBITER_THREAD",
}

// New constructs a fresh environment: clean_checker + add_reserved_keywords in one step.
func New(keywords map[string]bool) *Env {
	e := &Env{
		ReservedKeywords:      make(map[string]bool, len(keywords)+len(defaultReserved)),
		EventsToKinds:         map[string]int{HoleEventName: HoleKind},
		StreamEvents:          map[string][]*ast.EventDecl{},
		StreamArgs:            map[string][]ast.Field{},
		StreamProcessorsData:  map[string][]*ast.RewriteRule{},
		ExistingBuffers:       map[string]bool{},
		StreamTypes:           map[string]StreamTypePair{},
		BufferGroups:          map[string]*ast.BufferGroupDecl{},
		MonitorBufferSize:     1024,
		ArbiterBufSize:        256,
		nextKind:              1,
		declared:              map[string]string{},
	}
	for k := range keywords {
		e.ReservedKeywords[k] = true
	}
	for _, k := range defaultReserved {
		e.ReservedKeywords[k] = true
	}
	return e
}

// Declare registers name in namespace, enforcing I1 (not reserved, unique within its namespace).
func (e *Env) Declare(pos verr.Pos, namespace, name string) error {
	if e.ReservedKeywords[name] {
		return &verr.ReservedNameError{Pos: pos, Name: name}
	}
	key := namespace + ":" + name
	if _, ok := e.declared[key]; ok {
		return &verr.RedeclarationError{Pos: pos, Name: name, Namespace: namespace}
	}
	e.declared[key] = namespace
	return nil
}

// AddEvent assigns the next contiguous kind id to name if it hasn't been assigned yet (I4).
func (e *Env) AddEvent(name string) int {
	if k, ok := e.EventsToKinds[name]; ok {
		return k
	}
	k := e.nextKind
	e.EventsToKinds[name] = k
	e.nextKind++
	return k
}

// KindsInOrder returns the contiguous [1..K] kind ids in assignment order, excluding hole (P2).
func (e *Env) KindsInOrder() []string {
	names := make([]string, 0, len(e.EventsToKinds))
	for n, k := range e.EventsToKinds {
		if k == HoleKind {
			continue
		}
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		return e.EventsToKinds[names[i]] < e.EventsToKinds[names[j]]
	})
	return names
}

// RegisterStreamType records a stream type's event list and shared-args fields, assigning kind
// ids to any not-yet-seen event in declaration order.
func (e *Env) RegisterStreamType(st *ast.StreamType) {
	e.StreamEvents[st.Name] = st.Events
	e.StreamArgs[st.Name] = st.Args
	for _, ev := range st.Events {
		e.AddEvent(ev.Name)
	}
}

// RegisterStreamProcessor records a stream processor's rewrite rules.
func (e *Env) RegisterStreamProcessor(sp *ast.StreamProcessor) {
	e.StreamProcessorsData[sp.Name] = sp.Rules
}

// RegisterEventSource records an instance's (input, output) stream-type pair, resolving the
// output type through the instance's stream processor when one is applied.
func (e *Env) RegisterEventSource(src *ast.EventSourceDecl) {
	out := src.StreamType
	if src.Processor != "" {
		if rules, ok := e.StreamProcessorsData[src.Processor]; ok && len(rules) > 0 {
			out = rules[0].OutputEvent
			// the output type of a processor is the stream type declaring that output event;
			// resolve it by scanning registered stream types (populated before sources, per
			// spec.md §4.2 emission-order invariant: stream types before event sources).
			for stName, evs := range e.StreamEvents {
				for _, ev := range evs {
					if ev.Name == out {
						out = stName
					}
				}
			}
		}
	}
	e.StreamTypes[src.InstanceName] = StreamTypePair{Input: src.StreamType, Output: out}
	e.ExistingBuffers[src.InstanceName] = true
}

// RegisterBufferGroup records a buffer group and marks all its members as needing arbiter buffers
// (I3, spec.md §4.3).
func (e *Env) RegisterBufferGroup(bg *ast.BufferGroupDecl) {
	e.BufferGroups[bg.Name] = bg
	for _, m := range bg.Members {
		e.ExistingBuffers[m] = true
	}
}
