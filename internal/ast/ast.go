// Package ast declares the VAMOS abstract syntax tree.
//
// spec.md §3 describes the original AST as tagged tuples (first field a string tag, remaining
// fields positional children). Design Note §9 asks for a re-architecture as a sum-type: this
// package gives every node tag its own Go struct implementing Node, with statically typed
// children instead of positional interface{} slots. The one exception is scalar guard/action/
// order expressions, which are kept as source text (FieldExpr.Src, OrderExpr.Src) rather than
// VAMOS grammar nodes, since they are parsed by a different, embedded grammar (spec.md §4.9).
package ast

import "github.com/vamos-lang/vamosc/internal/verr"

// Node is implemented by every AST node. Tag returns the node's original tagged-tuple name, kept
// for diagnostics and for parity with the tag vocabulary in spec.md §3.
type Node interface {
	Pos() verr.Pos
	Tag() string
}

type Base struct {
	P verr.Pos
}

func (b Base) Pos() verr.Pos { return b.P }

// ScalarType names a field's declared type. VAMOS does not perform full type inference (spec.md
// Non-goals); only these fixed scalar shapes plus arrays of them are recognized.
type ScalarType struct {
	Name string // "int", "str", "float", "bool"
	Elem *ScalarType
}

func (t ScalarType) String() string {
	if t.Elem != nil {
		return "array of " + t.Elem.String()
	}
	return t.Name
}

// Field is a (name, scalar-type) pair, used by event payloads and shared-args structs.
type Field struct {
	Name string
	Type ScalarType
}

// Program is the main_program node: components-block, event-sources-block, arbiter-block,
// monitor-block, in that order, matching spec.md §3's four positional children.
type Program struct {
	Base
	Components   []Component
	EventSources []*EventSourceDecl
	Arbiter      *Arbiter
	Monitor      *Monitor
}

func (p *Program) Tag() string { return "main_program" }

// Component is implemented by every top-level declaration kind recognized by the component
// indexer (spec.md §4.2): stream_type, event_source, stream_processor, buffer_group, match_fun.
type Component interface {
	Node
	componentKind() string
}

// EventDecl declares one event kind within a stream type.
type EventDecl struct {
	Base
	Name   string
	Fields []Field
}

func (e *EventDecl) Tag() string { return "event_decl" }

// StreamType declares a named tagged union of events plus optional shared args.
type StreamType struct {
	Base
	Name   string
	Events []*EventDecl
	Args   []Field // shared-argument fields, present in every event of this stream; may be empty
}

func (s *StreamType) Tag() string        { return "stream_type" }
func (s *StreamType) componentKind() string { return "stream_type" }

// ConnectionKind names the runtime-library connection call an event source uses to attach to its
// producer-side stream (spec.md §6, "Stream connect/activate").
type ConnectionKind struct {
	Base
	Kind string // e.g. "stdin", "drregex", "shm", "file" -- backend specific connector name
	Args []string
}

func (c *ConnectionKind) Tag() string { return "connection_kind" }

// EventSourceDecl declares one instance (or an array of N instances, when Count != nil) of an
// event source: instance-name + stream-type-name + optional stream-processor application.
type EventSourceDecl struct {
	Base
	InstanceName string
	StreamType   string
	Processor    string // stream-processor name applied to this source's output, or ""
	Conn         *ConnectionKind
	Count        *int // non-nil for an array of N instances parameterized by integer args
}

func (e *EventSourceDecl) Tag() string        { return "event_source" }
func (e *EventSourceDecl) componentKind() string { return "event_source" }

// RewriteRule maps one input event kind to one output event kind with field expressions, as used
// by a stream processor (spec.md §3, "Stream processor").
type RewriteRule struct {
	Base
	InputEvent  string
	OutputEvent string
	// FieldExprs holds one expression source text per output field, in declaration order; they
	// are parsed lazily by internal/expr against the input event's declared field names.
	FieldExprs []FieldExpr
}

// FieldExpr is a (field-name, expression-source) pair used both by stream-processor rewrite
// rules and by match-rule actions.
type FieldExpr struct {
	Name string
	Src  string
	Pos  verr.Pos
}

// StreamProcessor is a named sequence of rewrite rules, registered in the symbol environment
// under stream_processors_data (spec.md §3).
type StreamProcessor struct {
	Base
	Name  string
	Rules []*RewriteRule
}

func (s *StreamProcessor) Tag() string        { return "stream_processor" }
func (s *StreamProcessor) componentKind() string { return "stream_processor" }

// OrderExpr is a pure comparison over the most recent event of each candidate stream in a buffer
// group, giving a total order (spec.md §3, "Buffer group").
type OrderExpr struct {
	Base
	Src  string // expression source text, e.g. "head.ts"; the asc/desc keyword is held in Desc
	Desc bool
}

// BufferGroupDecl names a set of stream-instance handles with an associated order expression.
type BufferGroupDecl struct {
	Base
	Name    string
	Members []string
	Order   *OrderExpr
}

func (b *BufferGroupDecl) Tag() string        { return "buffer_group_decl" }
func (b *BufferGroupDecl) componentKind() string { return "buffer_group" }

// MatchFunDecl is a user-declared helper usable from guards/actions; its body is opaque host-
// language source carried through to emission verbatim (spec.md allows match_fun as a component
// kind but does not further constrain its contents beyond being callable from rule guards).
type MatchFunDecl struct {
	Base
	Name   string
	Params []Field
	Return ScalarType
	Body   string // raw host-language source, emitted verbatim as a function body
}

func (m *MatchFunDecl) Tag() string        { return "match_fun" }
func (m *MatchFunDecl) componentKind() string { return "match_fun" }

// ChooseN is the chooser prefix of a match rule: "choose k streams from buffer group G [matching
// predicate]" (spec.md §3/§4.3/§4.6).
type ChooseN struct {
	Base
	N         int
	Group     string
	Last      bool // false selects the first N, true selects the last N
	Predicate *FieldExpr
}

func (c *ChooseN) Tag() string { return "choose_n" }

// HeadEvent is one element of a match rule's per-stream head pattern: an event kind with bound
// field names that the guard/action can reference.
type HeadEvent struct {
	Base
	Stream    string // instance name, or chooser slot reference such as "$0", "$1", ...
	EventKind string
	Binds     []string // captured field names, positional with the event kind's own fields
}

// MatchRule is one rule of a rule set: optional chooser, per-stream head pattern, guard, action.
type MatchRule struct {
	Base
	Chooser *ChooseN
	Heads   []*HeadEvent
	Guard   *FieldExpr // nil means "always true"
	Action  *RuleAction
}

func (m *MatchRule) Tag() string { return "match_rule" }

// RuleAction produces one arbiter- or monitor-output event plus, for arbiter rules, any number of
// drop counts per participating buffer.
type RuleAction struct {
	Base
	OutputEvent string
	FieldExprs  []FieldExpr
	Drops       []DropCount
}

// DropCount names how many head events to drop from a given participating stream once a rule
// commits (spec.md §3, "action ... plus any number of drop counts per participating buffer").
type DropCount struct {
	Stream string
	Count  int
}

// RuleSet is a named ordered list of match rules; first-match-wins within a set (spec.md §4.5).
type RuleSet struct {
	Base
	Name  string
	Rules []*MatchRule
}

func (r *RuleSet) Tag() string { return "rule_set" }

// Arbiter is the arbiter block: one or more rule sets evaluated in declaration order (spec.md §9
// Open Question (a)).
type Arbiter struct {
	Base
	RuleSets []*RuleSet
}

func (a *Arbiter) Tag() string { return "arbiter" }

// Monitor is the monitor block: a single rule set over the arbiter's output type, without
// choosers or buffer-group selection (spec.md §4.7).
type Monitor struct {
	Base
	Rules []*MatchRule
}

func (m *Monitor) Tag() string { return "monitor" }
