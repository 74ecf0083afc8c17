// Package check is VAMOS's semantic analyzer: the pass between parsing and emission that enforces
// the invariants spec.md §4 numbers I1–I6 once the whole program (and its symbol environment) is
// available, rather than as the program is read token by token (parsing already enforces I1 itself,
// since name uniqueness is checkable the moment a declaration is seen — see internal/sym.Declare).
// This mirrors the teacher's own split between structural recognition and a later, whole-schema
// validation pass (qry's reference/shape checks run after a schema is fully parsed, not during).
package check

import (
	"strings"

	"github.com/vamos-lang/vamosc/internal/ast"
	"github.com/vamos-lang/vamosc/internal/expr"
	"github.com/vamos-lang/vamosc/internal/index"
	"github.com/vamos-lang/vamosc/internal/sym"
	"github.com/vamos-lang/vamosc/internal/verr"
	"github.com/vamos-lang/vamosc/internal/vlog"
)

// Check validates prog against idx and env, returning the first violation found. Warnings (B3)
// are logged through log rather than treated as fatal.
func Check(prog *ast.Program, env *sym.Env, idx *index.Index, log vlog.Logger) error {
	c := &checker{prog: prog, env: env, idx: idx, log: log}
	if err := c.checkEventSources(); err != nil {
		return err
	}
	if err := c.checkBufferGroups(); err != nil {
		return err
	}
	if err := c.checkStreamProcessors(); err != nil {
		return err
	}
	for _, rs := range prog.Arbiter.RuleSets {
		for _, mr := range rs.Rules {
			if err := c.checkMatchRule(mr, true); err != nil {
				return err
			}
		}
	}
	if err := c.checkRuleSetChooserOverlap(); err != nil {
		return err
	}
	for _, mr := range prog.Monitor.Rules {
		if err := c.checkMatchRule(mr, false); err != nil {
			return err
		}
	}
	return nil
}

type checker struct {
	prog *ast.Program
	env  *sym.Env
	idx  *index.Index
	log  vlog.Logger
}

func (c *checker) checkEventSources() error {
	for _, src := range c.prog.EventSources {
		if c.idx.StreamType(src.StreamType) == nil {
			return &verr.UnknownReferenceError{Pos: src.Pos(), What: "stream type", Name: src.StreamType}
		}
		if src.Processor != "" && c.idx.StreamProcessor(src.Processor) == nil {
			return &verr.UnknownReferenceError{Pos: src.Pos(), What: "stream processor", Name: src.Processor}
		}
	}
	return nil
}

func (c *checker) checkBufferGroups() error {
	for _, bg := range c.idx.BufferGroups {
		if len(bg.Members) == 0 {
			return &verr.ShapeError{Pos: bg.Pos(), Reason: "buffer group " + bg.Name + " has no members"}
		}
		for _, m := range bg.Members {
			if c.idx.EventSource(m) == nil {
				return &verr.UnknownReferenceError{Pos: bg.Pos(), What: "event source", Name: m}
			}
		}
		if bg.Order != nil {
			if _, err := expr.ParseInfix(strings.Fields(bg.Order.Src), bg.Order.Src, expr.Scope{"head"}, bg.Order.Pos()); err != nil {
				return err
			}
		}
	}
	return nil
}

// parseFieldExpr resolves a guard/action/predicate fragment against scope, so a malformed
// expression is caught here rather than surfacing as a cryptic failure in internal/emit/cexpr.
func parseFieldExpr(fe *ast.FieldExpr, scope expr.Scope) error {
	if fe == nil {
		return nil
	}
	_, err := expr.ParseInfix(strings.Fields(fe.Src), fe.Src, scope, fe.Pos)
	return err
}

// headScope collects the field names a match rule's head patterns bind, which its guard, action
// field expressions, and chooser predicate may reference.
func headScope(heads []*ast.HeadEvent) expr.Scope {
	var scope expr.Scope
	for _, h := range heads {
		scope = append(scope, h.Binds...)
	}
	return scope
}

// outputStreamType resolves the stream type an event-source instance's head events are drawn from:
// its declared stream type, or (when a stream processor is applied) the type that declares the
// processor's output event kind.
func (c *checker) outputStreamType(instance string) *ast.StreamType {
	pair, ok := c.env.StreamTypes[instance]
	if !ok {
		return nil
	}
	return c.idx.StreamType(pair.Output)
}

// checkStreamProcessors validates every rewrite rule's output field expressions, scoped to the
// fields its declared input event carries.
func (c *checker) checkStreamProcessors() error {
	for _, sp := range c.idx.StreamProcessors {
		for _, rule := range sp.Rules {
			inEv := c.outputEventStreamType(rule.InputEvent)
			var scope expr.Scope
			if inEv != nil {
				if ev := index.EventKind(inEv, rule.InputEvent); ev != nil {
					for _, f := range ev.Fields {
						scope = append(scope, f.Name)
					}
				}
			}
			for i := range rule.FieldExprs {
				if err := parseFieldExpr(&rule.FieldExprs[i], scope); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (c *checker) checkMatchRule(mr *ast.MatchRule, isArbiter bool) error {
	var group *ast.BufferGroupDecl
	if mr.Chooser != nil {
		group = c.idx.BufferGroup(mr.Chooser.Group)
		if group == nil {
			return &verr.UnknownReferenceError{Pos: mr.Chooser.Pos(), What: "buffer group", Name: mr.Chooser.Group}
		}
		if mr.Chooser.N < 1 || mr.Chooser.N > len(group.Members) {
			return &verr.ShapeError{Pos: mr.Chooser.Pos(), Reason: "choose count exceeds buffer group membership"}
		}
		if err := parseFieldExpr(mr.Chooser.Predicate, headScope(mr.Heads)); err != nil {
			return err
		}
	}

	if len(mr.Heads) > c.env.ArbiterBufSize {
		c.log.Warn("match rule requires more head events than ARBITER_BUFSIZE (B3)",
			"pos", mr.Pos().String(), "heads", len(mr.Heads), "bufsize", c.env.ArbiterBufSize)
	}

	for _, h := range mr.Heads {
		var st *ast.StreamType
		switch {
		case len(h.Stream) > 0 && h.Stream[0] == '$':
			if group == nil {
				return &verr.UnknownReferenceError{Pos: h.Pos(), What: "chooser slot", Name: h.Stream}
			}
			// every buffer group member must share the same output stream type (I3); use the
			// first member's to resolve the head's event kind.
			st = c.outputStreamType(group.Members[0])
		default:
			if c.idx.EventSource(h.Stream) == nil {
				return &verr.UnknownReferenceError{Pos: h.Pos(), What: "event source", Name: h.Stream}
			}
			st = c.outputStreamType(h.Stream)
		}
		if st == nil {
			return &verr.UnknownReferenceError{Pos: h.Pos(), What: "stream type", Name: h.Stream}
		}
		ev := index.EventKind(st, h.EventKind)
		if ev == nil {
			return &verr.UnknownReferenceError{Pos: h.Pos(), What: "event", Name: h.EventKind}
		}
		if len(h.Binds) != len(ev.Fields) {
			return &verr.ShapeError{Pos: h.Pos(), Reason: "head pattern for " + h.EventKind +
				" binds a different number of fields than it declares"}
		}
	}

	scope := headScope(mr.Heads)
	if err := parseFieldExpr(mr.Guard, scope); err != nil {
		return err
	}

	outSt := c.outputEventStreamType(mr.Action.OutputEvent)
	if outSt == nil {
		return &verr.UnknownReferenceError{Pos: mr.Action.Pos(), What: "event", Name: mr.Action.OutputEvent}
	}
	for i := range mr.Action.FieldExprs {
		if err := parseFieldExpr(&mr.Action.FieldExprs[i], scope); err != nil {
			return err
		}
	}
	if isArbiter {
		if c.env.ArbiterOutputType == "" {
			c.env.ArbiterOutputType = outSt.Name
		} else if c.env.ArbiterOutputType != outSt.Name {
			return &verr.AmbiguousArbiterOutputError{Pos: mr.Action.Pos(), First: c.env.ArbiterOutputType, Other: outSt.Name}
		}
	}
	for _, d := range mr.Action.Drops {
		if len(d.Stream) > 0 && d.Stream[0] == '$' {
			if mr.Chooser == nil {
				return &verr.UnknownReferenceError{Pos: mr.Action.Pos(), What: "chooser slot", Name: d.Stream}
			}
			continue
		}
		if c.idx.EventSource(d.Stream) == nil {
			return &verr.UnknownReferenceError{Pos: mr.Action.Pos(), What: "event source", Name: d.Stream}
		}
	}
	return nil
}

// checkRuleSetChooserOverlap enforces I6: within one rule set, an event source may be claimed by
// at most one buffer group across that rule set's choosers. Two rules in the same set choosing
// from groups that share a member would let that source be "chosen" under two different group
// identities, which spec.md §3 I6 forbids outright rather than leaving to runtime arbitration.
func (c *checker) checkRuleSetChooserOverlap() error {
	for _, rs := range c.prog.Arbiter.RuleSets {
		claimedBy := map[string]string{}
		for _, mr := range rs.Rules {
			if mr.Chooser == nil {
				continue
			}
			group := c.idx.BufferGroup(mr.Chooser.Group)
			if group == nil {
				continue // already reported by checkMatchRule's own chooser-group lookup
			}
			for _, member := range group.Members {
				if prev, ok := claimedBy[member]; ok && prev != group.Name {
					return &verr.ShapeError{Pos: mr.Chooser.Pos(), Reason: "event source " + member +
						" appears in buffer groups " + prev + " and " + group.Name + " within rule set " + rs.Name}
				}
				claimedBy[member] = group.Name
			}
		}
	}
	return nil
}

// outputEventStreamType resolves a name appearing after "emit" (in a rule action) or as a stream
// processor rule's input/output (in rewrite_rule) to its declaring stream type. Every caller in
// this package passes either an actual event name (a stream processor rewrite rule's InputEvent/
// OutputEvent) or, per the grammar's convention for rule actions, the enclosing stream type's own
// name directly — so an exact event match is tried first, falling back to a direct stream-type
// lookup by name.
func (c *checker) outputEventStreamType(eventName string) *ast.StreamType {
	for _, st := range c.idx.StreamTypes {
		if index.EventKind(st, eventName) != nil {
			return st
		}
	}
	return c.idx.StreamType(eventName)
}
