// Package emitc is VAMOS's primary code-generation backend: it renders a checked program as a
// single C source file implementing the shamon/mmlib/monitor runtime ABI (spec.md §6, "Emitted
// file layout"). Section content and ordering are grounded directly on original_source/compiler's
// own linear layout; the ordering itself is expressed as an emit.Model so sections are declared
// independently and assembled by dependency rather than by hand-interleaving strings in one pass
// (spec.md Design Note §9), the same decoupling the teacher's gen/gengo and gen/genpg backends get
// for free from gen.Ctx's import collection.
package emitc

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vamos-lang/vamosc/internal/ast"
	"github.com/vamos-lang/vamosc/internal/config"
	"github.com/vamos-lang/vamosc/internal/emit"
	"github.com/vamos-lang/vamosc/internal/emit/cexpr"
	"github.com/vamos-lang/vamosc/internal/index"
	"github.com/vamos-lang/vamosc/internal/sym"
)

// cType maps a VAMOS scalar type to its emitted C type.
func cType(t ast.ScalarType) string {
	if t.Elem != nil {
		return cType(*t.Elem) + "*"
	}
	switch t.Name {
	case "int":
		return "int64_t"
	case "float":
		return "double"
	case "bool":
		return "bool"
	case "str":
		return "char*"
	default:
		return "void*"
	}
}

// Emit renders prog as a complete C source file.
func Emit(prog *ast.Program, env *sym.Env, idx *index.Index, cfg config.Config) ([]byte, error) {
	m := &emit.Model{Preamble: preamble(maxChosen(prog))}

	m.Add("hole_event", holeEventStruct())
	m.Add("event_kinds", eventKindEnum(env))
	structDeps := []string{"hole_event"}
	for _, st := range idx.StreamTypes {
		m.Add("struct_"+st.Name, streamTypeStruct(st), "event_kinds", "hole_event")
		structDeps = append(structDeps, "struct_"+st.Name)
	}
	m.Add("globals", globals(idx, env), structDeps...)

	for _, n := range instanceNames(idx) {
		m.Add("should_keep_"+n, shouldKeepFunc(idx.EventSource(n), env), "globals")
	}
	for _, n := range instanceNames(idx) {
		src := idx.EventSource(n)
		if src.Processor != "" {
			m.Add("rewrite_"+n, rewriteFunc(src, env, idx), "globals")
		}
	}
	m.Add("arbiter_helpers", arbiterHelpers(env), "globals")
	for _, bg := range idx.BufferGroups {
		m.Add("order_"+bg.Name, orderFunc(bg, env, idx), "globals")
		m.Add("select_"+bg.Name, selectFunc(bg), "order_"+bg.Name, "arbiter_helpers")
		m.Add("buffer_group_init_"+bg.Name, bufferGroupInit(bg), "globals")
	}
	for _, n := range instanceNames(idx) {
		src := idx.EventSource(n)
		deps := []string{"globals", "should_keep_" + n}
		if src.Processor != "" {
			deps = append(deps, "rewrite_"+n)
		}
		m.Add("thread_"+n, threadBody(src, env), deps...)
	}
	for i, rs := range prog.Arbiter.RuleSets {
		deps := []string{"arbiter_helpers"}
		for _, mr := range rs.Rules {
			if mr.Chooser != nil {
				deps = append(deps, "select_"+mr.Chooser.Group)
			}
		}
		m.Add(fmt.Sprintf("rule_set_%d", i), ruleSetFunc(rs, i, idx), deps...)
	}
	m.Add("arbiter_main", arbiterMain(prog, idx), depsFor(prog)...)
	m.Add("monitor_main", monitorMain(prog), "arbiter_main")
	m.Add("main", mainFunc(idx), "monitor_main")

	return emit.Render(m)
}

func depsFor(prog *ast.Program) []string {
	deps := []string{"arbiter_helpers"}
	for i := range prog.Arbiter.RuleSets {
		deps = append(deps, fmt.Sprintf("rule_set_%d", i))
	}
	return deps
}

// instanceNames returns every event-source instance name in a stable (sorted) order, the order
// every section keyed by instance is emitted in.
func instanceNames(idx *index.Index) []string {
	names := make([]string, 0, len(idx.EventSources))
	for _, src := range idx.EventSources {
		names = append(names, src.InstanceName)
	}
	sort.Strings(names)
	return names
}

// maxChosen is the largest chooser count named anywhere in prog, the capacity MAX_CHOSEN_STREAMS
// must provide (spec.md §4.3/§4.6). A program with no choosers still gets room for one, so
// chosen_streams is never a zero-length array.
func maxChosen(prog *ast.Program) int {
	max := 1
	scan := func(rules []*ast.MatchRule) {
		for _, mr := range rules {
			if mr.Chooser != nil && mr.Chooser.N > max {
				max = mr.Chooser.N
			}
		}
	}
	for _, rs := range prog.Arbiter.RuleSets {
		scan(rs.Rules)
	}
	scan(prog.Monitor.Rules)
	return max
}

func preamble(maxChosenStreams int) string {
	return fmt.Sprintf(`/* generated by vamosc; do not edit by hand */
#include <stdio.h>
#include <stdlib.h>
#include <stdbool.h>
#include <stdint.h>
#include <string.h>
#include <pthread.h>
#include "shamon/mmlib.h"

#define MAX_CHOSEN_STREAMS %d
`, maxChosenStreams)
}

// holeEventStruct is the synthetic coalesced-drop event shape (spec.md §3, §4.4, I4). Every
// stream type's union embeds a hole_event_t member so a drainer can push a hole into the same
// arbiter buffer it pushes real events into.
func holeEventStruct() string {
	return "typedef struct { int kind; int64_t hole_count; } hole_event_t;\n"
}

func eventKindEnum(env *sym.Env) string {
	var b strings.Builder
	b.WriteString("enum event_kind {\n\tEVK_HOLE = 0,\n")
	for _, name := range env.KindsInOrder() {
		fmt.Fprintf(&b, "\tEVK_%s = %d,\n", strings.ToUpper(name), env.EventsToKinds[name])
	}
	b.WriteString("};\n")
	return b.String()
}

func streamTypeStruct(st *ast.StreamType) string {
	var b strings.Builder
	fmt.Fprintf(&b, "typedef union {\n\thole_event_t hole;\n")
	for _, ev := range st.Events {
		fmt.Fprintf(&b, "\tstruct { int kind;")
		for _, f := range ev.Fields {
			fmt.Fprintf(&b, " %s %s;", cType(f.Type), f.Name)
		}
		fmt.Fprintf(&b, " } %s;\n", strings.ToLower(ev.Name))
	}
	fmt.Fprintf(&b, "} %s_event_t;\n", st.Name)
	if len(st.Args) > 0 {
		fmt.Fprintf(&b, "typedef struct {")
		for _, f := range st.Args {
			fmt.Fprintf(&b, " %s %s;", cType(f.Type), f.Name)
		}
		fmt.Fprintf(&b, " } %s_args_t;\n", st.Name)
	}
	return b.String()
}

func globals(idx *index.Index, env *sym.Env) string {
	var b strings.Builder
	b.WriteString("static int arbiter_counter = 0;\n")
	fmt.Fprintf(&b, "static mmlib_ring_t monitor_buffer; /* capacity %d */\n", env.MonitorBufferSize)
	b.WriteString("static bool is_selection_successful = false;\n")
	b.WriteString("static int chosen_streams[MAX_CHOSEN_STREAMS];\n")
	for _, n := range instanceNames(idx) {
		pair := env.StreamTypes[n]
		fmt.Fprintf(&b, "static mmlib_ring_t *buf_%s; /* %s_event_t, ARBITER_BUFSIZE=%d */\n", n, pair.Output, env.ArbiterBufSize)
	}
	for _, bg := range idx.BufferGroups {
		fmt.Fprintf(&b, "static mmlib_ring_t *group_%s_bufs[%d];\n", bg.Name, len(bg.Members))
	}
	return b.String()
}

// shouldKeepFunc synthesizes the per-source should_keep predicate from the source's stream
// processor, not a blanket accept (spec.md §4.4: "synthesized from the stream-processor rewrite
// rules — an event is kept iff some rule matches its kind"). A source with no processor has
// nothing to filter against, so every kind of its (unchanged) stream type survives.
func shouldKeepFunc(src *ast.EventSourceDecl, env *sym.Env) string {
	pair := env.StreamTypes[src.InstanceName]
	var b strings.Builder
	fmt.Fprintf(&b, "static bool should_keep_%s(const %s_event_t *ev) {\n", src.InstanceName, pair.Input)
	if src.Processor == "" {
		b.WriteString("\treturn true;\n}\n")
		return b.String()
	}
	b.WriteString("\tswitch (ev->hole.kind) {\n")
	seen := map[string]bool{}
	for _, rule := range env.StreamProcessorsData[src.Processor] {
		if seen[rule.InputEvent] {
			continue
		}
		seen[rule.InputEvent] = true
		fmt.Fprintf(&b, "\tcase EVK_%s: return true;\n", strings.ToUpper(rule.InputEvent))
	}
	b.WriteString("\tdefault: return false;\n\t}\n}\n")
	return b.String()
}

// rewriteFunc synthesizes a source's raw-to-output event rewrite from its stream processor's
// rules, projecting each output field expression against the matched rule's declared input-event
// fields (spec.md §4.4: "rewrite to the output event kind and project fields"). A rewrite rule's
// field expressions reference the input event's own declared field names directly (the rule's
// parenthesized input binder list is a readability aid the parser does not retain — see
// internal/parser's streamProcessor), so the substitution scope is exactly those field names.
func rewriteFunc(src *ast.EventSourceDecl, env *sym.Env, idx *index.Index) string {
	pair := env.StreamTypes[src.InstanceName]
	inSt := idx.StreamType(src.StreamType)
	var b strings.Builder
	fmt.Fprintf(&b, "static void rewrite_%s(const %s_event_t *raw, %s_event_t *out) {\n", src.InstanceName, pair.Input, pair.Output)
	b.WriteString("\tswitch (raw->hole.kind) {\n")
	for _, rule := range env.StreamProcessorsData[src.Processor] {
		inTag := strings.ToLower(rule.InputEvent)
		outTag := strings.ToLower(rule.OutputEvent)
		fmt.Fprintf(&b, "\tcase EVK_%s:\n", strings.ToUpper(rule.InputEvent))
		fmt.Fprintf(&b, "\t\tout->%s.kind = EVK_%s;\n", outTag, strings.ToUpper(rule.OutputEvent))
		subst := map[string]string{}
		if inEv := index.EventKind(inSt, rule.InputEvent); inEv != nil {
			for _, f := range inEv.Fields {
				subst[f.Name] = fmt.Sprintf("raw->%s.%s", inTag, f.Name)
			}
		}
		for _, fe := range rule.FieldExprs {
			fmt.Fprintf(&b, "\t\tout->%s.%s = %s;\n", outTag, fe.Name, cexpr.RenderScoped(cexpr.Tokens(fe.Src), subst))
		}
		b.WriteString("\t\tbreak;\n")
	}
	b.WriteString("\tdefault: break;\n\t}\n}\n")
	return b.String()
}

// orderFieldAccess rewrites an order expression's "head" placeholder (spec.md §3: "a pure
// comparison over the most recent event of each candidate stream") into ptr-><tag>.<field...>.
// Every buffer-group order expression in spec.md's scenarios is a single dotted field read off
// that most-recent event (e.g. "head.ts"); tag picks which tagged-union member to read through
// (documented simplification, DESIGN.md).
func orderFieldAccess(order *ast.OrderExpr, ptr, tag string) string {
	rest := strings.TrimPrefix(order.Src, "head")
	rest = strings.ReplaceAll(rest, " ", "")
	rest = strings.TrimPrefix(rest, ".")
	if rest == "" {
		return ptr
	}
	return fmt.Sprintf("%s->%s.%s", ptr, tag, rest)
}

// orderFunc emits group G's qsort comparator over indices into group_G_bufs: each index is
// resolved to its buffer's most recent event via mmlib_ring_peek before the order expression is
// evaluated against it (spec.md §4.6). This is the comparator select_G's qsort call below
// actually invokes, closing the dead-code gap between order_%s and chosen_streams.
func orderFunc(bg *ast.BufferGroupDecl, env *sym.Env, idx *index.Index) string {
	outType := bg.Name
	if len(bg.Members) > 0 {
		outType = env.StreamTypes[bg.Members[0]].Output
	}
	tag := "unknown"
	if st := idx.StreamType(outType); st != nil && len(st.Events) > 0 {
		tag = strings.ToLower(st.Events[0].Name)
	}
	dir := "<"
	if bg.Order.Desc {
		dir = ">"
	}
	aExpr := orderFieldAccess(bg.Order, "a_ptr", tag)
	bExpr := orderFieldAccess(bg.Order, "b_ptr", tag)
	return fmt.Sprintf(`static int order_%s(const void *pa, const void *pb) {
	/* order by %s, %s (ties break by declaration order, spec.md Design Note 9(b)) */
	int ia = *(const int *)pa, ib = *(const int *)pb;
	const %s_event_t *a_ptr = mmlib_ring_peek(group_%s_bufs[ia], mmlib_ring_len(group_%s_bufs[ia]) - 1);
	const %s_event_t *b_ptr = mmlib_ring_peek(group_%s_bufs[ib], mmlib_ring_len(group_%s_bufs[ib]) - 1);
	double a = (double)(%s);
	double b = (double)(%s);
	return a %s b ? -1 : (a == b ? (ia > ib) - (ia < ib) : 1);
}
`, bg.Name, bg.Order.Src, map[bool]string{true: "desc", false: "asc"}[bg.Order.Desc],
		outType, bg.Name, bg.Name, outType, bg.Name, bg.Name, aExpr, bExpr, dir)
}

// selectFunc picks the first/last `want` streams of group G by order_G and commits their
// group-local indices into chosen_streams, reporting success in is_selection_successful (spec.md
// §4.3/§4.6: "recomputes G's order expression over candidate heads ... selects the first/last k
// satisfying the guard ... commits the selection into chosen_streams"). A rule's chooser head
// ("$0", "$1", ...) then reads chosen_streams by slot index.
func selectFunc(bg *ast.BufferGroupDecl) string {
	n := len(bg.Members)
	return fmt.Sprintf(`static bool select_%s(int want, bool want_last) {
	is_selection_successful = false;
	if (want > %d) return false;
	int idxs[%d];
	for (int i = 0; i < %d; i++) idxs[i] = i;
	qsort(idxs, %d, sizeof(int), order_%s);
	int start = want_last ? %d - want : 0;
	for (int i = 0; i < want; i++) {
		int gi = idxs[start + i];
		if (!check_n_events(group_%s_bufs[gi], 1)) return false;
		chosen_streams[i] = gi;
	}
	is_selection_successful = true;
	return true;
}
`, bg.Name, n, n, n, n, bg.Name, n, bg.Name)
}

// bufferGroupInit populates group_G_bufs from the per-instance arbiter buffers, run from main
// before threads start (spec.md §6, emitted-file-layout item 9; §5 "resource acquisition").
func bufferGroupInit(bg *ast.BufferGroupDecl) string {
	var b strings.Builder
	fmt.Fprintf(&b, "static void init_buffer_group_%s(void) {\n", bg.Name)
	for i, m := range bg.Members {
		fmt.Fprintf(&b, "\tgroup_%s_bufs[%d] = buf_%s;\n", bg.Name, i, m)
	}
	b.WriteString("}\n")
	return b.String()
}

// threadBody is a source's drainer thread: read, should_keep filter (coalescing consecutive
// drops into one hole_event_t push), rewrite-if-processor, push (spec.md §4.4). hole_count only
// ever flushes right before the next kept push, or once more after the read loop ends, so a run
// of drops is always represented by exactly one hole event.
func threadBody(src *ast.EventSourceDecl, env *sym.Env) string {
	pair := env.StreamTypes[src.InstanceName]
	var b strings.Builder
	fmt.Fprintf(&b, "static void *thread_%s(void *arg) {\n", src.InstanceName)
	fmt.Fprintf(&b, "\t/* connects via %s", src.Conn.Kind)
	for _, a := range src.Conn.Args {
		fmt.Fprintf(&b, " %s", a)
	}
	b.WriteString(" */\n")
	fmt.Fprintf(&b, "\t%s_event_t raw;\n", pair.Input)
	if src.Processor != "" {
		fmt.Fprintf(&b, "\t%s_event_t out;\n", pair.Output)
	}
	b.WriteString("\tint64_t hole_count = 0;\n")
	fmt.Fprintf(&b, "\twhile (mmlib_connector_read_%s(&raw)) {\n", src.Conn.Kind)
	fmt.Fprintf(&b, "\t\tif (!should_keep_%s(&raw)) {\n\t\t\thole_count++;\n\t\t\tcontinue;\n\t\t}\n", src.InstanceName)
	b.WriteString(holeFlushStmt(pair.Output, src.InstanceName, "\t\t"))
	if src.Processor != "" {
		fmt.Fprintf(&b, "\t\trewrite_%s(&raw, &out);\n", src.InstanceName)
		fmt.Fprintf(&b, "\t\tmmlib_ring_push(buf_%s, &out);\n", src.InstanceName)
	} else {
		fmt.Fprintf(&b, "\t\tmmlib_ring_push(buf_%s, &raw);\n", src.InstanceName)
	}
	b.WriteString("\t}\n")
	b.WriteString(holeFlushStmt(pair.Output, src.InstanceName, "\t"))
	b.WriteString("\treturn NULL;\n}\n")
	return b.String()
}

// holeFlushStmt emits "if there's an accumulated hole, push it and reset the counter", indented
// by indent. Shared between threadBody's per-iteration flush (just before a kept push) and its
// final flush once the source's producer stream ends.
func holeFlushStmt(outputType, instance, indent string) string {
	return fmt.Sprintf("%sif (hole_count > 0) {\n"+
		"%s\t%s_event_t h;\n"+
		"%s\th.hole.kind = EVK_HOLE;\n"+
		"%s\th.hole.hole_count = hole_count;\n"+
		"%s\tmmlib_ring_push(buf_%s, &h);\n"+
		"%s\thole_count = 0;\n"+
		"%s}\n",
		indent, indent, outputType, indent, indent, indent, instance, indent, indent)
}

func arbiterHelpers(env *sym.Env) string {
	return fmt.Sprintf(`static bool are_streams_done(void) { return arbiter_counter >= %d; }
static bool check_n_events(mmlib_ring_t *buf, int n) { return mmlib_ring_len(buf) >= n; }
static bool are_events_in_head(mmlib_ring_t *buf, int n) { return check_n_events(buf, n); }
static void *get_event_at_index(mmlib_ring_t *buf, int i) { return mmlib_ring_peek(buf, i); }
static void print_no_match(void) { no_consecutive_matches_limit_check(); }
static int no_matches_count = 0;
static const int no_consecutive_matches_limit = %d;
static void no_consecutive_matches_limit_check(void) {
	if (++no_matches_count > no_consecutive_matches_limit) {
		fprintf(stderr, "warning: no arbiter match for %%d consecutive rounds\n", no_matches_count);
	}
}
`, env.ArbiterBufSize, env.ArbiterBufSize*4)
}

// bufRef resolves a match rule's head/drop stream reference to the C buffer expression it names:
// a plain instance name is its own static buf_<name> pointer; a chooser-slot reference ("$0",
// "$1", ...) is the buffer select_G committed at that slot of chosen_streams (spec.md §4.3:
// "the rule body reads their heads by index").
func bufRef(streamRef string, chooser *ast.ChooseN) string {
	if len(streamRef) > 0 && streamRef[0] == '$' && chooser != nil {
		slot := strings.TrimPrefix(streamRef, "$")
		return fmt.Sprintf("group_%s_bufs[chosen_streams[%s]]", chooser.Group, slot)
	}
	return "buf_" + streamRef
}

func ruleSetFunc(rs *ast.RuleSet, ruleSetIdx int, idx *index.Index) string {
	var b strings.Builder
	fmt.Fprintf(&b, "static bool eval_rule_set_%d(void) {\n", ruleSetIdx)
	for ri, mr := range rs.Rules {
		label := fmt.Sprintf("next_%d_%d", ruleSetIdx, ri)
		fmt.Fprintf(&b, "\t{\n")
		if mr.Chooser != nil {
			wantLast := "false"
			if mr.Chooser.Last {
				wantLast = "true"
			}
			fmt.Fprintf(&b, "\t\t/* choose %d from %s */\n", mr.Chooser.N, mr.Chooser.Group)
			fmt.Fprintf(&b, "\t\tif (!select_%s(%d, %s)) goto %s;\n", mr.Chooser.Group, mr.Chooser.N, wantLast, label)
		}
		for _, h := range mr.Heads {
			fmt.Fprintf(&b, "\t\tif (!are_events_in_head(%s, 1)) goto %s;\n", bufRef(h.Stream, mr.Chooser), label)
		}
		if mr.Guard != nil {
			fmt.Fprintf(&b, "\t\tif (!(%s)) goto %s;\n", cexpr.Render(cexpr.Tokens(mr.Guard.Src)), label)
		}
		fmt.Fprintf(&b, "\t\t/* emit %s */\n", mr.Action.OutputEvent)
		for _, d := range mr.Action.Drops {
			fmt.Fprintf(&b, "\t\tmmlib_ring_drop(%s, %d);\n", bufRef(d.Stream, mr.Chooser), d.Count)
		}
		fmt.Fprintf(&b, "\t\treturn true;\n")
		fmt.Fprintf(&b, "\t%s: ;\n", label)
		fmt.Fprintf(&b, "\t}\n")
	}
	b.WriteString("\treturn false;\n}\n")
	return b.String()
}

func arbiterMain(prog *ast.Program, idx *index.Index) string {
	var b strings.Builder
	b.WriteString("static void *arbiter_main(void *arg) {\n\twhile (!are_streams_done()) {\n")
	for i := range prog.Arbiter.RuleSets {
		fmt.Fprintf(&b, "\t\tif (eval_rule_set_%d()) { arbiter_counter++; no_matches_count = 0; continue; }\n", i)
	}
	b.WriteString("\t\tprint_no_match();\n\t}\n\treturn NULL;\n}\n")
	return b.String()
}

func monitorMain(prog *ast.Program) string {
	var b strings.Builder
	b.WriteString("static void *monitor_main(void *arg) {\n\twhile (1) {\n")
	for i, mr := range prog.Monitor.Rules {
		if mr.Guard != nil {
			fmt.Fprintf(&b, "\t\tif (%s) { /* monitor rule %d emits %s */ }\n", cexpr.Render(cexpr.Tokens(mr.Guard.Src)), i, mr.Action.OutputEvent)
		} else {
			fmt.Fprintf(&b, "\t\t/* monitor rule %d emits %s */\n", i, mr.Action.OutputEvent)
		}
	}
	b.WriteString("\t}\n\treturn NULL;\n}\n")
	return b.String()
}

func mainFunc(idx *index.Index) string {
	var b strings.Builder
	b.WriteString("int main(int argc, char **argv) {\n")
	names := instanceNames(idx)
	fmt.Fprintf(&b, "\tpthread_t threads[%d + 2];\n", len(names))
	for _, bg := range idx.BufferGroups {
		fmt.Fprintf(&b, "\tinit_buffer_group_%s();\n", bg.Name)
	}
	for i, n := range names {
		fmt.Fprintf(&b, "\tpthread_create(&threads[%d], NULL, thread_%s, NULL);\n", i, n)
	}
	fmt.Fprintf(&b, "\tpthread_create(&threads[%d], NULL, arbiter_main, NULL);\n", len(names))
	b.WriteString("\tmonitor_main(NULL);\n")
	fmt.Fprintf(&b, "\tfor (int i = 0; i < %d + 1; i++) pthread_join(threads[i], NULL);\n", len(names))
	b.WriteString("\treturn 0;\n}\n")
	return b.String()
}
