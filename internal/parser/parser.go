// Package parser is VAMOS's grammar-directed recognizer (spec.md §4.1).
//
// It walks a token stream produced by internal/lex and builds the sum-type AST declared in
// internal/ast, populating the symbol environment (internal/sym) as declarations are recognized —
// event kinds are assigned and stream-type tables are built during parsing, mirroring the
// original parser's side-effecting actions (spec.md §4.1, §9). All errors are fatal
// (verr.SyntaxError, verr.RedeclarationError, verr.ReservedNameError, and verr.ShapeError for a
// stream type with no events) and abort compilation.
//
// Concrete VAMOS syntax (informal grammar):
//
//	program        := "components" "{" component* "}" "event" "sources" "{" event_source* "}"
//	                   arbiter monitor
//	component      := stream_type | stream_processor | buffer_group | match_fun
//	stream_type    := "stream" "type" ident "{" event_decl* args_decl? "}"
//	event_decl     := "event" ident "(" field ("," field)* ")"
//	field          := ident ":" scalar_type
//	args_decl      := "args" "{" field ("," field)* "}"
//	stream_proc    := "stream" "processor" ident "{" rewrite_rule* "}"
//	rewrite_rule   := ident "(" ident* ")" "->" ident "(" field_expr ("," field_expr)* ")"
//	field_expr     := ident ":" EXPR
//	buffer_group   := "buffer" "group" ident "=" "{" ident ("," ident)* "}"
//	                   "order" "by" EXPR ("asc"|"desc")?
//	match_fun      := "fun" ident "(" field* ")" "->" scalar_type "{" RAW "}"
//	event_source   := "source" ident ("[" int "]")? ":" ident ("use" ident)? "via" ident
//	                   ("(" EXPR ("," EXPR)* ")")?
//	arbiter        := "arbiter" "{" rule_set* "}"
//	rule_set       := "rule" "set" ident "{" match_rule* "}"
//	monitor        := "monitor" "{" match_rule* "}"
//	match_rule     := chooser? "on" head ("," head)* ("where" EXPR)?
//	                   "emit" ident "(" field_expr ("," field_expr)* ")"
//	                   ("drop" drop_spec ("," drop_spec)*)? ";"
//	chooser        := "choose" ("first"|"last") int "from" ident ("matching" EXPR)? ":"
//	head           := ident ":" ident "(" ident* ")"
//	drop_spec      := ident int
//
// EXPR is a run of tokens up to (but not including) one of a small set of terminators; its tokens
// are re-joined as text (see exprUntil) and handed to internal/expr during checking/emission, not
// parsed here.
package parser

import (
	"strconv"
	"strings"

	"github.com/vamos-lang/vamosc/internal/ast"
	"github.com/vamos-lang/vamosc/internal/lex"
	"github.com/vamos-lang/vamosc/internal/sym"
	"github.com/vamos-lang/vamosc/internal/verr"
)

type parser struct {
	toks []lex.Token
	pos  int
	env  *sym.Env
}

// Parse tokenizes and parses src into a Program, populating env as declarations are recognized.
func Parse(file, src string, env *sym.Env) (*ast.Program, error) {
	lx := lex.New(file, src)
	toks, err := lx.Tokenize()
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, env: env}
	return p.program()
}

func (p *parser) cur() lex.Token { return p.toks[p.pos] }
func (p *parser) atEOF() bool    { return p.cur().Kind == lex.EOF }
func (p *parser) advance() lex.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) is(kind lex.Kind, text string) bool {
	t := p.cur()
	return t.Kind == kind && (text == "" || t.Text == text)
}

func (p *parser) expect(kind lex.Kind, text string) (lex.Token, error) {
	if !p.is(kind, text) {
		return lex.Token{}, &verr.SyntaxError{Pos: p.cur().Pos, Expected: []string{text}, Got: p.cur().Text}
	}
	return p.advance(), nil
}

func (p *parser) word(w string) (lex.Token, error) {
	if p.cur().Kind != lex.Keyword && p.cur().Kind != lex.Ident {
		return lex.Token{}, &verr.SyntaxError{Pos: p.cur().Pos, Expected: []string{w}, Got: p.cur().Text}
	}
	if p.cur().Text != w {
		return lex.Token{}, &verr.SyntaxError{Pos: p.cur().Pos, Expected: []string{w}, Got: p.cur().Text}
	}
	return p.advance(), nil
}

func (p *parser) keyword(kw string) (lex.Token, error) { return p.expect(lex.Keyword, kw) }
func (p *parser) punct(s string) (lex.Token, error)    { return p.expect(lex.Punct, s) }

func (p *parser) ident() (lex.Token, error) {
	if p.cur().Kind != lex.Ident {
		return lex.Token{}, &verr.SyntaxError{Pos: p.cur().Pos, Expected: []string{"identifier"}, Got: p.cur().Text}
	}
	return p.advance(), nil
}

func (p *parser) program() (*ast.Program, error) {
	prog := &ast.Program{Base: ast.Base{P: p.cur().Pos}}

	if _, err := p.word("components"); err != nil {
		return nil, err
	}
	if _, err := p.punct("{"); err != nil {
		return nil, err
	}
	for !p.is(lex.Punct, "}") {
		c, err := p.component()
		if err != nil {
			return nil, err
		}
		prog.Components = append(prog.Components, c)
	}
	if _, err := p.punct("}"); err != nil {
		return nil, err
	}

	if _, err := p.keyword("event"); err != nil {
		return nil, err
	}
	if _, err := p.word("sources"); err != nil {
		return nil, err
	}
	if _, err := p.punct("{"); err != nil {
		return nil, err
	}
	for !p.is(lex.Punct, "}") {
		src, err := p.eventSource()
		if err != nil {
			return nil, err
		}
		prog.EventSources = append(prog.EventSources, src)
	}
	if _, err := p.punct("}"); err != nil {
		return nil, err
	}

	arb, err := p.arbiter()
	if err != nil {
		return nil, err
	}
	prog.Arbiter = arb

	mon, err := p.monitor()
	if err != nil {
		return nil, err
	}
	prog.Monitor = mon

	if !p.atEOF() {
		return nil, &verr.SyntaxError{Pos: p.cur().Pos, Got: p.cur().Text, Expected: []string{"EOF"}}
	}
	return prog, nil
}

func (p *parser) component() (ast.Component, error) {
	switch {
	case p.is(lex.Keyword, "stream"):
		save := p.pos
		p.advance()
		isProc := p.is(lex.Keyword, "processor")
		p.pos = save
		if isProc {
			return p.streamProcessor()
		}
		return p.streamType()
	case p.is(lex.Keyword, "buffer"):
		return p.bufferGroup()
	case p.is(lex.Keyword, "fun"):
		return p.matchFun()
	default:
		return nil, &verr.SyntaxError{Pos: p.cur().Pos,
			Expected: []string{"stream type", "stream processor", "buffer group", "fun"}, Got: p.cur().Text}
	}
}

func (p *parser) scalarType() (ast.ScalarType, error) {
	if p.is(lex.Keyword, "array") {
		p.advance()
		if _, err := p.keyword("of"); err != nil {
			return ast.ScalarType{}, err
		}
		elem, err := p.scalarType()
		if err != nil {
			return ast.ScalarType{}, err
		}
		return ast.ScalarType{Name: "array", Elem: &elem}, nil
	}
	for _, kw := range []string{"int", "str", "float", "bool"} {
		if p.is(lex.Keyword, kw) {
			p.advance()
			return ast.ScalarType{Name: kw}, nil
		}
	}
	return ast.ScalarType{}, &verr.SyntaxError{Pos: p.cur().Pos,
		Expected: []string{"int", "str", "float", "bool", "array"}, Got: p.cur().Text}
}

func (p *parser) field() (ast.Field, error) {
	name, err := p.ident()
	if err != nil {
		return ast.Field{}, err
	}
	if _, err := p.punct(":"); err != nil {
		return ast.Field{}, err
	}
	typ, err := p.scalarType()
	if err != nil {
		return ast.Field{}, err
	}
	return ast.Field{Name: name.Text, Type: typ}, nil
}

func (p *parser) fieldList(open, close string) ([]ast.Field, error) {
	if _, err := p.punct(open); err != nil {
		return nil, err
	}
	var fields []ast.Field
	for !p.is(lex.Punct, close) {
		f, err := p.field()
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
		if p.is(lex.Punct, ",") {
			p.advance()
		}
	}
	if _, err := p.punct(close); err != nil {
		return nil, err
	}
	return fields, nil
}

// identList parses a parenthesized, comma-separated list of bare identifiers (used for a
// rewrite rule's input-event binder list and a head pattern's captured field names).
func (p *parser) identList(open, close string) ([]string, error) {
	if _, err := p.punct(open); err != nil {
		return nil, err
	}
	var names []string
	for !p.is(lex.Punct, close) {
		id, err := p.ident()
		if err != nil {
			return nil, err
		}
		names = append(names, id.Text)
		if p.is(lex.Punct, ",") {
			p.advance()
		}
	}
	if _, err := p.punct(close); err != nil {
		return nil, err
	}
	return names, nil
}

func (p *parser) eventDecl() (*ast.EventDecl, error) {
	pos := p.cur().Pos
	if _, err := p.keyword("event"); err != nil {
		return nil, err
	}
	name, err := p.ident()
	if err != nil {
		return nil, err
	}
	if err := p.env.Declare(pos, "event", name.Text); err != nil {
		return nil, err
	}
	fields, err := p.fieldList("(", ")")
	if err != nil {
		return nil, err
	}
	p.env.AddEvent(name.Text)
	return &ast.EventDecl{Base: ast.Base{P: pos}, Name: name.Text, Fields: fields}, nil
}

func (p *parser) streamType() (*ast.StreamType, error) {
	pos := p.cur().Pos
	if _, err := p.keyword("stream"); err != nil {
		return nil, err
	}
	if _, err := p.keyword("type"); err != nil {
		return nil, err
	}
	name, err := p.ident()
	if err != nil {
		return nil, err
	}
	if err := p.env.Declare(pos, "stream_type", name.Text); err != nil {
		return nil, err
	}
	if _, err := p.punct("{"); err != nil {
		return nil, err
	}
	st := &ast.StreamType{Base: ast.Base{P: pos}, Name: name.Text}
	for !p.is(lex.Punct, "}") {
		if p.is(lex.Keyword, "args") {
			p.advance()
			fields, err := p.fieldList("{", "}")
			if err != nil {
				return nil, err
			}
			st.Args = fields
			continue
		}
		ev, err := p.eventDecl()
		if err != nil {
			return nil, err
		}
		st.Events = append(st.Events, ev)
	}
	if _, err := p.punct("}"); err != nil {
		return nil, err
	}
	if len(st.Events) == 0 {
		return nil, &verr.ShapeError{Pos: pos, Reason: "stream type " + name.Text + " declares no events (B2)"}
	}
	p.env.RegisterStreamType(st)
	return st, nil
}

// rawBlock captures verbatim source text up to its matching close brace, tracking nested "{"/"}"
// so a match_fun body may itself contain host-language blocks. The opening "{" must already have
// been consumed by the caller; the closing "}" is left unconsumed.
func (p *parser) rawBlock() string {
	var b strings.Builder
	depth := 0
	for {
		t := p.cur()
		if t.Kind == lex.EOF {
			break
		}
		if t.Kind == lex.Punct && t.Text == "}" {
			if depth == 0 {
				break
			}
			depth--
		}
		if t.Kind == lex.Punct && t.Text == "{" {
			depth++
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		if t.Kind == lex.String {
			b.WriteByte('"')
			b.WriteString(t.Text)
			b.WriteByte('"')
		} else {
			b.WriteString(t.Text)
		}
		p.advance()
	}
	return strings.TrimSpace(b.String())
}

// exprUntil collects raw source text for an expression fragment, stopping (without consuming)
// once a token matching one of terms is seen. Tokens are re-joined with single spaces, except that
// a "." is joined to its neighbors, so a dotted field access such as "head.ts" stays one word.
// VAMOS expressions are not parsed by this grammar at all (spec.md §4.9): the text is handed to
// internal/expr later.
func (p *parser) exprUntil(terms ...string) string {
	var b strings.Builder
	depth := 0
	prevDot := false
	for {
		t := p.cur()
		if t.Kind == lex.EOF {
			break
		}
		if depth == 0 {
			stop := false
			for _, term := range terms {
				if t.Text == term && (t.Kind == lex.Keyword || t.Kind == lex.Punct) {
					stop = true
				}
			}
			if stop {
				break
			}
		}
		if t.Kind == lex.Punct {
			switch t.Text {
			case "(", "[":
				depth++
			case ")", "]":
				depth--
			}
		}
		dot := t.Kind == lex.Punct && t.Text == "."
		if b.Len() > 0 && !dot && !prevDot {
			b.WriteByte(' ')
		}
		prevDot = dot
		if t.Kind == lex.String {
			b.WriteByte('"')
			b.WriteString(t.Text)
			b.WriteByte('"')
		} else {
			b.WriteString(t.Text)
		}
		p.advance()
	}
	return strings.TrimSpace(b.String())
}

func (p *parser) fieldExpr() (ast.FieldExpr, error) {
	pos := p.cur().Pos
	name, err := p.ident()
	if err != nil {
		return ast.FieldExpr{}, err
	}
	if _, err := p.punct(":"); err != nil {
		return ast.FieldExpr{}, err
	}
	src := p.exprUntil(",", ")")
	return ast.FieldExpr{Name: name.Text, Src: src, Pos: pos}, nil
}

func (p *parser) fieldExprList() ([]ast.FieldExpr, error) {
	if _, err := p.punct("("); err != nil {
		return nil, err
	}
	var exprs []ast.FieldExpr
	for !p.is(lex.Punct, ")") {
		fe, err := p.fieldExpr()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, fe)
		if p.is(lex.Punct, ",") {
			p.advance()
		}
	}
	if _, err := p.punct(")"); err != nil {
		return nil, err
	}
	return exprs, nil
}

func (p *parser) streamProcessor() (*ast.StreamProcessor, error) {
	pos := p.cur().Pos
	if _, err := p.keyword("stream"); err != nil {
		return nil, err
	}
	if _, err := p.keyword("processor"); err != nil {
		return nil, err
	}
	name, err := p.ident()
	if err != nil {
		return nil, err
	}
	if err := p.env.Declare(pos, "stream_processor", name.Text); err != nil {
		return nil, err
	}
	if _, err := p.punct("{"); err != nil {
		return nil, err
	}
	sp := &ast.StreamProcessor{Base: ast.Base{P: pos}, Name: name.Text}
	for !p.is(lex.Punct, "}") {
		rulePos := p.cur().Pos
		in, err := p.ident()
		if err != nil {
			return nil, err
		}
		if _, err := p.identList("(", ")"); err != nil { // input binder names, not retained
			return nil, err
		}
		if _, err := p.punct("->"); err != nil {
			return nil, err
		}
		out, err := p.ident()
		if err != nil {
			return nil, err
		}
		exprs, err := p.fieldExprList()
		if err != nil {
			return nil, err
		}
		sp.Rules = append(sp.Rules, &ast.RewriteRule{
			Base: ast.Base{P: rulePos}, InputEvent: in.Text, OutputEvent: out.Text, FieldExprs: exprs,
		})
	}
	if _, err := p.punct("}"); err != nil {
		return nil, err
	}
	p.env.RegisterStreamProcessor(sp)
	return sp, nil
}

func (p *parser) bufferGroup() (*ast.BufferGroupDecl, error) {
	pos := p.cur().Pos
	if _, err := p.keyword("buffer"); err != nil {
		return nil, err
	}
	if _, err := p.keyword("group"); err != nil {
		return nil, err
	}
	name, err := p.ident()
	if err != nil {
		return nil, err
	}
	if err := p.env.Declare(pos, "buffer_group", name.Text); err != nil {
		return nil, err
	}
	if _, err := p.punct("="); err != nil {
		return nil, err
	}
	members, err := p.identList("{", "}")
	if err != nil {
		return nil, err
	}
	if _, err := p.keyword("order"); err != nil {
		return nil, err
	}
	if _, err := p.keyword("by"); err != nil {
		return nil, err
	}
	orderPos := p.cur().Pos
	src := p.exprUntil("asc", "desc")
	desc := false
	if p.is(lex.Keyword, "asc") {
		p.advance()
	} else if p.is(lex.Keyword, "desc") {
		p.advance()
		desc = true
	}
	bg := &ast.BufferGroupDecl{
		Base: ast.Base{P: pos}, Name: name.Text, Members: members,
		Order: &ast.OrderExpr{Base: ast.Base{P: orderPos}, Src: src, Desc: desc},
	}
	p.env.RegisterBufferGroup(bg)
	return bg, nil
}

func (p *parser) matchFun() (*ast.MatchFunDecl, error) {
	pos := p.cur().Pos
	if _, err := p.keyword("fun"); err != nil {
		return nil, err
	}
	name, err := p.ident()
	if err != nil {
		return nil, err
	}
	if err := p.env.Declare(pos, "match_fun", name.Text); err != nil {
		return nil, err
	}
	params, err := p.fieldList("(", ")")
	if err != nil {
		return nil, err
	}
	if _, err := p.punct("->"); err != nil {
		return nil, err
	}
	ret, err := p.scalarType()
	if err != nil {
		return nil, err
	}
	if _, err := p.punct("{"); err != nil {
		return nil, err
	}
	body := p.rawBlock()
	if _, err := p.punct("}"); err != nil {
		return nil, err
	}
	return &ast.MatchFunDecl{Base: ast.Base{P: pos}, Name: name.Text, Params: params, Return: ret, Body: body}, nil
}

func (p *parser) eventSource() (*ast.EventSourceDecl, error) {
	pos := p.cur().Pos
	if _, err := p.word("source"); err != nil {
		return nil, err
	}
	name, err := p.ident()
	if err != nil {
		return nil, err
	}
	if err := p.env.Declare(pos, "event_source", name.Text); err != nil {
		return nil, err
	}
	src := &ast.EventSourceDecl{Base: ast.Base{P: pos}, InstanceName: name.Text}
	if p.is(lex.Punct, "[") {
		p.advance()
		n, err := p.intLit()
		if err != nil {
			return nil, err
		}
		if _, err := p.punct("]"); err != nil {
			return nil, err
		}
		src.Count = &n
	}
	if _, err := p.punct(":"); err != nil {
		return nil, err
	}
	st, err := p.ident()
	if err != nil {
		return nil, err
	}
	src.StreamType = st.Text
	if p.is(lex.Ident, "use") {
		p.advance()
		proc, err := p.ident()
		if err != nil {
			return nil, err
		}
		src.Processor = proc.Text
	}
	if _, err := p.word("via"); err != nil {
		return nil, err
	}
	connKind, err := p.ident()
	if err != nil {
		return nil, err
	}
	conn := &ast.ConnectionKind{Base: ast.Base{P: pos}, Kind: connKind.Text}
	if p.is(lex.Punct, "(") {
		p.advance()
		for !p.is(lex.Punct, ")") {
			conn.Args = append(conn.Args, p.exprUntil(",", ")"))
			if p.is(lex.Punct, ",") {
				p.advance()
			}
		}
		if _, err := p.punct(")"); err != nil {
			return nil, err
		}
	}
	src.Conn = conn
	p.env.RegisterEventSource(src)
	return src, nil
}

func (p *parser) intLit() (int, error) {
	if p.cur().Kind != lex.Int {
		return 0, &verr.SyntaxError{Pos: p.cur().Pos, Expected: []string{"integer"}, Got: p.cur().Text}
	}
	t := p.advance()
	n, err := strconv.Atoi(t.Text)
	if err != nil {
		return 0, &verr.SyntaxError{Pos: t.Pos, Got: t.Text, Expected: []string{"integer"}}
	}
	return n, nil
}

func (p *parser) arbiter() (*ast.Arbiter, error) {
	pos := p.cur().Pos
	if _, err := p.keyword("arbiter"); err != nil {
		return nil, err
	}
	if _, err := p.punct("{"); err != nil {
		return nil, err
	}
	arb := &ast.Arbiter{Base: ast.Base{P: pos}}
	for !p.is(lex.Punct, "}") {
		rs, err := p.ruleSet()
		if err != nil {
			return nil, err
		}
		arb.RuleSets = append(arb.RuleSets, rs)
	}
	if _, err := p.punct("}"); err != nil {
		return nil, err
	}
	return arb, nil
}

func (p *parser) ruleSet() (*ast.RuleSet, error) {
	pos := p.cur().Pos
	if _, err := p.keyword("rule"); err != nil {
		return nil, err
	}
	if _, err := p.keyword("set"); err != nil {
		return nil, err
	}
	name, err := p.ident()
	if err != nil {
		return nil, err
	}
	if _, err := p.punct("{"); err != nil {
		return nil, err
	}
	rs := &ast.RuleSet{Base: ast.Base{P: pos}, Name: name.Text}
	for !p.is(lex.Punct, "}") {
		mr, err := p.matchRule()
		if err != nil {
			return nil, err
		}
		rs.Rules = append(rs.Rules, mr)
	}
	if _, err := p.punct("}"); err != nil {
		return nil, err
	}
	return rs, nil
}

func (p *parser) monitor() (*ast.Monitor, error) {
	pos := p.cur().Pos
	if _, err := p.keyword("monitor"); err != nil {
		return nil, err
	}
	if _, err := p.punct("{"); err != nil {
		return nil, err
	}
	mon := &ast.Monitor{Base: ast.Base{P: pos}}
	for !p.is(lex.Punct, "}") {
		mr, err := p.matchRule()
		if err != nil {
			return nil, err
		}
		mon.Rules = append(mon.Rules, mr)
	}
	if _, err := p.punct("}"); err != nil {
		return nil, err
	}
	return mon, nil
}

func (p *parser) chooser() (*ast.ChooseN, error) {
	pos := p.cur().Pos
	if _, err := p.keyword("choose"); err != nil {
		return nil, err
	}
	last := false
	if p.is(lex.Keyword, "last") {
		p.advance()
		last = true
	} else if _, err := p.keyword("first"); err != nil {
		return nil, err
	}
	n, err := p.intLit()
	if err != nil {
		return nil, err
	}
	if _, err := p.keyword("from"); err != nil {
		return nil, err
	}
	group, err := p.ident()
	if err != nil {
		return nil, err
	}
	ch := &ast.ChooseN{Base: ast.Base{P: pos}, N: n, Group: group.Text, Last: last}
	if p.is(lex.Keyword, "matching") {
		p.advance()
		predPos := p.cur().Pos
		src := p.exprUntil(":")
		ch.Predicate = &ast.FieldExpr{Src: src, Pos: predPos}
	}
	if _, err := p.punct(":"); err != nil {
		return nil, err
	}
	return ch, nil
}

func (p *parser) head() (*ast.HeadEvent, error) {
	pos := p.cur().Pos
	stream, err := p.ident()
	if err != nil {
		return nil, err
	}
	if _, err := p.punct(":"); err != nil {
		return nil, err
	}
	kind, err := p.ident()
	if err != nil {
		return nil, err
	}
	binds, err := p.identList("(", ")")
	if err != nil {
		return nil, err
	}
	return &ast.HeadEvent{Base: ast.Base{P: pos}, Stream: stream.Text, EventKind: kind.Text, Binds: binds}, nil
}

func (p *parser) matchRule() (*ast.MatchRule, error) {
	pos := p.cur().Pos
	mr := &ast.MatchRule{Base: ast.Base{P: pos}}
	if p.is(lex.Keyword, "choose") {
		ch, err := p.chooser()
		if err != nil {
			return nil, err
		}
		mr.Chooser = ch
	}
	if _, err := p.keyword("on"); err != nil {
		return nil, err
	}
	for {
		h, err := p.head()
		if err != nil {
			return nil, err
		}
		mr.Heads = append(mr.Heads, h)
		if p.is(lex.Punct, ",") {
			p.advance()
			continue
		}
		break
	}
	if p.is(lex.Ident, "where") {
		p.advance()
		guardPos := p.cur().Pos
		src := p.exprUntil("emit")
		mr.Guard = &ast.FieldExpr{Src: src, Pos: guardPos}
	}
	if _, err := p.keyword("emit"); err != nil {
		return nil, err
	}
	out, err := p.ident()
	if err != nil {
		return nil, err
	}
	exprs, err := p.fieldExprList()
	if err != nil {
		return nil, err
	}
	action := &ast.RuleAction{Base: ast.Base{P: pos}, OutputEvent: out.Text, FieldExprs: exprs}
	if p.is(lex.Keyword, "drop") {
		p.advance()
		for {
			stream, err := p.ident()
			if err != nil {
				return nil, err
			}
			n, err := p.intLit()
			if err != nil {
				return nil, err
			}
			action.Drops = append(action.Drops, ast.DropCount{Stream: stream.Text, Count: n})
			if p.is(lex.Punct, ",") {
				p.advance()
				continue
			}
			break
		}
	}
	mr.Action = action
	if _, err := p.punct(";"); err != nil {
		return nil, err
	}
	return mr, nil
}
