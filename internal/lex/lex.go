// Package lex turns VAMOS source text into a token stream for internal/parser.
//
// The grammar is hand written, grounded on the same hand-written-recognizer shape the original
// Python compiler uses (original_source/compiler/main.py drives a hand written parser; no generic
// parsing library is used there either). A bespoke keyword-and-punctuation grammar like VAMOS's
// has no natural fit for xelf's s-expression lexer (internal/expr uses that one instead, for the
// guard/action/order-expression sub-language only).
package lex

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/vamos-lang/vamosc/internal/verr"
)

type Kind int

const (
	EOF Kind = iota
	Ident
	Int
	String
	Keyword
	Punct
)

type Token struct {
	Kind Kind
	Text string
	Pos  verr.Pos
}

// Keywords is the reserved-word set of the VAMOS grammar. A name lexed as one of these can never
// be used as a user identifier (spec.md I1 / ReservedNameError).
var Keywords = map[string]bool{
	"stream": true, "type": true, "event": true, "source": true,
	"processor": true, "buffer": true, "group": true, "match": true,
	"fun": true, "arbiter": true, "monitor": true, "rule": true, "set": true,
	"choose": true, "from": true, "first": true, "last": true, "matching": true,
	"on": true, "emit": true, "drop": true, "order": true, "by": true,
	"asc": true, "desc": true, "args": true, "int": true, "str": true,
	"float": true, "bool": true, "true": true, "false": true, "and": true,
	"or": true, "not": true, "array": true, "of": true,
}

var punctuation = []string{
	"(", ")", "{", "}", "[", "]", ",", ":", ";", ".",
	"<=", ">=", "==", "!=", "<", ">", "+", "-", "*", "/", "=", "->",
}

type Lexer struct {
	file   string
	src    string
	pos    int
	line   int
	col    int
	tokens []Token
}

// New creates a lexer over src, which has already been through Preprocess.
func New(file, src string) *Lexer {
	return &Lexer{file: file, src: src, line: 1, col: 1}
}

// Tokenize scans the whole source and returns its tokens, terminated by one EOF token. It is the
// only fatal-on-error entry point; internal/parser consumes the returned slice directly.
func (lx *Lexer) Tokenize() ([]Token, error) {
	for {
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}
		lx.tokens = append(lx.tokens, tok)
		if tok.Kind == EOF {
			break
		}
	}
	return lx.tokens, nil
}

func (lx *Lexer) peekByte() byte {
	if lx.pos >= len(lx.src) {
		return 0
	}
	return lx.src[lx.pos]
}

func (lx *Lexer) advance() byte {
	c := lx.src[lx.pos]
	lx.pos++
	if c == '\n' {
		lx.line++
		lx.col = 1
	} else {
		lx.col++
	}
	return c
}

func (lx *Lexer) skipSpaceAndComments() {
	for lx.pos < len(lx.src) {
		c := lx.peekByte()
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' {
			lx.advance()
			continue
		}
		if c == '/' && lx.pos+1 < len(lx.src) && lx.src[lx.pos+1] == '/' {
			for lx.pos < len(lx.src) && lx.peekByte() != '\n' {
				lx.advance()
			}
			continue
		}
		if c == '/' && lx.pos+1 < len(lx.src) && lx.src[lx.pos+1] == '*' {
			lx.advance()
			lx.advance()
			for lx.pos < len(lx.src) {
				if lx.peekByte() == '*' && lx.pos+1 < len(lx.src) && lx.src[lx.pos+1] == '/' {
					lx.advance()
					lx.advance()
					break
				}
				lx.advance()
			}
			continue
		}
		break
	}
}

func (lx *Lexer) here() verr.Pos { return verr.Pos{File: lx.file, Line: lx.line, Col: lx.col} }

func (lx *Lexer) next() (Token, error) {
	lx.skipSpaceAndComments()
	pos := lx.here()
	if lx.pos >= len(lx.src) {
		return Token{Kind: EOF, Pos: pos}, nil
	}
	c := lx.peekByte()
	switch {
	case isIdentStart(rune(c)):
		start := lx.pos
		for lx.pos < len(lx.src) && isIdentPart(rune(lx.peekByte())) {
			lx.advance()
		}
		text := lx.src[start:lx.pos]
		if Keywords[text] {
			return Token{Kind: Keyword, Text: text, Pos: pos}, nil
		}
		return Token{Kind: Ident, Text: text, Pos: pos}, nil
	case c >= '0' && c <= '9':
		start := lx.pos
		for lx.pos < len(lx.src) && (lx.peekByte() >= '0' && lx.peekByte() <= '9' || lx.peekByte() == '.') {
			lx.advance()
		}
		return Token{Kind: Int, Text: lx.src[start:lx.pos], Pos: pos}, nil
	case c == '"':
		lx.advance()
		start := lx.pos
		for lx.pos < len(lx.src) && lx.peekByte() != '"' {
			lx.advance()
		}
		if lx.pos >= len(lx.src) {
			return Token{}, &verr.SyntaxError{Pos: pos, Got: "unterminated string"}
		}
		text := lx.src[start:lx.pos]
		lx.advance()
		return Token{Kind: String, Text: text, Pos: pos}, nil
	default:
		for _, p := range punctuation {
			if strings.HasPrefix(lx.src[lx.pos:], p) {
				for range p {
					lx.advance()
				}
				return Token{Kind: Punct, Text: p, Pos: pos}, nil
			}
		}
		got, _ := utf8.DecodeRuneInString(lx.src[lx.pos:])
		return Token{}, &verr.SyntaxError{Pos: pos, Got: string(got)}
	}
}

// isIdentStart also accepts '$', the sigil for a chooser slot reference ($0, $1, ...) used as a
// head pattern's stream name (spec.md §4.6).
func isIdentStart(r rune) bool { return r == '_' || r == '$' || unicode.IsLetter(r) }
func isIdentPart(r rune) bool  { return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) }
