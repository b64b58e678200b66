package parser

import (
	"strings"
	"unicode"

	"sicp/interpreter-go/pkg/runtime"
)

// Tokenizer lazily splits source text into tokens.
type Tokenizer struct {
	src  []rune
	pos  int
	line int
	col  int
}

func NewTokenizer(src string) *Tokenizer {
	return &Tokenizer{src: []rune(src), line: 1, col: 1}
}

func (t *Tokenizer) peek() (rune, bool) {
	if t.pos >= len(t.src) {
		return 0, false
	}
	return t.src[t.pos], true
}

func (t *Tokenizer) advance() rune {
	r := t.src[t.pos]
	t.pos++
	if r == '\n' {
		t.line++
		t.col = 1
	} else {
		t.col++
	}
	return r
}

// Next returns the next token, or false at end of input.
func (t *Tokenizer) Next() (Token, bool) {
	for {
		r, ok := t.peek()
		if !ok {
			return Token{}, false
		}
		if !unicode.IsSpace(r) {
			break
		}
		t.advance()
	}

	start := Position{Line: t.line, Column: t.col}
	switch r := t.advance(); r {
	case '(':
		return Token{Type: TokenOpenParen, Text: "(", Pos: start}, true
	case ')':
		return Token{Type: TokenCloseParen, Text: ")", Pos: start}, true
	case '"':
		// an unterminated string closes at end of input
		var b strings.Builder
		for {
			c, ok := t.peek()
			if !ok {
				break
			}
			t.advance()
			if c == '"' {
				break
			}
			b.WriteRune(c)
		}
		return Token{Type: TokenString, Text: b.String(), Pos: start}, true
	default:
		var b strings.Builder
		b.WriteRune(r)
		for {
			c, ok := t.peek()
			if !ok || c == '(' || c == ')' || unicode.IsSpace(c) {
				break
			}
			b.WriteRune(t.advance())
		}
		text := b.String()
		if n, err := runtime.ParseNumber(text); err == nil {
			return Token{Type: TokenNumber, Text: text, Number: n, Pos: start}, true
		}
		return Token{Type: TokenIdentifier, Text: text, Pos: start}, true
	}
}

// Tokenize collects every token in src.
func Tokenize(src string) []Token {
	t := NewTokenizer(src)
	var out []Token
	for {
		tok, ok := t.Next()
		if !ok {
			return out
		}
		out = append(out, tok)
	}
}
