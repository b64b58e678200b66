package parser

import (
	"errors"
	"fmt"
	"io"

	"sicp/interpreter-go/pkg/runtime"
)

// SyntaxError reports unbalanced parentheses.
type SyntaxError struct {
	Msg string
	Pos Position
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at %s", e.Msg, e.Pos)
}

// ErrUnexpectedEOF matches (via errors.Is) a SyntaxError raised for an unclosed form.
var ErrUnexpectedEOF = errors.New("unexpected end of input")

func (e *SyntaxError) Is(target error) bool {
	return target == ErrUnexpectedEOF && e.Msg == ErrUnexpectedEOF.Error()
}

// Parser yields one expression per top-level form.
type Parser struct {
	tokens *Tokenizer
}

func New(src string) *Parser {
	return &Parser{tokens: NewTokenizer(src)}
}

// Next parses the next top-level form. It returns io.EOF once input is exhausted.
func (p *Parser) Next() (runtime.Expression, error) {
	tok, ok := p.tokens.Next()
	if !ok {
		return nil, io.EOF
	}
	switch tok.Type {
	case TokenCloseParen:
		return nil, &SyntaxError{Msg: "unexpected ')'", Pos: tok.Pos}
	case TokenOpenParen:
		return p.combination(tok.Pos)
	default:
		return atom(tok), nil
	}
}

// combination reads until the matching close paren using an explicit stack.
func (p *Parser) combination(open Position) (runtime.Expression, error) {
	stack := []*runtime.Combination{{Elements: []runtime.Expression{}}}
	opens := []Position{open}
	for {
		tok, ok := p.tokens.Next()
		if !ok {
			return nil, &SyntaxError{Msg: ErrUnexpectedEOF.Error(), Pos: opens[len(opens)-1]}
		}
		top := stack[len(stack)-1]
		switch tok.Type {
		case TokenOpenParen:
			stack = append(stack, &runtime.Combination{Elements: []runtime.Expression{}})
			opens = append(opens, tok.Pos)
		case TokenCloseParen:
			stack = stack[:len(stack)-1]
			opens = opens[:len(opens)-1]
			if len(stack) == 0 {
				return top, nil
			}
			parent := stack[len(stack)-1]
			parent.Elements = append(parent.Elements, top)
		default:
			top.Elements = append(top.Elements, atom(tok))
		}
	}
}

func atom(tok Token) runtime.Expression {
	switch tok.Type {
	case TokenString:
		return runtime.StringLiteral{Val: tok.Text}
	case TokenNumber:
		return runtime.NumberLiteral{Val: tok.Number}
	default:
		return runtime.Identifier{Name: tok.Text}
	}
}

// ParseAll parses every form in src, stopping at the first error.
func ParseAll(src string) ([]runtime.Expression, error) {
	p := New(src)
	var out []runtime.Expression
	for {
		expr, err := p.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, expr)
	}
}
