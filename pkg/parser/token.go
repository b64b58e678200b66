package parser

import (
	"fmt"

	"sicp/interpreter-go/pkg/runtime"
)

// TokenType enumerates lexical token categories.
type TokenType int

const (
	TokenOpenParen TokenType = iota
	TokenCloseParen
	TokenIdentifier
	TokenString
	TokenNumber
)

func (t TokenType) String() string {
	switch t {
	case TokenOpenParen:
		return "open_paren"
	case TokenCloseParen:
		return "close_paren"
	case TokenIdentifier:
		return "identifier"
	case TokenString:
		return "string"
	case TokenNumber:
		return "number"
	default:
		return fmt.Sprintf("token_%d", int(t))
	}
}

// Position is a 1-based line and column.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is one lexical unit. Number is set only for TokenNumber.
type Token struct {
	Type   TokenType
	Text   string
	Number runtime.Number
	Pos    Position
}

func (t Token) String() string {
	switch t.Type {
	case TokenOpenParen:
		return "("
	case TokenCloseParen:
		return ")"
	case TokenString:
		return `"` + t.Text + `"`
	case TokenNumber:
		return t.Number.String()
	default:
		return t.Text
	}
}
