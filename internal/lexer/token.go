package lexer

import (
	"fmt"
	"go/token"

	"github.com/orizon-lang/gosugar/internal/position"
)

// TokenType represents the type of a token
type TokenType int

// String returns a string representation of the token type
func (tt TokenType) String() string {
	if name, ok := tokenNames[tt]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(tt))
}

// Token types. Everything the macro grammars never inspect individually is
// folded into TokenKeyword or TokenOperator and re-emitted by literal.
const (
	TokenEOF TokenType = iota

	// Literals
	TokenIdentifier
	TokenInt
	TokenFloat
	TokenImag
	TokenChar
	TokenString

	// Keywords
	TokenMap // map, the only keyword that is also a macro name
	TokenKeyword

	// Delimiters
	TokenLParen
	TokenRParen
	TokenLBrace
	TokenRBrace
	TokenLBracket
	TokenRBracket
	TokenComma
	TokenColon
	TokenSemicolon
	TokenPeriod

	// Operators read by the macro grammars
	TokenNot
	TokenAssign
	TokenIncrement
	TokenDecrement

	// Operators that are not Go syntax
	TokenQuestion    // ?
	TokenElvis       // ?:
	TokenElvisAssign // ?=
	TokenSpreadDot   // *.

	TokenOperator
)

var tokenNames = map[TokenType]string{
	TokenEOF:         "EOF",
	TokenIdentifier:  "IDENT",
	TokenInt:         "INT",
	TokenFloat:       "FLOAT",
	TokenImag:        "IMAG",
	TokenChar:        "CHAR",
	TokenString:      "STRING",
	TokenMap:         "map",
	TokenKeyword:     "KEYWORD",
	TokenLParen:      "(",
	TokenRParen:      ")",
	TokenLBrace:      "{",
	TokenRBrace:      "}",
	TokenLBracket:    "[",
	TokenRBracket:    "]",
	TokenComma:       ",",
	TokenColon:       ":",
	TokenSemicolon:   ";",
	TokenPeriod:      ".",
	TokenNot:         "!",
	TokenAssign:      "=",
	TokenIncrement:   "++",
	TokenDecrement:   "--",
	TokenQuestion:    "?",
	TokenElvis:       "?:",
	TokenElvisAssign: "?=",
	TokenSpreadDot:   "*.",
	TokenOperator:    "OPERATOR",
}

var fromGo = map[token.Token]TokenType{
	token.IDENT:     TokenIdentifier,
	token.INT:       TokenInt,
	token.FLOAT:     TokenFloat,
	token.IMAG:      TokenImag,
	token.CHAR:      TokenChar,
	token.STRING:    TokenString,
	token.MAP:       TokenMap,
	token.LPAREN:    TokenLParen,
	token.RPAREN:    TokenRParen,
	token.LBRACE:    TokenLBrace,
	token.RBRACE:    TokenRBrace,
	token.LBRACK:    TokenLBracket,
	token.RBRACK:    TokenRBracket,
	token.COMMA:     TokenComma,
	token.COLON:     TokenColon,
	token.SEMICOLON: TokenSemicolon,
	token.PERIOD:    TokenPeriod,
	token.NOT:       TokenNot,
	token.ASSIGN:    TokenAssign,
	token.INC:       TokenIncrement,
	token.DEC:       TokenDecrement,
}

func classify(tok token.Token) TokenType {
	if tt, ok := fromGo[tok]; ok {
		return tt
	}
	if tok.IsKeyword() {
		return TokenKeyword
	}
	return TokenOperator
}

// Gap is the whitespace that preceded a token in its source.
type Gap int

const (
	GapNone Gap = iota
	GapSpace
	GapNewline
)

// Text returns the separator that reproduces the gap.
func (g Gap) Text() string {
	switch g {
	case GapSpace:
		return " "
	case GapNewline:
		return "\n"
	default:
		return ""
	}
}

// Token represents a lexical token
type Token struct {
	Type    TokenType
	Literal string // exact source text
	Span    position.Span
	Gap     Gap
}

// Is reports whether the token has type tt.
func (t Token) Is(tt TokenType) bool {
	return t.Type == tt
}

// IsLiteral reports whether the token is a basic literal.
func (t Token) IsLiteral() bool {
	switch t.Type {
	case TokenInt, TokenFloat, TokenImag, TokenChar, TokenString:
		return true
	}
	return false
}

// Describe names the token for error messages.
func (t Token) Describe() string {
	if t.Type == TokenEOF {
		return "end of input"
	}
	return "`" + t.Literal + "`"
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%s", t.Type, t.Literal, t.Span.Start)
}

var closers = map[TokenType]TokenType{
	TokenLParen:   TokenRParen,
	TokenLBrace:   TokenRBrace,
	TokenLBracket: TokenRBracket,
}

// Closer returns the closing delimiter for an opening one.
func Closer(open TokenType) (TokenType, bool) {
	c, ok := closers[open]
	return c, ok
}

// IsOpen reports whether tt opens a bracketed group.
func IsOpen(tt TokenType) bool {
	_, ok := closers[tt]
	return ok
}

// IsClose reports whether tt closes a bracketed group.
func IsClose(tt TokenType) bool {
	return tt == TokenRParen || tt == TokenRBrace || tt == TokenRBracket
}
