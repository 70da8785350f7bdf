package lexer

import (
	"errors"
	"testing"

	"github.com/orizon-lang/gosugar/internal/diagnostics"
	"github.com/orizon-lang/gosugar/internal/position"
)

func TestBasicTokens(t *testing.T) {
	input := `v := cxp!{ (ok) ? (1) : (2) }`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{TokenIdentifier, "v"},
		{TokenOperator, ":="},
		{TokenIdentifier, "cxp"},
		{TokenNot, "!"},
		{TokenLBrace, "{"},
		{TokenLParen, "("},
		{TokenIdentifier, "ok"},
		{TokenRParen, ")"},
		{TokenQuestion, "?"},
		{TokenLParen, "("},
		{TokenInt, "1"},
		{TokenRParen, ")"},
		{TokenColon, ":"},
		{TokenLParen, "("},
		{TokenInt, "2"},
		{TokenRParen, ")"},
		{TokenRBrace, "}"},
		{TokenEOF, ""},
	}

	l := New("t.sgo", []byte(input))

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q",
				i, tt.expectedType, tok.Type)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestCustomOperators(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []TokenType
	}{
		{"elvis", `(a)?:(b)`, []TokenType{TokenLParen, TokenIdentifier, TokenRParen, TokenElvis, TokenLParen, TokenIdentifier, TokenRParen}},
		{"elvis with spaces", `(a) ?: (b)`, []TokenType{TokenLParen, TokenIdentifier, TokenRParen, TokenElvis, TokenLParen, TokenIdentifier, TokenRParen}},
		{"split question colon", `? :`, []TokenType{TokenQuestion, TokenColon}},
		{"elvis assign", `(x) ?= (1)`, []TokenType{TokenLParen, TokenIdentifier, TokenRParen, TokenElvisAssign, TokenLParen, TokenInt, TokenRParen}},
		{"question before equality", `?==`, []TokenType{TokenQuestion, TokenOperator}},
		{"spread", `(xs) *.name *.first`, []TokenType{TokenLParen, TokenIdentifier, TokenRParen, TokenSpreadDot, TokenIdentifier, TokenSpreadDot, TokenIdentifier}},
		{"multiply float", `a *.5`, []TokenType{TokenIdentifier, TokenOperator, TokenFloat}},
		{"increment", `x++`, []TokenType{TokenIdentifier, TokenIncrement}},
		{"decrement", `x--`, []TokenType{TokenIdentifier, TokenDecrement}},
		{"map keyword", `map!{}`, []TokenType{TokenMap, TokenNot, TokenLBrace, TokenRBrace}},
		{"keyword", `func`, []TokenType{TokenKeyword}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := New("t.sgo", []byte(tt.input)).Tokenize()
			if err != nil {
				t.Fatalf("Tokenize() error: %v", err)
			}
			if len(tokens) != len(tt.expected) {
				t.Fatalf("got %d tokens %v, want %d", len(tokens), tokens, len(tt.expected))
			}
			for i, want := range tt.expected {
				if tokens[i].Type != want {
					t.Fatalf("tokens[%d] - tokentype wrong. expected=%q, got=%q", i, want, tokens[i].Type)
				}
			}
		})
	}
}

func TestGapsAndSemicolons(t *testing.T) {
	input := "a b\n\tc/* x */d\n"
	tokens, err := New("t.sgo", []byte(input)).Tokenize()
	if err != nil {
		t.Fatalf("Tokenize() error: %v", err)
	}

	expected := []struct {
		literal string
		gap     Gap
	}{
		{"a", GapNone},
		{"b", GapSpace},
		{"c", GapNewline},
		{"d", GapSpace},
	}
	if len(tokens) != len(expected) {
		t.Fatalf("got %d tokens, want %d: %v", len(tokens), len(expected), tokens)
	}
	for i, e := range expected {
		if tokens[i].Literal != e.literal || tokens[i].Gap != e.gap {
			t.Fatalf("tokens[%d] = %q gap %d, want %q gap %d", i, tokens[i].Literal, tokens[i].Gap, e.literal, e.gap)
		}
	}
}

func TestSpans(t *testing.T) {
	input := "x := 1\ny := \"hi\""
	tokens, err := New("t.sgo", []byte(input)).Tokenize()
	if err != nil {
		t.Fatalf("Tokenize() error: %v", err)
	}

	str := tokens[len(tokens)-1]
	if str.Literal != `"hi"` {
		t.Fatalf("last literal = %q", str.Literal)
	}
	if str.Span.Start.Line != 2 || str.Span.Start.Column != 6 || str.Span.Start.Offset != 12 {
		t.Fatalf("start = %+v", str.Span.Start)
	}
	if str.Span.End.Offset != 16 || str.Span.End.Column != 10 {
		t.Fatalf("end = %+v", str.Span.End)
	}
}

func TestNewAtShiftsSpans(t *testing.T) {
	base := position.Position{Filename: "t.sgo", Line: 3, Column: 10, Offset: 40}
	tokens, err := NewAt("t.sgo", []byte("a + b"), base).Tokenize()
	if err != nil {
		t.Fatalf("Tokenize() error: %v", err)
	}

	b := tokens[2]
	if b.Span.Start.Line != 3 || b.Span.Start.Column != 14 || b.Span.Start.Offset != 44 {
		t.Fatalf("shifted start = %+v", b.Span.Start)
	}
	if b.Span.Start.Filename != "t.sgo" {
		t.Fatalf("filename = %q", b.Span.Start.Filename)
	}
}

func TestLexicalErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"illegal character", "a @ b"},
		{"unterminated string", `"abc`},
		{"unterminated raw string", "`abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("t.sgo", []byte(tt.input)).Tokenize()
			if err == nil {
				t.Fatal("expected a lexical error")
			}
			var list diagnostics.List
			if !errors.As(err, &list) {
				t.Fatalf("error type %T", err)
			}
			if list[0].Category != diagnostics.CategoryLexical {
				t.Fatalf("category = %s", list[0].Category)
			}
		})
	}
}
