package macro

import (
	"strings"
	"testing"

	"github.com/orizon-lang/gosugar/internal/lexer"
)

func TestCursorGroup(t *testing.T) {
	ts := tokenize(t, "(a, [b]) rest")
	c := NewCursor(ts, ts.Span())

	open, inner, err := c.Group(lexer.TokenLParen)
	if err != nil {
		t.Fatalf("Group() error: %v", err)
	}
	if open.Literal != "(" {
		t.Fatalf("open token wrong. expected=%q, got=%q", "(", open.Literal)
	}
	if got := Render(inner); got != "a, [b]" {
		t.Fatalf("group body wrong. expected=%q, got=%q", "a, [b]", got)
	}
	if tok := c.Next(); tok.Literal != "rest" {
		t.Fatalf("token after group wrong. expected=%q, got=%q", "rest", tok.Literal)
	}
	if err := c.ExpectEnd(); err != nil {
		t.Fatalf("ExpectEnd() error: %v", err)
	}
}

func TestCursorGroupErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"wrong opener", "[a]", "expected `(`, got `[`"},
		{"mismatched closer", "(a]", "expected `)`, got `]`"},
		{"nested mismatch", "(a[b)", "expected `]`, got `)`"},
		{"unclosed", "(a", "expected `)`, got end of input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := tokenize(t, tt.input)
			_, _, err := NewCursor(ts, ts.Span()).Group(lexer.TokenLParen)
			if err == nil {
				t.Fatalf("Group(%q) expected error", tt.input)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error wrong. expected=%q, got=%q", tt.want, err.Error())
			}
		})
	}
}

func TestCursorUntil(t *testing.T) {
	ts := tokenize(t, "f(x, y), z")
	c := NewCursor(ts, ts.Span())

	head := c.Until(isComma)
	if got := Render(head); got != "f(x, y)" {
		t.Fatalf("Until() wrong. expected=%q, got=%q", "f(x, y)", got)
	}
	if _, ok := c.Accept(lexer.TokenComma); !ok {
		t.Fatalf("expected comma after Until, got %s", c.Peek())
	}
	if tok := c.Next(); tok.Literal != "z" {
		t.Fatalf("Next() wrong. expected=%q, got=%q", "z", tok.Literal)
	}
	if !c.AtEnd() {
		t.Fatalf("cursor not at end")
	}
	if tok := c.Peek(); tok.Type != lexer.TokenEOF {
		t.Fatalf("Peek() at end wrong. expected=%s, got=%s", lexer.TokenEOF, tok.Type)
	}
}

func TestBuilder(t *testing.T) {
	span := tokenize(t, "x").Span()
	out := NewBuilder(span).
		Code("f(").
		Tokens(tokenize(t, "a + b")...).
		Code(")").
		Stream()

	if got := Render(out); got != "f( a + b)" {
		t.Fatalf("Render() wrong. expected=%q, got=%q", "f( a + b)", got)
	}
	for _, tok := range out[:2] {
		if tok.Span != span {
			t.Fatalf("synthetic token %q span wrong. expected=%v, got=%v", tok.Literal, span, tok.Span)
		}
	}
}

func TestBuilderSeparatesWords(t *testing.T) {
	out := NewBuilder(tokenize(t, "x").Span()).
		Code("return").
		Code("x").
		Stream()
	if got := Render(out); got != "return x" {
		t.Fatalf("Render() wrong. expected=%q, got=%q", "return x", got)
	}
}
