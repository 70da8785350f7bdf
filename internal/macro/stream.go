package macro

import (
	"github.com/orizon-lang/gosugar/internal/diagnostics"
	"github.com/orizon-lang/gosugar/internal/lexer"
	"github.com/orizon-lang/gosugar/internal/position"
)

// TokenStream is the argument list of one invocation. Transformers never
// mutate their input; they return a new stream.
type TokenStream []lexer.Token

// Span covers the whole stream.
func (ts TokenStream) Span() position.Span {
	if len(ts) == 0 {
		return position.Span{}
	}
	return ts[0].Span.Union(ts[len(ts)-1].Span)
}

// Cursor walks a TokenStream with one token of lookahead.
type Cursor struct {
	tokens TokenStream
	pos    int
	end    position.Span // reported for "end of input"
}

// NewCursor creates a cursor. end is where a missing token is reported.
func NewCursor(ts TokenStream, end position.Span) *Cursor {
	return &Cursor{tokens: ts, end: end}
}

// Peek returns the current token, or EOF.
func (c *Cursor) Peek() lexer.Token {
	return c.PeekAt(0)
}

// PeekAt looks n tokens ahead.
func (c *Cursor) PeekAt(n int) lexer.Token {
	if i := c.pos + n; i < len(c.tokens) {
		return c.tokens[i]
	}
	return lexer.Token{Type: lexer.TokenEOF, Span: c.end}
}

// Next consumes and returns the current token.
func (c *Cursor) Next() lexer.Token {
	tok := c.Peek()
	if c.pos < len(c.tokens) {
		c.pos++
	}
	return tok
}

// AtEnd reports whether every token was consumed.
func (c *Cursor) AtEnd() bool {
	return c.pos >= len(c.tokens)
}

// Accept consumes the current token if it has type tt.
func (c *Cursor) Accept(tt lexer.TokenType) (lexer.Token, bool) {
	if c.Peek().Type != tt {
		return lexer.Token{}, false
	}
	return c.Next(), true
}

// Expect consumes a token of type tt or fails with a structural error.
func (c *Cursor) Expect(tt lexer.TokenType) (lexer.Token, error) {
	tok := c.Peek()
	if tok.Type != tt {
		return tok, diagnostics.Expected(tok.Span, "`"+tt.String()+"`", got(tok))
	}
	return c.Next(), nil
}

// ExpectEnd fails if tokens remain.
func (c *Cursor) ExpectEnd() error {
	if tok := c.Peek(); tok.Type != lexer.TokenEOF {
		return diagnostics.Expected(tok.Span, "end of macro input", got(tok))
	}
	return nil
}

// Group consumes a bracketed group opened by open and returns the opening
// token with the tokens strictly inside it.
func (c *Cursor) Group(open lexer.TokenType) (lexer.Token, TokenStream, error) {
	start, err := c.Expect(open)
	if err != nil {
		return start, nil, err
	}
	closer, _ := lexer.Closer(open)

	from := c.pos
	var stack []lexer.TokenType
	for {
		tok := c.Peek()
		switch {
		case tok.Type == lexer.TokenEOF:
			return start, nil, diagnostics.Expected(tok.Span, "`"+closer.String()+"`", "")
		case lexer.IsOpen(tok.Type):
			cl, _ := lexer.Closer(tok.Type)
			stack = append(stack, cl)
		case lexer.IsClose(tok.Type):
			if len(stack) == 0 {
				if tok.Type != closer {
					return start, nil, diagnostics.Expected(tok.Span, "`"+closer.String()+"`", got(tok))
				}
				inner := c.tokens[from:c.pos]
				c.Next()
				return start, inner, nil
			}
			if want := stack[len(stack)-1]; tok.Type != want {
				return start, nil, diagnostics.Expected(tok.Span, "`"+want.String()+"`", got(tok))
			}
			stack = stack[:len(stack)-1]
		}
		c.Next()
	}
}

// Until consumes tokens up to, but not including, the first token at
// bracket depth zero for which stop returns true.
func (c *Cursor) Until(stop func(lexer.Token) bool) TokenStream {
	from := c.pos
	depth := 0
	for !c.AtEnd() {
		tok := c.Peek()
		if depth == 0 && stop(tok) {
			break
		}
		switch {
		case lexer.IsOpen(tok.Type):
			depth++
		case lexer.IsClose(tok.Type):
			depth--
		}
		c.Next()
	}
	return c.tokens[from:c.pos]
}

func got(tok lexer.Token) string {
	if tok.Type == lexer.TokenEOF {
		return ""
	}
	return tok.Describe()
}
