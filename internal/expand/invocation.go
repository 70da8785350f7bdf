package expand

import (
	"github.com/orizon-lang/gosugar/internal/diagnostics"
	"github.com/orizon-lang/gosugar/internal/lexer"
	"github.com/orizon-lang/gosugar/internal/macro"
	"github.com/orizon-lang/gosugar/internal/position"
)

// invocation is `name!{ body }` (or with parentheses or brackets).
type invocation struct {
	Name  lexer.Token
	Open  lexer.Token
	Close lexer.Token
	Body  macro.TokenStream
	next  int // index just past Close
}

// Span covers the invocation from its name to its closing delimiter.
func (inv invocation) Span() position.Span {
	return inv.Name.Span.Union(inv.Close.Span)
}

// findInvocation reports whether an invocation starts at ts[i]: an
// identifier or the map keyword, an adjacent `!`, and an opening delimiter.
func findInvocation(ts macro.TokenStream, i int) (invocation, bool, error) {
	if i+2 >= len(ts) {
		return invocation{}, false, nil
	}
	name, bang, open := ts[i], ts[i+1], ts[i+2]
	if name.Type != lexer.TokenIdentifier && name.Type != lexer.TokenMap {
		return invocation{}, false, nil
	}
	if bang.Type != lexer.TokenNot || bang.Gap != lexer.GapNone || !lexer.IsOpen(open.Type) {
		return invocation{}, false, nil
	}

	stack := []lexer.TokenType{}
	closer, _ := lexer.Closer(open.Type)
	stack = append(stack, closer)
	for j := i + 3; j < len(ts); j++ {
		tok := ts[j]
		switch {
		case lexer.IsOpen(tok.Type):
			cl, _ := lexer.Closer(tok.Type)
			stack = append(stack, cl)
		case lexer.IsClose(tok.Type):
			want := stack[len(stack)-1]
			if tok.Type != want {
				return invocation{}, false, diagnostics.Expected(tok.Span, "`"+want.String()+"`", tok.Describe())
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return invocation{
					Name:  name,
					Open:  open,
					Close: tok,
					Body:  ts[i+3 : j],
					next:  j + 1,
				}, true, nil
			}
		}
	}
	return invocation{}, false, diagnostics.Newf(diagnostics.CategoryStructural, name.Span,
		"unterminated macro invocation %s!", name.Literal)
}

func fileSpan(filename string) position.Span {
	p := position.Position{Filename: filename, Line: 1, Column: 1}
	return position.Span{Start: p, End: p}
}
