package macro

import (
	"errors"
	"go/ast"
	"go/parser"
	"go/scanner"
	"go/token"
	"sort"

	"github.com/orizon-lang/gosugar/internal/diagnostics"
	"github.com/orizon-lang/gosugar/internal/lexer"
	"github.com/orizon-lang/gosugar/internal/position"
)

// Expr is an embedded host expression. Node is only used to validate the
// tokens; emission always re-emits Tokens.
type Expr struct {
	Tokens TokenStream
	Node   ast.Expr
}

// Span covers the expression's tokens.
func (e Expr) Span() position.Span {
	return e.Tokens.Span()
}

// ParseExpr validates ts as exactly one Go expression. at locates the error
// when ts is empty.
func ParseExpr(ts TokenStream, at position.Span) (Expr, error) {
	if len(ts) == 0 {
		return Expr{}, diagnostics.Newf(diagnostics.CategoryExpression, at, "expected expression")
	}

	src, offsets := renderOffsets(ts)
	filename := ts[0].Span.Start.Filename
	node, err := parser.ParseExprFrom(token.NewFileSet(), filename, src, 0)
	if err != nil {
		return Expr{}, exprError(ts, offsets, err)
	}
	return Expr{Tokens: ts, Node: node}, nil
}

// exprError keeps the host parser's message and moves it onto the token
// that was being read when the parser gave up.
func exprError(ts TokenStream, offsets []int, err error) error {
	var list scanner.ErrorList
	if !errors.As(err, &list) || len(list) == 0 {
		return diagnostics.Wrap(diagnostics.CategoryExpression, ts.Span(), err)
	}
	first := list[0]
	span := spanAt(ts, offsets, first.Pos.Offset)
	return &diagnostics.Error{
		Category: diagnostics.CategoryExpression,
		Span:     span,
		Message:  first.Msg,
		Err:      err,
	}
}

func spanAt(ts TokenStream, offsets []int, offset int) position.Span {
	i := sort.Search(len(offsets), func(i int) bool { return offsets[i] > offset }) - 1
	if i < 0 {
		i = 0
	}
	tok := ts[i]
	if offset >= offsets[i]+len(tok.Literal) && i == len(ts)-1 {
		return position.Span{Start: tok.Span.End, End: tok.Span.End}
	}
	return tok.Span
}

// ParseIdent requires ts to be a single identifier other than _.
func ParseIdent(ts TokenStream, at position.Span) (lexer.Token, error) {
	if len(ts) == 0 {
		return lexer.Token{}, diagnostics.Mismatch(at, "identifier", "nothing")
	}
	tok := ts[0]
	if tok.Type != lexer.TokenIdentifier {
		return tok, diagnostics.Mismatch(tok.Span, "identifier", tok.Describe())
	}
	if len(ts) > 1 {
		return tok, diagnostics.Mismatch(ts[1:].Span(), "single identifier", "`"+Render(ts)+"`")
	}
	if tok.Literal == "_" {
		return tok, diagnostics.Newf(diagnostics.CategoryGrammar, tok.Span, "cannot assign to blank identifier `_`")
	}
	return tok, nil
}
