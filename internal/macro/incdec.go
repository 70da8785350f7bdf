package macro

import (
	"github.com/orizon-lang/gosugar/internal/diagnostics"
	"github.com/orizon-lang/gosugar/internal/lexer"
)

// IncDec is `ident ++` or `ident --` used as an expression.
type IncDec struct {
	Name lexer.Token
	Op   lexer.TokenType // TokenIncrement or TokenDecrement
}

// ParseIncDec parses the suf grammar.
func ParseIncDec(ctx *Context, in TokenStream) (*IncDec, error) {
	c := NewCursor(in, ctx.End())

	first := c.Peek()
	if first.Type != lexer.TokenIdentifier {
		return nil, diagnostics.Mismatch(first.Span, "identifier", first.Describe())
	}
	name, err := ParseIdent(TokenStream{c.Next()}, first.Span)
	if err != nil {
		return nil, err
	}

	op := c.Next()
	if op.Type != lexer.TokenIncrement && op.Type != lexer.TokenDecrement {
		return nil, diagnostics.Expected(op.Span, "`++` or `--`", got(op))
	}
	if err := c.ExpectEnd(); err != nil {
		return nil, err
	}
	return &IncDec{Name: name, Op: op.Type}, nil
}

// Emit produces sugar.Inc(&x) or sugar.Dec(&x), which yield the new value.
func (e *IncDec) Emit(ctx *Context) TokenStream {
	fn := "Inc"
	if e.Op == lexer.TokenDecrement {
		fn = "Dec"
	}
	b := NewBuilder(ctx.Span)
	b.Code("%s.%s(&", ctx.Sugar(), fn).Tokens(e.Name).Code(")")
	return b.Stream()
}

type incDecMacro struct{}

func (incDecMacro) Name() string { return "suf" }

func (incDecMacro) Transform(ctx *Context, in TokenStream) (TokenStream, error) {
	e, err := ParseIncDec(ctx, in)
	if err != nil {
		return nil, err
	}
	return e.Emit(ctx), nil
}
