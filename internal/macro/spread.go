package macro

import (
	"github.com/orizon-lang/gosugar/internal/diagnostics"
	"github.com/orizon-lang/gosugar/internal/lexer"
)

// Spread is `(iterable) *.f1 *.f2 ...`.
type Spread struct {
	Iterable Expr
	Fields   []lexer.Token
}

// ParseSpread parses the spr grammar.
func ParseSpread(ctx *Context, in TokenStream) (*Spread, error) {
	c := NewCursor(in, ctx.End())

	iterable, err := parseParenExpr(c)
	if err != nil {
		return nil, err
	}

	s := &Spread{Iterable: iterable}
	for {
		if _, ok := c.Accept(lexer.TokenSpreadDot); !ok {
			break
		}
		field := c.Next()
		if field.Type != lexer.TokenIdentifier {
			return nil, diagnostics.Mismatch(field.Span, "field name", describe(field))
		}
		s.Fields = append(s.Fields, field)
	}
	if err := c.ExpectEnd(); err != nil {
		return nil, err
	}
	return s, nil
}

// Emit copies the iterable when there are no fields. Otherwise it collects
// it.f1.f2 for every element. The first argument of sugar.Spread only fixes
// the result type: it selects the same path on a zero element, with
// sugar.Fill allocating each nil pointer it passes through.
func (s *Spread) Emit(ctx *Context) TokenStream {
	b := NewBuilder(ctx.Span)
	sugar := ctx.Sugar()
	if len(s.Fields) == 0 {
		b.Code("%s.Clone(", sugar).Expr(s.Iterable).Code(")")
		return b.Stream()
	}

	yield, it := ctx.Fresh("yield"), ctx.Fresh("it")

	b.Code("%s.Spread(", sugar)
	for range s.Fields {
		b.Code("%s.Fill(", sugar)
	}
	b.Code("%s.Elem(", sugar).Expr(s.Iterable).Code(")")
	for _, f := range s.Fields {
		b.Code(").%s", f.Literal)
	}
	b.Code(", func(%s func(any)) { for _, %s := range", yield, it).Expr(s.Iterable).Code(" {")
	b.Code(" %s(%s", yield, it)
	for _, f := range s.Fields {
		b.Code(".%s", f.Literal)
	}
	b.Code(") } })")
	return b.Stream()
}

func describe(tok lexer.Token) string {
	if tok.Type == lexer.TokenEOF {
		return "end of input"
	}
	return tok.Describe()
}

type spreadMacro struct{}

func (spreadMacro) Name() string { return "spr" }

func (spreadMacro) Transform(ctx *Context, in TokenStream) (TokenStream, error) {
	s, err := ParseSpread(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.Emit(ctx), nil
}
