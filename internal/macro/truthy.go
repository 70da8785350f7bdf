package macro

// Truthy is `expr`, converted with the truthiness protocol.
type Truthy struct {
	Value Expr
}

// ParseTruthy parses the boo grammar.
func ParseTruthy(ctx *Context, in TokenStream) (*Truthy, error) {
	value, err := ParseExpr(in, ctx.End())
	if err != nil {
		return nil, err
	}
	return &Truthy{Value: value}, nil
}

// Emit produces truth.Of(expr).
func (t *Truthy) Emit(ctx *Context) TokenStream {
	b := NewBuilder(ctx.Span)
	b.Code("%s.Of(", ctx.Truth()).Expr(t.Value).Code(")")
	return b.Stream()
}

type truthyMacro struct{}

func (truthyMacro) Name() string { return "boo" }

func (truthyMacro) Transform(ctx *Context, in TokenStream) (TokenStream, error) {
	t, err := ParseTruthy(ctx, in)
	if err != nil {
		return nil, err
	}
	return t.Emit(ctx), nil
}
