package macro

import (
	"github.com/orizon-lang/gosugar/internal/lexer"
)

// CondExpr is `[!] (cond) ? (result) : (alt)`.
type CondExpr struct {
	Condition   Expr
	Result      Expr
	Alternative Expr
	Negated     bool
}

// ElvisExpr is `[!] (cond) ?: (alt)`.
type ElvisExpr struct {
	Condition   Expr
	Alternative Expr
	Negated     bool
}

// ElvisAssign is `[!] (ident) ?= (alt)`.
type ElvisAssign struct {
	Target      lexer.Token
	Alternative Expr
	Negated     bool
}

// ParseCond parses the cxp grammar.
func ParseCond(ctx *Context, in TokenStream) (*CondExpr, error) {
	c := NewCursor(in, ctx.End())
	_, negated := c.Accept(lexer.TokenNot)

	cond, err := parseParenExpr(c)
	if err != nil {
		return nil, err
	}
	if _, err := c.Expect(lexer.TokenQuestion); err != nil {
		return nil, err
	}
	result, err := parseParenExpr(c)
	if err != nil {
		return nil, err
	}
	if _, err := c.Expect(lexer.TokenColon); err != nil {
		return nil, err
	}
	alt, err := parseParenExpr(c)
	if err != nil {
		return nil, err
	}
	if err := c.ExpectEnd(); err != nil {
		return nil, err
	}
	return &CondExpr{Condition: cond, Result: result, Alternative: alt, Negated: negated}, nil
}

// Emit produces the conditional placeholder. Only the selected branch is
// evaluated once the expander has lowered it.
func (e *CondExpr) Emit(ctx *Context) TokenStream {
	return emitConditional(ctx, e.Condition, e.Result, e.Alternative, e.Negated)
}

// ParseElvis parses the elv grammar.
func ParseElvis(ctx *Context, in TokenStream) (*ElvisExpr, error) {
	c := NewCursor(in, ctx.End())
	_, negated := c.Accept(lexer.TokenNot)

	cond, err := parseParenExpr(c)
	if err != nil {
		return nil, err
	}
	if _, err := c.Expect(lexer.TokenElvis); err != nil {
		return nil, err
	}
	alt, err := parseParenExpr(c)
	if err != nil {
		return nil, err
	}
	if err := c.ExpectEnd(); err != nil {
		return nil, err
	}
	return &ElvisExpr{Condition: cond, Alternative: alt, Negated: negated}, nil
}

// Emit produces the conditional placeholder with the condition as result.
// The condition is evaluated a second time when it is selected; alt only
// when it is not.
func (e *ElvisExpr) Emit(ctx *Context) TokenStream {
	return emitConditional(ctx, e.Condition, e.Condition, e.Alternative, e.Negated)
}

func emitConditional(ctx *Context, cond, result, alt Expr, negated bool) TokenStream {
	b := NewBuilder(ctx.Span)
	b.Code("%s(%d,", CondPlaceholder, ctx.Conditional()).
		Expr(result).Code(",").
		Expr(alt).Code(")(%s%s.Of(", not(negated), ctx.Truth()).
		Expr(cond).Code("))")
	return b.Stream()
}

// ParseElvisAssign parses the ela grammar.
func ParseElvisAssign(ctx *Context, in TokenStream) (*ElvisAssign, error) {
	c := NewCursor(in, ctx.End())
	_, negated := c.Accept(lexer.TokenNot)

	open, inner, err := c.Group(lexer.TokenLParen)
	if err != nil {
		return nil, err
	}
	target, err := ParseIdent(inner, open.Span)
	if err != nil {
		return nil, err
	}
	if _, err := c.Expect(lexer.TokenElvisAssign); err != nil {
		return nil, err
	}
	alt, err := parseParenExpr(c)
	if err != nil {
		return nil, err
	}
	if err := c.ExpectEnd(); err != nil {
		return nil, err
	}
	return &ElvisAssign{Target: target, Alternative: alt, Negated: negated}, nil
}

// Emit produces `if !truth.Of(x) { x = alt }`: the assignment happens when
// the target is falsy, or truthy when negated.
func (e *ElvisAssign) Emit(ctx *Context) TokenStream {
	b := NewBuilder(ctx.Span)
	b.Code("if %s%s.Of(", not(!e.Negated), ctx.Truth()).
		Tokens(e.Target).Code(") {").
		Tokens(e.Target).Code(" =").
		Expr(e.Alternative).Code(" }")
	return b.Stream()
}

func parseParenExpr(c *Cursor) (Expr, error) {
	open, inner, err := c.Group(lexer.TokenLParen)
	if err != nil {
		return Expr{}, err
	}
	return ParseExpr(inner, open.Span)
}

func not(negated bool) string {
	if negated {
		return "!"
	}
	return ""
}

type condMacro struct{}

func (condMacro) Name() string { return "cxp" }

func (condMacro) Transform(ctx *Context, in TokenStream) (TokenStream, error) {
	e, err := ParseCond(ctx, in)
	if err != nil {
		return nil, err
	}
	return e.Emit(ctx), nil
}

type elvisMacro struct{}

func (elvisMacro) Name() string { return "elv" }

func (elvisMacro) Transform(ctx *Context, in TokenStream) (TokenStream, error) {
	e, err := ParseElvis(ctx, in)
	if err != nil {
		return nil, err
	}
	return e.Emit(ctx), nil
}

type elvisAssignMacro struct{}

func (elvisAssignMacro) Name() string { return "ela" }

func (elvisAssignMacro) Transform(ctx *Context, in TokenStream) (TokenStream, error) {
	e, err := ParseElvisAssign(ctx, in)
	if err != nil {
		return nil, err
	}
	return e.Emit(ctx), nil
}
