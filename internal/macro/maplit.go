package macro

import (
	"github.com/orizon-lang/gosugar/internal/diagnostics"
	"github.com/orizon-lang/gosugar/internal/lexer"
)

// KeyKind distinguishes variable keys from literal keys.
type KeyKind int

const (
	KeyVariable KeyKind = iota
	KeyLiteral
)

// Key is a map key: one identifier or one basic literal.
type Key struct {
	Kind  KeyKind
	Token lexer.Token
}

// MapEntry is `key: value`.
type MapEntry struct {
	Key   Key
	Value Expr
}

// MapLiteral is the hml/map body. Entries is nil for the empty form.
type MapLiteral struct {
	Type    *Expr
	Entries []MapEntry
}

// ParseMap parses `[ [maptype] entries ]`, the brackets being optional.
func ParseMap(ctx *Context, in TokenStream) (*MapLiteral, error) {
	body := unwrapBrackets(ctx, in)
	c := NewCursor(body, ctx.End())
	lit := &MapLiteral{}

	if c.Peek().Type == lexer.TokenMap {
		typ, err := parseMapType(c)
		if err != nil {
			return nil, err
		}
		lit.Type = &typ
	}

	if c.AtEnd() {
		return lit, nil
	}
	if c.Peek().Type == lexer.TokenColon && c.PeekAt(1).Type == lexer.TokenEOF {
		c.Next()
		return lit, nil
	}

	for !c.AtEnd() {
		tok := c.Next()
		var key Key
		switch {
		case tok.Type == lexer.TokenIdentifier:
			key = Key{Kind: KeyVariable, Token: tok}
		case tok.IsLiteral():
			key = Key{Kind: KeyLiteral, Token: tok}
		default:
			return nil, diagnostics.Mismatch(tok.Span, "identifier or literal key", tok.Describe())
		}

		colon, err := c.Expect(lexer.TokenColon)
		if err != nil {
			return nil, err
		}
		value, err := ParseExpr(c.Until(isComma), colon.Span)
		if err != nil {
			return nil, err
		}
		lit.Entries = append(lit.Entries, MapEntry{Key: key, Value: value})

		if _, ok := c.Accept(lexer.TokenComma); !ok {
			break
		}
	}
	return lit, nil
}

func unwrapBrackets(ctx *Context, in TokenStream) TokenStream {
	if len(in) < 2 || in[0].Type != lexer.TokenLBracket {
		return in
	}
	c := NewCursor(in, ctx.End())
	if _, inner, err := c.Group(lexer.TokenLBracket); err == nil && c.AtEnd() {
		return inner
	}
	return in
}

// parseMapType reads `map[K]V`. V ends before the first key that is followed
// by a colon, before a lone trailing colon, or at the end of input.
func parseMapType(c *Cursor) (Expr, error) {
	from := c.pos
	mapTok := c.Next()
	if _, _, err := c.Group(lexer.TokenLBracket); err != nil {
		return Expr{}, err
	}

	valueStart := c.pos
	depth := 0
	for !c.AtEnd() {
		tok, next := c.Peek(), c.PeekAt(1)
		if depth == 0 {
			if c.pos > valueStart && isKeyToken(tok) && next.Type == lexer.TokenColon {
				break
			}
			if tok.Type == lexer.TokenColon && next.Type == lexer.TokenEOF {
				break
			}
		}
		switch {
		case lexer.IsOpen(tok.Type):
			depth++
		case lexer.IsClose(tok.Type):
			depth--
		}
		c.Next()
	}
	return ParseExpr(c.tokens[from:c.pos], mapTok.Span)
}

func isKeyToken(tok lexer.Token) bool {
	return tok.Type == lexer.TokenIdentifier || tok.IsLiteral()
}

func isComma(tok lexer.Token) bool {
	return tok.Type == lexer.TokenComma
}

// Emit builds the map. Untyped maps go through sugar.MapOf so the key and
// value types are inferred; typed maps are filled by a function literal.
func (m *MapLiteral) Emit(ctx *Context) TokenStream {
	b := NewBuilder(ctx.Span)

	switch {
	case m.Type == nil && len(m.Entries) == 0:
		b.Code("make(map[any]any)")
	case len(m.Entries) == 0:
		b.Code("make(").Expr(*m.Type).Code(")")
	case m.Type == nil:
		sugar := ctx.Sugar()
		b.Code("%s.MapOf(", sugar)
		for i, e := range m.Entries {
			if i > 0 {
				b.Code(",")
			}
			b.Code("%s.Entry(", sugar).Tokens(e.Key.Token).Code(",").Expr(e.Value).Code(")")
		}
		b.Code(")")
	default:
		name := ctx.Fresh("m")
		b.Code("func()").Expr(*m.Type).Code(" {")
		b.Code(" %s := make(", name).Expr(*m.Type).Code(", %d);", len(m.Entries))
		for _, e := range m.Entries {
			b.Code(" %s[", name).Tokens(e.Key.Token).Code("] =").Expr(e.Value).Code(";")
		}
		b.Code(" return %s }()", name)
	}
	return b.Stream()
}

type mapMacro struct {
	name string
}

func (m mapMacro) Name() string { return m.name }

func (mapMacro) Transform(ctx *Context, in TokenStream) (TokenStream, error) {
	lit, err := ParseMap(ctx, in)
	if err != nil {
		return nil, err
	}
	return lit.Emit(ctx), nil
}
