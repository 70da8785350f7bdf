package macro

import (
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/orizon-lang/gosugar/internal/diagnostics"
	"github.com/orizon-lang/gosugar/internal/lexer"
	"github.com/orizon-lang/gosugar/internal/position"
)

var markerPattern = sync.OnceValue(func() *regexp.Regexp {
	return regexp.MustCompile(`\$\{([^}]+)\}`)
})

// Interpolation is a string literal with ${expr} markers.
type Interpolation struct {
	Literal  lexer.Token
	Template string // fmt template, one %v per marker
	Exprs    []Expr
}

// ParseInterp parses the sin grammar.
func ParseInterp(ctx *Context, in TokenStream) (*Interpolation, error) {
	c := NewCursor(in, ctx.End())
	lit := c.Next()
	if lit.Type != lexer.TokenString {
		return nil, diagnostics.Mismatch(lit.Span, "string literal", describe(lit))
	}
	if err := c.ExpectEnd(); err != nil {
		return nil, err
	}

	value, err := strconv.Unquote(lit.Literal)
	if err != nil {
		return nil, diagnostics.Wrap(diagnostics.CategoryLexical, lit.Span, err)
	}

	// Marker positions are exact only when the value is the literal's text.
	exact := value == lit.Literal[1:len(lit.Literal)-1]
	locate := func(i int) position.Position {
		if !exact {
			return lit.Span.Start
		}
		return lit.Span.Start.Advance(lit.Literal[:1+i])
	}

	interp := &Interpolation{Literal: lit}
	var tmpl strings.Builder
	last := 0
	for _, m := range markerPattern().FindAllStringSubmatchIndex(value, -1) {
		if err := checkSegment(value[last:m[0]], last, locate); err != nil {
			return nil, err
		}
		tmpl.WriteString(strings.ReplaceAll(value[last:m[0]], "%", "%%"))
		tmpl.WriteString("%v")

		markerSpan := position.Span{Start: locate(m[0]), End: locate(m[1])}
		e, err := parseMarker(value[m[2]:m[3]], locate(m[2]), markerSpan, exact, lit)
		if err != nil {
			return nil, err
		}
		interp.Exprs = append(interp.Exprs, e)
		last = m[1]
	}
	if err := checkSegment(value[last:], last, locate); err != nil {
		return nil, err
	}
	tmpl.WriteString(strings.ReplaceAll(value[last:], "%", "%%"))
	interp.Template = tmpl.String()
	return interp, nil
}

func parseMarker(body string, base position.Position, markerSpan position.Span, exact bool, lit lexer.Token) (Expr, error) {
	tokens, err := lexer.NewAt(base.Filename, []byte(body), base).Tokenize()
	if err != nil {
		return Expr{}, err
	}
	if len(tokens) == 0 {
		return Expr{}, diagnostics.Newf(diagnostics.CategoryMarker, markerSpan, "empty interpolation marker")
	}
	if !exact {
		for i := range tokens {
			tokens[i].Span = lit.Span
		}
	}
	return ParseExpr(tokens, markerSpan)
}

// checkSegment rejects an opening ${ that no marker consumed.
func checkSegment(seg string, offset int, locate func(int) position.Position) error {
	i := strings.Index(seg, "${")
	if i < 0 {
		return nil
	}
	at := locate(offset + i)
	span := position.Span{Start: at, End: at}
	if strings.HasPrefix(seg[i:], "${}") {
		span.End = locate(offset + i + 3)
		return diagnostics.Newf(diagnostics.CategoryMarker, span, "empty interpolation marker")
	}
	return diagnostics.Newf(diagnostics.CategoryMarker, span, "unterminated interpolation marker")
}

// Emit re-emits the literal untouched when it has no markers, otherwise
// fmt.Sprintf(template, exprs...).
func (s *Interpolation) Emit(ctx *Context) TokenStream {
	if len(s.Exprs) == 0 {
		return TokenStream{s.Literal}
	}
	b := NewBuilder(ctx.Span)
	b.Code("%s.Sprintf(%s", ctx.Require("fmt"), strconv.Quote(s.Template))
	for _, e := range s.Exprs {
		b.Code(",").Expr(e)
	}
	b.Code(")")
	return b.Stream()
}

type interpMacro struct{}

func (interpMacro) Name() string { return "sin" }

func (interpMacro) Transform(ctx *Context, in TokenStream) (TokenStream, error) {
	s, err := ParseInterp(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.Emit(ctx), nil
}
