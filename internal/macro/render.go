package macro

import (
	"fmt"
	"strings"

	"github.com/orizon-lang/gosugar/internal/lexer"
	"github.com/orizon-lang/gosugar/internal/position"
)

// Render turns a stream back into source text. Each token is preceded by
// the whitespace its Gap records; the first token's gap is dropped.
func Render(ts TokenStream) string {
	text, _ := renderOffsets(ts)
	return text
}

// renderOffsets also returns the byte offset of every token in the output.
func renderOffsets(ts TokenStream) (string, []int) {
	var sb strings.Builder
	offsets := make([]int, len(ts))
	for i, tok := range ts {
		if i > 0 {
			sb.WriteString(tok.Gap.Text())
		}
		offsets[i] = sb.Len()
		sb.WriteString(tok.Literal)
	}
	return sb.String(), offsets
}

// Builder assembles a transformer's output. Synthetic code is lexed so that
// outer invocations see properly typed tokens; every synthetic token carries
// the span of the invocation that produced it.
type Builder struct {
	span   position.Span
	tokens TokenStream
}

// NewBuilder creates a builder whose synthetic tokens point at span.
func NewBuilder(span position.Span) *Builder {
	return &Builder{span: span}
}

// Code appends synthetic Go source.
func (b *Builder) Code(format string, args ...any) *Builder {
	text := format
	if len(args) > 0 {
		text = fmt.Sprintf(format, args...)
	}
	tokens, _ := lexer.New("", []byte(text)).Tokenize()
	for i, tok := range tokens {
		tok.Span = b.span
		if i == 0 && tok.Gap == lexer.GapNone && strings.TrimLeft(text, " \t\n") != text {
			tok.Gap = lexer.GapSpace
		}
		b.push(tok)
	}
	return b
}

// Expr splices an embedded expression verbatim. The first spliced token is
// separated by a single space whatever preceded it in the source.
func (b *Builder) Expr(e Expr) *Builder {
	return b.Tokens(e.Tokens...)
}

// Tokens splices raw tokens, see Expr.
func (b *Builder) Tokens(tokens ...lexer.Token) *Builder {
	for i, tok := range tokens {
		if i == 0 {
			tok.Gap = lexer.GapSpace
		}
		b.push(tok)
	}
	return b
}

func (b *Builder) push(tok lexer.Token) {
	if n := len(b.tokens); n > 0 && tok.Gap == lexer.GapNone && wordlike(b.tokens[n-1]) && wordlike(tok) {
		tok.Gap = lexer.GapSpace
	}
	b.tokens = append(b.tokens, tok)
}

// Stream returns the assembled tokens.
func (b *Builder) Stream() TokenStream {
	return b.tokens
}

func wordlike(tok lexer.Token) bool {
	switch tok.Type {
	case lexer.TokenIdentifier, lexer.TokenMap, lexer.TokenKeyword:
		return true
	}
	return tok.IsLiteral()
}
