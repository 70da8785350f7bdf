// Package lexer tokenizes gosugar sources.
//
// It wraps go/scanner, the host tokenizer, and glues the handful of
// punctuation sequences that are not Go syntax (?, ?:, ?= and *.) into
// single tokens by peeking at the raw neighbouring bytes.
package lexer

import (
	"go/scanner"
	"go/token"

	"github.com/orizon-lang/gosugar/internal/diagnostics"
	"github.com/orizon-lang/gosugar/internal/position"
)

// Lexer produces Tokens from a single source buffer.
type Lexer struct {
	filename string
	input    []byte
	base     position.Position
	shifted  bool

	file    *token.File
	scanner scanner.Scanner
	errors  diagnostics.List

	prevEnd int // byte offset just past the previous token
	done    bool
}

// New creates a lexer for a whole file.
func New(filename string, input []byte) *Lexer {
	l := &Lexer{filename: filename, input: input}
	l.init()
	return l
}

// NewAt creates a lexer for a fragment whose first byte sits at base in the
// enclosing file. All spans are reported in the enclosing file's coordinates.
func NewAt(filename string, input []byte, base position.Position) *Lexer {
	l := &Lexer{filename: filename, input: input, base: base, shifted: base.IsValid()}
	l.init()
	return l
}

func (l *Lexer) init() {
	fset := token.NewFileSet()
	l.file = fset.AddFile(l.filename, -1, len(l.input))
	l.scanner.Init(l.file, l.input, l.handleError, 0)
}

func (l *Lexer) handleError(pos token.Position, msg string) {
	// '?' is ours; the scanner calls it illegal.
	if pos.Offset < len(l.input) && l.input[pos.Offset] == '?' {
		return
	}
	p := l.position(pos.Offset)
	l.errors = append(l.errors, diagnostics.Newf(diagnostics.CategoryLexical,
		position.Span{Start: p, End: p}, "%s", msg))
}

func (l *Lexer) position(offset int) position.Position {
	p := position.FromToken(l.file.Position(l.file.Pos(offset)))
	p.Filename = l.filename
	if l.shifted {
		p = p.Shift(l.base)
	}
	return p
}

func (l *Lexer) peekChar(offset int) byte {
	if offset < 0 || offset >= len(l.input) {
		return 0
	}
	return l.input[offset]
}

// NextToken returns the next token, skipping automatic semicolons.
// TokenEOF is returned at the end and on every call after it.
func (l *Lexer) NextToken() Token {
	for {
		if l.done {
			p := l.position(len(l.input))
			return Token{Type: TokenEOF, Span: position.Span{Start: p, End: p}}
		}

		pos, tok, lit := l.scanner.Scan()
		offset := l.file.Offset(pos)

		switch {
		case tok == token.EOF:
			l.done = true
			continue
		case tok == token.SEMICOLON && lit == "\n":
			continue
		}

		tt := classify(tok)
		text := lit
		if text == "" {
			text = tok.String()
		}

		switch {
		case tok == token.ILLEGAL && lit == "?":
			tt = TokenQuestion
			if l.glue(offset+1, ':', token.COLON) {
				tt, text = TokenElvis, "?:"
			} else if l.glue(offset+1, '=', token.ASSIGN) {
				tt, text = TokenElvisAssign, "?="
			}
		case tok == token.MUL:
			if l.glue(offset+1, '.', token.PERIOD) {
				tt, text = TokenSpreadDot, "*."
			}
		}

		return l.newToken(tt, text, offset)
	}
}

// glue consumes the next scanner token when the raw byte at offset is ch and
// the scanner would produce want for it. `*.5` and `?==` are left alone.
func (l *Lexer) glue(offset int, ch byte, want token.Token) bool {
	if l.peekChar(offset) != ch {
		return false
	}
	next := l.peekChar(offset + 1)
	switch want {
	case token.PERIOD:
		if next == '.' || (next >= '0' && next <= '9') {
			return false
		}
	case token.COLON, token.ASSIGN:
		if next == '=' {
			return false
		}
	}
	_, tok, _ := l.scanner.Scan()
	return tok == want
}

func (l *Lexer) newToken(tt TokenType, literal string, offset int) Token {
	end := offset + len(literal)
	tok := Token{
		Type:    tt,
		Literal: literal,
		Span:    position.Span{Start: l.position(offset), End: l.position(end)},
		Gap:     l.gapBefore(offset),
	}
	l.prevEnd = end
	return tok
}

func (l *Lexer) gapBefore(offset int) Gap {
	if offset <= l.prevEnd {
		return GapNone
	}
	for _, b := range l.input[l.prevEnd:offset] {
		if b == '\n' {
			return GapNewline
		}
	}
	return GapSpace
}

// Tokenize lexes the whole input. The returned stream has no EOF token.
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		tok := l.NextToken()
		if tok.Type == TokenEOF {
			break
		}
		tokens = append(tokens, tok)
	}
	if err := l.errors.Err(); err != nil {
		return nil, err
	}
	return tokens, nil
}
