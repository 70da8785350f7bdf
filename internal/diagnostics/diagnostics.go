// Package diagnostics defines the compile-time errors reported by gosugar.
// Every failure is localized to a source span; nothing is deferred to the
// generated program.
package diagnostics

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/orizon-lang/gosugar/internal/position"
)

// Category classifies a diagnostic.
type Category int

const (
	// CategoryLexical covers illegal characters and unterminated literals.
	CategoryLexical Category = iota
	// CategoryStructural is a missing delimiter, separator or custom operator.
	CategoryStructural
	// CategoryGrammar is a token of the wrong kind in a restricted position,
	// such as a map key that is neither an identifier nor a literal.
	CategoryGrammar
	// CategoryExpression is an embedded expression rejected by go/parser.
	CategoryExpression
	// CategoryMarker is an unterminated or empty interpolation marker.
	CategoryMarker
	// CategoryExpansion covers unknown macros, depth limits and invalid output.
	CategoryExpansion
	// CategoryDirective is a failed //gosugar:require directive.
	CategoryDirective
)

func (c Category) String() string {
	switch c {
	case CategoryLexical:
		return "lexical"
	case CategoryStructural:
		return "structural"
	case CategoryGrammar:
		return "grammar"
	case CategoryExpression:
		return "expression"
	case CategoryMarker:
		return "marker"
	case CategoryExpansion:
		return "expansion"
	case CategoryDirective:
		return "directive"
	default:
		return "unknown"
	}
}

// Error is a single diagnostic anchored to a source span.
type Error struct {
	Category Category
	Span     position.Span
	Message  string
	Err      error // underlying cause, e.g. a go/scanner.ErrorList
}

// Error formats the diagnostic as file:line:col: message.
func (e *Error) Error() string {
	if e.Span.Start.IsValid() {
		return fmt.Sprintf("%s: %s", e.Span.Start, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Newf creates a diagnostic with a formatted message.
func Newf(category Category, span position.Span, format string, args ...any) *Error {
	return &Error{Category: category, Span: span, Message: fmt.Sprintf(format, args...)}
}

// Expected reports a missing required token.
func Expected(span position.Span, want, got string) *Error {
	if got == "" {
		got = "end of input"
	}
	return Newf(CategoryStructural, span, "expected %s, got %s", want, got)
}

// Mismatch reports a token of the wrong kind in a restricted position.
func Mismatch(span position.Span, want, got string) *Error {
	return Newf(CategoryGrammar, span, "expected %s, got %s", want, got)
}

// Wrap attaches a span and category to an underlying error, keeping its message.
func Wrap(category Category, span position.Span, err error) *Error {
	return &Error{Category: category, Span: span, Message: err.Error(), Err: err}
}

// List collects diagnostics from many invocations.
type List []*Error

// Add appends err, flattening nested lists and wrapping foreign errors.
func (l *List) Add(err error) {
	if err == nil {
		return
	}
	var list List
	if errors.As(err, &list) {
		*l = append(*l, list...)
		return
	}
	var d *Error
	if errors.As(err, &d) {
		*l = append(*l, d)
		return
	}
	*l = append(*l, &Error{Category: CategoryExpansion, Message: err.Error(), Err: err})
}

// Sort orders the list by source position.
func (l List) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		return l[i].Span.Start.Before(l[j].Span.Start)
	})
}

// Error joins all messages, one per line.
func (l List) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	msgs := make([]string, len(l))
	for i, e := range l {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

// Err returns nil for an empty list and the sorted list otherwise.
func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}
	l.Sort()
	return l
}
