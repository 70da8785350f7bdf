package diagnostics

import (
	"errors"
	"fmt"
	"testing"

	"github.com/orizon-lang/gosugar/internal/position"
)

func spanAt(line, col, offset int) position.Span {
	p := position.Position{Filename: "t.sgo", Line: line, Column: col, Offset: offset}
	return position.Span{Start: p, End: p}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "structural",
			err:      Expected(spanAt(2, 7, 20), "`?`", "`:`"),
			expected: "t.sgo:2:7: expected `?`, got `:`",
		},
		{
			name:     "end of input",
			err:      Expected(spanAt(1, 3, 2), "`(`", ""),
			expected: "t.sgo:1:3: expected `(`, got end of input",
		},
		{
			name:     "no position",
			err:      Newf(CategoryExpansion, position.Span{}, "unknown macro %q", "foo"),
			expected: `unknown macro "foo"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Fatalf("Error() wrong. expected=%q, got=%q", tt.expected, got)
			}
		})
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("expected operand")
	err := Wrap(CategoryExpression, spanAt(1, 1, 0), cause)

	if !errors.Is(err, cause) {
		t.Fatal("Wrap() lost the underlying error")
	}
	if err.Message != "expected operand" {
		t.Fatalf("Message = %q", err.Message)
	}
}

func TestListSortedAndFlattened(t *testing.T) {
	var inner List
	inner.Add(Newf(CategoryMarker, spanAt(5, 1, 50), "late"))

	var l List
	l.Add(nil)
	l.Add(Newf(CategoryGrammar, spanAt(3, 1, 30), "middle"))
	l.Add(inner)
	l.Add(fmt.Errorf("wrapped: %w", Newf(CategoryStructural, spanAt(1, 1, 0), "early")))

	if len(l) != 3 {
		t.Fatalf("len = %d, want 3", len(l))
	}

	err := l.Err()
	var got List
	if !errors.As(err, &got) {
		t.Fatalf("Err() returned %T", err)
	}
	order := []string{"early", "middle", "late"}
	for i, msg := range order {
		if got[i].Message != msg {
			t.Fatalf("got[%d] = %q, want %q", i, got[i].Message, msg)
		}
	}
	if (List{}).Err() != nil {
		t.Fatal("empty list must not be an error")
	}
}
