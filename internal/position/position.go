// Package position provides source code position tracking for gosugar.
// Spans produced by the lexer point into the original .sgo file so that
// errors raised deep inside a transformer still name the offending text.
package position

import (
	"fmt"
	"go/token"
	"path/filepath"
	"sort"
	"strings"
)

// Position represents a single point in source code
type Position struct {
	Filename string // Source file name
	Line     int    // 1-based line number
	Column   int    // 1-based column number (bytes)
	Offset   int    // 0-based byte offset in source
}

// FromToken converts a go/token position.
func FromToken(p token.Position) Position {
	return Position{Filename: p.Filename, Line: p.Line, Column: p.Column, Offset: p.Offset}
}

// IsValid returns true if the position is valid
func (p Position) IsValid() bool {
	return p.Line > 0 && p.Column > 0 && p.Offset >= 0
}

// String returns a string representation of the position
func (p Position) String() string {
	if p.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", filepath.Base(p.Filename), p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Before returns true if this position comes before other
func (p Position) Before(other Position) bool {
	if p.Filename != other.Filename {
		return p.Filename < other.Filename
	}
	return p.Offset < other.Offset
}

// After returns true if this position comes after other
func (p Position) After(other Position) bool {
	if p.Filename != other.Filename {
		return p.Filename > other.Filename
	}
	return p.Offset > other.Offset
}

// Shift translates a position measured inside a fragment so that the
// fragment's first byte lands on base.
func (p Position) Shift(base Position) Position {
	if !p.IsValid() {
		return p
	}
	out := Position{
		Filename: base.Filename,
		Line:     base.Line + p.Line - 1,
		Column:   p.Column,
		Offset:   base.Offset + p.Offset,
	}
	if p.Line == 1 {
		out.Column = base.Column + p.Column - 1
	}
	return out
}

// Span represents a range of source code between two positions
type Span struct {
	Start Position // Starting position (inclusive)
	End   Position // Ending position (exclusive)
}

// IsValid returns true if the span is valid
func (s Span) IsValid() bool {
	return s.Start.IsValid() && s.End.IsValid() &&
		s.Start.Filename == s.End.Filename &&
		s.Start.Offset <= s.End.Offset
}

// String returns a string representation of the span
func (s Span) String() string {
	if s.Start.Filename != "" {
		filename := filepath.Base(s.Start.Filename)
		if s.Start.Line == s.End.Line {
			return fmt.Sprintf("%s:%d:%d-%d", filename, s.Start.Line, s.Start.Column, s.End.Column)
		}
		return fmt.Sprintf("%s:%d:%d-%d:%d", filename, s.Start.Line, s.Start.Column, s.End.Line, s.End.Column)
	}

	if s.Start.Line == s.End.Line {
		return fmt.Sprintf("%d:%d-%d", s.Start.Line, s.Start.Column, s.End.Column)
	}
	return fmt.Sprintf("%d:%d-%d:%d", s.Start.Line, s.Start.Column, s.End.Line, s.End.Column)
}

// Contains returns true if the span contains the given position
func (s Span) Contains(pos Position) bool {
	if !s.IsValid() || !pos.IsValid() {
		return false
	}
	if s.Start.Filename != pos.Filename {
		return false
	}
	return s.Start.Offset <= pos.Offset && pos.Offset < s.End.Offset
}

// Union returns a span that encompasses both this span and other
func (s Span) Union(other Span) Span {
	if !s.IsValid() {
		return other
	}
	if !other.IsValid() {
		return s
	}
	if s.Start.Filename != other.Start.Filename {
		return s // Cannot union spans from different files
	}

	start := s.Start
	if other.Start.Before(start) {
		start = other.Start
	}

	end := s.End
	if other.End.After(end) {
		end = other.End
	}

	return Span{Start: start, End: end}
}

// Shift translates both ends of a fragment span, see Position.Shift.
func (s Span) Shift(base Position) Span {
	return Span{Start: s.Start.Shift(base), End: s.End.Shift(base)}
}

// Length returns the length of the span in bytes
func (s Span) Length() int {
	if !s.IsValid() {
		return 0
	}
	return s.End.Offset - s.Start.Offset
}

// SourceFile represents a source file with content and a line table.
type SourceFile struct {
	Filename string
	Content  string
	lines    []int // byte offset of the first byte of every line
}

// NewSourceFile creates a new source file from content
func NewSourceFile(filename, content string) *SourceFile {
	lines := []int{0}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			lines = append(lines, i+1)
		}
	}
	return &SourceFile{Filename: filename, Content: content, lines: lines}
}

// LineCount returns the number of lines in the file.
func (sf *SourceFile) LineCount() int {
	return len(sf.lines)
}

// GetLine returns the specified line (1-based) without its newline, or ""
func (sf *SourceFile) GetLine(lineNum int) string {
	if lineNum < 1 || lineNum > len(sf.lines) {
		return ""
	}
	start := sf.lines[lineNum-1]
	end := len(sf.Content)
	if lineNum < len(sf.lines) {
		end = sf.lines[lineNum] - 1
	}
	return strings.TrimSuffix(sf.Content[start:end], "\r")
}

// GetSpanText returns the text covered by the span
func (sf *SourceFile) GetSpanText(span Span) string {
	if !span.IsValid() || span.Start.Filename != sf.Filename {
		return ""
	}
	if span.Start.Offset > len(sf.Content) || span.End.Offset > len(sf.Content) {
		return ""
	}
	return sf.Content[span.Start.Offset:span.End.Offset]
}

// PositionFromOffset converts a byte offset to a Position
func (sf *SourceFile) PositionFromOffset(offset int) Position {
	if offset < 0 || offset > len(sf.Content) {
		return Position{}
	}
	line := sort.Search(len(sf.lines), func(i int) bool { return sf.lines[i] > offset })
	return Position{
		Filename: sf.Filename,
		Line:     line,
		Column:   offset - sf.lines[line-1] + 1,
		Offset:   offset,
	}
}

// SpanFromOffsets builds a span over [start, end).
func (sf *SourceFile) SpanFromOffsets(start, end int) Span {
	return Span{Start: sf.PositionFromOffset(start), End: sf.PositionFromOffset(end)}
}

// LineOffset returns the byte offset where the line (1-based) starts.
func (sf *SourceFile) LineOffset(lineNum int) int {
	if lineNum < 1 || lineNum > len(sf.lines) {
		return -1
	}
	return sf.lines[lineNum-1]
}
