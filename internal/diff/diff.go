// Package diff renders line diffs between a source file and its expansion.
package diff

import (
	"fmt"
	"strings"
)

// LineType represents the type of a diff line.
type LineType int

const (
	LineTypeContext LineType = iota // Unchanged context line
	LineTypeAdded                   // Added line (+)
	LineTypeRemoved                 // Removed line (-)
)

// Line represents a single line in a diff.
type Line struct {
	Content string
	Type    LineType
}

// Hunk represents a contiguous block of changes.
type Hunk struct {
	OriginalStart int
	OriginalCount int
	ModifiedStart int
	ModifiedCount int
	Lines         []Line
}

// Header returns the @@ line of the hunk.
func (h Hunk) Header() string {
	return fmt.Sprintf("@@ -%s +%s @@", rangeOf(h.OriginalStart, h.OriginalCount), rangeOf(h.ModifiedStart, h.ModifiedCount))
}

func rangeOf(start, count int) string {
	if count == 0 {
		start--
	}
	if count == 1 {
		return fmt.Sprint(start)
	}
	return fmt.Sprintf("%d,%d", start, count)
}

// DiffStat contains statistics about changes.
type DiffStat struct {
	LinesAdded   int
	LinesRemoved int
}

// Result is a computed diff.
type Result struct {
	Hunks []Hunk
	Stats DiffStat
}

// HasChanges reports whether the inputs differ.
func (r *Result) HasChanges() bool {
	return len(r.Hunks) > 0
}

// DefaultContext is the number of unchanged lines around each change.
const DefaultContext = 3

// Compute diffs original against modified line by line.
func Compute(original, modified string, context int) *Result {
	a, b := splitLines(original), splitLines(modified)
	ops := lineOps(a, b)

	r := &Result{}
	for _, op := range ops {
		switch op.line.Type {
		case LineTypeAdded:
			r.Stats.LinesAdded++
		case LineTypeRemoved:
			r.Stats.LinesRemoved++
		}
	}
	r.Hunks = group(ops, context)
	return r
}

// Unified renders the result in unified diff format.
func (r *Result) Unified(originalName, modifiedName string) string {
	if !r.HasChanges() {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- %s\n+++ %s\n", originalName, modifiedName)
	for _, h := range r.Hunks {
		sb.WriteString(h.Header())
		sb.WriteByte('\n')
		for _, l := range h.Lines {
			switch l.Type {
			case LineTypeAdded:
				sb.WriteByte('+')
			case LineTypeRemoved:
				sb.WriteByte('-')
			default:
				sb.WriteByte(' ')
			}
			sb.WriteString(l.Content)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Unified is a shorthand for Compute followed by Result.Unified.
func Unified(originalName, modifiedName, original, modified string) string {
	return Compute(original, modified, DefaultContext).Unified(originalName, modifiedName)
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// op is one aligned line. old and new are the 1-based positions the line
// occupies, or would occupy, in each input.
type op struct {
	line     Line
	old, new int
}

// lineOps aligns a and b with a longest common subsequence. Common leading
// and trailing lines are matched first so the table only covers the middle.
func lineOps(a, b []string) []op {
	prefix := 0
	for prefix < len(a) && prefix < len(b) && a[prefix] == b[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < len(a)-prefix && suffix < len(b)-prefix && a[len(a)-1-suffix] == b[len(b)-1-suffix] {
		suffix++
	}

	var ops []op
	for i := 0; i < prefix; i++ {
		ops = append(ops, op{line: Line{Content: a[i]}, old: i + 1, new: i + 1})
	}

	ma, mb := a[prefix:len(a)-suffix], b[prefix:len(b)-suffix]
	lcs := make([][]int, len(ma)+1)
	for i := range lcs {
		lcs[i] = make([]int, len(mb)+1)
	}
	for i := len(ma) - 1; i >= 0; i-- {
		for j := len(mb) - 1; j >= 0; j-- {
			if ma[i] == mb[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else {
				lcs[i][j] = max(lcs[i+1][j], lcs[i][j+1])
			}
		}
	}

	i, j := 0, 0
	for i < len(ma) || j < len(mb) {
		switch {
		case i < len(ma) && j < len(mb) && ma[i] == mb[j]:
			ops = append(ops, op{line: Line{Content: ma[i]}, old: prefix + i + 1, new: prefix + j + 1})
			i++
			j++
		case i < len(ma) && (j == len(mb) || lcs[i+1][j] >= lcs[i][j+1]):
			ops = append(ops, op{line: Line{Content: ma[i], Type: LineTypeRemoved}, old: prefix + i + 1, new: prefix + j + 1})
			i++
		default:
			ops = append(ops, op{line: Line{Content: mb[j], Type: LineTypeAdded}, old: prefix + i + 1, new: prefix + j + 1})
			j++
		}
	}

	for k := 0; k < suffix; k++ {
		oi, ni := len(a)-suffix+k, len(b)-suffix+k
		ops = append(ops, op{line: Line{Content: a[oi]}, old: oi + 1, new: ni + 1})
	}
	return ops
}

// group cuts the ops into hunks with context unchanged lines on each side,
// merging changes closer than 2*context lines.
func group(ops []op, context int) []Hunk {
	var hunks []Hunk
	for i := 0; i < len(ops); {
		if ops[i].line.Type == LineTypeContext {
			i++
			continue
		}

		start := max(i-context, 0)
		end := i
		for end < len(ops) {
			if ops[end].line.Type != LineTypeContext {
				end++
				continue
			}
			run := end
			for run < len(ops) && ops[run].line.Type == LineTypeContext {
				run++
			}
			if run == len(ops) || run-end > 2*context {
				end = min(end+context, len(ops))
				break
			}
			end = run
		}

		hunks = append(hunks, makeHunk(ops[start:end]))
		i = end
	}
	return hunks
}

func makeHunk(ops []op) Hunk {
	h := Hunk{OriginalStart: ops[0].old, ModifiedStart: ops[0].new}
	for _, o := range ops {
		h.Lines = append(h.Lines, o.line)
		if o.line.Type != LineTypeAdded {
			h.OriginalCount++
		}
		if o.line.Type != LineTypeRemoved {
			h.ModifiedCount++
		}
	}
	return h
}
