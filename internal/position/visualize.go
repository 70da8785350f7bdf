package position

import (
	"fmt"
	"strings"
)

// Highlight renders the lines covered by span with a caret underline, in the
// shape used for CLI error output:
//
//	  12 | v := cxp!{ (ok) ? (1) (2) }
//	     |                       ^^^
func (sf *SourceFile) Highlight(span Span) string {
	if !span.Start.IsValid() || span.Start.Line > sf.LineCount() {
		return ""
	}
	end := span.End
	if !end.IsValid() || end.Before(span.Start) {
		end = span.Start
	}

	var result strings.Builder
	for lineNum := span.Start.Line; lineNum <= end.Line && lineNum <= sf.LineCount(); lineNum++ {
		line := sf.GetLine(lineNum)
		result.WriteString(fmt.Sprintf("%4d | %s\n", lineNum, line))

		startCol, endCol := 1, len(line)+1
		if lineNum == span.Start.Line {
			startCol = span.Start.Column
		}
		if lineNum == end.Line {
			endCol = end.Column
		}
		result.WriteString("     | ")
		addSingleLineHighlight(&result, line, startCol, endCol)
		result.WriteString("\n")
	}

	return result.String()
}

// addSingleLineHighlight adds highlighting for a single line between given columns.
func addSingleLineHighlight(result *strings.Builder, line string, startCol, endCol int) {
	for i := 1; i < startCol; i++ {
		if i <= len(line) && line[i-1] == '\t' {
			result.WriteString("\t")
		} else {
			result.WriteString(" ")
		}
	}

	// Zero-width spans (end of input) still get one caret.
	width := max(1, endCol-startCol)
	result.WriteString(strings.Repeat("^", width))
}
