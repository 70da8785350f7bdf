package expand

import (
	"bytes"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/orizon-lang/gosugar/internal/diagnostics"
	"github.com/orizon-lang/gosugar/internal/position"
)

// RequireDirective pins the tool versions a source file accepts, e.g.
//
//	//gosugar:require >= 0.3, < 1.0
const RequireDirective = "//gosugar:require"

// checkDirectives validates every require directive against the tool version.
func (e *Expander) checkDirectives(filename string, src []byte) error {
	if !bytes.Contains(src, []byte(RequireDirective)) {
		return nil
	}

	sf := position.NewSourceFile(filename, string(src))
	var errs diagnostics.List
	for line := 1; line <= sf.LineCount(); line++ {
		text := sf.GetLine(line)
		trimmed := strings.TrimSpace(text)
		if !strings.HasPrefix(trimmed, RequireDirective) {
			continue
		}
		arg := trimmed[len(RequireDirective):]
		if arg != "" && arg[0] != ' ' && arg[0] != '\t' {
			continue
		}
		arg = strings.TrimSpace(arg)

		start := sf.PositionFromOffset(sf.LineOffset(line) + strings.Index(text, RequireDirective))
		span := position.Span{Start: start, End: start.Advance(trimmed)}

		if arg == "" {
			errs.Add(diagnostics.Newf(diagnostics.CategoryDirective, span, "missing version constraint"))
			continue
		}
		c, err := semver.NewConstraint(arg)
		if err != nil {
			errs.Add(diagnostics.Newf(diagnostics.CategoryDirective, span, "invalid version constraint %q: %v", arg, err))
			continue
		}
		if ok, reasons := c.Validate(e.version); !ok {
			d := diagnostics.Newf(diagnostics.CategoryDirective, span, "gosugar %s does not satisfy %q", e.version, arg)
			if len(reasons) > 0 {
				d.Err = reasons[0]
			}
			errs.Add(d)
		}
	}
	return errs.Err()
}
