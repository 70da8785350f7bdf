package macro

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/orizon-lang/gosugar/internal/position"
)

// Default import paths of the runtime packages used by generated code.
const (
	DefaultSugarImport = "github.com/orizon-lang/gosugar/sugar"
	DefaultTruthImport = "github.com/orizon-lang/gosugar/truth"
)

// Imports names the runtime packages generated code calls into.
type Imports struct {
	Sugar string
	Truth string
}

// DefaultImports returns the import paths of this module's runtime packages.
func DefaultImports() Imports {
	return Imports{Sugar: DefaultSugarImport, Truth: DefaultTruthImport}
}

// Context is shared by all invocations of one file.
type Context struct {
	Filename string
	Span     position.Span // invocation being transformed

	imports  Imports
	required map[string]struct{}
	counters map[string]int
	conds    []position.Span
}

// CondPlaceholder is the function name conditional expressions are emitted
// under. The expander replaces every
//
//	gosugar__cond(n, result, alt)(cond)
//
// with func() T { if cond { return result }; return alt }() once the type
// checker has inferred T from the two branches.
const CondPlaceholder = "gosugar__cond"

// NewContext creates the expansion context for a file.
func NewContext(filename string, imports Imports) *Context {
	if imports.Sugar == "" {
		imports.Sugar = DefaultSugarImport
	}
	if imports.Truth == "" {
		imports.Truth = DefaultTruthImport
	}
	return &Context{
		Filename: filename,
		imports:  imports,
		required: make(map[string]struct{}),
		counters: make(map[string]int),
	}
}

// Require records that the output imports importPath and returns the
// package name to qualify with.
func (c *Context) Require(importPath string) string {
	c.required[importPath] = struct{}{}
	return packageName(importPath)
}

// Sugar requires the sugar runtime package.
func (c *Context) Sugar() string {
	return c.Require(c.imports.Sugar)
}

// Truth requires the truth runtime package.
func (c *Context) Truth() string {
	return c.Require(c.imports.Truth)
}

// Required lists the recorded imports, sorted.
func (c *Context) Required() []string {
	paths := make([]string, 0, len(c.required))
	for p := range c.required {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Fresh returns an identifier no other call for this file returns. The
// sequence is deterministic, so expanding a file twice gives equal output.
func (c *Context) Fresh(base string) string {
	c.counters[base]++
	return fmt.Sprintf("%s__%d", base, c.counters[base])
}

// Conditional records the current invocation as a conditional and returns
// its 1-based number.
func (c *Context) Conditional() int {
	c.conds = append(c.conds, c.Span)
	return len(c.conds)
}

// Conditionals returns how many conditionals were recorded.
func (c *Context) Conditionals() int {
	return len(c.conds)
}

// ConditionalSpan returns the invocation of conditional n.
func (c *Context) ConditionalSpan(n int) position.Span {
	if n < 1 || n > len(c.conds) {
		return position.Span{}
	}
	return c.conds[n-1]
}

// End is where a missing trailing token is reported.
func (c *Context) End() position.Span {
	return position.Span{Start: c.Span.End, End: c.Span.End}
}

// packageName guesses the package name from an import path, skipping a
// trailing major version element.
func packageName(importPath string) string {
	base := path.Base(importPath)
	if len(base) > 1 && base[0] == 'v' && strings.Trim(base[1:], "0123456789") == "" {
		base = path.Base(path.Dir(importPath))
	}
	return strings.ReplaceAll(base, "-", "_")
}
