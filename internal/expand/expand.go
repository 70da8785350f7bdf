// Package expand rewrites gosugar sources into plain Go.
//
// A file is tokenized once, every macro invocation is expanded inner-first
// and spliced back over its byte range, then the runtime imports are added
// and the result is printed with go/format. Conditional expressions are
// finally lowered to function literals whose result type go/types infers
// from the package.
package expand

import (
	"bytes"
	"fmt"
	"go/format"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/Masterminds/semver/v3"
	"golang.org/x/tools/go/ast/astutil"

	"github.com/orizon-lang/gosugar/internal/cli"
	"github.com/orizon-lang/gosugar/internal/diagnostics"
	"github.com/orizon-lang/gosugar/internal/lexer"
	"github.com/orizon-lang/gosugar/internal/macro"
)

// DefaultMaxDepth bounds nested invocations.
const DefaultMaxDepth = 64

// Options configures an Expander.
type Options struct {
	Registry    *macro.Registry
	Imports     macro.Imports
	MaxDepth    int
	Header      bool   // prepend a "Code generated ... DO NOT EDIT." line
	Concurrency int    // files expanded at once by ExpandFiles
	Extension   string // source extension, ".sgo" by default
	Version     string // tool version checked by //gosugar:require
	Logger      *cli.Logger
}

// Expander expands macro invocations. It is safe for concurrent use.
type Expander struct {
	opts    Options
	version *semver.Version

	typesMu  sync.Mutex // guards fset and importer
	fset     *token.FileSet
	importer types.Importer
}

// New creates an expander, filling in defaults.
func New(opts Options) (*Expander, error) {
	if opts.Registry == nil {
		opts.Registry = macro.NewRegistry()
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.GOMAXPROCS(0)
	}
	if opts.Extension == "" {
		opts.Extension = ".sgo"
	}
	if opts.Version == "" {
		opts.Version = cli.Version
	}

	v, err := semver.NewVersion(opts.Version)
	if err != nil {
		return nil, fmt.Errorf("invalid tool version %q: %w", opts.Version, err)
	}
	fset := token.NewFileSet()
	return &Expander{
		opts:     opts,
		version:  v,
		fset:     fset,
		importer: importer.ForCompiler(fset, "source", nil),
	}, nil
}

// Registry returns the macros this expander knows.
func (e *Expander) Registry() *macro.Registry {
	return e.opts.Registry
}

// ExpandSource expands one file. Every invocation is attempted; when any
// fails, all diagnostics are returned as a diagnostics.List and no output
// is produced.
func (e *Expander) ExpandSource(filename string, src []byte) ([]byte, error) {
	out, ctx, err := e.prepare(filename, src)
	if err != nil {
		return nil, err
	}

	if ctx.Conditionals() > 0 {
		lowered, imports, err := e.lowerConditionals(filename, out, ctx)
		if err != nil {
			return nil, err
		}
		if out, err = e.format(filename, lowered, imports); err != nil {
			return nil, err
		}
	}

	if e.opts.Header {
		header := fmt.Sprintf("// Code generated by gosugar from %s. DO NOT EDIT.\n\n", filepath.Base(filename))
		out = append([]byte(header), out...)
	}
	return out, nil
}

// prepare splices every expansion into src and adds the imports they need.
// Conditionals are left as placeholders.
func (e *Expander) prepare(filename string, src []byte) ([]byte, *macro.Context, error) {
	if err := e.checkDirectives(filename, src); err != nil {
		return nil, nil, err
	}

	tokens, err := lexer.New(filename, src).Tokenize()
	if err != nil {
		return nil, nil, err
	}

	ctx := macro.NewContext(filename, e.opts.Imports)
	var (
		errs  diagnostics.List
		out   bytes.Buffer
		last  int
		count int
	)
	for i := 0; i < len(tokens); {
		inv, ok, err := findInvocation(tokens, i)
		if err != nil {
			errs.Add(err)
			break
		}
		if !ok {
			i++
			continue
		}

		produced, err := e.expandInvocation(ctx, inv, 1)
		if err != nil {
			errs.Add(err)
		} else {
			out.Write(src[last:inv.Name.Span.Start.Offset])
			out.WriteString(macro.Render(produced))
			last = inv.Close.Span.End.Offset
			count++
		}
		i = inv.next
	}
	if err := errs.Err(); err != nil {
		return nil, nil, err
	}
	out.Write(src[last:])

	e.debugf("%s: expanded %d invocations", filename, count)
	formatted, err := e.format(filename, out.Bytes(), ctx.Required())
	if err != nil {
		return nil, nil, err
	}
	return formatted, ctx, nil
}

// expandInvocation expands the body inner-first, then runs the transformer.
func (e *Expander) expandInvocation(ctx *macro.Context, inv invocation, depth int) (macro.TokenStream, error) {
	name := inv.Name.Literal
	if depth > e.opts.MaxDepth {
		return nil, diagnostics.Newf(diagnostics.CategoryExpansion, inv.Name.Span,
			"macro expansion exceeds maximum depth %d", e.opts.MaxDepth)
	}

	t, known := e.opts.Registry.Lookup(name)
	if t == nil {
		if known {
			return nil, diagnostics.Newf(diagnostics.CategoryExpansion, inv.Name.Span, "macro %q is disabled", name)
		}
		return nil, diagnostics.Newf(diagnostics.CategoryExpansion, inv.Name.Span, "unknown macro %q", name)
	}

	body, err := e.expandStream(ctx, inv.Body, depth+1)
	if err != nil {
		return nil, err
	}

	ctx.Span = inv.Span()
	out, err := t.Transform(ctx, body)
	if err != nil {
		return nil, err
	}
	e.debugf("%s: %s! -> %s", inv.Name.Span.Start, name, macro.Render(out))
	return out, nil
}

// expandStream replaces every invocation in ts with its expansion.
func (e *Expander) expandStream(ctx *macro.Context, ts macro.TokenStream, depth int) (macro.TokenStream, error) {
	var (
		errs diagnostics.List
		out  macro.TokenStream
		last int
	)
	for i := 0; i < len(ts); {
		inv, ok, err := findInvocation(ts, i)
		if err != nil {
			errs.Add(err)
			break
		}
		if !ok {
			i++
			continue
		}

		produced, err := e.expandInvocation(ctx, inv, depth)
		if err != nil {
			errs.Add(err)
		} else {
			out = append(out, ts[last:i]...)
			for j, tok := range produced {
				if j == 0 {
					tok.Gap = inv.Name.Gap
				}
				out = append(out, tok)
			}
			last = inv.next
		}
		i = inv.next
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	if last == 0 {
		return ts, nil
	}
	return append(out, ts[last:]...), nil
}

// format adds the required imports and formats the file.
func (e *Expander) format(filename string, src []byte, required []string) ([]byte, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, diagnostics.Wrap(diagnostics.CategoryExpansion, fileSpan(filename),
			fmt.Errorf("expanded source is not valid Go: %w", err))
	}

	for _, path := range required {
		if astutil.AddImport(fset, file, path) {
			e.debugf("%s: added import %q", filename, path)
		}
	}

	var buf bytes.Buffer
	if err := format.Node(&buf, fset, file); err != nil {
		return nil, diagnostics.Wrap(diagnostics.CategoryExpansion, fileSpan(filename), err)
	}
	return buf.Bytes(), nil
}

func (e *Expander) debugf(format string, args ...interface{}) {
	if e.opts.Logger != nil {
		e.opts.Logger.Debug(format, args...)
	}
}
