package expand

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/orizon-lang/gosugar/internal/diagnostics"
	"github.com/orizon-lang/gosugar/internal/macro"
)

// condDecl gives placeholders a signature so that the checker infers T the
// way it would for a generic call.
const condDecl = "func " + macro.CondPlaceholder + "[T any](int, T, T) func(bool) T { panic(0) }\n"

// conditional is one placeholder call gosugar__cond(n, result, alt)(cond).
// Offsets are byte ranges in the file being lowered.
type conditional struct {
	index  int
	inner  *ast.CallExpr
	call   [2]int
	cond   [2]int
	result [2]int
	alt    [2]int
	typ    string
}

// lowerConditionals replaces every conditional placeholder in src, which
// already carries its imports, with
//
//	func() T { if cond { return result }; return alt }()
//
// so that only the selected branch is evaluated. T is inferred by type
// checking src together with the rest of its package. The second result
// lists imports the spelled-out types need.
func (e *Expander) lowerConditionals(filename string, src []byte, ctx *macro.Context) ([]byte, []string, error) {
	e.typesMu.Lock()
	defer e.typesMu.Unlock()

	fset := e.fset
	file, err := parser.ParseFile(fset, filename, src, parser.SkipObjectResolution)
	if err != nil {
		return nil, nil, diagnostics.Wrap(diagnostics.CategoryExpansion, fileSpan(filename),
			fmt.Errorf("expanded source is not valid Go: %w", err))
	}
	files := []*ast.File{file}
	defer func() {
		for _, f := range files {
			removeFile(fset, f)
		}
	}()

	tf := fset.File(file.FileStart)
	conds := collectConditionals(file, tf)
	if len(conds) == 0 {
		return src, nil, nil
	}

	files = append(files, e.packageFiles(fset, filename, file.Name.Name)...)
	decl, err := parser.ParseFile(fset, "gosugar_cond.go", "package "+file.Name.Name+"\n\n"+condDecl, 0)
	if err != nil {
		return nil, nil, err
	}
	files = append(files, decl)

	var typeErrs []types.Error
	conf := types.Config{
		Importer: e.importer,
		Error: func(err error) {
			var te types.Error
			if errors.As(err, &te) {
				typeErrs = append(typeErrs, te)
			}
		},
	}
	info := &types.Info{Types: make(map[ast.Expr]types.TypeAndValue)}
	pkg, _ := conf.Check(file.Name.Name, fset, files, info)

	names := importNames(file)
	var imports []string
	qualifier := func(p *types.Package) string {
		if p == pkg {
			return ""
		}
		name, ok := names[p.Path()]
		switch {
		case !ok:
			names[p.Path()] = ""
			imports = append(imports, p.Path())
		case name == ".":
			return ""
		case name != "":
			return name
		}
		return p.Name()
	}

	var errs diagnostics.List
	for _, c := range conds {
		t := branchType(info, c.inner)
		if t != nil {
			c.typ = types.TypeString(t, qualifier)
		}
		if t == nil || strings.Contains(c.typ, "invalid type") {
			errs.Add(diagnostics.Newf(diagnostics.CategoryExpansion, ctx.ConditionalSpan(c.index),
				"cannot infer the type of the conditional branches%s", typeHint(typeErrs, tf, c)))
		}
	}
	if err := errs.Err(); err != nil {
		return nil, nil, err
	}

	e.debugf("%s: lowered %d conditionals", filename, len(conds))
	l := lowering{src: src, conds: conds}
	return []byte(l.text(0, len(src))), imports, nil
}

// collectConditionals finds the placeholders in source order, outer calls
// before the ones nested in them.
func collectConditionals(file *ast.File, tf *token.File) []*conditional {
	span := func(n ast.Node) [2]int {
		return [2]int{tf.Offset(n.Pos()), tf.Offset(n.End())}
	}

	var conds []*conditional
	ast.Inspect(file, func(n ast.Node) bool {
		outer, ok := n.(*ast.CallExpr)
		if !ok || len(outer.Args) != 1 {
			return true
		}
		inner, ok := outer.Fun.(*ast.CallExpr)
		if !ok || len(inner.Args) != 3 {
			return true
		}
		if id, ok := inner.Fun.(*ast.Ident); !ok || id.Name != macro.CondPlaceholder {
			return true
		}
		index := 0
		if lit, ok := inner.Args[0].(*ast.BasicLit); ok {
			index, _ = strconv.Atoi(lit.Value)
		}
		conds = append(conds, &conditional{
			index:  index,
			inner:  inner,
			call:   span(outer),
			cond:   span(outer.Args[0]),
			result: span(inner.Args[1]),
			alt:    span(inner.Args[2]),
		})
		return true
	})
	return conds
}

// branchType returns T of an inferred placeholder call, or nil.
func branchType(info *types.Info, inner *ast.CallExpr) types.Type {
	tv, ok := info.Types[inner]
	if !ok {
		return nil
	}
	sig, ok := tv.Type.(*types.Signature)
	if !ok || sig.Results().Len() != 1 {
		return nil
	}
	t := sig.Results().At(0).Type()
	if b, ok := t.(*types.Basic); ok {
		if b.Kind() == types.Invalid || b.Kind() == types.UntypedNil {
			return nil
		}
		t = types.Default(t)
	}
	return t
}

// typeHint returns the first checker message inside the conditional.
func typeHint(errs []types.Error, tf *token.File, c *conditional) string {
	for _, te := range errs {
		if te.Fset.File(te.Pos) != tf {
			continue
		}
		if off := tf.Offset(te.Pos); off >= c.call[0] && off < c.call[1] {
			return ": " + te.Msg
		}
	}
	return ""
}

// importNames maps the import paths of file to their explicit local names,
// or to "" for imports that use the package name.
func importNames(file *ast.File) map[string]string {
	names := make(map[string]string)
	for _, spec := range file.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil || (spec.Name != nil && spec.Name.Name == "_") {
			continue
		}
		names[path] = ""
		if spec.Name != nil {
			names[path] = spec.Name.Name
		}
	}
	return names
}

// packageFiles parses the other files of filename's package: plain Go files
// that are not the output of a source next to them, and sibling sources
// expanded up to their placeholders.
func (e *Expander) packageFiles(fset *token.FileSet, filename, pkgName string) []*ast.File {
	if _, err := os.Stat(filename); err != nil {
		return nil
	}
	dir := filepath.Dir(filename)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	isTest := func(name string) bool {
		return strings.HasSuffix(strings.TrimSuffix(name, filepath.Ext(name)), "_test")
	}
	self := filepath.Base(filename)
	withTests := isTest(self)

	outputs := make(map[string]bool)
	for _, ent := range entries {
		if e.IsSource(ent.Name()) {
			outputs[OutputPath(ent.Name(), e.opts.Extension)] = true
		}
	}

	var files []*ast.File
	for _, ent := range entries {
		name := ent.Name()
		if ent.IsDir() || name == self || (isTest(name) && !withTests) {
			continue
		}
		path := filepath.Join(dir, name)

		var src []byte
		switch {
		case e.IsSource(name):
			raw, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			if src, _, err = e.prepare(path, raw); err != nil {
				e.debugf("%s: skipping %s: %v", filename, path, err)
				continue
			}
		case filepath.Ext(name) == ".go" && !outputs[name]:
			if src, err = os.ReadFile(path); err != nil {
				continue
			}
		default:
			continue
		}

		f, err := parser.ParseFile(fset, path, src, parser.SkipObjectResolution)
		if err != nil || f.Name.Name != pkgName {
			removeFile(fset, f)
			continue
		}
		files = append(files, f)
	}
	return files
}

// removeFile drops a parsed file from the shared file set.
func removeFile(fset *token.FileSet, f *ast.File) {
	if f == nil {
		return
	}
	if tf := fset.File(f.FileStart); tf != nil {
		fset.RemoveFile(tf)
	}
}

// lowering rewrites placeholders inside out.
type lowering struct {
	src   []byte
	conds []*conditional
}

// text returns src[from:to] with every placeholder in it lowered.
func (l *lowering) text(from, to int) string {
	var sb strings.Builder
	pos := from
	for _, c := range l.conds {
		if c.call[0] < pos || c.call[1] > to {
			continue
		}
		sb.Write(l.src[pos:c.call[0]])
		sb.WriteString(l.lazy(c))
		pos = c.call[1]
	}
	sb.Write(l.src[pos:to])
	return sb.String()
}

func (l *lowering) lazy(c *conditional) string {
	return fmt.Sprintf("func() %s { if %s { return %s }; return %s }()",
		c.typ, l.text(c.cond[0], c.cond[1]), l.text(c.result[0], c.result[1]), l.text(c.alt[0], c.alt[1]))
}
