package expand

import (
	"errors"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/orizon-lang/gosugar/internal/diagnostics"
	"github.com/orizon-lang/gosugar/internal/macro"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestConditionalTypes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains string
	}{
		{
			name:     "untyped constants default",
			input:    "package demo\n\nvar v = cxp!{ (ok) ? (1) : (2.5) }\n",
			contains: "func() float64 {",
		},
		{
			name:     "typed branch wins",
			input:    "package demo\n\nvar d int64\nvar v = cxp!{ (ok) ? (d) : (0) }\n",
			contains: "func() int64 {",
		},
		{
			name:     "nil and pointer",
			input:    "package demo\n\nvar p *int\nvar v = elv!{ (p) ?: (nil) }\n",
			contains: "func() *int { if truth.Of(p) { return p }\n return nil }()",
		},
		{
			name:     "renamed import",
			input:    "package demo\n\nimport str \"strings\"\n\nvar v = cxp!{ (ok) ? (str.NewReader(\"x\")) : (nil) }\n",
			contains: "func() *str.Reader {",
		},
		{
			name:     "nested conditionals",
			input:    "package demo\n\nvar v = cxp!{ (a) ? (cxp!{ (b) ? (\"x\") : (\"y\") }) : (\"z\") }\n",
			contains: `func() string { if truth.Of(a) { return func() string { if truth.Of(b) { return "x" }
	return "y" }() }
	return "z" }()`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newExpander(t, Options{})
			out, err := e.ExpandSource("demo.sgo", []byte(tt.input))
			if err != nil {
				t.Fatalf("ExpandSource() error: %v", err)
			}
			if !strings.Contains(squash(string(out)), squash(tt.contains)) {
				t.Fatalf("output missing %q:\n%s", tt.contains, out)
			}
			if strings.Contains(string(out), macro.CondPlaceholder) {
				t.Fatalf("placeholder left in output:\n%s", out)
			}
		})
	}
}

func TestConditionalErrorPointsAtInvocation(t *testing.T) {
	src := "package demo\n\nvar a = 1\n\nvar b = elv!{ (nil) ?: (nil) }\n"
	e := newExpander(t, Options{})
	_, err := e.ExpandSource("demo.sgo", []byte(src))

	var list diagnostics.List
	if !errors.As(err, &list) || len(list) != 1 {
		t.Fatalf("expected one diagnostic, got %v", err)
	}
	d := list[0]
	if !strings.Contains(d.Message, "cannot infer the type of the conditional branches") {
		t.Fatalf("message wrong. got=%q", d.Message)
	}
	if d.Span.Start.Line != 5 || d.Span.Start.Column != 9 {
		t.Fatalf("position wrong. expected=5:9, got=%d:%d", d.Span.Start.Line, d.Span.Start.Column)
	}
}

func TestConditionalUsesPackageFiles(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"types.go":     "package demo\n\ntype Label string\n\nfunc label() Label { return \"x\" }\n",
		"count.sgo":    "package demo\n\nfunc count() int { return 1 }\n",
		"count.go":     "package demo\n\nfunc count() string { return \"stale\" }\n",
		"pick.go":      "package demo\n\nfunc pick() {}\n",
		"other.go":     "package elsewhere\n\nfunc label() int { return 0 }\n",
		"pick_test.go": "package demo\n\nfunc label() {}\n",
	})
	src := "package demo\n\nfunc pick(ok bool) (Label, int) {\n\treturn cxp!{ (ok) ? (label()) : (\"none\") }, cxp!{ (ok) ? (count()) : (0) }\n}\n"
	path := filepath.Join(dir, "pick.sgo")
	writeFiles(t, dir, map[string]string{"pick.sgo": src})

	e := newExpander(t, Options{})
	out, err := e.ExpandSource(path, []byte(src))
	if err != nil {
		t.Fatalf("ExpandSource() error: %v", err)
	}
	for _, want := range []string{"func() Label {", "func() int {"} {
		if !strings.Contains(string(out), want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

// TestLoweredConditionalRunsOneBranch builds and runs an expanded program,
// so it needs the go command.
func TestLoweredConditionalRunsOneBranch(t *testing.T) {
	if testing.Short() {
		t.Skip("runs the go command")
	}
	goTool, err := exec.LookPath("go")
	if err != nil {
		t.Skip("go command not found")
	}

	src := `package main

import "fmt"

func main() {
	var xs []int
	calls := 0
	fallback := func() string {
		calls++
		return "fallback"
	}

	first := cxp!{ (len(xs) > 0) ? (xs[0]) : (-1) }
	set := elv!{ ("set") ?: (fallback()) }
	empty := elv!{ ("") ?: (fallback()) }
	fmt.Println(first, set, empty, calls)
}
`
	if err := os.MkdirAll("testdata", 0755); err != nil {
		t.Fatal(err)
	}
	dir, err := os.MkdirTemp("testdata", "lazy")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	e := newExpander(t, Options{})
	out, err := e.ExpandSource(filepath.Join(dir, "main.sgo"), []byte(src))
	if err != nil {
		t.Fatalf("ExpandSource() error: %v", err)
	}
	writeFiles(t, dir, map[string]string{"main.go": string(out)})

	cmd := exec.Command(goTool, "run", ".")
	cmd.Dir = dir
	got, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("go run failed: %v\n%s\n--- expanded:\n%s", err, got, out)
	}
	if expected := "-1 set fallback 1\n"; string(got) != expected {
		t.Fatalf("program output wrong. expected=%q, got=%q", expected, got)
	}
}

// moduleImporter type-checks this module's runtime packages from source and
// defers everything else to the standard library importer.
type moduleImporter struct {
	fset *token.FileSet
	std  types.Importer
	dirs map[string]string
	pkgs map[string]*types.Package
}

func newModuleImporter(fset *token.FileSet) *moduleImporter {
	return &moduleImporter{
		fset: fset,
		std:  importer.ForCompiler(fset, "source", nil),
		dirs: map[string]string{
			macro.DefaultSugarImport: filepath.Join("..", "..", "sugar"),
			macro.DefaultTruthImport: filepath.Join("..", "..", "truth"),
		},
		pkgs: make(map[string]*types.Package),
	}
}

func (m *moduleImporter) Import(path string) (*types.Package, error) {
	if pkg, ok := m.pkgs[path]; ok {
		return pkg, nil
	}
	dir, ok := m.dirs[path]
	if !ok {
		return m.std.Import(path)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []*ast.File
	for _, ent := range entries {
		name := ent.Name()
		if filepath.Ext(name) != ".go" || strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(m.fset, filepath.Join(dir, name), nil, 0)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	conf := types.Config{Importer: m}
	pkg, err := conf.Check(path, m.fset, files, nil)
	if err != nil {
		return nil, err
	}
	m.pkgs[path] = pkg
	return pkg, nil
}

func TestShowcaseTypeChecks(t *testing.T) {
	dir := filepath.Join("..", "..", "examples", "showcase")
	path := filepath.Join(dir, "showcase.sgo")
	src, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	e := newExpander(t, Options{})
	out, err := e.ExpandSource(path, src)
	if err != nil {
		t.Fatalf("ExpandSource() error: %v", err)
	}

	fset := token.NewFileSet()
	expanded, err := parser.ParseFile(fset, "showcase.go", out, 0)
	if err != nil {
		t.Fatalf("expanded showcase does not parse: %v\n%s", err, out)
	}
	doc, err := parser.ParseFile(fset, filepath.Join(dir, "doc.go"), nil, 0)
	if err != nil {
		t.Fatal(err)
	}

	conf := types.Config{Importer: newModuleImporter(fset)}
	if _, err := conf.Check("showcase", fset, []*ast.File{expanded, doc}, nil); err != nil {
		t.Fatalf("expanded showcase does not type-check: %v\n%s", err, out)
	}
}
