package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/orizon-lang/gosugar/internal/cli"
)

const pickSource = `package demo

func pick(a, b int) int {
	return cxp!{ (a > b) ? (a) : (b) }
}
`

func runTool(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func noConfig(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "missing.json")
}

func TestVersion(t *testing.T) {
	code, out, _ := runTool(t, "", "version")
	if code != 0 {
		t.Fatalf("exit code wrong. expected=0, got=%d", code)
	}
	if !strings.Contains(out, cli.Version) {
		t.Fatalf("version output wrong. expected to contain %q, got=%q", cli.Version, out)
	}

	code, out, _ = runTool(t, "", "version", "--json")
	if code != 0 || !strings.Contains(out, `"version"`) {
		t.Fatalf("json version wrong. code=%d, got=%q", code, out)
	}
}

func TestUnknownSubcommand(t *testing.T) {
	code, _, errOut := runTool(t, "", "frobnicate")
	if code != 2 {
		t.Fatalf("exit code wrong. expected=2, got=%d", code)
	}
	if !strings.Contains(errOut, "unknown subcommand: frobnicate") {
		t.Fatalf("stderr wrong. got=%q", errOut)
	}
}

func TestMacros(t *testing.T) {
	code, out, _ := runTool(t, "", "macros", "-config", noConfig(t))
	if code != 0 {
		t.Fatalf("exit code wrong. expected=0, got=%d", code)
	}
	names := strings.Fields(out)
	for _, want := range []string{"boo", "cxp", "ela", "elv", "hml", "map", "sin", "spr"} {
		found := false
		for _, name := range names {
			if name == want {
				found = true
			}
		}
		if !found {
			t.Fatalf("macro %q missing from %q", want, out)
		}
	}
}

func TestMacrosRespectsDisabled(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "gosugar.json")
	cfg := cli.DefaultConfig()
	cfg.Disabled = []string{"hml"}
	if err := cfg.SaveConfig(cfgPath); err != nil {
		t.Fatal(err)
	}

	_, out, _ := runTool(t, "", "macros", "-config", cfgPath)
	for _, name := range strings.Fields(out) {
		if name == "hml" {
			t.Fatalf("disabled macro listed: %q", out)
		}
	}
}

func TestExpandStdin(t *testing.T) {
	code, out, errOut := runTool(t, pickSource, "expand", "-stdin", "-config", noConfig(t))
	if code != 0 {
		t.Fatalf("exit code wrong. expected=0, got=%d (stderr %q)", code, errOut)
	}
	if !strings.Contains(out, "return func() int {") || !strings.Contains(out, "if truth.Of(a > b) {") {
		t.Fatalf("expansion wrong. got=%q", out)
	}
}

func TestExpandHeader(t *testing.T) {
	_, out, _ := runTool(t, pickSource, "expand", "-stdin", "-header", "-config", noConfig(t))
	if !strings.HasPrefix(out, "// Code generated") {
		t.Fatalf("header missing. got=%q", out)
	}
}

func TestExpandReportsDiagnostics(t *testing.T) {
	src := "package demo\n\nvar v = cxp!{ (ok) ? (1) (2) }\n"
	code, _, errOut := runTool(t, src, "expand", "-stdin", "-config", noConfig(t))
	if code != 1 {
		t.Fatalf("exit code wrong. expected=1, got=%d", code)
	}
	if !strings.Contains(errOut, "<stdin>:3:") {
		t.Fatalf("position missing. got=%q", errOut)
	}
	if !strings.Contains(errOut, "   3 | var v = cxp!{ (ok) ? (1) (2) }") {
		t.Fatalf("highlight missing. got=%q", errOut)
	}
}

func TestExpandWrite(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "pick.sgo")
	if err := os.WriteFile(src, []byte(pickSource), 0o644); err != nil {
		t.Fatal(err)
	}

	code, _, errOut := runTool(t, "", "expand", "-w", "-config", noConfig(t), dir)
	if code != 0 {
		t.Fatalf("exit code wrong. expected=0, got=%d (stderr %q)", code, errOut)
	}
	out, err := os.ReadFile(filepath.Join(dir, "pick.go"))
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if !strings.Contains(string(out), "func() int {") {
		t.Fatalf("written expansion wrong. got=%q", out)
	}

	code, list, _ := runTool(t, "", "expand", "-l", "-config", noConfig(t), dir)
	if code != 0 || list != "" {
		t.Fatalf("up to date file listed. code=%d, got=%q", code, list)
	}

	if err := os.Remove(filepath.Join(dir, "pick.go")); err != nil {
		t.Fatal(err)
	}
	_, list, _ = runTool(t, "", "expand", "-l", "-config", noConfig(t), dir)
	if strings.TrimSpace(list) != src {
		t.Fatalf("stale file not listed. expected=%q, got=%q", src, list)
	}
}

func TestExpandDiff(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "pick.sgo")
	if err := os.WriteFile(src, []byte(pickSource), 0o644); err != nil {
		t.Fatal(err)
	}

	_, out, _ := runTool(t, "", "expand", "-d", "-config", noConfig(t), src)
	if !strings.Contains(out, "-\treturn cxp!{ (a > b) ? (a) : (b) }") {
		t.Fatalf("removed line missing. got=%q", out)
	}
	if !strings.Contains(out, "+\treturn func() int {") {
		t.Fatalf("added line missing. got=%q", out)
	}
}

func TestExpandOutputNeedsOneFile(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.sgo", "b.sgo"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(pickSource), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	code, _, errOut := runTool(t, "", "expand", "-o", filepath.Join(dir, "out.go"), "-config", noConfig(t), dir)
	if code != 2 || !strings.Contains(errOut, "-o needs exactly one input file") {
		t.Fatalf("wrong result. code=%d, stderr=%q", code, errOut)
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name     string
		gomod    string
		wantCode int
		wantOut  string
	}{
		{
			name:     "satisfied",
			gomod:    "module example.com/app\n\ngo 1.23\n\nrequire github.com/orizon-lang/gosugar v" + cli.Version + "\n",
			wantCode: 0,
			wantOut:  "example.com/app: ok",
		},
		{
			name:     "missing runtime",
			gomod:    "module example.com/app\n\ngo 1.23\n",
			wantCode: 1,
			wantOut:  "does not require",
		},
		{
			name:     "old go",
			gomod:    "module example.com/app\n\ngo 1.20\n\nrequire github.com/orizon-lang/gosugar v" + cli.Version + "\n",
			wantCode: 1,
			wantOut:  "declares go 1.20",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte(tt.gomod), 0o644); err != nil {
				t.Fatal(err)
			}
			code, out, errOut := runTool(t, "", "check", "-config", noConfig(t), "-dir", dir)
			if code != tt.wantCode {
				t.Fatalf("exit code wrong. expected=%d, got=%d (stderr %q)", tt.wantCode, code, errOut)
			}
			if !strings.Contains(out+errOut, tt.wantOut) {
				t.Fatalf("output wrong. expected to contain %q, got=%q", tt.wantOut, out+errOut)
			}
		})
	}
}
