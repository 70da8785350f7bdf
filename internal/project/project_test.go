package project

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeMod(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "go.mod")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFind(t *testing.T) {
	root := t.TempDir()
	want := writeMod(t, root, "module example.com/app\n\ngo 1.23\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	got, err := Find(nested)
	if err != nil {
		t.Fatalf("Find() error: %v", err)
	}
	wantAbs, _ := filepath.Abs(want)
	if got != wantAbs {
		t.Fatalf("Find() wrong. expected=%q, got=%q", wantAbs, got)
	}
}

func TestCheckRuntime(t *testing.T) {
	tests := []struct {
		name    string
		gomod   string
		wantErr string
	}{
		{
			name:  "satisfied",
			gomod: "module example.com/app\n\ngo 1.23\n\nrequire github.com/orizon-lang/gosugar v0.3.1\n",
		},
		{
			name:  "runtime module itself",
			gomod: "module github.com/orizon-lang/gosugar\n\ngo 1.23\n",
		},
		{
			name:  "replaced",
			gomod: "module example.com/app\n\ngo 1.23\n\nrequire github.com/orizon-lang/gosugar v0.0.0\n\nreplace github.com/orizon-lang/gosugar => ../gosugar\n",
		},
		{
			name:    "missing",
			gomod:   "module example.com/app\n\ngo 1.23\n",
			wantErr: "does not require",
		},
		{
			name:    "too old",
			gomod:   "module example.com/app\n\ngo 1.23\n\nrequire github.com/orizon-lang/gosugar v0.2.9\n",
			wantErr: "or later",
		},
		{
			name:    "wrong major",
			gomod:   "module example.com/app\n\ngo 1.23\n\nrequire github.com/orizon-lang/gosugar v1.0.0\n",
			wantErr: "major version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Load(writeMod(t, t.TempDir(), tt.gomod))
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			err = m.CheckRuntime(RuntimeModule, "0.3.0")
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCheckGo(t *testing.T) {
	tests := []struct {
		version string
		ok      bool
	}{
		{"1.21", false},
		{"1.22", true},
		{"1.23.0", true},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			m, err := Load(writeMod(t, t.TempDir(), "module example.com/app\n\ngo "+tt.version+"\n"))
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if err := m.CheckGo(MinGoVersion); (err == nil) != tt.ok {
				t.Fatalf("CheckGo(%s) = %v, want ok=%v", tt.version, err, tt.ok)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "go.mod")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	if _, err := Load(writeMod(t, t.TempDir(), "module\n")); err == nil {
		t.Fatal("expected a parse error")
	}
}
