// Package project inspects the Go module that consumes expanded code.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"golang.org/x/mod/modfile"
)

// RuntimeModule is the module that provides the sugar and truth packages.
const RuntimeModule = "github.com/orizon-lang/gosugar"

// MinGoVersion is the oldest go directive the runtime packages build with.
const MinGoVersion = "1.22"

// ErrNoModule is returned by Find when no go.mod exists up to the root.
var ErrNoModule = errors.New("no go.mod found")

// Module is a parsed go.mod.
type Module struct {
	Path string // location of go.mod
	File *modfile.File
}

// Find walks up from dir to the nearest go.mod.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, "go.mod")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoModule
		}
		dir = parent
	}
}

// Load parses a go.mod file.
func Load(path string) (*Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := modfile.Parse(path, data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &Module{Path: path, File: f}, nil
}

// ModulePath returns the declared module path.
func (m *Module) ModulePath() string {
	if m.File.Module == nil {
		return ""
	}
	return m.File.Module.Mod.Path
}

// Requirement returns the version of modulePath the module requires.
func (m *Module) Requirement(modulePath string) (string, bool) {
	for _, r := range m.File.Require {
		if r.Mod.Path == modulePath {
			return r.Mod.Version, true
		}
	}
	return "", false
}

// Replaced reports whether modulePath is redirected by a replace directive.
func (m *Module) Replaced(modulePath string) bool {
	for _, r := range m.File.Replace {
		if r.Old.Path == modulePath {
			return true
		}
	}
	return false
}

// CheckRuntime verifies that the module can build expanded code: it must
// require runtimePath at minVersion or later within the same major version.
// The runtime module itself, and replaced requirements, always pass.
func (m *Module) CheckRuntime(runtimePath, minVersion string) error {
	if m.ModulePath() == runtimePath {
		return nil
	}

	floor, err := semver.NewVersion(minVersion)
	if err != nil {
		return fmt.Errorf("invalid minimum version %q: %w", minVersion, err)
	}

	version, ok := m.Requirement(runtimePath)
	if !ok {
		return fmt.Errorf("%s does not require %s; run: go get %s@v%s", m.Path, runtimePath, runtimePath, floor)
	}
	if m.Replaced(runtimePath) {
		return nil
	}

	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("%s requires %s at unparsable version %q: %w", m.Path, runtimePath, version, err)
	}
	if v.Major() != floor.Major() {
		return fmt.Errorf("%s requires %s %s, want major version %d", m.Path, runtimePath, version, floor.Major())
	}
	if v.LessThan(floor) {
		return fmt.Errorf("%s requires %s %s, want v%s or later", m.Path, runtimePath, version, floor)
	}
	return nil
}

// CheckGo verifies the go directive is at least minGo.
func (m *Module) CheckGo(minGo string) error {
	if m.File.Go == nil {
		return fmt.Errorf("%s has no go directive", m.Path)
	}
	c, err := semver.NewConstraint(">= " + minGo)
	if err != nil {
		return err
	}
	v, err := semver.NewVersion(m.File.Go.Version)
	if err != nil {
		return fmt.Errorf("invalid go directive %q: %w", m.File.Go.Version, err)
	}
	if !c.Check(v) {
		return fmt.Errorf("%s declares go %s, the runtime packages need go %s", m.Path, m.File.Go.Version, minGo)
	}
	return nil
}
