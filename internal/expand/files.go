package expand

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

// FileResult is the outcome of expanding one file.
type FileResult struct {
	Path   string
	Source []byte
	Output []byte
	Err    error
}

// ExpandFiles expands paths concurrently, at most Concurrency at a time.
// Results are in input order; a failing file does not affect the others.
// The returned error is only set when ctx is cancelled.
func (e *Expander) ExpandFiles(ctx context.Context, paths []string) ([]FileResult, error) {
	results := make([]FileResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Concurrency)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.ExpandFile(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// ExpandFile reads and expands a single file.
func (e *Expander) ExpandFile(path string) FileResult {
	src, err := os.ReadFile(path)
	if err != nil {
		return FileResult{Path: path, Err: err}
	}
	out, err := e.ExpandSource(path, src)
	return FileResult{Path: path, Source: src, Output: out, Err: err}
}

// OutputPath maps a source path to the Go file written next to it.
func (e *Expander) OutputPath(path string) string {
	return OutputPath(path, e.opts.Extension)
}

// IsSource reports whether path has the source extension.
func (e *Expander) IsSource(path string) bool {
	return filepath.Ext(path) == e.opts.Extension
}

// OutputPath maps foo.sgo to foo.go for extension ".sgo".
func OutputPath(path, ext string) string {
	return strings.TrimSuffix(path, ext) + ".go"
}

// SourceFiles lists the source files under root, skipping hidden
// directories, vendor and testdata.
func (e *Expander) SourceFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || name == "vendor" || name == "testdata") {
				return filepath.SkipDir
			}
			return nil
		}
		if e.IsSource(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
