package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/orizon-lang/gosugar/internal/diff"
	"github.com/orizon-lang/gosugar/internal/expand"
)

type expandFlags struct {
	settings
	write     bool
	list      bool
	showDiff  bool
	fromStdin bool
	output    string
	header    bool
}

func (e env) expand(args []string) int {
	fs := flag.NewFlagSet("expand", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	var f expandFlags
	f.register(fs)
	fs.BoolVar(&f.write, "w", false, "write foo.go next to every foo.sgo instead of stdout")
	fs.BoolVar(&f.list, "l", false, "list files whose generated .go file is missing or stale")
	fs.BoolVar(&f.showDiff, "d", false, "show a diff between each source and its expansion")
	fs.BoolVar(&f.fromStdin, "stdin", false, "read from stdin, write the expansion to stdout")
	fs.StringVar(&f.output, "o", "", "write the expansion of a single file to this path")
	fs.BoolVar(&f.header, "header", false, "prepend a 'Code generated ... DO NOT EDIT.' header")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, logger, err := f.load(e.stderr)
	if err != nil {
		fmt.Fprintln(e.stderr, err)
		return 1
	}
	cfg.Header = cfg.Header || f.header
	x, err := newExpander(cfg, logger)
	if err != nil {
		fmt.Fprintln(e.stderr, err)
		return 1
	}

	if f.fromStdin {
		src, err := io.ReadAll(e.stdin)
		if err != nil {
			fmt.Fprintln(e.stderr, err)
			return 1
		}
		res := expand.FileResult{Path: "<stdin>", Source: src}
		res.Output, res.Err = x.ExpandSource(res.Path, src)
		return e.emit(x, f, res)
	}

	paths, err := collect(x, fs.Args(), cfg.WorkDir)
	if err != nil {
		fmt.Fprintln(e.stderr, err)
		return 1
	}
	if f.output != "" && len(paths) != 1 {
		fmt.Fprintln(e.stderr, "-o needs exactly one input file")
		return 2
	}
	logger.Info("expanding %d files", len(paths))

	results, err := x.ExpandFiles(context.Background(), paths)
	if err != nil {
		fmt.Fprintln(e.stderr, err)
		return 1
	}
	exitCode := 0
	for _, res := range results {
		if code := e.emit(x, f, res); code != 0 {
			exitCode = code
		}
	}
	return exitCode
}

// collect expands directories into their source files.
func collect(x *expand.Expander, args []string, workDir string) ([]string, error) {
	if len(args) == 0 {
		args = []string{workDir}
	}
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		files, err := x.SourceFiles(arg)
		if err != nil {
			return nil, err
		}
		paths = append(paths, files...)
	}
	return paths, nil
}

// emit handles one expanded file according to the output flags.
func (e env) emit(x *expand.Expander, f expandFlags, res expand.FileResult) int {
	if res.Err != nil {
		report(e.stderr, res.Path, res.Source, res.Err)
		return 1
	}

	target := x.OutputPath(res.Path)
	if f.output != "" {
		target = f.output
	}

	switch {
	case f.showDiff:
		fmt.Fprint(e.stdout, diff.Unified(res.Path, target, string(res.Source), string(res.Output)))
	case f.list:
		current, err := os.ReadFile(target)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintln(e.stderr, err)
			return 1
		}
		if !bytes.Equal(current, res.Output) {
			fmt.Fprintln(e.stdout, res.Path)
		}
	case f.write && !f.fromStdin, f.output != "":
		if err := writeIfChanged(target, res.Output); err != nil {
			fmt.Fprintln(e.stderr, err)
			return 1
		}
	default:
		if _, err := e.stdout.Write(res.Output); err != nil {
			fmt.Fprintln(e.stderr, err)
			return 1
		}
	}
	return 0
}

func writeIfChanged(path string, data []byte) error {
	if current, err := os.ReadFile(path); err == nil && bytes.Equal(current, data) {
		return nil
	}
	return os.WriteFile(path, data, 0o666)
}
