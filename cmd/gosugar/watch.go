package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/orizon-lang/gosugar/internal/cli"
	"github.com/orizon-lang/gosugar/internal/expand"
	"github.com/orizon-lang/gosugar/internal/watch"
)

func (e env) watch(args []string) int {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	var s settings
	s.register(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, logger, err := s.load(e.stderr)
	if err != nil {
		fmt.Fprintln(e.stderr, err)
		return 1
	}
	x, err := newExpander(cfg, logger)
	if err != nil {
		fmt.Fprintln(e.stderr, err)
		return 1
	}

	dirs := fs.Args()
	if len(dirs) == 0 {
		dirs = []string{cfg.WorkDir}
	}

	w, err := watch.NewFSWatcher()
	if err != nil {
		fmt.Fprintln(e.stderr, err)
		return 1
	}
	defer w.Close()
	for _, dir := range dirs {
		if err := watch.AddRecursive(w, dir); err != nil {
			fmt.Fprintln(e.stderr, err)
			return 1
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	paths, err := collect(x, dirs, cfg.WorkDir)
	if err != nil {
		fmt.Fprintln(e.stderr, err)
		return 1
	}
	results, err := x.ExpandFiles(ctx, paths)
	if err != nil {
		fmt.Fprintln(e.stderr, err)
		return 1
	}
	for _, res := range results {
		e.writeResult(x, logger, res)
	}
	logger.Info("watching %d directories", len(dirs))

	r := &watch.Runner{
		Watcher: w,
		Filter:  x.IsSource,
		Handle: func(_ context.Context, path string) error {
			e.writeResult(x, logger, x.ExpandFile(path))
			return nil
		},
		OnError: func(err error) { logger.Error("watch: %v", err) },
	}
	if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(e.stderr, err)
		return 1
	}
	return 0
}

// writeResult writes a successful expansion next to its source and reports
// failures without stopping the watch.
func (e env) writeResult(x *expand.Expander, logger *cli.Logger, res expand.FileResult) {
	if res.Err != nil {
		report(e.stderr, res.Path, res.Source, res.Err)
		return
	}
	target := x.OutputPath(res.Path)
	if err := writeIfChanged(target, res.Output); err != nil {
		logger.Error("%v", err)
		return
	}
	logger.Info("wrote %s", target)
}
