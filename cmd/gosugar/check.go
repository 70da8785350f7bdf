package main

import (
	"flag"
	"fmt"

	"github.com/orizon-lang/gosugar/internal/cli"
	"github.com/orizon-lang/gosugar/internal/project"
)

func (e env) check(args []string) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	var s settings
	s.register(fs)
	dir := fs.String("dir", ".", "directory inside the module to check")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	_, logger, err := s.load(e.stderr)
	if err != nil {
		fmt.Fprintln(e.stderr, err)
		return 1
	}

	path, err := project.Find(*dir)
	if err != nil {
		fmt.Fprintf(e.stderr, "%s: %v\n", *dir, err)
		return 1
	}
	logger.Info("checking %s", path)

	m, err := project.Load(path)
	if err != nil {
		fmt.Fprintln(e.stderr, err)
		return 1
	}

	exitCode := 0
	if err := m.CheckGo(project.MinGoVersion); err != nil {
		fmt.Fprintln(e.stderr, err)
		exitCode = 1
	}
	if err := m.CheckRuntime(project.RuntimeModule, cli.Version); err != nil {
		fmt.Fprintln(e.stderr, err)
		exitCode = 1
	}
	if exitCode == 0 {
		fmt.Fprintf(e.stdout, "%s: ok\n", m.ModulePath())
	}
	return exitCode
}
