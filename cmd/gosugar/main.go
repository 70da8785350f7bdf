// Command gosugar expands compile-time syntax extensions in Go sources.
//
//	gosugar expand [-w] [-l] [-d] [-stdin] [-o file] [-header] [files or dirs...]
//	gosugar check [-dir d]
//	gosugar watch [dirs...]
//	gosugar macros
//	gosugar version [--json]
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/orizon-lang/gosugar/internal/cli"
	"github.com/orizon-lang/gosugar/internal/diagnostics"
	"github.com/orizon-lang/gosugar/internal/expand"
	"github.com/orizon-lang/gosugar/internal/macro"
	"github.com/orizon-lang/gosugar/internal/position"
)

const toolName = "gosugar"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// env carries the process streams so commands can be tested.
type env struct {
	stdin          io.Reader
	stdout, stderr io.Writer
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	e := env{stdin: stdin, stdout: stdout, stderr: stderr}
	if len(args) < 1 {
		usage(stderr)
		return 2
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "help", "-h", "--help":
		usage(stdout)
		return 0
	case "version", "-v", "--version":
		jsonOutput := false
		for _, arg := range rest {
			if arg == "--json" || arg == "-j" {
				jsonOutput = true
			}
		}
		if err := cli.PrintVersion(stdout, toolName, jsonOutput); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		return 0
	case "expand":
		return e.expand(rest)
	case "check":
		return e.check(rest)
	case "watch":
		return e.watch(rest)
	case "macros":
		return e.macros(rest)
	default:
		fmt.Fprintf(stderr, "unknown subcommand: %s\n", sub)
		usage(stderr)
		return 2
	}
}

func usage(w io.Writer) {
	commands := []cli.CommandInfo{
		{Name: "expand", Description: "Expand macro invocations into plain Go"},
		{Name: "check", Description: "Check that go.mod requires the runtime packages"},
		{Name: "watch", Description: "Re-expand sources when they change"},
		{Name: "macros", Description: "List the available macros"},
		{Name: "version", Description: "Show version information"},
	}
	cli.PrintUsage(w, toolName, commands)
}

// settings are the flags every command shares.
type settings struct {
	configPath string
	verbose    bool
	debug      bool
}

func (s *settings) register(fs *flag.FlagSet) {
	fs.StringVar(&s.configPath, "config", cli.DefaultConfigFile, "configuration file")
	fs.BoolVar(&s.verbose, "v", false, "verbose output")
	fs.BoolVar(&s.debug, "debug", false, "debug output")
}

// load reads the configuration and applies flag overrides.
func (s *settings) load(stderr io.Writer) (*cli.Config, *cli.Logger, error) {
	cfg, err := cli.LoadConfig(s.configPath)
	if err != nil {
		return nil, nil, err
	}
	cfg.Verbose = cfg.Verbose || s.verbose
	cfg.Debug = cfg.Debug || s.debug

	logger := cli.NewLogger(cfg.Verbose, cfg.Debug)
	logger.SetOutput(stderr)
	return cfg, logger, nil
}

// newExpander builds an expander from configuration.
func newExpander(cfg *cli.Config, logger *cli.Logger) (*expand.Expander, error) {
	reg := macro.NewRegistry()
	for _, name := range cfg.Disabled {
		if err := reg.Disable(name); err != nil {
			logger.Warn("config: %v", err)
		}
	}
	return expand.New(expand.Options{
		Registry:    reg,
		Imports:     macro.Imports{Sugar: cfg.SugarImport, Truth: cfg.TruthImport},
		MaxDepth:    cfg.MaxDepth,
		Header:      cfg.Header,
		Concurrency: cfg.Concurrency,
		Extension:   cfg.Extension,
		Logger:      logger,
	})
}

// report prints err, highlighting the source of every diagnostic.
func report(w io.Writer, path string, src []byte, err error) {
	var list diagnostics.List
	var single *diagnostics.Error
	switch {
	case errors.As(err, &list):
	case errors.As(err, &single):
		list = diagnostics.List{single}
	default:
		fmt.Fprintf(w, "%s: %v\n", path, err)
		return
	}

	sf := position.NewSourceFile(path, string(src))
	for _, d := range list {
		fmt.Fprintf(w, "%s (%s)\n", d.Error(), d.Category)
		if d.Span.Start.Filename == path {
			fmt.Fprint(w, sf.Highlight(d.Span))
		}
	}
}

func (e env) macros(args []string) int {
	fs := flag.NewFlagSet("macros", flag.ContinueOnError)
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
	for _, name := range x.Registry().Names() {
		fmt.Fprintln(e.stdout, name)
	}
	return 0
}
