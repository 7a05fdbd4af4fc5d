// Command ivory compiles stylesheets to CSS.
//
//	ivory [flags] [inputs...]
//	ivory lsp
//
// Inputs may be .iss files, HTML or JS/TS files with embedded stylesheets,
// or doublestar globs such as "styles/**/*.iss". Without inputs the
// stylesheet is read from stdin.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"bennypowers.dev/ivory/internal/compiler"
	"bennypowers.dev/ivory/internal/config"
	"bennypowers.dev/ivory/internal/log"
	"bennypowers.dev/ivory/internal/parser"
	"bennypowers.dev/ivory/internal/version"
	"bennypowers.dev/ivory/lsp"
	"github.com/bmatcuk/doublestar/v4"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// stringList collects a repeatable flag
type stringList []string

func (l *stringList) String() string     { return strings.Join(*l, ",") }
func (l *stringList) Set(v string) error { *l = append(*l, v); return nil }

type options struct {
	output      string
	includes    stringList
	unit        string
	vars        stringList
	configDir   string
	validate    bool
	verbose     bool
	interactive bool
	version     bool
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) > 0 && args[0] == "lsp" {
		return serve()
	}

	var opts options
	fs := flag.NewFlagSet("ivory", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.output, "o", "", "write <name>.css files to `dir`")
	fs.Var(&opts.includes, "I", "add an include `path` (repeatable)")
	fs.StringVar(&opts.unit, "unit", "", "default `unit` for numbers written without one")
	fs.Var(&opts.vars, "var", "define a variable as `name=value` (repeatable)")
	fs.StringVar(&opts.configDir, "config", ".", "`dir` containing ivory.yaml or ivory.json")
	fs.BoolVar(&opts.validate, "validate", false, "check generated CSS and print warnings")
	fs.BoolVar(&opts.verbose, "v", false, "log debug output")
	fs.BoolVar(&opts.interactive, "i", false, "start an interactive session")
	fs.BoolVar(&opts.version, "version", false, "print the version")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: ivory [flags] [inputs...]\n       ivory lsp\n\nflags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if opts.version {
		fmt.Fprintln(stdout, version.Full())
		return 0
	}

	c, err := setup(opts)
	if err != nil {
		fmt.Fprintf(stderr, "ivory: %v\n", err)
		return 1
	}

	switch {
	case opts.interactive:
		return repl(c, stdout, stderr)
	case fs.NArg() == 0:
		return compileStdin(c, stdin, stdout, stderr)
	}

	inputs, err := expand(fs.Args())
	if err != nil {
		fmt.Fprintf(stderr, "ivory: %v\n", err)
		return 1
	}
	status := 0
	for _, input := range inputs {
		out, err := c.CompileFile(input)
		if err != nil {
			fmt.Fprintf(stderr, "ivory: %v\n", err)
			status = 1
			continue
		}
		printWarnings(c, input, stderr)
		if c.OutputDirectory == "" {
			fmt.Fprint(stdout, out)
		}
		log.Info("Compiled %s", input)
	}
	return status
}

// setup builds the compiler from the config file, the environment and the
// flags, in increasing precedence
func setup(opts options) (*compiler.Compiler, error) {
	cfg, err := config.Load(opts.configDir)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if err := cfg.SetupLogging(); err != nil {
		return nil, err
	}
	if opts.verbose {
		log.SetLevel(log.LevelDebug)
	}

	c := compiler.New()
	if err := cfg.Apply(c); err != nil {
		return nil, err
	}
	if opts.output != "" {
		c.OutputDirectory = opts.output
	}
	for _, p := range opts.includes {
		if err := c.AddIncludePath(p); err != nil {
			return nil, err
		}
	}
	if opts.unit != "" {
		if err := c.SetDefaultUnit(opts.unit); err != nil {
			return nil, err
		}
	}
	for _, def := range opts.vars {
		name, text, ok := strings.Cut(def, "=")
		if !ok {
			return nil, fmt.Errorf("-var %q: expected name=value", def)
		}
		v, err := parser.ParseValue(text)
		if err != nil {
			return nil, fmt.Errorf("-var %s: %w", name, err)
		}
		if err := c.AddVariable(strings.TrimPrefix(name, "$"), v); err != nil {
			return nil, err
		}
	}
	c.Validate = c.Validate || opts.validate
	return c, nil
}

// expand resolves glob patterns. Patterns without matches are kept so the
// compiler reports the missing file.
func expand(patterns []string) ([]string, error) {
	var inputs []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			matches = []string{pattern}
		}
		inputs = append(inputs, matches...)
	}
	return inputs, nil
}

func compileStdin(c *compiler.Compiler, stdin io.Reader, stdout, stderr io.Writer) int {
	source, err := io.ReadAll(stdin)
	if err != nil {
		fmt.Fprintf(stderr, "ivory: %v\n", err)
		return 1
	}
	if err := c.AddIncludePath("."); err != nil {
		fmt.Fprintf(stderr, "ivory: %v\n", err)
		return 1
	}
	out, err := c.CompileString(string(source))
	if err != nil {
		fmt.Fprintf(stderr, "ivory: %v\n", err)
		return 1
	}
	printWarnings(c, "<stdin>", stderr)
	fmt.Fprint(stdout, out)
	return 0
}

func printWarnings(c *compiler.Compiler, input string, stderr io.Writer) {
	for _, w := range c.Warnings() {
		fmt.Fprintf(stderr, "ivory: warning: %s: %s\n", input, w)
	}
}

func serve() int {
	log.SetOutput(os.Stderr)
	if err := lsp.NewServer().RunStdio(); err != nil {
		log.Error("Server error: %v", err)
		return 1
	}
	return 0
}
