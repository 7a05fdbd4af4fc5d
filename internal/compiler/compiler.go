// Package compiler turns stylesheet sources into CSS.
//
// A Compiler holds the settings shared by every compilation: include paths,
// the default unit, injected variables and registered functions. Each compile
// runs the parser, the analyzer and the generator in turn.
package compiler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"bennypowers.dev/ivory/internal/analyzer"
	"bennypowers.dev/ivory/internal/collections"
	"bennypowers.dev/ivory/internal/errs"
	"bennypowers.dev/ivory/internal/functions"
	"bennypowers.dev/ivory/internal/generator"
	"bennypowers.dev/ivory/internal/log"
	"bennypowers.dev/ivory/internal/parser"
	"bennypowers.dev/ivory/internal/parser/css"
	"bennypowers.dev/ivory/internal/parser/embedded"
	"bennypowers.dev/ivory/internal/value"
)

// ErrInvalid indicates a rejected compiler setting
var ErrInvalid = errors.New("invalid compiler setting")

var nameRe = regexp.MustCompile(`^-?\w+(?:-\w+)*$`)

// Warning is a problem found in generated CSS that does not stop compilation
type Warning struct {
	Message string
	// Line is the 1-based line of the generated CSS
	Line int
}

func (w Warning) String() string {
	return fmt.Sprintf("%s (output line %d)", w.Message, w.Line)
}

// Compiler compiles stylesheets. A Compiler is not safe for concurrent use.
type Compiler struct {
	// OutputDirectory receives the CSS written by CompileFile, nothing is
	// written when empty
	OutputDirectory string
	// MaxDepth bounds nested block reductions, 0 uses the analyzer default
	MaxDepth int
	// MaxIterations bounds loops and value reductions, 0 uses the analyzer default
	MaxIterations int
	// Validate checks generated CSS with tree-sitter and records warnings
	Validate bool

	defaultUnit  string
	includePaths *collections.Set[string]
	variables    map[string]value.Value
	functions    *functions.Registry

	deps     []string
	warnings []Warning
}

// New creates a compiler with the builtin functions registered
func New() *Compiler {
	return &Compiler{
		includePaths: collections.NewSet[string](),
		variables:    make(map[string]value.Value),
		functions:    functions.NewRegistry(),
	}
}

// SetDefaultUnit sets the unit printed after numbers written without one
func (c *Compiler) SetDefaultUnit(unit string) error {
	if !value.ValidDefaultUnit(unit) {
		return fmt.Errorf("%w: '%s' cannot be the default unit", ErrInvalid, unit)
	}
	c.defaultUnit = unit
	return nil
}

// DefaultUnit returns the default unit, empty when none is set
func (c *Compiler) DefaultUnit() string {
	return c.defaultUnit
}

// AddIncludePath appends a directory searched by @include. Paths already
// added are ignored.
func (c *Compiler) AddIncludePath(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errs.IO(err, "include path '%s' could not be resolved", path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	c.includePaths.Add(abs)
	return nil
}

// IncludePaths returns the include paths in search order
func (c *Compiler) IncludePaths() []string {
	return c.includePaths.Members()
}

// AddVariable injects a global variable. See Convert for the accepted types.
func (c *Compiler) AddVariable(name string, v any) error {
	if !nameRe.MatchString(name) {
		return fmt.Errorf("%w: '%s' is not a valid variable name", ErrInvalid, name)
	}
	cv, err := Convert(v)
	if err != nil {
		return fmt.Errorf("variable '%s': %w", name, err)
	}
	c.variables[name] = cv
	return nil
}

// AddFunction registers a function callable from stylesheets, replacing any
// function of the same name
func (c *Compiler) AddFunction(name string, fn functions.Func) error {
	if !nameRe.MatchString(name) {
		return fmt.Errorf("%w: '%s' is not a valid function name", ErrInvalid, name)
	}
	if fn == nil {
		return fmt.Errorf("%w: function '%s' is nil", ErrInvalid, name)
	}
	c.functions.Register(name, fn)
	return nil
}

// Functions returns the names of the registered functions
func (c *Compiler) Functions() []string {
	return c.functions.Names()
}

// Dependencies returns the files included by the last compilation
func (c *Compiler) Dependencies() []string {
	return c.deps
}

// Warnings returns the validation warnings of the last compilation
func (c *Compiler) Warnings() []Warning {
	return c.warnings
}

// CompileString compiles stylesheet source
func (c *Compiler) CompileString(source string) (string, error) {
	c.warnings = nil
	out, err := c.compile(source)
	if err != nil {
		return "", err
	}
	c.validate(out)
	return out, nil
}

// CompileFile compiles a stylesheet file, or the stylesheets embedded in an
// HTML or JS/TS file. The file's directory is added to the include paths.
// When OutputDirectory is set the result is also written there as
// <name>.css.
func (c *Compiler) CompileFile(path string) (string, error) {
	c.warnings = nil
	if err := c.AddIncludePath(filepath.Dir(path)); err != nil {
		return "", err
	}
	base := filepath.Base(path)
	log.Debug("Compiling %s", path)

	var (
		out string
		err error
	)
	switch lang := embedded.LanguageOf(path); lang {
	case "", "iss":
		out, err = c.compile("@include " + value.Encode(base) + ";")
	default:
		content, rerr := os.ReadFile(path)
		if rerr != nil {
			return "", errs.IO(rerr, "file '%s' could not be read", path)
		}
		out, err = c.compileSources(embedded.Sources(string(content), lang))
		err = errs.WithFile(err, path)
	}
	if err != nil {
		return "", err
	}
	c.validate(out)

	if c.OutputDirectory != "" {
		name := strings.TrimSuffix(base, filepath.Ext(base)) + ".css"
		target := filepath.Join(c.OutputDirectory, name)
		if err := os.WriteFile(target, []byte(out), 0o644); err != nil {
			return "", errs.IO(err, "file '%s' could not be written", target)
		}
		log.Debug("Wrote %s", target)
	}
	return out, nil
}

// CompileDocument compiles the stylesheets embedded in a document of the
// given language, concatenating their output. Error lines refer to the
// document.
func (c *Compiler) CompileDocument(content, languageID string) (string, error) {
	c.warnings = nil
	if !embedded.IsSupportedLanguage(languageID) {
		return "", fmt.Errorf("%w: language '%s' has no stylesheets", ErrInvalid, languageID)
	}
	out, err := c.compileSources(embedded.Sources(content, languageID))
	if err != nil {
		return "", err
	}
	c.validate(out)
	return out, nil
}

func (c *Compiler) compileSources(sources []embedded.Source) (string, error) {
	var b strings.Builder
	var deps []string
	for _, src := range sources {
		out, err := c.compile(src.Content)
		deps = append(deps, c.deps...)
		if err != nil {
			c.deps = deps
			return "", shiftLine(err, src.Line-1)
		}
		b.WriteString(out)
	}
	c.deps = deps
	return b.String(), nil
}

// shiftLine moves the line of an error raised in an embedded source to the
// enclosing document. Errors located in included files are left alone.
func shiftLine(err error, offset int) error {
	var e *errs.Error
	if offset > 0 && errors.As(err, &e) && e.File == "" && e.Line > 0 {
		e.Line += offset
	}
	return err
}

func (c *Compiler) compile(source string) (string, error) {
	tree, err := parser.Parse(source)
	if err != nil {
		return "", err
	}

	a := analyzer.New(analyzer.Options{
		IncludePaths:  c.includePaths.Members(),
		Variables:     c.variables,
		Functions:     c.functions,
		MaxDepth:      c.MaxDepth,
		MaxIterations: c.MaxIterations,
	})
	entries, err := a.Analyze(tree)
	c.deps = a.Dependencies()
	if err != nil {
		return "", err
	}
	return generator.Generate(entries, c.defaultUnit)
}

// validate records the syntax problems tree-sitter finds in out
func (c *Compiler) validate(out string) {
	if !c.Validate {
		return
	}
	result, err := css.Check(out)
	if err != nil {
		log.Warn("CSS validation failed: %v", err)
		return
	}
	for _, p := range result.Problems {
		w := Warning{Message: p.Message, Line: int(p.Range.Start.Line) + 1}
		c.warnings = append(c.warnings, w)
		log.Warn("Generated CSS: %s", w)
	}
}
