// Package analyzer reduces a parsed block tree to a flat stylesheet.
//
// Reduction walks the tree once, evaluating variables, expressions, control
// statements, mixin calls and file inclusions, and combines nested selectors
// into the final rule selectors. Rules reached more than once with the same
// selectors accumulate into a single entry.
package analyzer

import (
	"bennypowers.dev/ivory/internal/ast"
	"bennypowers.dev/ivory/internal/collections"
	"bennypowers.dev/ivory/internal/errs"
	"bennypowers.dev/ivory/internal/functions"
	"bennypowers.dev/ivory/internal/generator"
	"bennypowers.dev/ivory/internal/log"
	"bennypowers.dev/ivory/internal/sheet"
	"bennypowers.dev/ivory/internal/value"
)

const (
	// DefaultMaxDepth bounds the nesting of block reductions
	DefaultMaxDepth = 256
	// DefaultMaxIterations bounds while loops and chained value reductions
	DefaultMaxIterations = 10000
)

// Functions resolves registered functions by name
type Functions interface {
	Lookup(name string) (functions.Func, bool)
}

// Options configures a reduction
type Options struct {
	// IncludePaths are searched in order by @include
	IncludePaths []string
	// Variables are bound in the global layer before reduction
	Variables map[string]value.Value
	Functions Functions
	// MaxDepth bounds nested block reductions, mixin recursion included
	MaxDepth int
	// MaxIterations bounds while loops, for loop ranges and value reduction chains
	MaxIterations int
}

// Analyzer reduces block trees. An Analyzer is not safe for concurrent use.
type Analyzer struct {
	opts    Options
	printer *generator.Printer

	scope   *scope
	mixins  map[string]*ast.Mixin
	files   []string
	deps    *collections.Set[string]
	entries []sheet.Entry
	media   *sheet.Media
	depth   int
}

// binding is a variable installed in a fresh layer when a block is entered
type binding struct {
	name  string
	value value.Value
	line  int
}

// New creates an analyzer
func New(opts Options) *Analyzer {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}
	return &Analyzer{
		opts:    opts,
		printer: &generator.Printer{},
		deps:    collections.NewSet[string](),
	}
}

// Analyze reduces tree to stylesheet entries
func (a *Analyzer) Analyze(tree *ast.Main) ([]sheet.Entry, error) {
	a.scope = newScope()
	a.mixins = make(map[string]*ast.Mixin)
	a.files = nil
	a.deps = collections.NewSet[string]()
	a.entries = nil
	a.media = nil
	a.depth = 0

	for name, v := range a.opts.Variables {
		a.scope.bind(name, v)
	}
	if err := a.reduceBlock(tree, selectors{}, nil); err != nil {
		return nil, err
	}
	return a.entries, nil
}

// Dependencies returns the files included by the last Analyze call
func (a *Analyzer) Dependencies() []string {
	return a.deps.Members()
}

// emit appends e to the current output context
func (a *Analyzer) emit(e sheet.Entry) {
	if a.media != nil {
		a.media.Entries = append(a.media.Entries, e)
		return
	}
	a.entries = append(a.entries, e)
}

// rule returns the declarations of the rule with the given selectors in the
// current context, creating the rule if needed. An empty selector list has
// no rule.
func (a *Analyzer) rule(list []string) *sheet.Declarations {
	if len(list) == 0 {
		return nil
	}
	list = unique(list)
	context := a.entries
	if a.media != nil {
		context = a.media.Entries
	}
	if r := sheet.FindRule(context, list); r != nil {
		return &r.Declarations
	}
	r := &sheet.Rule{Selectors: list}
	a.emit(r)
	return &r.Declarations
}

func (a *Analyzer) reduceBlock(block ast.Block, sel selectors, bindings []binding) error {
	a.depth++
	defer func() { a.depth-- }()
	if a.depth > a.opts.MaxDepth {
		return errs.Recursion("maximum nesting depth of %d exceeded", a.opts.MaxDepth)
	}

	if _, ok := block.(*ast.Main); !ok {
		defer a.scope.push()()
		for _, b := range bindings {
			v, err := a.Reduce(b.value)
			if err != nil {
				return errs.WithLine(err, b.line)
			}
			a.scope.bind(b.name, v)
		}
	}

	var (
		decls  *sheet.Declarations
		isRule bool
		// taken records the if/elseif rules of this activation whose chain
		// took a branch
		taken = make(map[*ast.NestedRule]bool)
	)
	switch b := block.(type) {
	case *ast.NestedRule:
		prefixes, err := a.replaceVariables(b.Prefixes)
		if err != nil {
			return err
		}
		own, err := a.replaceVariables(b.Selectors)
		if err != nil {
			return err
		}
		list := Combine(prefixes, sel.list, 0)
		list = Combine(list, own, sel.group)
		sel = selectors{group: len(b.Selectors), list: list}
		decls, isRule = a.rule(sel.list), true
	case *ast.Mixin:
		decls, isRule = a.rule(sel.list), true
	case *ast.Media:
		query, err := a.mediaQuery(b.Query)
		if err != nil {
			return errs.WithLine(err, b.Line)
		}
		m := &sheet.Media{Query: query}
		a.emit(m)
		outer := a.media
		a.media = m
		defer func() { a.media = outer }()
	case *ast.FontFace:
		f := &sheet.FontFace{}
		a.emit(f)
		decls = &f.Declarations
	}

	for _, node := range *block.Body() {
		var err error
		switch n := node.(type) {
		case *ast.Declaration:
			err = errs.WithLine(a.declaration(block, n, sel, decls, isRule), n.Line)
		case *ast.NestedRule:
			if decls != nil && !isRule {
				return errs.WithLine(errs.Semantic("rules are not allowed inside @font-face"), ruleLine(n))
			}
			err = a.callBlock(n, sel, taken)
		case *ast.Mixin:
			err = a.defineMixin(block, n)
		case *ast.Media:
			err = a.reduceBlock(n, selectors{}, nil)
		case *ast.FontFace:
			err = a.reduceBlock(n, selectors{}, nil)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) declaration(block ast.Block, d *ast.Declaration, sel selectors, decls *sheet.Declarations, isRule bool) error {
	switch d.Prefix {
	case ast.PrefixVariable:
		v, err := a.Reduce(d.Value)
		if err != nil {
			return err
		}
		if d.Index != nil {
			key, err := a.key(d.Index)
			if err != nil {
				return err
			}
			return a.scope.saveToMap(d.Name, key, v)
		}
		a.scope.assign(d.Name, v)
		return nil

	case ast.PrefixMixin:
		return a.callMixin(d.Name, d.Value, sel)

	case ast.PrefixNone, ast.PrefixImportant, ast.PrefixRaw:
		if decls == nil {
			return errs.Semantic("property '%s' is not allowed at the top level or directly inside @media", d.Name)
		}
		v, err := a.Reduce(d.Value)
		if err != nil {
			return err
		}
		if u := value.Unprintable(v); u != nil {
			return errs.Type("property '%s': a value of kind %s cannot be printed", d.Name, u.Kind())
		}
		decls.Add(sheet.Property{Prefix: d.Prefix, Name: d.Name, Value: v})
		return nil
	}

	switch d.Name {
	case "include":
		if a.media != nil || (isRule && len(sel.list) > 0) {
			return errs.Semantic("@include is only allowed at the top level")
		}
		return a.callInclude(d)
	case "import":
		if a.media != nil || (isRule && len(sel.list) > 0) {
			return errs.Semantic("@import is only allowed at the top level")
		}
		path, err := a.Reduce(d.Value)
		if err != nil {
			return err
		}
		s, ok := path.(value.String)
		if !ok {
			return errs.Type("the imported file name must be a string, got %s", path.Kind())
		}
		media, err := a.mediaQuery(d.Media)
		if err != nil {
			return err
		}
		a.emit(&sheet.Import{Path: s, Media: media})
		return nil
	case "charset":
		if _, ok := block.(*ast.Main); !ok {
			return errs.Semantic("@charset is only allowed at the top level")
		}
		v, err := a.Reduce(d.Value)
		if err != nil {
			return err
		}
		s, ok := v.(value.String)
		if !ok {
			return errs.Type("the charset name must be a string, got %s", v.Kind())
		}
		a.emit(&sheet.Charset{Name: s})
		return nil
	}
	return errs.Semantic("unknown directive @%s", d.Name)
}

func (a *Analyzer) defineMixin(block ast.Block, m *ast.Mixin) error {
	switch block.(type) {
	case *ast.Media, *ast.FontFace:
		return errs.WithLine(errs.Semantic("mixin '%s' cannot be defined inside an at-rule", m.Name), m.Line)
	}
	if _, ok := a.mixins[m.Name]; ok {
		return errs.WithLine(errs.Semantic("mixin '%s' is already defined", m.Name), m.Line)
	}
	m.File = a.currentFile()
	a.mixins[m.Name] = m
	log.Debug("Registered mixin %s", m.Name)
	return nil
}

// mediaQuery reduces a media argument to its printed text
func (a *Analyzer) mediaQuery(q value.Value) (string, error) {
	if q == nil {
		return "", nil
	}
	v, err := a.Reduce(q)
	if err != nil {
		return "", err
	}
	switch x := v.(type) {
	case value.String:
		return value.Decode(x.Quoted), nil
	case value.Raw:
		return x.Text, nil
	}
	return "", errs.Type("a media query must be a string, got %s", v.Kind())
}

func (a *Analyzer) currentFile() string {
	if len(a.files) == 0 {
		return ""
	}
	return a.files[len(a.files)-1]
}

func ruleLine(n *ast.NestedRule) int {
	if n.Statement != nil {
		return n.Statement.Line
	}
	if len(n.Selectors) > 0 {
		return n.Selectors[0].Line
	}
	return 0
}
