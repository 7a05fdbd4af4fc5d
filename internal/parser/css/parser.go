// Package css checks CSS text with tree-sitter. It reports syntax errors in
// generated or included CSS and finds color literals for editors.
package css

import (
	"fmt"
	"strings"
	"sync"

	"bennypowers.dev/ivory/internal/position"
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_css "github.com/tree-sitter/tree-sitter-css/bindings/go"
)

// Parser wraps a tree-sitter CSS parser
type Parser struct {
	parser *sitter.Parser
}

var cssLang = sitter.NewLanguage(tree_sitter_css.Language())

var parserPool = sync.Pool{
	New: func() any {
		parser := sitter.NewParser()
		if err := parser.SetLanguage(cssLang); err != nil {
			panic(fmt.Sprintf("failed to set CSS language: %v", err))
		}
		return &Parser{parser: parser}
	},
}

// AcquireParser gets a parser from the pool
func AcquireParser() *Parser {
	p := parserPool.Get().(*Parser)
	p.parser.Reset()
	return p
}

// ReleaseParser returns a parser to the pool
func ReleaseParser(p *Parser) {
	if p != nil {
		parserPool.Put(p)
	}
}

var colorFunctions = map[string]bool{
	"rgb":  true,
	"rgba": true,
	"hsl":  true,
	"hsla": true,
}

// Parse checks source and collects its syntax problems and color literals
func (p *Parser) Parse(source string) (*Result, error) {
	src := []byte(source)
	tree := p.parser.Parse(src, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse CSS")
	}
	defer tree.Close()

	w := walker{src: src, lines: strings.Split(source, "\n"), result: &Result{}}
	w.walk(tree.RootNode())
	return w.result, nil
}

// Check parses source with a pooled parser
func Check(source string) (*Result, error) {
	p := AcquireParser()
	defer ReleaseParser(p)
	return p.Parse(source)
}

type walker struct {
	src    []byte
	lines  []string
	result *Result
}

func (w *walker) walk(node *sitter.Node) {
	if node == nil {
		return
	}

	switch {
	case node.IsMissing():
		w.problem(node, fmt.Sprintf("missing '%s'", node.Kind()))
		return
	case node.IsError():
		w.problem(node, fmt.Sprintf("unexpected '%s'", excerpt(w.text(node))))
		return
	}

	switch node.Kind() {
	case "color_value":
		w.color(node, HexColor)
		return
	case "plain_value":
		w.color(node, NamedColor)
		return
	case "call_expression":
		if w.colorCall(node) {
			w.color(node, FunctionColor)
			return
		}
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		w.walk(node.Child(i))
	}
}

func (w *walker) colorCall(node *sitter.Node) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() == "function_name" {
			return colorFunctions[strings.ToLower(w.text(child))]
		}
	}
	return false
}

func (w *walker) problem(node *sitter.Node, msg string) {
	w.result.Problems = append(w.result.Problems, Problem{Message: msg, Range: w.rangeOf(node)})
}

func (w *walker) color(node *sitter.Node, kind ColorKind) {
	w.result.Colors = append(w.result.Colors, Color{Text: w.text(node), Kind: kind, Range: w.rangeOf(node)})
}

func (w *walker) text(node *sitter.Node) string {
	return string(w.src[node.StartByte():node.EndByte()])
}

func (w *walker) rangeOf(node *sitter.Node) Range {
	return Range{
		Start: w.position(node.StartPosition()),
		End:   w.position(node.EndPosition()),
	}
}

// position converts a tree-sitter byte column to UTF-16 code units
func (w *walker) position(p sitter.Point) Position {
	pos := Position{Line: uint32(p.Row)} //nolint:gosec // G115: rows are bounded by file size
	if int(p.Row) < len(w.lines) {
		pos.Character = position.ByteOffsetToUTF16(w.lines[p.Row], int(p.Column))
	}
	return pos
}

func excerpt(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 20 {
		s = s[:20] + "..."
	}
	return s
}
