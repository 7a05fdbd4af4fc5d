// Package js finds stylesheet sources in tagged template literals of
// JavaScript and TypeScript files with tree-sitter
package js

import (
	"fmt"
	"sync"

	"bennypowers.dev/ivory/internal/log"
	"bennypowers.dev/ivory/internal/parser/html"
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
)

// Tag is the template tag marking a stylesheet
const Tag = "iss"

// htmlTag marks templates whose <style> elements may hold stylesheets
const htmlTag = "html"

// templates matches tag`...` and tag<T>`...`. The grammar reads the generic
// form of TypeScript as nested binary expressions.
const templates = `
[
	(call_expression
		function: (identifier) @tag
		arguments: (template_string) @template)
	(binary_expression
		left: (binary_expression left: (identifier) @tag)
		right: (template_string) @template)
]`

var language = sitter.NewLanguage(tree_sitter_javascript.Language())

// Parser finds tagged templates. Parsers are pooled, see AcquireParser.
type Parser struct {
	ts    *sitter.Parser
	query *sitter.Query
	names []string
}

var pool = sync.Pool{
	New: func() any {
		ts := sitter.NewParser()
		if err := ts.SetLanguage(language); err != nil {
			panic(fmt.Sprintf("failed to set JS language: %v", err))
		}
		query, err := sitter.NewQuery(language, templates)
		if err != nil {
			panic(fmt.Sprintf("failed to compile template query: %v", err))
		}
		return &Parser{ts: ts, query: query, names: query.CaptureNames()}
	},
}

// AcquireParser gets a parser from the pool
func AcquireParser() *Parser {
	p := pool.Get().(*Parser)
	p.ts.Reset()
	return p
}

// ReleaseParser returns a parser to the pool
func ReleaseParser(p *Parser) {
	if p != nil {
		pool.Put(p)
	}
}

// ParseTemplates returns the iss and html tagged templates of source in
// document order
func (p *Parser) ParseTemplates(source string) []TemplateRegion {
	src := []byte(source)
	tree := p.ts.Parse(src, nil)
	if tree == nil {
		return nil
	}
	defer tree.Close()

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()

	var found []TemplateRegion
	matches := cursor.Matches(p.query, tree.RootNode(), src)
	for m := matches.Next(); m != nil; m = matches.Next() {
		var tag string
		var body *sitter.Node
		for i := range m.Captures {
			c := &m.Captures[i]
			switch p.names[c.Index] {
			case "tag":
				tag = string(src[c.Node.StartByte():c.Node.EndByte()])
			case "template":
				body = &c.Node
			}
		}
		if body == nil || (tag != Tag && tag != htmlTag) {
			continue
		}
		if segs := fragments(body, src); len(segs) > 0 {
			found = append(found, TemplateRegion{Tag: tag, Segments: segs})
		}
	}
	return found
}

// fragments returns the literal parts of a template string
func fragments(body *sitter.Node, src []byte) []Segment {
	var segs []Segment
	for i := uint(0); i < body.ChildCount(); i++ {
		n := body.Child(i)
		if n.Kind() != "string_fragment" {
			continue
		}
		start := n.StartPosition()
		segs = append(segs, Segment{
			Content:   string(src[n.StartByte():n.EndByte()]),
			StartLine: start.Row,
			StartCol:  start.Column,
		})
	}
	return segs
}

// Stylesheets returns the stylesheet sources of a JS/TS file in document
// order: the body of every static iss template and every <style
// type="text/iss"> element inside html templates. Templates with
// substitutions are skipped.
func (p *Parser) Stylesheets(source string) []Segment {
	var sheets []Segment
	var hp *html.Parser
	defer func() { html.ReleaseParser(hp) }()

	for _, t := range p.ParseTemplates(source) {
		if t.Tag == htmlTag {
			if hp == nil {
				hp = html.AcquireParser()
			}
			for _, seg := range t.Segments {
				for _, r := range hp.Stylesheets(seg.Content) {
					sheets = append(sheets, seg.locate(r))
				}
			}
			continue
		}
		if !t.Static() {
			log.Warn("Skipping iss template with substitutions at line %d", t.Segments[0].StartLine+1)
			continue
		}
		sheets = append(sheets, t.Segments[0])
	}
	return sheets
}
