// Package html finds stylesheet regions in HTML documents with tree-sitter
package html

import (
	"fmt"
	"strings"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_html "github.com/tree-sitter/tree-sitter-html/bindings/go"
)

const styles = `(style_element (start_tag) @tag (raw_text) @content)`

var language = sitter.NewLanguage(tree_sitter_html.Language())

// Parser finds <style> elements. Parsers are pooled, see AcquireParser.
type Parser struct {
	ts    *sitter.Parser
	query *sitter.Query
	names []string
}

var pool = sync.Pool{
	New: func() any {
		ts := sitter.NewParser()
		if err := ts.SetLanguage(language); err != nil {
			panic(fmt.Sprintf("failed to set HTML language: %v", err))
		}
		query, err := sitter.NewQuery(language, styles)
		if err != nil {
			panic(fmt.Sprintf("failed to compile style query: %v", err))
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

// StyleRegions returns the content of every non-empty <style> element in
// source
func (p *Parser) StyleRegions(source string) []Region {
	src := []byte(source)
	tree := p.ts.Parse(src, nil)
	if tree == nil {
		return nil
	}
	defer tree.Close()

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()

	var regions []Region
	matches := cursor.Matches(p.query, tree.RootNode(), src)
	for m := matches.Next(); m != nil; m = matches.Next() {
		var r Region
		var body *sitter.Node
		for i := range m.Captures {
			c := &m.Captures[i]
			switch p.names[c.Index] {
			case "tag":
				r.Type = strings.ToLower(strings.TrimSpace(attribute(&c.Node, src, "type")))
			case "content":
				body = &c.Node
			}
		}
		if body == nil {
			continue
		}
		start := body.StartPosition()
		r.Content = string(src[body.StartByte():body.EndByte()])
		r.StartLine, r.StartCol = start.Row, start.Column
		regions = append(regions, r)
	}
	return regions
}

// Stylesheets returns the regions of source holding ISS
func (p *Parser) Stylesheets(source string) []Region {
	var sheets []Region
	for _, r := range p.StyleRegions(source) {
		if r.IsStylesheet() {
			sheets = append(sheets, r)
		}
	}
	return sheets
}

// attribute returns the value of the named attribute of a start tag. Names
// are compared case-insensitively.
func attribute(tag *sitter.Node, src []byte, name string) string {
	text := func(n *sitter.Node) string { return string(src[n.StartByte():n.EndByte()]) }
	for i := uint(0); i < tag.NamedChildCount(); i++ {
		attr := tag.NamedChild(i)
		if attr.Kind() != "attribute" || attr.NamedChildCount() == 0 {
			continue
		}
		if !strings.EqualFold(text(attr.NamedChild(0)), name) {
			continue
		}
		if attr.NamedChildCount() < 2 {
			return ""
		}
		v := attr.NamedChild(1)
		if v.Kind() == "quoted_attribute_value" {
			if v.NamedChildCount() == 0 {
				return ""
			}
			v = v.NamedChild(0)
		}
		return text(v)
	}
	return ""
}
