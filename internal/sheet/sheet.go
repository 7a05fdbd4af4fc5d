// Package sheet holds the reduced stylesheet: the flat list of rules,
// at-rules and pass-through text the analyzer emits for the generator.
package sheet

import (
	"slices"

	"bennypowers.dev/ivory/internal/ast"
	"bennypowers.dev/ivory/internal/value"
)

// Entry is one item of a reduced stylesheet
type Entry interface {
	entry()
}

// Property is a reduced declaration
type Property struct {
	Prefix ast.Prefix
	Name   string
	Value  value.Value
}

// Declarations is embedded in entries that hold properties
type Declarations struct {
	Properties []Property
}

// Add appends a property
func (d *Declarations) Add(p Property) {
	d.Properties = append(d.Properties, p)
}

// Rule is a flattened rule with its final selectors
type Rule struct {
	Declarations
	Selectors []string
}

// FontFace is an @font-face block
type FontFace struct {
	Declarations
}

// Media is an @media block holding nested entries
type Media struct {
	Query   string
	Entries []Entry
}

// Raw is CSS text copied verbatim from an included .css file
type Raw struct {
	Text string
}

// Charset is an @charset directive
type Charset struct {
	Name value.String
}

// Import is an @import directive
type Import struct {
	Path  value.String
	Media string
}

func (*Rule) entry()     {}
func (*FontFace) entry() {}
func (*Media) entry()    {}
func (*Raw) entry()      {}
func (*Charset) entry()  {}
func (*Import) entry()   {}

// FindRule returns the rule in entries whose selectors equal selectors
func FindRule(entries []Entry, selectors []string) *Rule {
	for _, e := range entries {
		if r, ok := e.(*Rule); ok && slices.Equal(r.Selectors, selectors) {
			return r
		}
	}
	return nil
}

// Empty reports whether e would produce no output
func Empty(e Entry) bool {
	switch x := e.(type) {
	case *Rule:
		return len(x.Properties) == 0
	case *FontFace:
		return len(x.Properties) == 0
	case *Media:
		return len(x.Entries) == 0
	}
	return false
}
