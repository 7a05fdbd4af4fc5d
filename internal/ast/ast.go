// Package ast defines the block tree produced by the parser and consumed by
// the analyzer.
package ast

import "bennypowers.dev/ivory/internal/value"

// Prefix marks the kind of a declaration
type Prefix string

const (
	// PrefixNone is a plain property
	PrefixNone Prefix = ""
	// PrefixImportant is a property printed with !important
	PrefixImportant Prefix = "!"
	// PrefixVariable is a variable assignment
	PrefixVariable Prefix = "$"
	// PrefixMixin is a mixin call
	PrefixMixin Prefix = "@"
	// PrefixRaw is a property whose string value is printed without quotes
	PrefixRaw Prefix = "%"
	// PrefixSpecial is an at-rule directive (@include, @import, @charset)
	PrefixSpecial Prefix = "A"
)

// SelfSelector splices the parent selector without a separating space
const SelfSelector = "&"

// Node is an entry of a block's property list: a *Declaration or a Block
type Node interface {
	node()
}

// Declaration is a directive tuple inside a block
type Declaration struct {
	Prefix Prefix
	Name   string
	Value  value.Value
	// Media is the optional media argument of @include and @import
	Media value.Value
	// Index is set for map element assignments ($map[index]: value)
	Index value.Value
	Line  int
}

// Block is any node that owns properties
type Block interface {
	Node
	Body() *[]Node
}

// Properties is embedded in every block
type Properties struct {
	Nodes []Node
}

// Body returns the property list
func (p *Properties) Body() *[]Node {
	return &p.Nodes
}

// Add appends n to the property list
func (p *Properties) Add(n Node) {
	p.Nodes = append(p.Nodes, n)
}

// Main is the root block of a source file
type Main struct {
	Properties
}

// Selector is a selector as written, with the line it appeared on
type Selector struct {
	Text string
	Line int
}

// NestedRule is a rule block with optional outer prefixes and control statement
type NestedRule struct {
	Properties
	Selectors []Selector
	Prefixes  []Selector
	Statement *Statement
}

// Param is a mixin parameter with its optional default value
type Param struct {
	Name    string
	Default value.Value
	Line    int
}

// Mixin is a named, parameterized block
type Mixin struct {
	Properties
	Name   string
	Params []Param
	File   string
	Line   int
}

// Media is an @media block
type Media struct {
	Properties
	Query value.Value
	Line  int
}

// FontFace is an @font-face block
type FontFace struct {
	Properties
	Line int
}

func (*Declaration) node() {}
func (*Main) node()        {}
func (*NestedRule) node()  {}
func (*Mixin) node()       {}
func (*Media) node()       {}
func (*FontFace) node()    {}

// StatementKind is the kind of control statement
type StatementKind int

const (
	If StatementKind = iota
	ElseIf
	Else
	While
	For
	ForEach
)

var statementNames = [...]string{"if", "elseif", "else", "while", "for", "foreach"}

func (k StatementKind) String() string {
	return statementNames[k]
}

// Statement is a control-flow header attached to a NestedRule
type Statement struct {
	Kind StatementKind
	// Expr is the condition of if, elseif and while
	Expr value.Value
	// Condition is the preceding if/elseif rule of an elseif or else
	Condition *NestedRule
	// Var is the loop variable of for and the value variable of foreach
	Var string
	// Begin and End are the bounds of for
	Begin, End value.Value
	// Map is the iterated variable of foreach, Key its optional key variable
	Map  string
	Key  string
	Line int
}

// Chains reports whether an elseif or else may follow a rule with this statement
func (s *Statement) Chains() bool {
	return s != nil && (s.Kind == If || s.Kind == ElseIf)
}
