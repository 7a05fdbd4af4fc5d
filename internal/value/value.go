// Package value defines the runtime values of the stylesheet language.
//
// Values produced by the parser may be unresolved (Variable, Function,
// Expression, RawMap); the analyzer reduces them to resolved values (Unit,
// Bool, String, Raw, Keyword, Color, List, Args, Map) that the generator can
// print.
package value

import (
	"fmt"
	"reflect"
	"strings"
)

// Value is any value known to the compiler
type Value interface {
	// Kind names the variant, used in error messages
	Kind() string
}

// Unit is a number with an optional unit suffix.
// The empty unit means "use the default unit", "#" means an explicit unitless index.
type Unit struct {
	Number float64
	Unit   string
}

// Bool is a boolean
type Bool struct {
	V bool
}

// String is a quoted string kept in its canonical single-quoted source form
type String struct {
	Quoted string
}

// Raw is text printed verbatim
type Raw struct {
	Text string
}

// Keyword is a bare identifier such as a CSS keyword
type Keyword struct {
	Text string
}

// Color is an RGBA color, alpha in [0, 1]
type Color struct {
	R, G, B int
	A       float64
}

// List is a space separated list
type List struct {
	Items []Value
}

// Args is a comma separated list
type Args struct {
	Items []Value
}

// Map is a reduced ordered map
type Map struct {
	M *OrderedMap
}

// MapEntry is an unreduced entry of a map literal; a nil Key means an automatic index
type MapEntry struct {
	Key   Value
	Value Value
}

// RawMap is a map literal whose keys and values are not reduced yet
type RawMap struct {
	Entries []MapEntry
}

// Function is a call that has not been resolved (or cannot be)
type Function struct {
	Name string
	Args []Value
}

// Variable is a reference to a variable, optionally indexed
type Variable struct {
	Name  string
	Index Value
}

// Expression is an infix token sequence awaiting evaluation
type Expression struct {
	Tokens []Token
}

func (Unit) Kind() string       { return "unit" }
func (Bool) Kind() string       { return "bool" }
func (String) Kind() string     { return "string" }
func (Raw) Kind() string        { return "raw" }
func (Keyword) Kind() string    { return "keyword" }
func (Color) Kind() string      { return "color" }
func (List) Kind() string       { return "list" }
func (Args) Kind() string       { return "args" }
func (Map) Kind() string        { return "map" }
func (RawMap) Kind() string     { return "rawmap" }
func (Function) Kind() string   { return "function" }
func (Variable) Kind() string   { return "variable" }
func (Expression) Kind() string { return "expression" }

// TokenKind classifies an expression token
type TokenKind int

const (
	// TokenOperand holds a Value
	TokenOperand TokenKind = iota
	// TokenOpen is "("
	TokenOpen
	// TokenClose is ")"
	TokenClose
	// TokenUnary is a prefix operator
	TokenUnary
	// TokenBinary is an infix operator
	TokenBinary
)

// Token is one element of an infix expression
type Token struct {
	Kind    TokenKind
	Op      string
	Operand Value
}

// Operand wraps a value as an expression token
func Operand(v Value) Token {
	return Token{Kind: TokenOperand, Operand: v}
}

func (t Token) String() string {
	switch t.Kind {
	case TokenOpen:
		return "("
	case TokenClose:
		return ")"
	case TokenUnary, TokenBinary:
		return t.Op
	}
	return fmt.Sprintf("%v", t.Operand)
}

// Integer reports whether v is a unitless number (empty unit or "#")
func Integer(v Value) bool {
	u, ok := v.(Unit)
	return ok && (u.Unit == "" || u.Unit == "#")
}

// Unprintable returns the first part of v that has no CSS form, nil when v
// can be printed
func Unprintable(v Value) Value {
	var items []Value
	switch x := v.(type) {
	case Unit, Keyword, Color, String, Raw:
		return nil
	case Args:
		items = x.Items
	case List:
		items = x.Items
	case Function:
		items = x.Args
	default:
		return v
	}
	for _, item := range items {
		if u := Unprintable(item); u != nil {
			return u
		}
	}
	return nil
}

// Reduced reports whether v needs no further evaluation
func Reduced(v Value) bool {
	switch x := v.(type) {
	case Unit, Bool, String, Raw, Keyword, Color:
		return true
	case List:
		return allReduced(x.Items)
	case Args:
		return len(x.Items) != 1 && allReduced(x.Items)
	case Map:
		for _, e := range x.M.Entries() {
			if !Reduced(e.Value) {
				return false
			}
		}
		return true
	}
	return false
}

func allReduced(items []Value) bool {
	for _, item := range items {
		if !Reduced(item) {
			return false
		}
	}
	return true
}

// Equal reports whether a and b are structurally identical
func Equal(a, b Value) bool {
	return reflect.DeepEqual(a, b)
}

// Describe renders v for diagnostics
func Describe(v Value) string {
	switch x := v.(type) {
	case Unit:
		return FormatNumber(x.Number) + x.Unit
	case Bool:
		if x.V {
			return "true"
		}
		return "false"
	case String:
		return x.Quoted
	case Raw:
		return x.Text
	case Keyword:
		return x.Text
	case Function:
		parts := make([]string, len(x.Args))
		for i, a := range x.Args {
			parts[i] = Describe(a)
		}
		return x.Name + "(" + strings.Join(parts, ", ") + ")"
	case Variable:
		return "$" + x.Name
	}
	return v.Kind()
}
