package css

// Position is a zero-based location in CSS source, with the character
// counted in UTF-16 code units
type Position struct {
	Line      uint32
	Character uint32
}

// Range represents a range in a text document
type Range struct {
	Start Position
	End   Position
}

// Problem is a syntax error found by tree-sitter
type Problem struct {
	Message string
	Range   Range
}

// ColorKind identifies how a color literal is written
type ColorKind int

const (
	// HexColor is a #rgb, #rrggbb or #rrggbbaa literal
	HexColor ColorKind = iota
	// FunctionColor is an rgb(), rgba(), hsl() or hsla() call
	FunctionColor
	// NamedColor is a plain keyword that may name a color
	NamedColor
)

// Color is a literal that may denote a color
type Color struct {
	Text  string
	Kind  ColorKind
	Range Range
}

// Result contains the results of checking CSS
type Result struct {
	Problems []Problem
	Colors   []Color
}

// Valid reports whether no syntax problems were found
func (r *Result) Valid() bool {
	return len(r.Problems) == 0
}
