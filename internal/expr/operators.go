// Package expr evaluates infix expressions of the stylesheet language.
//
// The parser produces value.Expression token sequences; Evaluate converts them
// to postfix with the shunting-yard algorithm and reduces the postfix form on
// a stack.
package expr

// Binary operator precedences. Higher binds tighter.
var precedence = map[string]int{
	"*": 1000, "/": 1000, "%": 1000,
	"+": 800, "-": 800,
	".": 800,
	"=": 600, ">": 600, "<": 600, ">=": 600, "<=": 600, "<>": 600, "!=": 600,
	"&&": 400,
	"||": 300,
	"^^": 200,
}

// unaryPrecedence is above every binary operator
const unaryPrecedence = 1100

// BinaryOperators lists binary operators in matching order, longest first so
// that ">=" is never read as ">" followed by "=".
var BinaryOperators = []string{
	">=", "<=", "<>", "!=", "&&", "||", "^^",
	"*", "/", "%", "+", "-", ".", "=", ">", "<",
}

// UnaryOperator is a prefix operator. NeedsGap operators must not be directly
// followed by a lowercase letter, so "-moz-calc" stays an identifier.
type UnaryOperator struct {
	Op       string
	NeedsGap bool
}

// UnaryOperators lists prefix operators in matching order
var UnaryOperators = []UnaryOperator{
	{Op: "+", NeedsGap: false},
	{Op: "-", NeedsGap: true},
	{Op: "!", NeedsGap: false},
}

// Precedence returns the binding strength of a binary operator
func Precedence(op string) (int, bool) {
	p, ok := precedence[op]
	return p, ok
}
