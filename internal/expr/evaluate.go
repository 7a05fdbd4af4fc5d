package expr

import (
	"math"

	"bennypowers.dev/ivory/internal/errs"
	"bennypowers.dev/ivory/internal/value"
)

// Reducer resolves an operand before it enters the postfix queue
type Reducer func(value.Value) (value.Value, error)

// ToPostfix reorders an infix token sequence into postfix order, reducing
// every operand with reduce on the way.
func ToPostfix(e value.Expression, reduce Reducer) ([]value.Token, error) {
	out := make([]value.Token, 0, len(e.Tokens))
	var stack []value.Token
	for _, tok := range e.Tokens {
		switch tok.Kind {
		case value.TokenOperand:
			v, err := reduce(tok.Operand)
			if err != nil {
				return nil, err
			}
			out = append(out, value.Operand(v))
		case value.TokenOpen, value.TokenUnary:
			stack = append(stack, tok)
		case value.TokenClose:
			for len(stack) > 0 && stack[len(stack)-1].Kind != value.TokenOpen {
				out = append(out, stack[len(stack)-1])
				stack = stack[:len(stack)-1]
			}
			if len(stack) == 0 {
				return nil, errs.Parse(0, "unbalanced parenthesis in expression")
			}
			stack = stack[:len(stack)-1]
		case value.TokenBinary:
			p := precedence[tok.Op]
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				if top.Kind == value.TokenOpen || p > stackPrecedence(top) {
					break
				}
				out = append(out, top)
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, tok)
		}
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].Kind == value.TokenOpen {
			return nil, errs.Parse(0, "unbalanced parenthesis in expression")
		}
		out = append(out, stack[i])
	}
	return out, nil
}

func stackPrecedence(t value.Token) int {
	if t.Kind == value.TokenUnary {
		return unaryPrecedence
	}
	return precedence[t.Op]
}

// Evaluate reduces an expression to a single value
func Evaluate(e value.Expression, reduce Reducer) (value.Value, error) {
	postfix, err := ToPostfix(e, reduce)
	if err != nil {
		return nil, err
	}
	var stack []value.Value
	for _, tok := range postfix {
		switch tok.Kind {
		case value.TokenOperand:
			stack = append(stack, tok.Operand)
		case value.TokenUnary:
			if len(stack) < 1 {
				return nil, errs.Type("missing operand for unary operator %s", tok.Op)
			}
			v, err := Unary(tok.Op, stack[len(stack)-1])
			if err != nil {
				return nil, err
			}
			stack[len(stack)-1] = v
		case value.TokenBinary:
			if len(stack) < 2 {
				return nil, errs.Type("missing operand for operator %s", tok.Op)
			}
			a, b := stack[len(stack)-2], stack[len(stack)-1]
			v, err := Binary(tok.Op, a, b)
			if err != nil {
				return nil, err
			}
			stack = stack[:len(stack)-1]
			stack[len(stack)-1] = v
		}
	}
	if len(stack) != 1 {
		return nil, errs.Type("malformed expression")
	}
	return stack[0], nil
}

// Condition returns the truth value of a control-flow condition.
// Bools are taken as is, numbers are true when non-zero.
func Condition(v value.Value) (bool, error) {
	if t, ok := truth(v); ok {
		return t, nil
	}
	return false, errs.Type("%s is not a valid condition", v.Kind())
}

func truth(v value.Value) (bool, bool) {
	switch x := v.(type) {
	case value.Bool:
		return x.V, true
	case value.Unit:
		return x.Number != 0, true
	}
	return false, false
}

// numeric returns v as a number; Bools count as 0 or 1
func numeric(v value.Value) (float64, bool) {
	switch x := v.(type) {
	case value.Unit:
		return x.Number, true
	case value.Bool:
		if x.V {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// Unary applies a prefix operator
func Unary(op string, v value.Value) (value.Value, error) {
	switch op {
	case "!":
		t, ok := truth(v)
		if !ok {
			return nil, errs.Type("operation not allowed (!%s)", v.Kind())
		}
		return value.Bool{V: !t}, nil
	case "+", "-":
		return Binary(op, value.Unit{}, v)
	}
	return nil, errs.Type("unknown operator %s", op)
}

// ResultUnit picks the unit of an arithmetic result. Equal units are kept;
// otherwise at least one side must be unitless and the other side's unit wins.
func ResultUnit(a, b value.Unit) (string, error) {
	if a.Unit == b.Unit {
		return a.Unit, nil
	}
	switch {
	case value.Integer(a):
		return b.Unit, nil
	case value.Integer(b):
		return a.Unit, nil
	}
	return "", errs.Type("incompatible units %s and %s", a.Unit, b.Unit)
}

// Binary applies an infix operator
func Binary(op string, a, b value.Value) (value.Value, error) {
	switch op {
	case "&&", "||", "^^":
		return logical(op, a, b)
	case "=", "!=", "<>", ">", "<", ">=", "<=":
		return compare(op, a, b)
	case ".":
		return concat(a, b)
	case "+", "-", "*", "/", "%":
		return arithmetic(op, a, b)
	}
	return nil, errs.Type("unknown operator %s", op)
}

func illegal(op string, a, b value.Value) error {
	return errs.Type("operation not allowed (%s %s %s)", a.Kind(), op, b.Kind())
}

func logical(op string, a, b value.Value) (value.Value, error) {
	x, ok1 := truth(a)
	y, ok2 := truth(b)
	if !ok1 || !ok2 {
		return nil, illegal(op, a, b)
	}
	switch op {
	case "&&":
		return value.Bool{V: x && y}, nil
	case "||":
		return value.Bool{V: x || y}, nil
	}
	return value.Bool{V: x != y}, nil
}

func compare(op string, a, b value.Value) (value.Value, error) {
	if sa, ok := a.(value.String); ok {
		sb, ok := b.(value.String)
		if !ok {
			return nil, illegal(op, a, b)
		}
		switch op {
		case "=":
			return value.Bool{V: sa.Quoted == sb.Quoted}, nil
		case "!=", "<>":
			return value.Bool{V: sa.Quoted != sb.Quoted}, nil
		}
		return nil, illegal(op, a, b)
	}
	x, ok1 := numeric(a)
	y, ok2 := numeric(b)
	if !ok1 || !ok2 {
		return nil, illegal(op, a, b)
	}
	var r bool
	switch op {
	case "=":
		r = x == y
	case "!=", "<>":
		r = x != y
	case ">":
		r = x > y
	case "<":
		r = x < y
	case ">=":
		r = x >= y
	case "<=":
		r = x <= y
	}
	return value.Bool{V: r}, nil
}

// concatText renders a concat operand as plain text
func concatText(v value.Value) (string, bool) {
	switch x := v.(type) {
	case value.String:
		return value.Decode(x.Quoted), true
	case value.Raw:
		return x.Text, true
	case value.Unit:
		return value.PlainNumber(x.Number) + value.Suffix(x, ""), true
	}
	return "", false
}

func concat(a, b value.Value) (value.Value, error) {
	x, ok1 := concatText(a)
	y, ok2 := concatText(b)
	if !ok1 || !ok2 {
		return nil, illegal(".", a, b)
	}
	_, rawA := a.(value.Raw)
	_, rawB := b.(value.Raw)
	_, unitA := a.(value.Unit)
	_, unitB := b.(value.Unit)
	if (rawA && (rawB || unitB)) || (unitA && rawB) {
		return nil, illegal(".", a, b)
	}
	return value.NewString(x + y), nil
}

func arithmetic(op string, a, b value.Value) (value.Value, error) {
	ua, ok1 := a.(value.Unit)
	ub, ok2 := b.(value.Unit)
	if !ok1 || !ok2 {
		return nil, illegal(op, a, b)
	}
	unit, err := ResultUnit(ua, ub)
	if err != nil {
		return nil, err
	}
	var n float64
	switch op {
	case "+":
		n = ua.Number + ub.Number
	case "-":
		n = ua.Number - ub.Number
	case "*":
		n = ua.Number * ub.Number
	case "/":
		if ub.Number == 0 {
			return nil, errs.Type("division by zero")
		}
		n = ua.Number / ub.Number
	case "%":
		d := int64(ub.Number)
		if d == 0 {
			return nil, errs.Type("division by zero")
		}
		n = float64(int64(ua.Number) % d)
	}
	if math.IsInf(n, 0) || math.IsNaN(n) {
		return nil, errs.Type("arithmetic overflow")
	}
	return value.Unit{Number: n, Unit: unit}, nil
}
