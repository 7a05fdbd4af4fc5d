package analyzer

import (
	"math"

	"bennypowers.dev/ivory/internal/ast"
	"bennypowers.dev/ivory/internal/errs"
	"bennypowers.dev/ivory/internal/expr"
	"bennypowers.dev/ivory/internal/value"
)

// callBlock reduces a nested rule, running its control statement if it has
// one. taken holds the if/elseif rules of the enclosing block activation
// whose chain already took a branch.
func (a *Analyzer) callBlock(rule *ast.NestedRule, sel selectors, taken map[*ast.NestedRule]bool) error {
	st := rule.Statement
	if st == nil {
		return a.reduceBlock(rule, sel, nil)
	}
	return errs.WithLine(a.statement(rule, st, sel, taken), st.Line)
}

func (a *Analyzer) condition(e value.Value) (bool, error) {
	v, err := a.Reduce(e)
	if err != nil {
		return false, err
	}
	return expr.Condition(v)
}

func (a *Analyzer) statement(rule *ast.NestedRule, st *ast.Statement, sel selectors, taken map[*ast.NestedRule]bool) error {
	if (st.Kind == ast.ElseIf || st.Kind == ast.Else) && st.Condition == nil {
		return errs.Semantic("%s without a preceding if", st.Kind)
	}
	switch st.Kind {
	case ast.If, ast.ElseIf:
		if st.Kind == ast.ElseIf && taken[st.Condition] {
			taken[rule] = true
			return nil
		}
		ok, err := a.condition(st.Expr)
		if err != nil {
			return err
		}
		taken[rule] = ok
		if !ok {
			return nil
		}
		return a.reduceBlock(rule, sel, nil)

	case ast.Else:
		if taken[st.Condition] {
			return nil
		}
		return a.reduceBlock(rule, sel, nil)

	case ast.While:
		for i := 0; ; i++ {
			ok, err := a.condition(st.Expr)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			if i >= a.opts.MaxIterations {
				return errs.Recursion("while loop exceeded %d iterations", a.opts.MaxIterations)
			}
			if err := a.reduceBlock(rule, sel, nil); err != nil {
				return err
			}
		}

	case ast.For:
		return a.forLoop(rule, st, sel)

	case ast.ForEach:
		return a.forEachLoop(rule, st, sel)
	}
	return nil
}

// maxBound is the largest magnitude a float64 holds as an exact integer
const maxBound = 1 << 53

func (a *Analyzer) bound(v value.Value, which string) (float64, error) {
	r, err := a.Reduce(v)
	if err != nil {
		return 0, err
	}
	if !value.Integer(r) {
		return 0, errs.Type("for loop %s value is not an integer", which)
	}
	n := r.(value.Unit).Number
	if math.IsNaN(n) || math.Abs(n) > maxBound {
		return 0, errs.Recursion("for loop %s value is out of range", which)
	}
	return n, nil
}

// forLoop runs the body for every integer between the bounds, both included,
// counting down when the end is below the beginning
func (a *Analyzer) forLoop(rule *ast.NestedRule, st *ast.Statement, sel selectors) error {
	from, err := a.bound(st.Begin, "begin")
	if err != nil {
		return err
	}
	to, err := a.bound(st.End, "end")
	if err != nil {
		return err
	}
	if math.Abs(to-from) >= float64(a.opts.MaxIterations) {
		return errs.Recursion("for loop exceeded %d iterations", a.opts.MaxIterations)
	}
	begin, end := int64(from), int64(to)
	step := int64(1)
	if end < begin {
		step = -1
	}
	for i := begin; ; i += step {
		b := []binding{{name: st.Var, value: value.Unit{Number: float64(i)}, line: st.Line}}
		if err := a.reduceBlock(rule, sel, b); err != nil {
			return err
		}
		if i == end {
			return nil
		}
	}
}

func (a *Analyzer) forEachLoop(rule *ast.NestedRule, st *ast.Statement, sel selectors) error {
	v, ok := a.scope.lookup(st.Map)
	if !ok {
		return errs.Undefined("variable '$%s' is not defined", st.Map)
	}
	m, ok := v.(value.Map)
	if !ok {
		return errs.Type("foreach needs a map, '$%s' is a %s", st.Map, v.Kind())
	}
	for _, e := range m.M.Entries() {
		var b []binding
		if st.Key != "" {
			b = append(b, binding{name: st.Key, value: e.Key.Value(), line: st.Line})
		}
		b = append(b, binding{name: st.Var, value: e.Value, line: st.Line})
		if err := a.reduceBlock(rule, sel, b); err != nil {
			return err
		}
	}
	return nil
}

// mixinArgs splits a call's argument value into positional arguments.
// A single argument that is a space list passes its items.
func mixinArgs(v value.Value) []value.Value {
	switch x := v.(type) {
	case value.Args:
		if len(x.Items) == 1 {
			return mixinArgs(x.Items[0])
		}
		return x.Items
	case value.List:
		return x.Items
	}
	return []value.Value{v}
}

// callMixin reduces a mixin body in the caller's selector context. The
// arguments are reduced in the caller's scope, defaults in the mixin's own
// layer so they can refer to earlier parameters.
func (a *Analyzer) callMixin(name string, arg value.Value, sel selectors) error {
	m, ok := a.mixins[name]
	if !ok {
		return errs.Undefined("mixin '%s' is not defined", name)
	}
	argv, err := a.Reduce(arg)
	if err != nil {
		return err
	}
	args, err := a.reduceAll(mixinArgs(arg))
	if err != nil {
		return err
	}

	bindings := []binding{
		{name: "_argc", value: value.Unit{Number: float64(len(args))}},
		{name: "_argv", value: argv},
	}
	for i, p := range m.Params {
		b := binding{name: p.Name, line: p.Line}
		switch {
		case i < len(args):
			b.value = args[i]
		case p.Default != nil:
			b.value = p.Default
		default:
			b.value = value.Bool{V: false}
		}
		bindings = append(bindings, b)
	}
	return errs.WithFile(a.reduceBlock(m, sel, bindings), m.File)
}
