package analyzer

import (
	"bennypowers.dev/ivory/internal/errs"
	"bennypowers.dev/ivory/internal/expr"
	"bennypowers.dev/ivory/internal/value"
)

// Reduce evaluates v in the current scope until it is a printable value or
// an unresolvable function call. Reducing a reduced value returns it as is.
func (a *Analyzer) Reduce(v value.Value) (value.Value, error) {
	for step := 0; ; step++ {
		if step > a.opts.MaxIterations {
			return nil, errs.Recursion("value did not settle after %d reductions", a.opts.MaxIterations)
		}
		switch x := v.(type) {
		case value.Args:
			items, err := a.reduceAll(x.Items)
			if err != nil {
				return nil, err
			}
			if len(items) == 1 {
				return items[0], nil
			}
			return value.Args{Items: items}, nil

		case value.List:
			items, err := a.reduceAll(x.Items)
			if err != nil {
				return nil, err
			}
			return value.List{Items: items}, nil

		case value.Expression:
			r, err := expr.Evaluate(x, a.Reduce)
			if err != nil {
				return nil, err
			}
			v = r

		case value.Variable:
			r, err := a.variable(x)
			if err != nil {
				return nil, err
			}
			v = r

		case value.Function:
			args, err := a.reduceAll(x.Args)
			if err != nil {
				return nil, err
			}
			call := value.Function{Name: x.Name, Args: args}
			if a.opts.Functions == nil {
				return call, nil
			}
			fn, ok := a.opts.Functions.Lookup(x.Name)
			if !ok {
				return call, nil
			}
			r, err := fn(args)
			if err != nil {
				return nil, err
			}
			if r == nil {
				return nil, errs.Undefined("function '%s' returned no value", x.Name)
			}
			if value.Equal(r, call) {
				return call, nil
			}
			v = r

		case value.RawMap:
			return a.reduceMap(x)

		default:
			return v, nil
		}
	}
}

func (a *Analyzer) reduceAll(items []value.Value) ([]value.Value, error) {
	if items == nil {
		return nil, nil
	}
	out := make([]value.Value, len(items))
	for i, item := range items {
		r, err := a.Reduce(item)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

func (a *Analyzer) variable(v value.Variable) (value.Value, error) {
	if v.Index == nil {
		r, ok := a.scope.lookup(v.Name)
		if !ok {
			return nil, errs.Undefined("variable '$%s' is not defined", v.Name)
		}
		return r, nil
	}
	key, err := a.key(v.Index)
	if err != nil {
		return nil, err
	}
	return a.scope.findInMap(v.Name, key)
}

// key reduces an index expression to a map key
func (a *Analyzer) key(index value.Value) (value.Key, error) {
	r, err := a.Reduce(index)
	if err != nil {
		return value.Key{}, err
	}
	k, ok := value.KeyOf(r)
	if !ok {
		return value.Key{}, errs.Type("a value of kind %s cannot index a map", r.Kind())
	}
	return k, nil
}

func (a *Analyzer) reduceMap(raw value.RawMap) (value.Value, error) {
	m := value.NewOrderedMap()
	for _, e := range raw.Entries {
		v, err := a.Reduce(e.Value)
		if err != nil {
			return nil, err
		}
		if e.Key == nil {
			m.Append(v)
			continue
		}
		k, err := a.Reduce(e.Key)
		if err != nil {
			return nil, err
		}
		switch k.(type) {
		case value.Unit:
			if !value.Integer(k) {
				return nil, errs.Type("only a number without a unit can be a map key")
			}
		case value.String:
		default:
			return nil, errs.Type("a value of kind %s cannot be a map key", k.Kind())
		}
		key, _ := value.KeyOf(k)
		m.Set(key, v)
	}
	return value.Map{M: m}, nil
}
