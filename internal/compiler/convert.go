package compiler

import (
	"fmt"
	"math"
	"slices"

	"bennypowers.dev/ivory/internal/value"
)

// Convert turns a Go value into a stylesheet value. Numbers become unitless
// units, strings become quoted strings, and slices and maps become maps;
// map keys are visited in sorted order.
func Convert(v any) (value.Value, error) {
	switch x := v.(type) {
	case value.Value:
		return x, nil
	case bool:
		return value.Bool{V: x}, nil
	case string:
		return value.NewString(x), nil
	case int:
		return number(float64(x))
	case int8:
		return number(float64(x))
	case int16:
		return number(float64(x))
	case int32:
		return number(float64(x))
	case int64:
		return number(float64(x))
	case uint:
		return number(float64(x))
	case uint8:
		return number(float64(x))
	case uint16:
		return number(float64(x))
	case uint32:
		return number(float64(x))
	case uint64:
		return number(float64(x))
	case float32:
		return number(float64(x))
	case float64:
		return number(x)
	case []any:
		m := value.NewOrderedMap()
		for _, item := range x {
			cv, err := Convert(item)
			if err != nil {
				return nil, err
			}
			m.Append(cv)
		}
		return value.Map{M: m}, nil
	case []string:
		items := make([]any, len(x))
		for i, s := range x {
			items[i] = s
		}
		return Convert(items)
	case map[string]any:
		m := value.NewOrderedMap()
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			cv, err := Convert(x[k])
			if err != nil {
				return nil, err
			}
			m.Set(value.StringKeyOf(value.Encode(k)), cv)
		}
		return value.Map{M: m}, nil
	case map[any]any:
		converted := make(map[string]any, len(x))
		for k, item := range x {
			converted[fmt.Sprint(k)] = item
		}
		return Convert(converted)
	case nil:
		return nil, fmt.Errorf("%w: a variable cannot be null", ErrInvalid)
	}
	return nil, fmt.Errorf("%w: values of type %T cannot be converted", ErrInvalid, v)
}

func number(f float64) (value.Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%w: %v is not a finite number", ErrInvalid, f)
	}
	return value.Unit{Number: f}, nil
}
