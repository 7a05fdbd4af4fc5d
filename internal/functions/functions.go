// Package functions holds the table of functions that stylesheets can call.
//
// A function receives its reduced arguments and returns a value. Returning
// the call itself, unchanged, tells the analyzer that the function could not
// simplify it, so the call is printed as a plain CSS function.
package functions

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"

	"bennypowers.dev/ivory/internal/errs"
	"bennypowers.dev/ivory/internal/value"
	"github.com/mazznoer/csscolorparser"
)

// Func is a registered function
type Func func(args []value.Value) (value.Value, error)

// Registry maps function names to implementations
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Func
}

// NewRegistry creates a registry holding the builtin functions
func NewRegistry() *Registry {
	r := &Registry{funcs: make(map[string]Func)}
	r.Register("iergba", IERGBA)
	r.Register("raw", Raw)
	r.Register("color", Color)
	r.Register("rgba", RGBA)
	return r
}

// Register adds or replaces the function called name
func (r *Registry) Register(name string, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = fn
}

// Lookup returns the function called name
func (r *Registry) Lookup(name string) (Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[name]
	return fn, ok
}

// Names returns the registered names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func unchanged(name string, args []value.Value) value.Value {
	return value.Function{Name: name, Args: args}
}

// IERGBA converts a color to the #aarrggbb form used by legacy IE filters
func IERGBA(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return unchanged("iergba", args), nil
	}
	c, ok := args[0].(value.Color)
	if !ok {
		return unchanged("iergba", args), nil
	}
	if c.A == 1 {
		return value.Raw{Text: fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)}, nil
	}
	a := int(c.A * 255)
	return value.Raw{Text: fmt.Sprintf("#%02x%02x%02x%02x", a, c.R, c.G, c.B)}, nil
}

// Raw prints a string without its quotes
func Raw(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return unchanged("raw", args), nil
	}
	s, ok := args[0].(value.String)
	if !ok {
		return unchanged("raw", args), nil
	}
	return value.Raw{Text: value.Decode(s.Quoted)}, nil
}

// Color parses any CSS color notation (named, hex, rgb, hsl, hwb) held in
// a string or keyword
func Color(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return unchanged("color", args), nil
	}
	var text string
	switch x := args[0].(type) {
	case value.String:
		text = value.Decode(x.Quoted)
	case value.Keyword:
		text = x.Text
	case value.Color:
		return x, nil
	default:
		return unchanged("color", args), nil
	}
	c, err := csscolorparser.Parse(strings.TrimSpace(text))
	if err != nil {
		return nil, errs.Type("invalid color '%s'", text)
	}
	return value.Color{
		R: channel(c.R),
		G: channel(c.G),
		B: channel(c.B),
		A: math.Round(c.A*100) / 100,
	}, nil
}

func channel(f float64) int {
	return int(math.Round(math.Max(0, math.Min(1, f)) * 255))
}

// RGBA builds a color from three channels and an optional alpha, or from a
// color and an alpha
func RGBA(args []value.Value) (value.Value, error) {
	if len(args) == 2 {
		c, ok := args[0].(value.Color)
		a, okA := args[1].(value.Unit)
		if !ok || !okA {
			return unchanged("rgba", args), nil
		}
		c.A = alpha(a)
		return c, nil
	}
	if len(args) != 3 && len(args) != 4 {
		return unchanged("rgba", args), nil
	}
	var n [4]value.Unit
	for i, arg := range args {
		u, ok := arg.(value.Unit)
		if !ok {
			return unchanged("rgba", args), nil
		}
		n[i] = u
	}
	c := value.Color{R: byteChannel(n[0]), G: byteChannel(n[1]), B: byteChannel(n[2]), A: 1}
	if len(args) == 4 {
		c.A = alpha(n[3])
	}
	return c, nil
}

func byteChannel(u value.Unit) int {
	f := u.Number
	if u.Unit == "%" {
		f = f * 255 / 100
	}
	return int(math.Round(math.Max(0, math.Min(255, f))))
}

func alpha(u value.Unit) float64 {
	f := u.Number
	if u.Unit == "%" {
		f /= 100
	}
	return math.Max(0, math.Min(1, f))
}
