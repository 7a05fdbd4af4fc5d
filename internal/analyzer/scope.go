package analyzer

import (
	"bennypowers.dev/ivory/internal/errs"
	"bennypowers.dev/ivory/internal/value"
)

// scope is the stack of variable layers. Layer 0 holds the globals.
type scope struct {
	layers []map[string]value.Value
}

func newScope() *scope {
	return &scope{layers: []map[string]value.Value{{}}}
}

// push opens a layer and returns the func that closes it
func (s *scope) push() func() {
	s.layers = append(s.layers, map[string]value.Value{})
	depth := len(s.layers)
	return func() {
		s.layers = s.layers[:depth-1]
	}
}

// bind stores v in the innermost layer
func (s *scope) bind(name string, v value.Value) {
	s.layers[len(s.layers)-1][name] = v
}

// assign updates the innermost existing binding of name, or binds it in the
// innermost layer
func (s *scope) assign(name string, v value.Value) {
	for i := len(s.layers) - 1; i >= 0; i-- {
		if _, ok := s.layers[i][name]; ok {
			s.layers[i][name] = v
			return
		}
	}
	s.bind(name, v)
}

func (s *scope) lookup(name string) (value.Value, bool) {
	for i := len(s.layers) - 1; i >= 0; i-- {
		if v, ok := s.layers[i][name]; ok {
			return v, true
		}
	}
	return nil, false
}

// lookupMap finds the innermost binding of name that holds a map
func (s *scope) lookupMap(name string) (value.Map, int, bool) {
	for i := len(s.layers) - 1; i >= 0; i-- {
		if m, ok := s.layers[i][name].(value.Map); ok {
			return m, i, true
		}
	}
	return value.Map{}, 0, false
}

func (s *scope) findInMap(name string, key value.Key) (value.Value, error) {
	m, _, ok := s.lookupMap(name)
	if !ok {
		return nil, errs.Undefined("map '$%s' is not defined", name)
	}
	v, ok := m.M.Get(key)
	if !ok {
		return nil, errs.Undefined("undefined key '%s' in map '$%s'", key, name)
	}
	return v, nil
}

// saveToMap stores v under key in a copy of the map, so values that
// captured the old map are unaffected
func (s *scope) saveToMap(name string, key value.Key, v value.Value) error {
	m, layer, ok := s.lookupMap(name)
	if !ok {
		return errs.Undefined("map '$%s' is not defined", name)
	}
	c := m.M.Clone()
	c.Set(key, v)
	s.layers[layer][name] = value.Map{M: c}
	return nil
}
