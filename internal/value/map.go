package value

import (
	"math"
	"strconv"
)

// KeyKind is the type of a map key
type KeyKind int

const (
	// IntKey is an integer index
	IntKey KeyKind = iota
	// FloatKey is a fractional index
	FloatKey
	// StringKey is a quoted string key
	StringKey
)

// Key is a map key: an integer, a float or a string
type Key struct {
	Kind KeyKind
	Num  float64
	Str  string
}

// IntKeyOf returns the integer key n
func IntKeyOf(n int64) Key {
	return Key{Kind: IntKey, Num: float64(n)}
}

// StringKeyOf returns the key for the canonical quoted string s
func StringKeyOf(quoted string) Key {
	return Key{Kind: StringKey, Str: quoted}
}

func (k Key) String() string {
	switch k.Kind {
	case StringKey:
		return Decode(k.Str)
	case IntKey:
		return strconv.FormatInt(int64(k.Num), 10)
	}
	return strconv.FormatFloat(k.Num, 'f', -1, 64)
}

// KeyOf converts a reduced value to a map key.
// Only numbers and strings can index a map.
func KeyOf(v Value) (Key, bool) {
	switch x := v.(type) {
	case Unit:
		if x.Number == math.Trunc(x.Number) {
			return IntKeyOf(int64(x.Number)), true
		}
		return Key{Kind: FloatKey, Num: x.Number}, true
	case String:
		return StringKeyOf(x.Quoted), true
	}
	return Key{}, false
}

// Value converts a key back to a value: numbers become unitless Units, strings Strings
func (k Key) Value() Value {
	if k.Kind == StringKey {
		return String{Quoted: k.Str}
	}
	return Unit{Number: k.Num}
}

// Entry is a key/value pair of an OrderedMap
type Entry struct {
	Key   Key
	Value Value
}

// OrderedMap maps keys to values preserving insertion order.
// Updating an existing key keeps its position.
type OrderedMap struct {
	entries []Entry
	index   map[Key]int
	next    int64
}

// NewOrderedMap creates an empty map
func NewOrderedMap() *OrderedMap {
	return &OrderedMap{index: make(map[Key]int)}
}

// Len returns the number of entries
func (m *OrderedMap) Len() int {
	return len(m.entries)
}

// Get returns the value stored under k
func (m *OrderedMap) Get(k Key) (Value, bool) {
	i, ok := m.index[k]
	if !ok {
		return nil, false
	}
	return m.entries[i].Value, true
}

// Set stores v under k
func (m *OrderedMap) Set(k Key, v Value) {
	if i, ok := m.index[k]; ok {
		m.entries[i].Value = v
		return
	}
	if k.Kind == IntKey && int64(k.Num) >= m.next {
		m.next = int64(k.Num) + 1
	}
	m.index[k] = len(m.entries)
	m.entries = append(m.entries, Entry{Key: k, Value: v})
}

// Append stores v under the next free integer index
func (m *OrderedMap) Append(v Value) {
	m.Set(IntKeyOf(m.next), v)
}

// Entries returns the entries in insertion order
func (m *OrderedMap) Entries() []Entry {
	return m.entries
}

// Clone returns a shallow copy that can be modified independently
func (m *OrderedMap) Clone() *OrderedMap {
	c := &OrderedMap{
		entries: make([]Entry, len(m.entries)),
		index:   make(map[Key]int, len(m.index)),
		next:    m.next,
	}
	copy(c.entries, m.entries)
	for k, i := range m.index {
		c.index[k] = i
	}
	return c
}
