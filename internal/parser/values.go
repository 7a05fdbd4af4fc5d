package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"bennypowers.dev/ivory/internal/expr"
	"bennypowers.dev/ivory/internal/value"
)

var (
	reName    = regexp.MustCompile(`^-?\w+(?:[\w-]*\w)?`)
	reNumber  = regexp.MustCompile(`^[0-9]*\.?[0-9]+`)
	reKeyword = regexp.MustCompile(`(?i)^(?:-?[a-z]+[a-z-]*|!important)`)
	reColor   = regexp.MustCompile(`(?i)^#(?:(?:[0-9a-f]{3})?[0-9a-f]{3}-[0-9]{2}|[0-9a-f]{8}|[0-9a-f]{6}|[0-9a-f]{2,4})`)
)

// name matches an identifier without consuming whitespace
func (p *parser) name() (string, bool) {
	return p.match(reName, false)
}

// element is a single list item: expression, keyword, color or map
func (p *parser) element() (value.Value, bool) {
	if v, ok := p.expression(); ok {
		return v, true
	}
	if v, ok := p.keywordValue(); ok {
		return v, true
	}
	if v, ok := p.color(); ok {
		return v, true
	}
	return p.mapLiteral()
}

// spaceList collapses to its only element
func (p *parser) spaceList() (value.Value, bool) {
	var items []value.Value
	for {
		v, ok := p.element()
		if !ok {
			break
		}
		items = append(items, v)
	}
	switch len(items) {
	case 0:
		return nil, false
	case 1:
		return items[0], true
	}
	return value.List{Items: items}, true
}

func (p *parser) commaList() (value.Value, bool) {
	x := p.offset
	var items []value.Value
	for {
		v, ok := p.spaceList()
		if !ok {
			break
		}
		items = append(items, v)
		if !p.lit(",") {
			break
		}
	}
	if len(items) == 0 {
		p.seek(x)
		return nil, false
	}
	return value.Args{Items: items}, true
}

// expression parses alternating operands and operators. A dangling operator
// at the end is dropped and the cursor rewound before it so the text can be
// read by another rule. A single operand is returned as is.
func (p *parser) expression() (value.Value, bool) {
	start := p.offset
	var tokens []value.Token
	parens := 0
	wantOperand := true
	checkpoint, kept := start, 0

	for {
		if wantOperand {
			if op, ok := p.unaryOperator(); ok {
				tokens = append(tokens, value.Token{Kind: value.TokenUnary, Op: op})
			}
			if p.lit("(") {
				parens++
				tokens = append(tokens, value.Token{Kind: value.TokenOpen})
				continue
			}
			if v, ok := p.operand(); ok {
				tokens = append(tokens, value.Operand(v))
				wantOperand = false
				checkpoint, kept = p.offset, len(tokens)
				continue
			}
			break
		}
		if parens > 0 && p.lit(")") {
			parens--
			tokens = append(tokens, value.Token{Kind: value.TokenClose})
			checkpoint, kept = p.offset, len(tokens)
			continue
		}
		if op, ok := p.binaryOperator(); ok {
			tokens = append(tokens, value.Token{Kind: value.TokenBinary, Op: op})
			wantOperand = true
			continue
		}
		break
	}

	if wantOperand {
		tokens = tokens[:kept]
		p.seek(checkpoint)
	}
	if parens > 0 || len(tokens) == 0 {
		p.seek(start)
		return nil, false
	}
	if len(tokens) == 1 {
		return tokens[0].Operand, true
	}
	return value.Expression{Tokens: tokens}, true
}

func (p *parser) unaryOperator() (string, bool) {
	x := p.offset
	for _, u := range expr.UnaryOperators {
		if p.lit(u.Op) && (!u.NeedsGap || p.peek(func(b byte) bool { return b < 'a' || b > 'z' })) {
			return u.Op, true
		}
		p.seek(x)
	}
	return "", false
}

// binaryOperator requires symmetric spacing: whitespace before the operator
// if and only if there is whitespace after it
func (p *parser) binaryOperator() (string, bool) {
	x := p.offset
	spaced := x > 0 && isSpace(p.buf[x-1])
	for _, op := range expr.BinaryOperators {
		if p.litRaw(op) && !(op == "." && p.peek(func(b byte) bool { return b == '.' })) && p.whitespace() == spaced {
			return op, true
		}
		p.seek(x)
	}
	return "", false
}

func (p *parser) operand() (value.Value, bool) {
	for _, parse := range []func() (value.Value, bool){
		p.unit,
		p.boolean,
		p.function,
		func() (value.Value, bool) { return p.variable(true) },
		p.str,
		p.placeholder,
	} {
		if v, ok := parse(); ok {
			return v, true
		}
	}
	return nil, false
}

// unit parses a number with an optional unit suffix. The suffix must not be
// followed by a letter, so "5emperor" leaves "emperor" for the next element.
func (p *parser) unit() (value.Value, bool) {
	m, ok := p.match(reNumber, false)
	if !ok {
		return nil, false
	}
	n, _ := strconv.ParseFloat(m, 64)
	return value.Unit{Number: n, Unit: p.unitSuffix()}, true
}

func (p *parser) unitSuffix() string {
	defer p.whitespace()
	x := p.offset
	for _, u := range value.Units {
		if p.litRaw(u) && !p.peek(isAlpha) {
			return u
		}
		p.seek(x)
	}
	return ""
}

func (p *parser) boolean() (value.Value, bool) {
	x := p.offset
	if kw, ok := p.match(reKeyword, true); ok {
		switch strings.ToLower(kw) {
		case "true":
			return value.Bool{V: true}, true
		case "false":
			return value.Bool{V: false}, true
		}
	}
	p.seek(x)
	return nil, false
}

func (p *parser) keywordValue() (value.Value, bool) {
	kw, ok := p.match(reKeyword, true)
	if !ok {
		return nil, false
	}
	return value.Keyword{Text: kw}, true
}

// function parses name(args); the parenthesis must follow the name directly
func (p *parser) function() (value.Value, bool) {
	x := p.offset
	name, ok := p.name()
	if ok && p.lit("(") {
		fn := value.Function{Name: name}
		if args, ok := p.commaList(); ok {
			fn.Args = args.(value.Args).Items
		}
		if p.lit(")") {
			return fn, true
		}
	}
	p.seek(x)
	return nil, false
}

// variable parses $name, followed by [index] when indexed is set
func (p *parser) variable(indexed bool) (value.Variable, bool) {
	x := p.offset
	if p.lit("$") {
		if name, ok := p.name(); ok {
			p.whitespace()
			v := value.Variable{Name: name}
			if indexed {
				if index, ok := p.index(); ok {
					v.Index = index
				}
			}
			return v, true
		}
	}
	p.seek(x)
	return value.Variable{}, false
}

// index parses [expr]; a bare name is a string key
func (p *parser) index() (value.Value, bool) {
	x := p.offset
	if p.lit("[") {
		if key, ok := p.key(); ok && p.lit("]") {
			return key, true
		}
	}
	p.seek(x)
	return nil, false
}

func (p *parser) key() (value.Value, bool) {
	if v, ok := p.expression(); ok {
		return v, true
	}
	if name, ok := p.name(); ok {
		p.whitespace()
		return value.NewString(name), true
	}
	return nil, false
}

func (p *parser) str() (value.Value, bool) {
	m, ok := p.match(reString, true)
	if !ok {
		return nil, false
	}
	return value.String{Quoted: value.Canonical(m)}, true
}

// placeholder parses <$name> with an optional unit directly after it, so
// "<$i>px" scales the variable to pixels
func (p *parser) placeholder() (value.Value, bool) {
	n := scanPlaceholder(p.rest())
	if n == 0 {
		return nil, false
	}
	v := value.Variable{Name: p.rest()[2 : n-1]}
	p.advance(n)
	if unit := p.unitSuffix(); unit != "" {
		return value.Expression{Tokens: []value.Token{
			value.Operand(v),
			{Kind: value.TokenBinary, Op: "*"},
			value.Operand(value.Unit{Number: 1, Unit: unit}),
		}}, true
	}
	return v, true
}

func (p *parser) color() (value.Value, bool) {
	m, ok := p.match(reColor, true)
	if !ok {
		return nil, false
	}
	return parseColor(m[1:]), true
}

func hex(s string) int {
	n, _ := strconv.ParseUint(s, 16, 8)
	return int(n)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// parseColor decodes the hex digits of a color literal: 2 digits are a gray,
// 3 or 4 a shorthand, 6 or 8 full channels; a "-NN" suffix is a percent alpha.
func parseColor(code string) value.Color {
	if len(code) == 2 {
		code = code + code + code
	}
	digits, percent, _ := strings.Cut(code, "-")
	c := value.Color{A: 1}
	switch len(digits) {
	case 6, 8:
		c.R, c.G, c.B = hex(digits[0:2]), hex(digits[2:4]), hex(digits[4:6])
	default:
		c.R, c.G, c.B = hex(digits[0:1]+digits[0:1]), hex(digits[1:2]+digits[1:2]), hex(digits[2:3]+digits[2:3])
	}
	switch {
	case percent != "":
		a, _ := strconv.ParseFloat("0."+percent, 64)
		c.A = a
	case len(digits) == 8:
		c.A = round2(float64(hex(digits[6:8])) / 256)
	case len(digits) == 4:
		c.A = round2(float64(hex(digits[3:4]+digits[3:4])) / 256)
	}
	return c
}

// mapLiteral parses [key: value, value, ...]
func (p *parser) mapLiteral() (value.Value, bool) {
	x := p.offset
	if !p.lit("[") {
		return nil, false
	}
	m := value.RawMap{}
	for {
		entry, ok := p.mapEntry()
		if !ok {
			break
		}
		m.Entries = append(m.Entries, entry)
		if !p.lit(",") {
			break
		}
	}
	if !p.lit("]") {
		p.seek(x)
		return nil, false
	}
	return m, true
}

func (p *parser) mapEntry() (value.MapEntry, bool) {
	x := p.offset
	var entry value.MapEntry
	if key, ok := p.key(); ok && p.lit(":") {
		entry.Key = key
	} else {
		p.seek(x)
	}
	v, ok := p.spaceList()
	if !ok {
		p.seek(x)
		return value.MapEntry{}, false
	}
	entry.Value = v
	return entry, true
}
