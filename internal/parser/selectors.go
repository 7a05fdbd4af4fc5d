package parser

import (
	"strings"

	"bennypowers.dev/ivory/internal/ast"
)

// extendedSelectors parses an optional control statement followed by
// selectors. "outer >> inner" makes the first list the prefixes.
func (p *parser) extendedSelectors() (stmt *ast.Statement, prefixes, selectors []ast.Selector, ok bool) {
	stmt = p.statement()
	first, found := p.selectors()
	if !found {
		return stmt, nil, nil, stmt != nil
	}
	if p.lit(">>") {
		selectors, _ = p.selectors()
		return stmt, first, selectors, true
	}
	return stmt, nil, first, true
}

func (p *parser) statement() *ast.Statement {
	line := p.line()
	for _, parse := range []func() *ast.Statement{
		p.ifStatement,
		p.elseIfStatement,
		p.elseStatement,
		p.whileStatement,
		p.forStatement,
		p.forEachStatement,
	} {
		if s := parse(); s != nil {
			s.Line = line
			return s
		}
	}
	return nil
}

// condition parses "(expr)"
func (p *parser) condition(kind ast.StatementKind) *ast.Statement {
	if !p.lit("(") {
		return nil
	}
	e, ok := p.expression()
	if !ok || !p.lit(")") {
		return nil
	}
	return &ast.Statement{Kind: kind, Expr: e}
}

func (p *parser) ifStatement() *ast.Statement {
	x := p.offset
	if p.keyword("if") {
		if s := p.condition(ast.If); s != nil {
			return s
		}
	}
	p.seek(x)
	return nil
}

func (p *parser) elseIfStatement() *ast.Statement {
	x := p.offset
	if p.findCondition() != nil && p.keyword("elseif") {
		if s := p.condition(ast.ElseIf); s != nil {
			return s
		}
	}
	p.seek(x)
	return nil
}

func (p *parser) elseStatement() *ast.Statement {
	if p.findCondition() != nil && p.keyword("else") {
		return &ast.Statement{Kind: ast.Else}
	}
	return nil
}

func (p *parser) whileStatement() *ast.Statement {
	x := p.offset
	if p.keyword("while") {
		if s := p.condition(ast.While); s != nil {
			return s
		}
	}
	p.seek(x)
	return nil
}

// forStatement parses "for ($i: begin..end)"; the parentheses are optional
func (p *parser) forStatement() *ast.Statement {
	x := p.offset
	if !p.keyword("for") {
		return nil
	}
	paren := p.lit("(")
	v, ok := p.variable(false)
	if ok && p.lit(":") {
		if begin, ok := p.expression(); ok && p.lit("..") {
			if end, ok := p.expression(); ok && (!paren || p.lit(")")) {
				return &ast.Statement{Kind: ast.For, Var: v.Name, Begin: begin, End: end}
			}
		}
	}
	p.seek(x)
	return nil
}

// forEachStatement parses "foreach ($map as [$key,] $value)"; the parentheses are optional
func (p *parser) forEachStatement() *ast.Statement {
	x := p.offset
	if !p.keyword("foreach") {
		return nil
	}
	paren := p.lit("(")
	m, ok := p.variable(false)
	if ok && p.keyword("as") {
		stmt := &ast.Statement{Kind: ast.ForEach, Map: m.Name}
		y := p.offset
		if k, ok := p.variable(false); ok && p.lit(",") {
			stmt.Key = k.Name
		} else {
			p.seek(y)
		}
		if v, ok := p.variable(false); ok && (!paren || p.lit(")")) {
			stmt.Var = v.Name
			return stmt
		}
	}
	p.seek(x)
	return nil
}

// selectors parses a comma separated selector list
func (p *parser) selectors() ([]ast.Selector, bool) {
	var list []ast.Selector
	for {
		s, ok := p.selector()
		if !ok {
			break
		}
		list = append(list, s)
		if !p.lit(",") {
			break
		}
	}
	return list, len(list) > 0
}

func (p *parser) selector() (ast.Selector, bool) {
	line := p.line()
	n := scanSelector(p.rest())
	if n == 0 {
		return ast.Selector{}, false
	}
	text := p.rest()[:n]
	p.advance(n)
	p.whitespace()
	return ast.Selector{Text: compressSelector(strings.TrimSpace(text)), Line: line}, true
}

// selectorStop lists the bytes that end a plain selector run
const selectorStop = "[]@$/\\%<>,;{}'\""

// scanSelector returns the length of the selector at the start of s.
// A selector is a sequence of atoms, each optionally preceded by ">": plain
// text, a bracketed attribute test or a <$var> placeholder. One trailing ">"
// is allowed, ">>" is not.
func scanSelector(s string) int {
	i := 0
	for {
		j := i
		if j < len(s) && s[j] == '>' {
			j++
		}
		n := scanAtom(s[j:])
		if n == 0 {
			break
		}
		i = j + n
	}
	if i == 0 {
		return 0
	}
	k := i
	for k < len(s) && s[k] == '>' {
		k++
	}
	if k-i == 1 && s[i-1] != '>' {
		return k
	}
	return i
}

func scanAtom(s string) int {
	if s == "" {
		return 0
	}
	n := 0
	for n < len(s) && strings.IndexByte(selectorStop, s[n]) < 0 {
		n++
	}
	if n > 0 {
		return n
	}
	switch s[0] {
	case '[':
		end := strings.IndexByte(s[1:], ']')
		if end > 0 {
			return end + 2
		}
	case '<':
		return scanPlaceholder(s)
	}
	return 0
}

// scanPlaceholder returns the length of a <$name> placeholder at the start of s
func scanPlaceholder(s string) int {
	if !strings.HasPrefix(s, "<$") {
		return 0
	}
	loc := reName.FindStringIndex(s[2:])
	if loc == nil {
		return 0
	}
	end := 2 + loc[1]
	if end < len(s) && s[end] == '>' {
		return end + 1
	}
	return 0
}

func isCombinator(b byte) bool {
	return b == '+' || b == '>' || b == '~'
}

// compressSelector collapses whitespace runs to one space and removes
// whitespace around the combinators + > ~. Attribute tests are kept verbatim.
func compressSelector(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '[':
			if end := strings.IndexByte(s[i+1:], ']'); end > 0 {
				b.WriteString(s[i : i+end+2])
				i += end + 2
				continue
			}
			b.WriteByte(c)
			i++
		case isSpace(c) || isCombinator(c):
			j := i
			for j < len(s) && isSpace(s[j]) {
				j++
			}
			switch {
			case j < len(s) && isCombinator(s[j]):
				b.WriteByte(s[j])
				j++
				for j < len(s) && isSpace(s[j]) {
					j++
				}
			case j > i:
				b.WriteByte(' ')
			}
			i = j
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}
