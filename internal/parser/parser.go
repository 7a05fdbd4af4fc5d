// Package parser turns stylesheet source into an ast block tree.
//
// The grammar is matched by a backtracking recursive descent parser. At every
// position the grammar pieces are tried in a fixed priority order and the
// first one that matches wins; a piece that fails restores the cursor.
package parser

import (
	"bennypowers.dev/ivory/internal/ast"
	"bennypowers.dev/ivory/internal/errs"
	"bennypowers.dev/ivory/internal/value"
)

// statement keywords cannot name a mixin, so "@if ($x) {" stays a statement
var reserved = map[string]bool{
	"if": true, "elseif": true, "else": true,
	"while": true, "for": true, "foreach": true,
}

type parser struct {
	cursor
	stack  blockStack
	pieces []func() bool
	// err is a fatal error raised by a piece
	err error
}

// Parse parses source into a Main block
func Parse(source string) (*ast.Main, error) {
	p := &parser{cursor: newCursor(StripComments(source))}
	p.pieces = []func() bool{
		p.atInclude,
		p.atFontFace,
		p.atMedia,
		p.atImport,
		p.atCharset,
		p.property,
		p.assign,
		p.mapAccess,
		p.mixinCallSimple,
		p.mixinCall,
		p.mixinBegin,
		p.ruleBegin,
		p.blockEnd,
	}
	main := &ast.Main{}
	p.stack.push(main)
	p.whitespace()

	for p.next() {
	}
	if p.err != nil {
		return nil, p.err
	}
	if !p.eof() {
		return nil, errs.Parse(p.lineAt(p.maxOffset), "parse error")
	}
	if _, ok := p.stack.top().(*ast.Main); !ok {
		return nil, errs.Parse(p.lineAt(p.maxOffset), "unclosed block")
	}
	return main, nil
}

// ParseValue parses the text of a single property value, such as "1px solid
// #000" or "a, b". The result is not reduced.
func ParseValue(text string) (value.Value, error) {
	p := &parser{cursor: newCursor(StripComments(text))}
	p.whitespace()
	v, ok := p.commaList()
	if !ok || !p.eof() {
		return nil, errs.Parse(p.lineAt(p.maxOffset), "invalid value '%s'", text)
	}
	if args, ok := v.(value.Args); ok && len(args.Items) == 1 {
		return args.Items[0], nil
	}
	return v, nil
}

// next applies the first matching piece at the current offset
func (p *parser) next() bool {
	x := p.offset
	for _, piece := range p.pieces {
		if piece() {
			return true
		}
		if p.err != nil {
			return false
		}
		p.seek(x)
	}
	return false
}

func (p *parser) fatal(err error) {
	if p.err == nil {
		p.err = err
	}
}

func (p *parser) current() ast.Block {
	return p.stack.top()
}

func (p *parser) add(n ast.Node) {
	b := p.current().Body()
	*b = append(*b, n)
}

func (p *parser) open(b ast.Block) {
	p.add(b)
	p.stack.push(b)
}

func (p *parser) inMain() bool {
	_, ok := p.current().(*ast.Main)
	return ok
}

func (p *parser) inMixin() bool {
	_, ok := p.current().(*ast.Mixin)
	return ok
}

func (p *parser) inMedia() bool {
	_, ok := p.current().(*ast.Media)
	return ok
}

func (p *parser) inFontFace() bool {
	_, ok := p.current().(*ast.FontFace)
	return ok
}

func (p *parser) inNestedRule() bool {
	_, ok := p.current().(*ast.NestedRule)
	return ok
}

func (p *parser) end() bool {
	return p.lit(";")
}

// directive parses "@name expr [[,] media];" for @include and @import
func (p *parser) directive(name string) bool {
	x := p.offset
	if !p.lit("@" + name) {
		return false
	}
	path, ok := p.expression()
	if !ok {
		return false
	}
	var media value.Value
	if p.lit(",") {
		if media, ok = p.expression(); !ok {
			return false
		}
	} else {
		media, _ = p.expression()
	}
	if !p.end() {
		return false
	}
	p.add(&ast.Declaration{Prefix: ast.PrefixSpecial, Name: name, Value: path, Media: media, Line: p.lineAt(x)})
	return true
}

func (p *parser) atInclude() bool {
	if !p.inMain() && !p.inMixin() && !p.inNestedRule() {
		return false
	}
	return p.directive("include")
}

func (p *parser) atImport() bool {
	if !p.inMain() && !p.inMixin() {
		return false
	}
	return p.directive("import")
}

func (p *parser) atCharset() bool {
	x := p.offset
	if !p.inMain() || !p.lit("@charset") {
		return false
	}
	charset, ok := p.expression()
	if !ok || !p.end() {
		return false
	}
	p.add(&ast.Declaration{Prefix: ast.PrefixSpecial, Name: "charset", Value: charset, Line: p.lineAt(x)})
	return true
}

func (p *parser) atMedia() bool {
	x := p.offset
	if !p.inMain() && !p.inMixin() || !p.lit("@media") {
		return false
	}
	query, ok := p.expression()
	if !ok || !p.lit("{") {
		return false
	}
	p.open(&ast.Media{Query: query, Line: p.lineAt(x)})
	return true
}

func (p *parser) atFontFace() bool {
	x := p.offset
	if !p.inMain() && !p.inMedia() && !p.inMixin() {
		return false
	}
	if !p.lit("@font-face") || !p.lit("{") {
		return false
	}
	p.open(&ast.FontFace{Line: p.lineAt(x)})
	return true
}

func (p *parser) mixinCallSimple() bool {
	x := p.offset
	if !p.lit("@") {
		return false
	}
	name, ok := p.name()
	if !ok || !p.end() {
		return false
	}
	p.add(&ast.Declaration{Prefix: ast.PrefixMixin, Name: name, Value: value.List{}, Line: p.lineAt(x)})
	return true
}

func (p *parser) mixinCall() bool {
	x := p.offset
	if !p.lit("@") {
		return false
	}
	name, ok := p.name()
	if !ok || !p.lit(":") {
		return false
	}
	args, ok := p.commaList()
	if !ok || !p.end() {
		return false
	}
	p.add(&ast.Declaration{Prefix: ast.PrefixMixin, Name: name, Value: args, Line: p.lineAt(x)})
	return true
}

func (p *parser) property() bool {
	x := p.offset
	if p.inMain() {
		return false
	}
	prefix := ast.PrefixNone
	switch {
	case p.litRaw(string(ast.PrefixImportant)):
		prefix = ast.PrefixImportant
	case p.litRaw(string(ast.PrefixRaw)):
		prefix = ast.PrefixRaw
	}
	name, ok := p.name()
	if !ok || !p.lit(":") {
		return false
	}
	v, ok := p.commaList()
	if !ok || !p.end() {
		return false
	}
	p.add(&ast.Declaration{Prefix: prefix, Name: name, Value: v, Line: p.lineAt(x)})
	return true
}

func (p *parser) assign() bool {
	x := p.offset
	if !p.lit(string(ast.PrefixVariable)) {
		return false
	}
	name, ok := p.name()
	if !ok || !p.lit(":") {
		return false
	}
	v, ok := p.commaList()
	if !ok || !p.end() {
		return false
	}
	p.add(&ast.Declaration{Prefix: ast.PrefixVariable, Name: name, Value: v, Line: p.lineAt(x)})
	return true
}

func (p *parser) mapAccess() bool {
	x := p.offset
	if !p.lit(string(ast.PrefixVariable)) {
		return false
	}
	name, ok := p.name()
	if !ok {
		return false
	}
	index, ok := p.index()
	if !ok || !p.lit(":") {
		return false
	}
	v, ok := p.spaceList()
	if !ok || !p.end() {
		return false
	}
	p.add(&ast.Declaration{Prefix: ast.PrefixVariable, Name: name, Value: v, Index: index, Line: p.lineAt(x)})
	return true
}

func (p *parser) mixinBegin() bool {
	x := p.offset
	if !p.inMain() || !p.lit("@") {
		return false
	}
	name, ok := p.name()
	if !ok || reserved[name] || !p.lit("(") {
		return false
	}
	params, ok := p.params()
	if !ok || !p.lit(")") || !p.lit("{") {
		return false
	}
	p.open(&ast.Mixin{Name: name, Params: params, Line: p.lineAt(x)})
	return true
}

// params parses a mixin parameter list: $name[: default], ...
func (p *parser) params() ([]ast.Param, bool) {
	x := p.offset
	var params []ast.Param
	seen := make(map[string]bool)
	for {
		line := p.line()
		param, ok := p.param()
		if !ok {
			if len(params) == 0 {
				return nil, true
			}
			p.seek(x)
			return nil, false
		}
		if seen[param.Name] {
			p.fatal(errs.Parse(line, "duplicate parameter '%s'", param.Name))
			return nil, false
		}
		seen[param.Name] = true
		param.Line = line
		params = append(params, param)
		if !p.lit(",") {
			return params, true
		}
	}
}

func (p *parser) param() (ast.Param, bool) {
	v, ok := p.variable(false)
	if !ok {
		return ast.Param{}, false
	}
	param := ast.Param{Name: v.Name}
	x := p.offset
	if p.lit(":") {
		if def, ok := p.element(); ok {
			param.Default = def
			return param, true
		}
	}
	p.seek(x)
	return param, true
}

func (p *parser) ruleBegin() bool {
	if p.inFontFace() {
		return false
	}
	stmt, prefixes, selectors, ok := p.extendedSelectors()
	if !ok || !p.lit("{") {
		return false
	}
	if stmt != nil && (stmt.Kind == ast.ElseIf || stmt.Kind == ast.Else) {
		stmt.Condition = p.findCondition()
	}
	p.open(&ast.NestedRule{Selectors: selectors, Prefixes: prefixes, Statement: stmt})
	return true
}

func (p *parser) blockEnd() bool {
	if p.inMain() || !p.lit("}") {
		return false
	}
	p.stack.pop()
	return true
}

// findCondition returns the last nested rule of the current block when it
// carries an if or elseif statement
func (p *parser) findCondition() *ast.NestedRule {
	nodes := *p.current().Body()
	for i := len(nodes) - 1; i >= 0; i-- {
		if r, ok := nodes[i].(*ast.NestedRule); ok {
			if r.Statement.Chains() {
				return r
			}
			return nil
		}
	}
	return nil
}
