package analyzer_test

import (
	"os"
	"path/filepath"
	"testing"

	"bennypowers.dev/ivory/internal/analyzer"
	"bennypowers.dev/ivory/internal/ast"
	"bennypowers.dev/ivory/internal/errs"
	"bennypowers.dev/ivory/internal/functions"
	"bennypowers.dev/ivory/internal/generator"
	"bennypowers.dev/ivory/internal/parser"
	"bennypowers.dev/ivory/internal/sheet"
	"bennypowers.dev/ivory/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reduce(t *testing.T, source string, opts analyzer.Options) ([]sheet.Entry, error) {
	t.Helper()
	tree, err := parser.Parse(source)
	require.NoError(t, err)
	if opts.Functions == nil {
		opts.Functions = functions.NewRegistry()
	}
	return analyzer.New(opts).Analyze(tree)
}

func compile(t *testing.T, source string, opts analyzer.Options) string {
	t.Helper()
	entries, err := reduce(t, source, opts)
	require.NoError(t, err)
	css, err := generator.Generate(entries, "")
	require.NoError(t, err)
	return css
}

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "nested rule",
			source: "a { color: red; b { x: 1px; } }",
			want:   "a {\ncolor: red;\n}\na b {\nx: 1px;\n}\n",
		},
		{
			name:   "self reference",
			source: "a { &:hover { x: 1px; } }",
			want:   "a:hover {\nx: 1px;\n}\n",
		},
		{
			name:   "child combinator",
			source: "ul { > li { x: 1px; } }",
			want:   "ul>li {\nx: 1px;\n}\n",
		},
		{
			name:   "selector product",
			source: "a, b { c, d { x: 1px; } }",
			want:   "a c,\na d,\nb c,\nb d {\nx: 1px;\n}\n",
		},
		{
			name:   "prefixes",
			source: "a { .p >> .q { x: 1px; } }",
			want:   ".p a .q {\nx: 1px;\n}\n",
		},
		{
			name:   "numbered self references",
			source: "a, b { &1 .x { w: 1px; } &2 .y { w: 2px; } }",
			want:   "a .x {\nw: 1px;\n}\nb .y {\nw: 2px;\n}\n",
		},
		{
			name:   "same selectors share a rule",
			source: "a { color: red; } a { color: blue; }",
			want:   "a {\ncolor: red;\ncolor: blue;\n}\n",
		},
		{
			name:   "arithmetic",
			source: "$w: 10px; a { width: $w * 2; height: $w + 5; }",
			want:   "a {\nwidth: 20px;\nheight: 15px;\n}\n",
		},
		{
			name:   "assignment updates the outer binding",
			source: "$c: red; a { $c: blue; color: $c; } b { color: $c; }",
			want:   "a {\ncolor: blue;\n}\nb {\ncolor: blue;\n}\n",
		},
		{
			name:   "mixin with default",
			source: "@box($w, $h: 10px) { width: $w; height: $h; } a { @box: 1px; }",
			want:   "a {\nwidth: 1px;\nheight: 10px;\n}\n",
		},
		{
			name:   "mixin comma arguments",
			source: "@box($w, $h) { width: $w; height: $h; n: $_argc; } a { @box: 1px, 2px; }",
			want:   "a {\nwidth: 1px;\nheight: 2px;\nn: 2;\n}\n",
		},
		{
			name:   "mixin space list spreads",
			source: "@box($w, $h) { width: $w; height: $h; } a { @box: 1px 2px; }",
			want:   "a {\nwidth: 1px;\nheight: 2px;\n}\n",
		},
		{
			name:   "missing argument is false",
			source: "@m($a) { if ($a) { x: 1; } else { x: 2; } } a { @m; }",
			want:   "a {\nx: 2;\n}\n",
		},
		{
			name:   "default refers to earlier parameter",
			source: "@m($a, $b: $a * 2) { x: $b; } a { @m: 3px; }",
			want:   "a {\nx: 6px;\n}\n",
		},
		{
			name:   "if",
			source: "if (1 > 0) { .a { x: 1; } } elseif (1<0) { .b { x: 2; } } else { .c { x: 3; } }",
			want:   ".a {\nx: 1;\n}\n",
		},
		{
			name:   "else",
			source: "if (1 < 0) { .a { x: 1; } } elseif (1<0) { .b { x: 2; } } else { .c { x: 3; } }",
			want:   ".c {\nx: 3;\n}\n",
		},
		{
			name:   "elseif",
			source: "$x: 2; a { if ($x = 1) { y: 1; } elseif ($x = 2) { y: 2; } else { y: 3; } }",
			want:   "a {\ny: 2;\n}\n",
		},
		{
			name:   "for",
			source: "@for $i: 1..3 { .item-<$i> { width: <$i>px; } }",
			want:   ".item-1 {\nwidth: 1px;\n}\n.item-2 {\nwidth: 2px;\n}\n.item-3 {\nwidth: 3px;\n}\n",
		},
		{
			name:   "for counting down",
			source: "for ($i: 2..1) { .c<$i> { n: $i; } }",
			want:   ".c2 {\nn: 2;\n}\n.c1 {\nn: 1;\n}\n",
		},
		{
			name:   "while",
			source: "$i: 0; while ($i < 3) { $i: $i + 1; } a { n: $i; }",
			want:   "a {\nn: 3;\n}\n",
		},
		{
			name:   "foreach",
			source: "$m: [10px, 20px]; foreach ($m as $k, $v) { .c<$k> { w: $v; } }",
			want:   ".c0 {\nw: 10px;\n}\n.c1 {\nw: 20px;\n}\n",
		},
		{
			name:   "map update",
			source: "$m: [a: 1, b: 2]; $m[a]: 5; a { x: $m[a]; y: $m[b]; }",
			want:   "a {\nx: 5;\ny: 2;\n}\n",
		},
		{
			name:   "map update copies",
			source: "$m: [1px]; $n: $m; $m[0]: 2px; a { x: $n[0]; y: $m[0]; }",
			want:   "a {\nx: 1px;\ny: 2px;\n}\n",
		},
		{
			name:   "media",
			source: "@media 'print' { a { x: 1px; } }",
			want:   "@media print {\na {\nx: 1px;\n}\n}\n",
		},
		{
			name:   "font-face",
			source: "@font-face { font-family: 'x'; }",
			want:   "@font-face {\nfont-family: 'x';\n}\n",
		},
		{
			name:   "functions",
			source: "a { c: iergba(#ff0000); d: calc(1px); }",
			want:   "a {\nc: #ff0000;\nd: calc(1px);\n}\n",
		},
		{
			name:   "directives",
			source: "@charset 'utf-8'; @import 'a.css' 'screen';",
			want:   "@charset 'utf-8';\n@import 'a.css' screen;\n",
		},
		{
			name:   "string concatenation",
			source: "$p: 'img/'; a { %background: 'url(' . $p . 'x.png)'; }",
			want:   "a {\nbackground: url(img/x.png);\n}\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, compile(t, tt.source, analyzer.Options{}))
		})
	}
}

func TestAnalyzeVariables(t *testing.T) {
	css := compile(t, "a { x: $size; }", analyzer.Options{
		Variables: map[string]value.Value{"size": value.Unit{Number: 4, Unit: "em"}},
	})
	assert.Equal(t, "a {\nx: 4em;\n}\n", css)
}

func TestAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		kind     error
		line     int
		contains string
	}{
		{"undefined mixin", "a {\n  @missing;\n}", errs.ErrUndefined, 2, "missing"},
		{"undefined variable", "a {\n  x: $nope;\n}", errs.ErrUndefined, 2, "$nope"},
		{"local variable out of scope", "a { $n: 1; }\nb {\n  x: $n;\n}", errs.ErrUndefined, 3, "$n"},
		{"undefined map key", "$m: [a: 1, b: 2];\na { x: $m[c]; }", errs.ErrUndefined, 2, "c"},
		{"property at top level of mixin call", "@m($a) { x: 1; }\n@m;", errs.ErrSemantic, 1, "x"},
		{"property directly in media", "@media 'print' {\n  if (1) { x: 1; }\n}", errs.ErrSemantic, 2, "x"},
		{"include in rule", "a {\n  @include 'x.iss';\n}", errs.ErrSemantic, 2, "@include"},
		{"duplicate mixin", "@m($a) { }\n@m($b) { }", errs.ErrSemantic, 2, "already defined"},
		{"type error", "a {\n  x: 1px + 1em;\n}", errs.ErrType, 2, "incompatible units"},
		{"division by zero", "a { x: 1 / 0; }", errs.ErrType, 1, "division by zero"},
		{"for bound", "for ($i: 'a'..2) {\n}", errs.ErrType, 1, "not an integer"},
		{"unprintable value", "a {\n  x: true;\n}", errs.ErrType, 2, "cannot be printed"},
		{"unprintable list item", "$m: [a: 1];\na {\n  x: 1px $m;\n}", errs.ErrType, 3, "map"},
		{"foreach needs a map", "$m: 1;\nforeach ($m as $v) {\n}", errs.ErrType, 2, "map"},
		{"condition type", "if ('a') {\n}", errs.ErrType, 1, ""},
		{"missing include", "@include 'nothing.iss';", errs.ErrIO, 1, "nothing.iss"},
		{"runaway while", "while (1) {\n}", errs.ErrRecursion, 1, "while"},
		{"runaway mixin", "@m($a) { @m: $a; }\na {\n  @m: 1;\n}", errs.ErrRecursion, 1, "depth"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reduce(t, tt.source, analyzer.Options{MaxIterations: 50, MaxDepth: 32})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
			assert.Contains(t, err.Error(), tt.contains)

			var e *errs.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.line, e.Line)
		})
	}
}

func TestReduceIdempotent(t *testing.T) {
	a := analyzer.New(analyzer.Options{})
	_, err := a.Analyze(&ast.Main{})
	require.NoError(t, err)

	m := value.NewOrderedMap()
	m.Set(value.StringKeyOf(value.Encode("k")), value.Unit{Number: 1})
	for _, v := range []value.Value{
		value.Unit{Number: 1.5, Unit: "em"},
		value.Bool{V: true},
		value.NewString("s"),
		value.Raw{Text: "r"},
		value.Keyword{Text: "auto"},
		value.Color{R: 1, G: 2, B: 3, A: 1},
		value.List{Items: []value.Value{value.Unit{Number: 1}, value.Keyword{Text: "a"}}},
		value.Args{Items: []value.Value{value.Unit{Number: 1}, value.Unit{Number: 2}}},
		value.Map{M: m},
	} {
		got, err := a.Reduce(v)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestCombine(t *testing.T) {
	tests := []struct {
		name          string
		parent, child []string
		group         int
		want          []string
	}{
		{"both empty", nil, nil, 0, nil},
		{"empty parent", nil, []string{"a", "b"}, 0, []string{"a", "b"}},
		{"empty child", []string{"a", "b"}, nil, 0, []string{"a", "b"}},
		{"product", []string{"a", "b"}, []string{"c", "d"}, 0, []string{"a c", "a d", "b c", "b d"}},
		{"combinators", []string{"a+", "b"}, []string{"c", "~d"}, 0, []string{"a+c", "a+~d", "b c", "b~d"}},
		{"self", []string{"a"}, []string{"&.x", "&"}, 0, []string{"a.x", "a"}},
		{"group zero matches every parent", []string{"a", "b"}, []string{"&1.x"}, 0, []string{"a.x", "b.x"}},
		{"group", []string{"a", "b", "c", "d"}, []string{"&2.x"}, 2, []string{"b.x", "d.x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, analyzer.Combine(tt.parent, tt.child, tt.group))
		})
	}
}

func write(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestInclude(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "vars.iss", "$brand: #336699;\n@button($c) { color: $c; }\n")
	write(t, dir, "reset.css", "html{margin:0}\n")
	write(t, dir, "print.iss", "a { x: 1px; }\n")

	t.Run("stylesheet and css", func(t *testing.T) {
		entries, err := reduce(t, "@include 'reset.css';\n@include 'vars.iss';\n.b { @button: $brand; }\n", analyzer.Options{IncludePaths: []string{dir}})
		require.NoError(t, err)
		css, err := generator.Generate(entries, "")
		require.NoError(t, err)
		assert.Equal(t, "html{margin:0}\n.b {\ncolor: #336699;\n}\n", css)
	})

	t.Run("media argument", func(t *testing.T) {
		css := compile(t, "@include 'print.iss' 'print';", analyzer.Options{IncludePaths: []string{dir}})
		assert.Equal(t, "@media print {\na {\nx: 1px;\n}\n}\n", css)
	})

	t.Run("first include path wins", func(t *testing.T) {
		other := t.TempDir()
		write(t, other, "print.iss", "b { y: 2px; }\n")
		css := compile(t, "@include 'print.iss';", analyzer.Options{IncludePaths: []string{other, dir}})
		assert.Equal(t, "b {\ny: 2px;\n}\n", css)
	})

	t.Run("dependencies", func(t *testing.T) {
		tree, err := parser.Parse("@include 'vars.iss';\n@include 'reset.css';")
		require.NoError(t, err)
		a := analyzer.New(analyzer.Options{IncludePaths: []string{dir}})
		_, err = a.Analyze(tree)
		require.NoError(t, err)
		deps := a.Dependencies()
		require.Len(t, deps, 2)
		assert.Equal(t, "vars.iss", filepath.Base(deps[0]))
		assert.Equal(t, "reset.css", filepath.Base(deps[1]))
	})

	t.Run("errors carry the included file", func(t *testing.T) {
		write(t, dir, "broken.iss", "a {\n  x: $missing;\n}\n")
		_, err := reduce(t, "@include 'broken.iss';", analyzer.Options{IncludePaths: []string{dir}})
		var e *errs.Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, "broken.iss", filepath.Base(e.File))
		assert.Equal(t, 2, e.Line)
	})

	t.Run("mixin errors carry the defining file", func(t *testing.T) {
		write(t, dir, "mixin.iss", "@bad($a) {\n  x: $a + 1em;\n}\n")
		_, err := reduce(t, "@include 'mixin.iss';\na { @bad: 1px; }", analyzer.Options{IncludePaths: []string{dir}})
		var e *errs.Error
		require.ErrorAs(t, err, &e)
		assert.ErrorIs(t, err, errs.ErrType)
		assert.Equal(t, "mixin.iss", filepath.Base(e.File))
		assert.Equal(t, 2, e.Line)
	})

	t.Run("self inclusion", func(t *testing.T) {
		write(t, dir, "loop.iss", "@include 'loop2.iss';\n")
		write(t, dir, "loop2.iss", "@include 'loop.iss';\n")
		_, err := reduce(t, "@include 'loop.iss';", analyzer.Options{IncludePaths: []string{dir}})
		assert.ErrorIs(t, err, errs.ErrRecursion)
		assert.Contains(t, err.Error(), "recursive inclusion")
	})
}
