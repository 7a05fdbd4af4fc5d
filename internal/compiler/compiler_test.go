package compiler_test

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bennypowers.dev/ivory/internal/compiler"
	"bennypowers.dev/ivory/internal/errs"
	"bennypowers.dev/ivory/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var update = flag.Bool("update", false, "update golden files")

func TestCompileFileGolden(t *testing.T) {
	fixtures, err := filepath.Glob("testdata/golden/*.iss")
	require.NoError(t, err)
	require.NotEmpty(t, fixtures)

	for _, fixture := range fixtures {
		name := strings.TrimSuffix(filepath.Base(fixture), ".iss")
		t.Run(name, func(t *testing.T) {
			c := compiler.New()
			got, err := c.CompileFile(fixture)
			require.NoError(t, err)

			golden := strings.TrimSuffix(fixture, ".iss") + ".css"
			if *update {
				require.NoError(t, os.WriteFile(golden, []byte(got), 0o644))
				return
			}
			want, err := os.ReadFile(golden)
			require.NoError(t, err)
			assert.Equal(t, string(want), got)
		})
	}
}

func TestCompileString(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "for loop",
			source: "@for $i: 1..3 { .item-<$i> { width: <$i>px; } }",
			want:   ".item-1 {\nwidth: 1px;\n}\n.item-2 {\nwidth: 2px;\n}\n.item-3 {\nwidth: 3px;\n}\n",
		},
		{
			name:   "memoized rule",
			source: "a { color: red; } a { color: blue; }",
			want:   "a {\ncolor: red;\ncolor: blue;\n}\n",
		},
		{
			name:   "modulo",
			source: "a { x: 5 % 2; }",
			want:   "a {\nx: 1;\n}\n",
		},
		{
			name:   "empty source",
			source: "",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := compiler.New().CompileString(tt.source)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultUnit(t *testing.T) {
	c := compiler.New()
	require.NoError(t, c.SetDefaultUnit("px"))
	assert.Equal(t, "px", c.DefaultUnit())

	got, err := c.CompileString("a { width: 10; height: 0; }")
	require.NoError(t, err)
	assert.Equal(t, "a {\nwidth: 10px;\nheight: 0;\n}\n", got)

	for _, unit := range []string{"#", "furlong"} {
		err := c.SetDefaultUnit(unit)
		require.Error(t, err, unit)
		assert.ErrorIs(t, err, compiler.ErrInvalid)
	}
	assert.Equal(t, "px", c.DefaultUnit())
}

func TestAddVariable(t *testing.T) {
	c := compiler.New()
	require.NoError(t, c.AddVariable("width", 10))
	require.NoError(t, c.AddVariable("ratio", 0.5))
	require.NoError(t, c.AddVariable("wide", true))
	require.NoError(t, c.AddVariable("font", "Open Sans"))
	require.NoError(t, c.AddVariable("sizes", []any{1, 2}))
	require.NoError(t, c.AddVariable("theme", map[string]any{"fg": "black", "gap": 3}))
	require.NoError(t, c.AddVariable("fit", value.Keyword{Text: "auto"}))

	got, err := c.CompileString(`a {
		w: $width;
		r: $ratio;
		f: $font;
		s: $sizes[1];
		g: $theme[gap];
		p: $fit;
		if ($wide) { x: 1; }
	}`)
	require.NoError(t, err)
	assert.Equal(t, "a {\nw: 10;\nr: .5;\nf: 'Open Sans';\ns: 2;\ng: 3;\np: auto;\nx: 1;\n}\n", got)
}

func TestAddVariableErrors(t *testing.T) {
	c := compiler.New()
	tests := []struct {
		name  string
		vname string
		value any
	}{
		{"bad name", "a b", 1},
		{"trailing dash", "a-", 1},
		{"double dash", "a--b", 1},
		{"leading double dash", "--a", 1},
		{"empty name", "", 1},
		{"nil value", "x", nil},
		{"unsupported type", "x", struct{}{}},
		{"nested unsupported type", "x", []any{1, make(chan int)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.AddVariable(tt.vname, tt.value)
			require.Error(t, err)
			assert.ErrorIs(t, err, compiler.ErrInvalid)
		})
	}
}

func TestConvert(t *testing.T) {
	v, err := compiler.Convert(map[string]any{"b": 1, "a": []any{"x"}})
	require.NoError(t, err)

	m, ok := v.(value.Map)
	require.True(t, ok)
	entries := m.M.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Key.String())
	assert.Equal(t, "b", entries[1].Key.String())
	assert.Equal(t, value.Unit{Number: 1}, entries[1].Value)

	inner, ok := entries[0].Value.(value.Map)
	require.True(t, ok)
	assert.Equal(t, value.NewString("x"), inner.M.Entries()[0].Value)
}

func TestAddFunction(t *testing.T) {
	c := compiler.New()
	double := func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return value.Function{Name: "double", Args: args}, nil
		}
		u, ok := args[0].(value.Unit)
		if !ok {
			return value.Function{Name: "double", Args: args}, nil
		}
		return value.Unit{Number: u.Number * 2, Unit: u.Unit}, nil
	}
	require.NoError(t, c.AddFunction("double", double))
	assert.Contains(t, c.Functions(), "double")
	assert.Contains(t, c.Functions(), "iergba")

	got, err := c.CompileString("a { w: double(3px); }")
	require.NoError(t, err)
	assert.Equal(t, "a {\nw: 6px;\n}\n", got)

	assert.ErrorIs(t, c.AddFunction("no good", double), compiler.ErrInvalid)
	assert.ErrorIs(t, c.AddFunction("nothing", nil), compiler.ErrInvalid)
}

func TestIncludePaths(t *testing.T) {
	dir := t.TempDir()
	other := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(other, "lib.iss"), []byte("$c: red;"), 0o644))

	c := compiler.New()
	require.NoError(t, c.AddIncludePath(dir))
	require.NoError(t, c.AddIncludePath(other))
	require.NoError(t, c.AddIncludePath(dir))
	assert.Len(t, c.IncludePaths(), 2)

	got, err := c.CompileString("@include 'lib.iss'; a { color: $c; }")
	require.NoError(t, err)
	assert.Equal(t, "a {\ncolor: red;\n}\n", got)

	deps := c.Dependencies()
	require.Len(t, deps, 1)
	assert.Equal(t, "lib.iss", filepath.Base(deps[0]))
}

func TestCompileFileOutputDirectory(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	input := filepath.Join(src, "site.iss")
	require.NoError(t, os.WriteFile(input, []byte("a { x: 1px; }"), 0o644))

	c := compiler.New()
	c.OutputDirectory = out
	got, err := c.CompileFile(input)
	require.NoError(t, err)

	written, err := os.ReadFile(filepath.Join(out, "site.css"))
	require.NoError(t, err)
	assert.Equal(t, got, string(written))
	assert.Len(t, c.Dependencies(), 1)

	c.OutputDirectory = filepath.Join(out, "missing", "dir")
	_, err = c.CompileFile(input)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrIO)
}

func TestCompileFileErrors(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "bad.iss")
	require.NoError(t, os.WriteFile(input, []byte("a {\n  x: $nope;\n}\n"), 0o644))

	_, err := compiler.New().CompileFile(input)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrUndefined)

	var e *errs.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, 2, e.Line)
	assert.Equal(t, "bad.iss", filepath.Base(e.File))

	_, err = compiler.New().CompileFile(filepath.Join(dir, "absent.iss"))
	assert.ErrorIs(t, err, errs.ErrIO)
}

func TestCompileDocument(t *testing.T) {
	content, err := os.ReadFile("testdata/embedded/page.html")
	require.NoError(t, err)

	got, err := compiler.New().CompileDocument(string(content), "html")
	require.NoError(t, err)
	assert.Equal(t, ".a {\nwidth: 4px;\n}\n", got)

	js := "const a = 1;\nexport default iss`.b { w: 1px; }`;\n"
	got, err = compiler.New().CompileDocument(js, "javascript")
	require.NoError(t, err)
	assert.Equal(t, ".b {\nw: 1px;\n}\n", got)

	_, err = compiler.New().CompileDocument("{}", "json")
	assert.ErrorIs(t, err, compiler.ErrInvalid)
}

func TestCompileDocumentErrorLine(t *testing.T) {
	content, err := os.ReadFile("testdata/embedded/broken.html")
	require.NoError(t, err)

	_, err = compiler.New().CompileDocument(string(content), "html")
	require.Error(t, err)

	var e *errs.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, 5, e.Line)
}

func TestCompileFileEmbedded(t *testing.T) {
	out := t.TempDir()
	c := compiler.New()
	c.OutputDirectory = out

	got, err := c.CompileFile("testdata/embedded/page.html")
	require.NoError(t, err)
	assert.Equal(t, ".a {\nwidth: 4px;\n}\n", got)
	assert.FileExists(t, filepath.Join(out, "page.css"))

	_, err = c.CompileFile("testdata/embedded/broken.html")
	var e *errs.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, "testdata/embedded/broken.html", e.File)
}

func TestValidate(t *testing.T) {
	c := compiler.New()
	c.Validate = true

	_, err := c.CompileString("a { color: red; }")
	require.NoError(t, err)
	assert.Empty(t, c.Warnings())

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.css"), []byte("a {\n"), 0o644))
	require.NoError(t, c.AddIncludePath(dir))

	got, err := c.CompileString("@include 'broken.css';")
	require.NoError(t, err)
	assert.Equal(t, "a {\n", got)
	require.NotEmpty(t, c.Warnings())
	assert.Contains(t, []int{1, 2}, c.Warnings()[0].Line)
}

func TestLimits(t *testing.T) {
	c := compiler.New()
	c.MaxIterations = 10
	_, err := c.CompileString("$i: 0; while ($i < 100) { $i: $i + 1; }")
	assert.ErrorIs(t, err, errs.ErrRecursion)

	c = compiler.New()
	c.MaxDepth = 8
	_, err = c.CompileString("@m($a) { @m: $a; } b { @m: 1; }")
	assert.ErrorIs(t, err, errs.ErrRecursion)
}
