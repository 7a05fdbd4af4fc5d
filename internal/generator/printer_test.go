package generator_test

import (
	"testing"

	"bennypowers.dev/ivory/internal/ast"
	"bennypowers.dev/ivory/internal/errs"
	"bennypowers.dev/ivory/internal/generator"
	"bennypowers.dev/ivory/internal/sheet"
	"bennypowers.dev/ivory/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rule(selectors []string, props ...sheet.Property) *sheet.Rule {
	r := &sheet.Rule{Selectors: selectors}
	r.Properties = props
	return r
}

func prop(name string, v value.Value) sheet.Property {
	return sheet.Property{Name: name, Value: v}
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name    string
		entries []sheet.Entry
		want    string
	}{
		{
			name:    "rule",
			entries: []sheet.Entry{rule([]string{"a", "b c"}, prop("color", value.Keyword{Text: "red"}))},
			want:    "a,\nb c {\ncolor: red;\n}\n",
		},
		{
			name:    "empty rule is dropped",
			entries: []sheet.Entry{rule([]string{"a"}), &sheet.Raw{Text: "x{}"}},
			want:    "x{}",
		},
		{
			name: "prefixes",
			entries: []sheet.Entry{rule([]string{"a"},
				sheet.Property{Prefix: ast.PrefixImportant, Name: "color", Value: value.Keyword{Text: "red"}},
				sheet.Property{Prefix: ast.PrefixRaw, Name: "filter", Value: value.NewString("progid:x")},
			)},
			want: "a {\ncolor: red !important;\nfilter: progid:x;\n}\n",
		},
		{
			name: "media",
			entries: []sheet.Entry{&sheet.Media{Query: "print", Entries: []sheet.Entry{
				rule([]string{"a"}, prop("x", value.Unit{Number: 1, Unit: "px"})),
			}}},
			want: "@media print {\na {\nx: 1px;\n}\n}\n",
		},
		{
			name: "directives",
			entries: []sheet.Entry{
				&sheet.Charset{Name: value.NewString("utf-8")},
				&sheet.Import{Path: value.NewString("a.css"), Media: "screen"},
			},
			want: "@charset 'utf-8';\n@import 'a.css' screen;\n",
		},
		{
			name: "font-face",
			entries: []sheet.Entry{&sheet.FontFace{Declarations: sheet.Declarations{Properties: []sheet.Property{
				prop("font-family", value.NewString("x")),
			}}}},
			want: "@font-face {\nfont-family: 'x';\n}\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := generator.Generate(tt.entries, "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValue(t *testing.T) {
	p := &generator.Printer{DefaultUnit: "px"}
	tests := []struct {
		name string
		in   value.Value
		want string
	}{
		{"default unit", value.Unit{Number: 2}, "2px"},
		{"zero has no unit", value.Unit{Number: 0, Unit: "em"}, "0"},
		{"fraction", value.Unit{Number: 0.25, Unit: "em"}, ".25em"},
		{"index unit", value.Unit{Number: 3, Unit: "#"}, "3"},
		{"opaque color", value.Color{R: 255, G: 0, B: 16, A: 1}, "#ff0010"},
		{"translucent color", value.Color{R: 1, G: 2, B: 3, A: 0.5}, "rgba(1,2,3,0.5)"},
		{"function", value.Function{Name: "f", Args: []value.Value{value.Unit{Number: 1}, value.Keyword{Text: "a"}}}, "f(1px,a)"},
		{"args", value.Args{Items: []value.Value{value.Keyword{Text: "a"}, value.Keyword{Text: "b"}}}, "a, b"},
		{"list", value.List{Items: []value.Value{value.Keyword{Text: "a"}, value.Unit{Number: 1}}}, "a 1px"},
		{"string", value.NewString("x"), "'x'"},
		{"raw", value.Raw{Text: "#fff"}, "#fff"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Value(tt.in, true)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	got, err := p.Value(value.Unit{Number: 2}, false)
	require.NoError(t, err)
	assert.Equal(t, "2", got)

	_, err = p.Value(value.Bool{V: true}, true)
	assert.ErrorIs(t, err, errs.ErrType)
}
