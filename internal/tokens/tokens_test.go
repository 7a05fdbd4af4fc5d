package tokens_test

import (
	"testing"

	"bennypowers.dev/ivory/internal/tokens"
	"bennypowers.dev/ivory/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func byName(vars []tokens.Variable) map[string]tokens.Variable {
	m := make(map[string]tokens.Variable, len(vars))
	for _, v := range vars {
		m[v.Name] = v
	}
	return m
}

func TestLoadJSON(t *testing.T) {
	vars, err := tokens.Load(tokens.File{Path: "testdata/tokens.json"})
	require.NoError(t, err)
	m := byName(vars)

	primary, ok := m["color-primary"]
	require.True(t, ok, "color-primary loaded")
	assert.Equal(t, value.Color{R: 0x33, G: 0x66, B: 0x99, A: 1}, primary.Value)
	assert.Equal(t, "color", primary.Type)

	link, ok := m["color-link"]
	require.True(t, ok, "alias loaded")
	assert.Equal(t, primary.Value, link.Value)

	assert.Equal(t, value.Unit{Number: 4, Unit: "px"}, m["space-small"].Value)
	assert.Equal(t, value.List{Items: []value.Value{
		value.Keyword{Text: "Open"},
		value.Keyword{Text: "Sans"},
	}}, m["font-body"].Value)
}

func TestLoadYAMLWithPrefix(t *testing.T) {
	vars, err := tokens.Load(tokens.File{Path: "testdata/tokens.yaml", Prefix: "brand"})
	require.NoError(t, err)
	m := byName(vars)

	require.Contains(t, m, "brand-color-accent")
	assert.Equal(t, value.Color{R: 255, A: 1}, m["brand-color-accent"].Value)
	assert.Equal(t, value.Unit{Number: 2, Unit: "em"}, m["brand-space-large"].Value)
}

func TestLoadErrors(t *testing.T) {
	_, err := tokens.Load(tokens.File{Path: "testdata/tokens.txt"})
	assert.ErrorContains(t, err, "unsupported file type")

	_, err = tokens.Load(tokens.File{Path: "testdata/missing.json"})
	assert.ErrorContains(t, err, "failed to read file")
}

func TestVariableName(t *testing.T) {
	tests := []struct {
		prefix, token, want string
	}{
		{"", "color-primary", "color-primary"},
		{"", "color.primary", "color-primary"},
		{"brand", "space-small", "brand-space-small"},
		{"my.brand", "x", "my-brand-x"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tokens.VariableName(tt.prefix, tt.token))
		})
	}
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := tokens.Parse([]byte("a: b: c: ::"), tokens.File{Path: "bad.yaml"})
	assert.ErrorContains(t, err, "failed to parse YAML")
}
