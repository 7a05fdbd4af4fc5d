package tokens_test

import (
	"testing"

	"bennypowers.dev/ivory/internal/tokens"
	"bennypowers.dev/ivory/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructuredColors(t *testing.T) {
	tests := []struct {
		name  string
		color string
		want  value.Value
	}{
		{"srgb", `{"colorSpace": "srgb", "components": [1, 0.4, 0]}`, value.Color{R: 255, G: 102, B: 0, A: 1}},
		{"srgb alpha", `{"colorSpace": "srgb", "components": [0, 0, 1], "alpha": 0.5}`, value.Color{B: 255, A: 0.5}},
		{"hex wins", `{"colorSpace": "oklch", "components": [0.5, 0.1, 200], "hex": "#336699"}`, value.Color{R: 0x33, G: 0x66, B: 0x99, A: 1}},
		{"hsl", `{"colorSpace": "hsl", "components": [0, 100, 50]}`, value.Color{R: 255, A: 1}},
		{"oklch", `{"colorSpace": "oklch", "components": [0.5, 0.1, 200], "alpha": 0.25}`, value.Raw{Text: "oklch(0.5 0.1 200 / 0.25)"}},
		{"display-p3", `{"colorSpace": "display-p3", "components": [1, 0, 0]}`, value.Raw{Text: "color(display-p3 1 0 0)"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := `{"c": {"$type": "color", "$value": ` + tt.color + `}}`
			vars, err := tokens.Parse([]byte(data), tokens.File{Path: "tokens.json"})
			require.NoError(t, err)
			require.Len(t, vars, 1)
			assert.Equal(t, tt.want, vars[0].Value)
		})
	}
}
