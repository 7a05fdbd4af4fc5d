package tokens

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"bennypowers.dev/ivory/internal/value"
	"github.com/mazznoer/csscolorparser"
)

// structuredColor converts a 2025.10 color object such as
// {"colorSpace": "srgb", "components": [1, 0, 0], "alpha": 0.5}.
// sRGB, HSL and HWB colors become Color values, other spaces are printed
// with their CSS function.
func structuredColor(m map[string]any) (value.Value, bool) {
	alpha := 1.0
	if a, ok := number(m["alpha"]); ok {
		alpha = math.Max(0, math.Min(1, a))
	}
	if hex, ok := m["hex"].(string); ok && hex != "" {
		v, ok := fromText(hex)
		if c, isColor := v.(value.Color); isColor && alpha < 1 {
			c.A = alpha
			return c, true
		}
		return v, ok
	}

	space, _ := m["colorSpace"].(string)
	space = strings.ToLower(space)
	raw, _ := m["components"].([]any)
	components := make([]float64, 0, len(raw))
	for _, c := range raw {
		// "none" components are treated as zero
		n, _ := number(c)
		components = append(components, n)
	}
	if space == "" || len(components) < 3 {
		return nil, false
	}

	h, x, y := components[0], components[1], components[2]
	switch space {
	case "srgb":
		return value.Color{R: channel(h), G: channel(x), B: channel(y), A: alpha}, true
	case "hsl", "hwb":
		text := fmt.Sprintf("%s(%s, %s%%, %s%%)", space, format(h), format(x), format(y))
		if space == "hwb" {
			text = fmt.Sprintf("hwb(%s %s%% %s%%)", format(h), format(x), format(y))
		}
		c, err := csscolorparser.Parse(text)
		if err != nil {
			return nil, false
		}
		return value.Color{R: channel(c.R), G: channel(c.G), B: channel(c.B), A: alpha}, true
	case "oklch", "oklab", "lch", "lab":
		return value.Raw{Text: cssFunction(space, components, alpha)}, true
	}
	return value.Raw{Text: cssFunction("color", append([]string{space}, formatAll(components)...), alpha)}, true
}

// cssFunction prints a space separated color function with an optional alpha
func cssFunction[T float64 | string](name string, args []T, alpha float64) string {
	parts := make([]string, len(args))
	for i, a := range args {
		switch a := any(a).(type) {
		case float64:
			parts[i] = format(a)
		case string:
			parts[i] = a
		}
	}
	if alpha < 1 {
		parts = append(parts, "/", format(alpha))
	}
	return name + "(" + strings.Join(parts, " ") + ")"
}

func formatAll(ns []float64) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = format(n)
	}
	return out
}

func format(n float64) string {
	return strconv.FormatFloat(math.Round(n*1e4)/1e4, 'f', -1, 64)
}

func channel(n float64) int {
	return int(math.Round(math.Max(0, math.Min(1, n)) * 255))
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}
