package html_test

import (
	"encoding/json"
	"flag"
	"os"
	"testing"

	"bennypowers.dev/ivory/internal/parser/html"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var update = flag.Bool("update", false, "update golden files")

func TestStyleRegions(t *testing.T) {
	tests := []struct {
		name        string
		fixture     string
		wantRegions int
		wantISS     int
	}{
		{"iss style", "testdata/iss-style.html", 1, 1},
		{"mixed styles", "testdata/mixed-styles.html", 3, 2},
		{"no style element", "testdata/no-style.html", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source, err := os.ReadFile(tt.fixture)
			require.NoError(t, err)

			parser := html.AcquireParser()
			defer html.ReleaseParser(parser)

			assert.Len(t, parser.StyleRegions(string(source)), tt.wantRegions, "style elements")
			assert.Len(t, parser.Stylesheets(string(source)), tt.wantISS, "iss stylesheets")
		})
	}
}

func TestStylesheets(t *testing.T) {
	tests := []struct {
		name    string
		fixture string
		golden  string
	}{
		{"iss style", "testdata/iss-style.html", "testdata/golden/iss-style.json"},
		{"mixed styles", "testdata/mixed-styles.html", "testdata/golden/mixed-styles.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source, err := os.ReadFile(tt.fixture)
			require.NoError(t, err)

			parser := html.AcquireParser()
			defer html.ReleaseParser(parser)

			regions := parser.Stylesheets(string(source))

			if *update {
				data, marshalErr := json.MarshalIndent(regions, "", "  ")
				require.NoError(t, marshalErr)
				require.NoError(t, os.WriteFile(tt.golden, append(data, '\n'), 0o644))
				return
			}

			golden, err := os.ReadFile(tt.golden)
			require.NoError(t, err)

			var expected []html.Region
			require.NoError(t, json.Unmarshal(golden, &expected))
			assert.Equal(t, expected, regions)
		})
	}
}

func TestRegionIsStylesheet(t *testing.T) {
	assert.True(t, html.Region{Type: "text/iss"}.IsStylesheet())
	assert.True(t, html.Region{Type: "text/x-iss"}.IsStylesheet())
	assert.False(t, html.Region{Type: "text/css"}.IsStylesheet())
	assert.False(t, html.Region{}.IsStylesheet())
}
