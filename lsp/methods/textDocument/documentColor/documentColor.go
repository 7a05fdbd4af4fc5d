// Package documentcolor finds color literals in stylesheets for the editor's
// color picker
package documentcolor

import (
	"fmt"
	"math"
	"strings"

	"bennypowers.dev/ivory/internal/generator"
	"bennypowers.dev/ivory/internal/log"
	"bennypowers.dev/ivory/internal/parser/css"
	"bennypowers.dev/ivory/internal/parser/embedded"
	"bennypowers.dev/ivory/internal/position"
	"bennypowers.dev/ivory/internal/value"
	"bennypowers.dev/ivory/lsp/types"
	"github.com/mazznoer/csscolorparser"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// DocumentColor handles textDocument/documentColor
func DocumentColor(req *types.RequestContext, params *protocol.DocumentColorParams) ([]protocol.ColorInformation, error) {
	doc := req.Server.Document(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	lang := doc.Language()
	if lang == "" {
		return nil, nil
	}

	lines := strings.Split(doc.Content(), "\n")
	colors := []protocol.ColorInformation{}
	parser := css.AcquireParser()
	defer css.ReleaseParser(parser)

	for _, src := range embedded.Sources(doc.Content(), lang) {
		result, err := parser.Parse(src.Content)
		if err != nil {
			return nil, fmt.Errorf("failed to parse stylesheet: %w", err)
		}
		for _, c := range result.Colors {
			color, err := parseColor(c.Text)
			if err != nil {
				if c.Kind != css.NamedColor {
					req.AddWarning(err)
				}
				continue
			}
			colors = append(colors, protocol.ColorInformation{
				Range: protocol.Range{
					Start: shift(c.Range.Start, src, lines),
					End:   shift(c.Range.End, src, lines),
				},
				Color: color,
			})
		}
	}
	log.Debug("Found %d colors in %s", len(colors), doc.URI())
	return colors, nil
}

// shift moves a position in an embedded source to the document
func shift(p css.Position, src embedded.Source, lines []string) protocol.Position {
	line := p.Line + uint32(src.Line-1)
	char := p.Character
	if p.Line == 0 && src.Column > 0 && int(line) < len(lines) {
		char += position.ByteOffsetToUTF16(lines[line], src.Column)
	}
	return protocol.Position{Line: line, Character: char}
}

// ColorPresentation handles textDocument/colorPresentation. It offers the
// form the generator prints, then the #rrggbbaa form for translucent colors.
func ColorPresentation(req *types.RequestContext, params *protocol.ColorPresentationParams) ([]protocol.ColorPresentation, error) {
	c := csscolorparser.Color{
		R: float64(params.Color.Red),
		G: float64(params.Color.Green),
		B: float64(params.Color.Blue),
		A: float64(params.Color.Alpha),
	}
	var p generator.Printer
	text, err := p.Value(value.Color{
		R: channel(c.R),
		G: channel(c.G),
		B: channel(c.B),
		A: math.Round(c.A*100) / 100,
	}, false)
	if err != nil {
		return nil, err
	}
	labels := []string{text}
	if c.A < 1 {
		labels = append(labels, c.HexString())
	}

	presentations := make([]protocol.ColorPresentation, 0, len(labels))
	for _, label := range labels {
		presentations = append(presentations, protocol.ColorPresentation{
			Label:    label,
			TextEdit: &protocol.TextEdit{Range: params.Range, NewText: label},
		})
	}
	return presentations, nil
}

func channel(v float64) int {
	return int(math.Round(v * 255))
}

// parseColor reads any CSS color notation
func parseColor(text string) (protocol.Color, error) {
	c, err := csscolorparser.Parse(strings.TrimSpace(text))
	if err != nil {
		return protocol.Color{}, fmt.Errorf("unsupported color '%s': %w", text, err)
	}
	return protocol.Color{
		Red:   protocol.Decimal(c.R),
		Green: protocol.Decimal(c.G),
		Blue:  protocol.Decimal(c.B),
		Alpha: protocol.Decimal(c.A),
	}, nil
}
