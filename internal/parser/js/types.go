package js

import "bennypowers.dev/ivory/internal/parser/html"

// Segment is literal text of a template string
type Segment struct {
	Content string
	// StartLine and StartCol locate the text in the JS/TS source, both 0-based
	StartLine uint
	StartCol  uint
}

// locate moves a region found inside s to its position in the JS/TS source.
// Only a region starting on the first line of s is shifted by column.
func (s Segment) locate(r html.Region) Segment {
	out := Segment{Content: r.Content, StartLine: s.StartLine + r.StartLine, StartCol: r.StartCol}
	if r.StartLine == 0 {
		out.StartCol += s.StartCol
	}
	return out
}

// TemplateRegion is a tagged template literal
type TemplateRegion struct {
	// Segments are the literal parts, split at ${...}
	Segments []Segment
	// Tag is "iss" or "html"
	Tag string
}

// Static reports whether the template has no ${...} substitutions
func (t TemplateRegion) Static() bool {
	return len(t.Segments) == 1
}
