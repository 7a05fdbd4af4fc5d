// Package embedded finds stylesheet sources in ISS, HTML and JS/TS documents
package embedded

import (
	"path/filepath"
	"strings"

	"bennypowers.dev/ivory/internal/parser/html"
	"bennypowers.dev/ivory/internal/parser/js"
)

// Source is a stylesheet found in a document
type Source struct {
	Content string
	// Line is the 1-based document line the source starts on
	Line int
	// Column is the 0-based byte column of the source's first character
	Column int
}

// languages maps language IDs to the extractor they use
var languages = map[string]string{
	"iss":             "iss",
	"html":            "html",
	"javascript":      "js",
	"javascriptreact": "js",
	"typescript":      "js",
	"typescriptreact": "js",
}

var extensions = map[string]string{
	".iss":  "iss",
	".html": "html",
	".htm":  "html",
	".js":   "javascript",
	".mjs":  "javascript",
	".jsx":  "javascriptreact",
	".ts":   "typescript",
	".mts":  "typescript",
	".tsx":  "typescriptreact",
}

// IsSupportedLanguage returns true if stylesheets can be found in documents
// of the language
func IsSupportedLanguage(languageID string) bool {
	_, ok := languages[languageID]
	return ok
}

// LanguageOf returns the language ID for a file name, empty when unknown
func LanguageOf(path string) string {
	return extensions[strings.ToLower(filepath.Ext(path))]
}

// Sources returns the stylesheets found in content. An ISS document is a
// single source.
func Sources(content, languageID string) []Source {
	switch languages[languageID] {
	case "iss":
		return []Source{{Content: content, Line: 1}}

	case "html":
		p := html.AcquireParser()
		defer html.ReleaseParser(p)
		var out []Source
		for _, r := range p.Stylesheets(content) {
			out = append(out, Source{Content: r.Content, Line: int(r.StartLine) + 1, Column: int(r.StartCol)})
		}
		return out

	case "js":
		p := js.AcquireParser()
		defer js.ReleaseParser(p)
		var out []Source
		for _, seg := range p.Stylesheets(content) {
			out = append(out, Source{Content: seg.Content, Line: int(seg.StartLine) + 1, Column: int(seg.StartCol)})
		}
		return out

	default:
		return nil
	}
}
