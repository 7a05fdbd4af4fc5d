// Package diagnostic reports compile errors of open documents
package diagnostic

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"bennypowers.dev/ivory/internal/errs"
	"bennypowers.dev/ivory/internal/log"
	"bennypowers.dev/ivory/internal/position"
	"bennypowers.dev/ivory/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Source names us in the client's problem list
const Source = "ivory"

// GetDiagnostics compiles the document at uri and returns its problems.
// Documents without stylesheets have none.
func GetDiagnostics(ctx types.ServerContext, uri string) ([]protocol.Diagnostic, error) {
	doc := ctx.Document(uri)
	if doc == nil {
		return nil, nil
	}
	lang := doc.Language()
	if lang == "" {
		return nil, nil
	}

	c, err := ctx.NewCompiler()
	if err != nil {
		return nil, fmt.Errorf("failed to configure compiler: %w", err)
	}
	path := doc.Path()
	if filepath.IsAbs(path) {
		if err := c.AddIncludePath(filepath.Dir(path)); err != nil {
			return nil, err
		}
	}

	diagnostics := []protocol.Diagnostic{}
	_, err = c.CompileDocument(doc.Content(), lang)
	if err != nil {
		diagnostics = append(diagnostics, fromError(err, doc.Content(), path))
	}
	for _, w := range c.Warnings() {
		diagnostics = append(diagnostics, diagnostic(lineRange(doc.Content(), 0),
			protocol.DiagnosticSeverityWarning, "generated CSS: "+w.String(), ""))
	}
	log.Debug("%d diagnostics for %s", len(diagnostics), uri)
	return diagnostics, nil
}

// fromError locates a compile error in the document. Errors raised in an
// included file are reported on the first line with their own location.
func fromError(err error, content, path string) protocol.Diagnostic {
	var e *errs.Error
	if !errors.As(err, &e) {
		return diagnostic(lineRange(content, 0), protocol.DiagnosticSeverityError, err.Error(), "")
	}
	code := ""
	if e.Kind != nil {
		code = e.Kind.Error()
	}
	if e.File != "" && e.File != path || e.Line <= 0 {
		return diagnostic(lineRange(content, 0), protocol.DiagnosticSeverityError, e.Error(), code)
	}
	return diagnostic(lineRange(content, e.Line-1), protocol.DiagnosticSeverityError, e.Message, code)
}

func diagnostic(r protocol.Range, severity protocol.DiagnosticSeverity, message, code string) protocol.Diagnostic {
	d := protocol.Diagnostic{
		Range:    r,
		Severity: &severity,
		Source:   ptr(Source),
		Message:  message,
	}
	if code != "" {
		d.Code = &protocol.IntegerOrString{Value: code}
	}
	return d
}

// lineRange spans the text of a 0-based line, without leading indentation
func lineRange(content string, line int) protocol.Range {
	lines := strings.Split(content, "\n")
	if line >= len(lines) {
		line = len(lines) - 1
	}
	text := strings.TrimRight(lines[line], "\r")
	indent := len(text) - len(strings.TrimLeft(text, " \t"))
	return protocol.Range{
		Start: protocol.Position{Line: uint32(line), Character: position.ByteOffsetToUTF16(text, indent)},
		End:   protocol.Position{Line: uint32(line), Character: uint32(position.LengthUTF16(text))},
	}
}

func ptr[T any](v T) *T {
	return &v
}
