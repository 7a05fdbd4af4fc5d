// Package generator prints a reduced stylesheet as CSS text.
package generator

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"bennypowers.dev/ivory/internal/ast"
	"bennypowers.dev/ivory/internal/errs"
	"bennypowers.dev/ivory/internal/sheet"
	"bennypowers.dev/ivory/internal/value"
)

const nl = "\n"

// Printer writes reduced entries as CSS
type Printer struct {
	// DefaultUnit is printed after numbers that carry no unit
	DefaultUnit string
}

// Generate prints entries to a string
func Generate(entries []sheet.Entry, defaultUnit string) (string, error) {
	var b strings.Builder
	p := &Printer{DefaultUnit: defaultUnit}
	if err := p.Print(&b, entries); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Print writes entries to w. Empty blocks are skipped.
func (p *Printer) Print(w io.Writer, entries []sheet.Entry) error {
	bw := bufio.NewWriter(w)
	for _, e := range entries {
		if err := p.entry(bw, e); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func (p *Printer) entry(w *bufio.Writer, e sheet.Entry) error {
	if sheet.Empty(e) {
		return nil
	}
	switch x := e.(type) {
	case *sheet.Rule:
		_, _ = w.WriteString(strings.Join(x.Selectors, ","+nl))
		return p.block(w, x.Properties)
	case *sheet.FontFace:
		_, _ = w.WriteString("@font-face")
		return p.block(w, x.Properties)
	case *sheet.Media:
		_, _ = w.WriteString("@media " + x.Query + " {" + nl)
		for _, child := range x.Entries {
			if err := p.entry(w, child); err != nil {
				return err
			}
		}
		_, err := w.WriteString("}" + nl)
		return err
	case *sheet.Raw:
		_, err := w.WriteString(x.Text)
		return err
	case *sheet.Charset:
		_, err := w.WriteString("@charset " + x.Name.Quoted + ";" + nl)
		return err
	case *sheet.Import:
		_, err := w.WriteString("@import " + x.Path.Quoted + " " + x.Media + ";" + nl)
		return err
	}
	return fmt.Errorf("unknown entry %T", e)
}

func (p *Printer) block(w *bufio.Writer, props []sheet.Property) error {
	_, _ = w.WriteString(" {" + nl)
	for _, prop := range props {
		text, err := p.Value(prop.Value, true)
		if err != nil {
			return err
		}
		switch prop.Prefix {
		case ast.PrefixImportant:
			text += " !important"
		case ast.PrefixRaw:
			if _, ok := prop.Value.(value.String); ok {
				text = value.Decode(text)
			}
		}
		_, _ = w.WriteString(prop.Name + ": " + text + ";" + nl)
	}
	_, err := w.WriteString("}" + nl)
	return err
}

// Value renders a reduced value. With useDefault, numbers without a unit
// get the printer's default unit.
func (p *Printer) Value(v value.Value, useDefault bool) (string, error) {
	switch x := v.(type) {
	case value.Unit:
		return value.FormatNumber(x.Number) + p.unit(x, useDefault), nil
	case value.Args:
		return p.join(x.Items, ", ", useDefault)
	case value.List:
		return p.join(x.Items, " ", useDefault)
	case value.Keyword:
		return x.Text, nil
	case value.Color:
		if x.A == 1 {
			return fmt.Sprintf("#%02x%02x%02x", x.R, x.G, x.B), nil
		}
		return "rgba(" + strconv.Itoa(x.R) + "," + strconv.Itoa(x.G) + "," + strconv.Itoa(x.B) + "," +
			strconv.FormatFloat(x.A, 'f', -1, 64) + ")", nil
	case value.Function:
		args, err := p.join(x.Args, ",", useDefault)
		if err != nil {
			return "", err
		}
		return x.Name + "(" + args + ")", nil
	case value.String:
		return x.Quoted, nil
	case value.Raw:
		return x.Text, nil
	}
	return "", errs.Type("a value of kind %s cannot be printed", v.Kind())
}

func (p *Printer) unit(u value.Unit, useDefault bool) string {
	if useDefault {
		return value.Suffix(u, p.DefaultUnit)
	}
	return value.Suffix(u, "")
}

func (p *Printer) join(items []value.Value, sep string, useDefault bool) (string, error) {
	parts := make([]string, len(items))
	for i, item := range items {
		s, err := p.Value(item, useDefault)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return strings.Join(parts, sep), nil
}
