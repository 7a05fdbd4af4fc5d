package analyzer

import (
	"os"
	"path/filepath"
	"slices"

	"bennypowers.dev/ivory/internal/ast"
	"bennypowers.dev/ivory/internal/errs"
	"bennypowers.dev/ivory/internal/log"
	"bennypowers.dev/ivory/internal/parser"
	"bennypowers.dev/ivory/internal/sheet"
	"bennypowers.dev/ivory/internal/value"
)

// callInclude resolves an @include against the include paths, first match
// wins. Stylesheets are parsed and reduced in place, wrapped in @media when a
// media argument is given; .css files are copied verbatim.
func (a *Analyzer) callInclude(d *ast.Declaration) error {
	v, err := a.Reduce(d.Value)
	if err != nil {
		return err
	}
	s, ok := v.(value.String)
	if !ok {
		return errs.Type("the included file name must be a string, got %s", v.Kind())
	}
	name := value.Decode(s.Quoted)

	for _, dir := range a.opts.IncludePaths {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		switch filepath.Ext(name) {
		case ".iss":
			content, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			return a.includeStylesheet(path, string(content), d)
		case ".css":
			content, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			abs, err := a.pushFile(path)
			if err != nil {
				return err
			}
			a.popFile()
			log.Debug("Included %s", abs)
			a.emit(&sheet.Raw{Text: string(content)})
			return nil
		}
	}
	return errs.IO(nil, "file '%s' could not be included", name)
}

func (a *Analyzer) includeStylesheet(path, content string, d *ast.Declaration) (err error) {
	abs, err := a.pushFile(path)
	if err != nil {
		return err
	}
	defer a.popFile()
	defer func() { err = errs.WithFile(err, abs) }()
	log.Debug("Included %s", abs)

	tree, err := parser.Parse(content)
	if err != nil {
		return err
	}
	if d.Media == nil {
		return a.reduceBlock(tree, selectors{}, nil)
	}
	media := &ast.Media{Properties: tree.Properties, Query: d.Media, Line: d.Line}
	return a.reduceBlock(media, selectors{}, nil)
}

// pushFile puts a file on the inclusion stack, refusing files already on it
func (a *Analyzer) pushFile(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errs.IO(err, "file '%s' could not be resolved", path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	if slices.Contains(a.files, abs) {
		return "", errs.Recursion("recursive inclusion of file '%s'", path)
	}
	a.files = append(a.files, abs)
	a.deps.Add(abs)
	return abs, nil
}

func (a *Analyzer) popFile() {
	a.files = a.files[:len(a.files)-1]
}
