package analyzer

import (
	"regexp"
	"strconv"
	"strings"

	"bennypowers.dev/ivory/internal/ast"
	"bennypowers.dev/ivory/internal/errs"
)

var (
	rePlaceholder = regexp.MustCompile(`<\$(-?\w+[\w-]*)>`)
	reGroupRef    = regexp.MustCompile(`^&([0-9]+)(.*)$`)
)

// selectors is the selector context handed from a block to its children.
// Group is the number of selectors the parent rule declared, used to bind
// numbered self references (&1, &2...) to one member of each repetition.
type selectors struct {
	group int
	list  []string
}

// Combine joins every parent selector with every child selector. The child
// is separated by a space unless either side is empty, a combinator sits
// between them, or the child starts with "&".
//
// A child "&N..." is only joined to the parents at position N within each
// run of group parents. A group of 0 joins it to every parent.
func Combine(parent, child []string, group int) []string {
	if len(parent) == 0 && len(child) == 0 {
		return nil
	}
	if len(parent) == 0 {
		parent = []string{""}
	}
	if len(child) == 0 {
		child = []string{""}
	}
	var out []string
	for i, outer := range parent {
		for _, inner := range child {
			if m := reGroupRef.FindStringSubmatch(inner); m != nil {
				n, _ := strconv.Atoi(m[1])
				if group != 0 && i%group+1 != n {
					continue
				}
				inner = ast.SelfSelector + m[2]
			}
			sep := " "
			if inner == "" || outer == "" || startsCombinator(inner) || endsCombinator(outer) {
				sep = ""
			}
			out = append(out, outer+sep+strings.TrimPrefix(inner, ast.SelfSelector))
		}
	}
	return out
}

func startsCombinator(s string) bool {
	return s != "" && strings.ContainsRune("+>~"+ast.SelfSelector, rune(s[0]))
}

func endsCombinator(s string) bool {
	return s != "" && strings.ContainsRune("+>~"+ast.SelfSelector, rune(s[len(s)-1]))
}

// replaceVariables substitutes <$name> placeholders with the printed value
// of the variable
func (a *Analyzer) replaceVariables(sels []ast.Selector) ([]string, error) {
	out := make([]string, 0, len(sels))
	for _, sel := range sels {
		var err error
		text := rePlaceholder.ReplaceAllStringFunc(sel.Text, func(m string) string {
			if err != nil {
				return m
			}
			name := rePlaceholder.FindStringSubmatch(m)[1]
			v, ok := a.scope.lookup(name)
			if !ok {
				err = errs.Undefined("variable '$%s' is not defined", name)
				return m
			}
			s, perr := a.printer.Value(v, false)
			if perr != nil {
				err = perr
				return m
			}
			return s
		})
		if err != nil {
			return nil, errs.WithLine(err, sel.Line)
		}
		out = append(out, text)
	}
	return out, nil
}

// unique drops repeated selectors, keeping the first occurrence
func unique(list []string) []string {
	seen := make(map[string]bool, len(list))
	out := make([]string, 0, len(list))
	for _, s := range list {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
