package parser

import (
	"regexp"
	"strings"
)

var reString = regexp.MustCompile(`(?s)^(?:'(?:\\.|[^'\\])*'|"(?:\\.|[^"\\])*")`)

// StripComments removes // and /* */ comments from source. Quoted strings are
// copied intact and block comments are replaced by their newlines, so line
// numbers of the remaining text are unchanged.
func StripComments(source string) string {
	var b strings.Builder
	b.Grow(len(source))
	for i := 0; i < len(source); {
		rest := source[i:]
		switch {
		case strings.HasPrefix(rest, "//"):
			end := strings.IndexByte(rest, '\n')
			if end < 0 {
				end = len(rest)
			}
			i += end
		case strings.HasPrefix(rest, "/*"):
			end := strings.Index(rest[2:], "*/")
			if end < 0 {
				b.WriteString("/*")
				i += 2
				continue
			}
			comment := rest[:end+4]
			b.WriteString(strings.Repeat("\n", strings.Count(comment, "\n")))
			i += len(comment)
		case rest[0] == '\'' || rest[0] == '"':
			n := 1
			if loc := reString.FindStringIndex(rest); loc != nil {
				n = loc[1]
			}
			b.WriteString(rest[:n])
			i += n
		default:
			b.WriteByte(rest[0])
			i++
		}
	}
	return b.String()
}
