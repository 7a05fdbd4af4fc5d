package value

import "strings"

var (
	encoder = strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	decoder = strings.NewReplacer(`\\`, `\`, `\'`, `'`)
)

// Encode quotes s in the canonical single-quoted form
func Encode(s string) string {
	return "'" + encoder.Replace(s) + "'"
}

// Decode returns the text of a canonical single-quoted string
func Decode(quoted string) string {
	if len(quoted) < 2 {
		return quoted
	}
	return decoder.Replace(quoted[1 : len(quoted)-1])
}

// Inner returns the quoted string without its surrounding quotes, escapes intact
func Inner(quoted string) string {
	if len(quoted) < 2 {
		return quoted
	}
	return quoted[1 : len(quoted)-1]
}

// Canonical converts a single- or double-quoted string literal to the
// single-quoted form. Escape sequences other than quotes are kept as written.
func Canonical(literal string) string {
	if len(literal) < 2 || literal[0] == '\'' {
		return literal
	}
	inner := literal[1 : len(literal)-1]
	var b strings.Builder
	b.Grow(len(literal) + 2)
	b.WriteByte('\'')
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		switch {
		case c == '\\' && i+1 < len(inner):
			if inner[i+1] == '"' {
				b.WriteByte('"')
			} else {
				b.WriteByte('\\')
				b.WriteByte(inner[i+1])
			}
			i++
		case c == '\'':
			b.WriteString(`\'`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// NewString builds a String holding the text s
func NewString(s string) String {
	return String{Quoted: Encode(s)}
}
