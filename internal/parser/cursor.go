package parser

import (
	"regexp"
	"sort"
	"strings"

	"bennypowers.dev/ivory/internal/ast"
)

// cursor is a backtracking position over the comment-free source.
// maxOffset remembers the furthest position any attempt reached, which is
// where parse errors are reported.
type cursor struct {
	buf       string
	offset    int
	maxOffset int
	newlines  []int
}

func newCursor(buf string) cursor {
	var newlines []int
	for i := 0; i < len(buf); i++ {
		if buf[i] == '\n' {
			newlines = append(newlines, i)
		}
	}
	return cursor{buf: buf, newlines: newlines}
}

func (c *cursor) seek(offset int) {
	c.offset = offset
	if offset > c.maxOffset {
		c.maxOffset = offset
	}
}

func (c *cursor) advance(n int) {
	c.seek(c.offset + n)
}

func (c *cursor) rest() string {
	return c.buf[c.offset:]
}

func (c *cursor) eof() bool {
	return c.offset >= len(c.buf)
}

// lineAt returns the 1-based line of offset
func (c *cursor) lineAt(offset int) int {
	return sort.SearchInts(c.newlines, offset) + 1
}

func (c *cursor) line() int {
	return c.lineAt(c.offset)
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

func isWord(b byte) bool {
	return b == '_' || b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

func isAlpha(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

// whitespace skips whitespace and reports whether there was any
func (c *cursor) whitespace() bool {
	i := c.offset
	for i < len(c.buf) && isSpace(c.buf[i]) {
		i++
	}
	if i == c.offset {
		return false
	}
	c.seek(i)
	return true
}

// lit consumes s and any whitespace after it
func (c *cursor) lit(s string) bool {
	if !c.litRaw(s) {
		return false
	}
	c.whitespace()
	return true
}

// litRaw consumes s only
func (c *cursor) litRaw(s string) bool {
	if !strings.HasPrefix(c.rest(), s) {
		return false
	}
	c.advance(len(s))
	return true
}

// peek reports whether the next byte satisfies fn; false at end of input
func (c *cursor) peek(fn func(byte) bool) bool {
	return !c.eof() && fn(c.buf[c.offset])
}

// match consumes a match of re, which must be anchored with ^
func (c *cursor) match(re *regexp.Regexp, skipSpace bool) (string, bool) {
	loc := re.FindStringIndex(c.rest())
	if loc == nil {
		return "", false
	}
	m := c.rest()[:loc[1]]
	c.advance(loc[1])
	if skipSpace {
		c.whitespace()
	}
	return m, true
}

// keyword consumes a statement keyword with an optional leading @.
// The keyword must not run into further name characters.
func (c *cursor) keyword(kw string) bool {
	x := c.offset
	c.litRaw("@")
	if c.litRaw(kw) && !c.peek(func(b byte) bool { return isWord(b) || b == '-' }) {
		c.whitespace()
		return true
	}
	c.seek(x)
	return false
}

// stack of open blocks during parsing
type blockStack []ast.Block

func (s *blockStack) push(b ast.Block) {
	*s = append(*s, b)
}

func (s *blockStack) pop() {
	*s = (*s)[:len(*s)-1]
}

func (s blockStack) top() ast.Block {
	return s[len(s)-1]
}
