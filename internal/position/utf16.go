// Package position converts between byte offsets and the UTF-16 columns used
// by LSP positions
package position

import (
	"unicode/utf16"
	"unicode/utf8"
)

// width is the number of UTF-16 code units encoding r. Invalid bytes count as one.
func width(r rune) int {
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	return 1
}

// UTF16ToByteOffset returns the byte offset of UTF-16 column col in the line s.
// Columns past the end clamp to len(s); a column inside a surrogate pair
// clamps to the start of the rune.
func UTF16ToByteOffset(s string, col int) int {
	units := 0
	for i, r := range s {
		if units >= col {
			return i
		}
		w := width(r)
		if units+w > col {
			return i
		}
		units += w
	}
	return len(s)
}

// ByteOffsetToUTF16 returns the UTF-16 column of byte offset off in the line s
func ByteOffsetToUTF16(s string, off int) uint32 {
	if off > len(s) {
		off = len(s)
	}
	units := 0
	for i := 0; i < off; {
		r, size := utf8.DecodeRuneInString(s[i:])
		if i+size > off {
			break
		}
		units += width(r)
		i += size
	}
	return uint32(units)
}

// LengthUTF16 returns the length of s in UTF-16 code units
func LengthUTF16(s string) int {
	return int(ByteOffsetToUTF16(s, len(s)))
}
