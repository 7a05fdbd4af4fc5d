package value

import (
	"math"
	"strconv"
	"strings"
)

// Units lists the recognized unit suffixes in matching order.
// "#" marks an explicitly unitless index and "" defers to the default unit.
var Units = []string{
	"em", "ex", "px", "gd", "rem", "vw", "vh", "vm", "ch", // relative lengths
	"in", "cm", "mm", "pt", "pc", // absolute lengths
	"%",
	"deg", "grad", "rad", "turn", // angles
	"ms", "s", // time
	"Hz", "kHz", // frequency
	"#",
	"",
}

// ValidDefaultUnit reports whether unit may be used as the default unit
func ValidDefaultUnit(unit string) bool {
	if unit == "#" {
		return false
	}
	for _, u := range Units {
		if u == unit {
			return true
		}
	}
	return false
}

// FormatNumber renders n rounded to three decimals without a leading zero,
// e.g. 0.5 -> ".5", 0 -> "0". Negative numbers keep their zero.
func FormatNumber(n float64) string {
	n = math.Round(n*1000) / 1000
	if n == 0 {
		return "0"
	}
	s := strconv.FormatFloat(n, 'f', -1, 64)
	if strings.HasPrefix(s, "0.") {
		return s[1:]
	}
	return s
}

// PlainNumber renders n the way it is concatenated into strings
func PlainNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// Suffix returns the unit printed after u's number.
// Zero and "#" values print no unit; the empty unit prints defaultUnit.
func Suffix(u Unit, defaultUnit string) string {
	if u.Number == 0 || u.Unit == "#" {
		return ""
	}
	if u.Unit == "" {
		return defaultUnit
	}
	return u.Unit
}
