// Package format renders computed statistics for display.
package format

import (
	"math"
	"strconv"
	"strings"
)

// Magnitude bounds outside of which values switch to scientific notation.
const (
	scientificUpper = 10000
	scientificLower = 0.001
)

// Number formats value with the given number of decimal digits.
//
// Zero renders as "0". Magnitudes of at least 10000 or below 0.001 render in
// normalized scientific notation ("1.234e-4"). Everything else renders in
// fixed-point notation with trailing zeros and a bare decimal point removed.
func Number(value float64, digits int) string {
	if digits < 0 {
		digits = 0
	}
	abs := math.Abs(value)
	switch {
	case math.IsNaN(value) || math.IsInf(value, 0):
		return strconv.FormatFloat(value, 'f', -1, 64)
	case abs == 0:
		return "0"
	case abs >= scientificUpper || abs < scientificLower:
		return scientific(value, digits)
	}
	s := strconv.FormatFloat(value, 'f', digits, 64)
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// scientific renders value as mantissa "e" exponent, with the exponent
// stripped of its sign when positive and of leading zeros.
func scientific(value float64, digits int) string {
	s := strconv.FormatFloat(value, 'e', digits, 64)
	mantissa, exp, ok := strings.Cut(s, "e")
	if !ok {
		return s
	}
	n, err := strconv.Atoi(exp)
	if err != nil {
		return s
	}
	return mantissa + "e" + strconv.Itoa(n)
}
