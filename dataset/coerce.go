package dataset

import (
	"math"
	"strconv"
	"strings"
)

// ============================================================================
// NUMERIC COERCION — Messy text → float64
// ============================================================================
// Shared by the loader's type inference and the executor's aggregation and
// visualization branches. Handles the formats real exports contain:
// thousands separators, currency prefixes, percent suffixes, and the
// accounting convention of parenthesized negatives.
//
// Policy: a value that cannot be parsed becomes missing (NaN). Nothing in
// this package preserves unparsable originals inside a numeric column.
// ============================================================================

// missingTokens are the literal cell values treated as missing before any
// parsing is attempted.
var missingTokens = map[string]bool{
	"":     true,
	"nan":  true,
	"None": true,
	"null": true,
	"NULL": true,
}

// currencyPrefixes are the single leading symbols stripped during coercion.
var currencyPrefixes = []string{"$", "€", "£", "₹"}

// IsMissingToken reports whether a raw cell value denotes a missing value.
func IsMissingToken(s string) bool {
	return missingTokens[strings.TrimSpace(s)]
}

// CoerceValue converts one raw cell to a float. ok is false when the value
// is missing or unparsable.
func CoerceValue(raw string) (v float64, ok bool) {
	s := strings.TrimSpace(raw)
	if missingTokens[s] {
		return 0, false
	}

	s = strings.ReplaceAll(s, ",", "")
	for _, sym := range currencyPrefixes {
		if strings.HasPrefix(s, sym) {
			s = s[len(sym):]
			break
		}
	}
	s = strings.TrimSuffix(s, "%")

	// (300) → -300, the accounting negative
	if len(s) >= 2 && s[0] == '(' && s[len(s)-1] == ')' {
		s = "-" + s[1:len(s)-1]
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// CoerceStrings converts raw cells to floats, NaN for missing/unparsable.
func CoerceStrings(values []string) []float64 {
	out := make([]float64, len(values))
	for i, s := range values {
		if v, ok := CoerceValue(s); ok {
			out[i] = v
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// CoerceColumn returns the numeric view of a column. A column already of
// numeric kind passes through unchanged; anything else is coerced cell by
// cell. The returned slice is safe to mutate.
func CoerceColumn(c *Column) []float64 {
	if c.IsNumeric() && c.Floats != nil {
		return append([]float64(nil), c.Floats...)
	}
	return CoerceStrings(c.Text)
}
