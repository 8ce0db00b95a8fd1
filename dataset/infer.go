package dataset

import (
	"strings"
	"time"
)

// ============================================================================
// TYPE INFERENCE — Raw text columns → typed columns
// ============================================================================
// Classification per column, in order:
//   1. boolean   — every non-missing value is a true/false token
//   2. numeric   — at least 70% of non-missing values coerce to floats
//   3. datetime  — date-suggestive name, or most values parse as dates
//   4. categorical otherwise
// A column promoted to numeric keeps its raw text view and gains the
// coerced float view, so downstream aggregation never re-parses.
// ============================================================================

// numericRatio is the share of non-missing values that must coerce for a
// text column to be promoted to numeric.
const numericRatio = 0.7

var boolTokens = map[string]bool{
	"true": true, "false": true,
	"yes": true, "no": true,
	"t": true, "f": true,
}

// dateLayouts are tried in order for both inference and best-effort
// parsing of line-chart axes.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"02/01/2006",
	"2006/01/02",
	"Jan-2006",
	"Jan 2006",
	"2006-01",
}

// InferColumn classifies raw values and returns a typed Column.
func InferColumn(name string, values []string) Column {
	nonMissing := 0
	numeric := 0
	boolish := 0
	dateish := 0

	for _, raw := range values {
		if IsMissingToken(raw) {
			continue
		}
		nonMissing++
		s := strings.TrimSpace(raw)
		if boolTokens[strings.ToLower(s)] {
			boolish++
		}
		if _, ok := CoerceValue(s); ok {
			numeric++
		}
		if _, ok := ParseDate(s); ok {
			dateish++
		}
	}

	col := Column{Name: name, Type: Categorical, Text: values}
	if nonMissing == 0 {
		return col
	}

	switch {
	case boolish == nonMissing:
		col.Type = Boolean
	case float64(numeric)/float64(nonMissing) >= numericRatio:
		col.Type = Numeric
		col.Floats = CoerceStrings(values)
	case dateish == nonMissing || (hasDateName(name) && dateish > 0):
		col.Type = Datetime
	}
	return col
}

// ParseDate parses a cell using the known layouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func hasDateName(name string) bool {
	n := strings.ToLower(name)
	for _, k := range []string{"date", "timestamp", "datetime", "time"} {
		if strings.Contains(n, k) {
			return true
		}
	}
	return false
}
