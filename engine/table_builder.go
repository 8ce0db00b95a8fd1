package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spektr-org/insight/dataset"
	"github.com/spektr-org/insight/plan"
)

// ============================================================================
// TABLE RENDERING — Plain-text views of results
// ============================================================================
// Terminal output only. Structured consumers use the JSON encoding of
// Outcome instead.
// ============================================================================

// FormatTable renders a table as aligned plain text. Numeric columns are
// right-aligned; missing cells render empty.
func FormatTable(t *dataset.Table) string {
	if t == nil || t.NumCols() == 0 {
		return "(empty result)"
	}

	cols := t.Columns()
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = len(c.Name)
		for _, v := range c.Text {
			if len(v) > widths[i] {
				widths[i] = len(v)
			}
		}
	}

	var b strings.Builder
	for i, c := range cols {
		if i > 0 {
			b.WriteString("  ")
		}
		pad(&b, c.Name, widths[i], c.IsNumeric())
	}
	b.WriteByte('\n')
	for i := range cols {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(strings.Repeat("-", widths[i]))
	}
	b.WriteByte('\n')

	for ri := 0; ri < t.NumRows(); ri++ {
		for i, c := range cols {
			if i > 0 {
				b.WriteString("  ")
			}
			pad(&b, c.Text[ri], widths[i], c.IsNumeric())
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func pad(b *strings.Builder, s string, width int, right bool) {
	if n := width - len(s); n > 0 {
		if right {
			b.WriteString(strings.Repeat(" ", n))
			b.WriteString(s)
			return
		}
		b.WriteString(s)
		b.WriteString(strings.Repeat(" ", n))
		return
	}
	b.WriteString(s)
}

// FormatQuality renders a quality report as readable text, columns in
// sorted order.
func FormatQuality(q *QualityReport) string {
	if q == nil {
		return "(no quality report)"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Rows: %d\n", q.RowCount)
	fmt.Fprintf(&b, "Duplicate rows: %d\n", q.DuplicateRows)

	names := make([]string, 0, len(q.Dtypes))
	for n := range q.Dtypes {
		names = append(names, n)
	}
	sort.Strings(names)

	b.WriteString("Columns:\n")
	for _, n := range names {
		fmt.Fprintf(&b, "  %-20s %-12s missing %.2f%%\n", n, q.Dtypes[n], q.MissingPct[n])
	}
	return b.String()
}

// FormatChart summarizes a chart spec for terminal output.
func FormatChart(c *ChartSpec) string {
	if c == nil {
		return "(no chart)"
	}
	n := len(c.Points)
	if c.Type == plan.Hist {
		n = len(c.Values)
	}
	return fmt.Sprintf("%s chart: %s (%d points)", c.Type, c.Title, n)
}
