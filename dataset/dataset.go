package dataset

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ============================================================================
// TABLE — Immutable column-oriented dataset
// ============================================================================
// The engine never mutates a caller-supplied table. Every transformation
// (filter, head, index materialization, aggregation output) builds a new
// Table; the originals stay valid for the whole question turn.
// ============================================================================

// Type is the inferred semantic type of a column.
type Type string

const (
	Numeric     Type = "numeric"
	Categorical Type = "categorical"
	Datetime    Type = "datetime"
	Boolean     Type = "boolean"
)

// IndexColumn is the synthetic column marker meaning "row position".
// It never lives in a stored dataset; the executor materializes it on
// demand when a plan needs an x-axis and no real column is suitable.
const IndexColumn = "__index__"

// Column is a single named column. Text always holds the raw cell values;
// Floats is the parallel numeric view, populated only for Numeric columns
// (NaN marks a missing value).
type Column struct {
	Name   string
	Type   Type
	Text   []string
	Floats []float64
}

// Len returns the number of values in the column.
func (c *Column) Len() int { return len(c.Text) }

// IsNumeric reports whether the column carries a numeric view.
func (c *Column) IsNumeric() bool { return c.Type == Numeric }

// Missing reports whether the value at row i is missing.
func (c *Column) Missing(i int) bool {
	if c.Type == Numeric {
		return math.IsNaN(c.Floats[i])
	}
	return IsMissingToken(c.Text[i])
}

// Table is an ordered set of equally sized named columns.
type Table struct {
	cols   []Column
	byName map[string]int
	rows   int
}

// New builds a Table from columns. Column order is preserved.
// All columns must have equal length and distinct names.
func New(cols []Column) (*Table, error) {
	t := &Table{byName: make(map[string]int, len(cols))}
	for i, c := range cols {
		if _, dup := t.byName[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", c.Name)
		}
		if i == 0 {
			t.rows = c.Len()
		} else if c.Len() != t.rows {
			return nil, fmt.Errorf("column %q has %d values, want %d", c.Name, c.Len(), t.rows)
		}
		t.byName[c.Name] = i
		t.cols = append(t.cols, c)
	}
	return t, nil
}

// NumRows returns the row count.
func (t *Table) NumRows() int { return t.rows }

// NumCols returns the column count.
func (t *Table) NumCols() int { return len(t.cols) }

// Names returns column names in declared order.
func (t *Table) Names() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// Columns returns the columns in declared order.
func (t *Table) Columns() []Column { return t.cols }

// Column returns the named column, or false if it does not exist.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.byName[name]
	if !ok {
		return nil, false
	}
	return &t.cols[i], true
}

// Has reports whether the named column exists.
func (t *Table) Has(name string) bool {
	_, ok := t.byName[name]
	return ok
}

// NamesOfType returns the names of columns with the given type, in order.
func (t *Table) NamesOfType(typ Type) []string {
	var names []string
	for _, c := range t.cols {
		if c.Type == typ {
			names = append(names, c.Name)
		}
	}
	return names
}

// NumericNames returns numeric column names in declared order.
func (t *Table) NumericNames() []string { return t.NamesOfType(Numeric) }

// CategoricalNames returns the names of columns usable as grouping keys:
// categorical text plus boolean, matching how grouping candidates are
// selected throughout the planner.
func (t *Table) CategoricalNames() []string {
	var names []string
	for _, c := range t.cols {
		if c.Type == Categorical || c.Type == Boolean {
			names = append(names, c.Name)
		}
	}
	return names
}

// DatetimeNames returns datetime column names in declared order.
func (t *Table) DatetimeNames() []string { return t.NamesOfType(Datetime) }

// Select returns a new Table holding copies of the named columns, in the
// requested order. Unknown names are an error.
func (t *Table) Select(names []string) (*Table, error) {
	cols := make([]Column, 0, len(names))
	for _, name := range names {
		c, ok := t.Column(name)
		if !ok {
			return nil, fmt.Errorf("column %q not found", name)
		}
		cols = append(cols, copyColumn(*c))
	}
	return New(cols)
}

// Head returns a new Table with at most n leading rows.
func (t *Table) Head(n int) *Table {
	if n >= t.rows {
		n = t.rows
	}
	return t.TakeRows(sequence(n))
}

// TakeRows builds a new Table from the given row indices, in order.
func (t *Table) TakeRows(indices []int) *Table {
	cols := make([]Column, len(t.cols))
	for ci, c := range t.cols {
		nc := Column{Name: c.Name, Type: c.Type, Text: make([]string, len(indices))}
		if c.Floats != nil {
			nc.Floats = make([]float64, len(indices))
		}
		for ri, idx := range indices {
			nc.Text[ri] = c.Text[idx]
			if nc.Floats != nil {
				nc.Floats[ri] = c.Floats[idx]
			}
		}
		cols[ci] = nc
	}
	out, _ := New(cols) // shape preserved, cannot fail
	return out
}

// WithIndex returns a new Table with the synthetic index column prepended.
// Row positions count from zero. A table that already carries the column
// is returned unchanged.
func (t *Table) WithIndex() *Table {
	if t.Has(IndexColumn) {
		return t
	}
	idx := Column{Name: IndexColumn, Type: Numeric,
		Text:   make([]string, t.rows),
		Floats: make([]float64, t.rows),
	}
	for i := 0; i < t.rows; i++ {
		idx.Text[i] = strconv.Itoa(i)
		idx.Floats[i] = float64(i)
	}
	cols := make([]Column, 0, len(t.cols)+1)
	cols = append(cols, idx)
	for _, c := range t.cols {
		cols = append(cols, copyColumn(c))
	}
	out, _ := New(cols)
	return out
}

// FilterEqual returns a new Table keeping rows whose named column equals
// value (case-insensitive on text columns). Unknown columns keep all rows.
func (t *Table) FilterEqual(name, value string) *Table {
	c, ok := t.Column(name)
	if !ok {
		return t
	}
	want := strings.ToLower(strings.TrimSpace(value))
	var keep []int
	for i := 0; i < t.rows; i++ {
		if strings.ToLower(strings.TrimSpace(c.Text[i])) == want {
			keep = append(keep, i)
		}
	}
	return t.TakeRows(keep)
}

// DuplicateRows counts rows that are exact repeats of an earlier row.
func (t *Table) DuplicateRows() int {
	seen := make(map[string]bool, t.rows)
	dup := 0
	for i := 0; i < t.rows; i++ {
		var b strings.Builder
		for _, c := range t.cols {
			b.WriteString(c.Text[i])
			b.WriteByte('\x1f')
		}
		key := b.String()
		if seen[key] {
			dup++
		}
		seen[key] = true
	}
	return dup
}

// MissingPct returns the missing-value percentage per column, rounded to
// two decimals.
func (t *Table) MissingPct() map[string]float64 {
	out := make(map[string]float64, len(t.cols))
	for _, c := range t.cols {
		missing := 0
		for i := 0; i < t.rows; i++ {
			if c.Missing(i) {
				missing++
			}
		}
		pct := 0.0
		if t.rows > 0 {
			pct = float64(missing) / float64(t.rows) * 100
		}
		out[c.Name] = math.Round(pct*100) / 100
	}
	return out
}

// Dtypes returns the declared type per column.
func (t *Table) Dtypes() map[string]string {
	out := make(map[string]string, len(t.cols))
	for _, c := range t.cols {
		out[c.Name] = string(c.Type)
	}
	return out
}

// UniqueCounts returns the distinct non-missing value count per column.
func (t *Table) UniqueCounts() map[string]int {
	out := make(map[string]int, len(t.cols))
	for _, c := range t.cols {
		seen := make(map[string]bool)
		for i := 0; i < t.rows; i++ {
			if !c.Missing(i) {
				seen[c.Text[i]] = true
			}
		}
		out[c.Name] = len(seen)
	}
	return out
}

// SampleRows returns up to n leading rows as name→value maps.
func (t *Table) SampleRows(n int) []map[string]string {
	if n > t.rows {
		n = t.rows
	}
	rows := make([]map[string]string, n)
	for i := 0; i < n; i++ {
		row := make(map[string]string, len(t.cols))
		for _, c := range t.cols {
			row[c.Name] = c.Text[i]
		}
		rows[i] = row
	}
	return rows
}

// Rows renders the table as name→value maps in row order. Numeric cells
// come out as float64, missing cells as nil, text cells as string.
func (t *Table) Rows() []map[string]any {
	rows := make([]map[string]any, t.rows)
	for i := 0; i < t.rows; i++ {
		row := make(map[string]any, len(t.cols))
		for _, c := range t.cols {
			switch {
			case c.Missing(i):
				row[c.Name] = nil
			case c.IsNumeric():
				row[c.Name] = c.Floats[i]
			default:
				row[c.Name] = c.Text[i]
			}
		}
		rows[i] = row
	}
	return rows
}

// MarshalJSON encodes the table as {"columns": [...], "rows": [...]}.
// Missing numeric cells encode as null, so NaN never reaches the encoder.
func (t *Table) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Columns []string         `json:"columns"`
		Rows    []map[string]any `json:"rows"`
	}{Columns: t.Names(), Rows: t.Rows()})
}

// NumericColumn builds a numeric Column from values, formatting the text
// view from the floats. NaN renders as an empty cell.
func NumericColumn(name string, values []float64) Column {
	text := make([]string, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			text[i] = ""
		} else {
			text[i] = FormatFloat(v)
		}
	}
	return Column{Name: name, Type: Numeric, Text: text, Floats: values}
}

// TextColumn builds a categorical Column from raw values.
func TextColumn(name string, values []string) Column {
	return Column{Name: name, Type: Categorical, Text: values}
}

// FormatFloat renders a float compactly: whole numbers without decimals,
// fractional values with up to four significant decimals.
func FormatFloat(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func copyColumn(c Column) Column {
	nc := Column{Name: c.Name, Type: c.Type, Text: append([]string(nil), c.Text...)}
	if c.Floats != nil {
		nc.Floats = append([]float64(nil), c.Floats...)
	}
	return nc
}

func sequence(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = i
	}
	return s
}
