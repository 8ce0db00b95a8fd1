package dataset

import (
	"fmt"
	"strings"
)

// ============================================================================
// CLEANING — Audit-logged dataset preparation
// ============================================================================
// Optional preparation step surfaced by the CLI's profile command. Works
// on a copy; the input table is never touched.
// ============================================================================

// CleanReport records what cleaning changed and the resulting quality.
type CleanReport struct {
	Rows        int                `json:"rows"`
	Columns     int                `json:"columns"`
	Duplicates  int                `json:"duplicates"`
	NullPercent map[string]float64 `json:"null_percent"`
	Dtypes      map[string]string  `json:"dtypes"`
	ShapeBefore [2]int             `json:"shape_before"`
	ShapeAfter  [2]int             `json:"shape_after"`
	Audit       []string           `json:"audit"`
}

// Clean normalizes column names, drops fully empty rows, re-infers column
// types, and reports every action taken.
func Clean(t *Table) (*Table, *CleanReport) {
	report := &CleanReport{ShapeBefore: [2]int{t.NumRows(), t.NumCols()}}

	renamed := false
	names := make([]string, t.NumCols())
	for i, c := range t.Columns() {
		names[i] = normalizeName(c.Name)
		if names[i] != c.Name {
			renamed = true
		}
	}
	if renamed {
		report.Audit = append(report.Audit, "Normalized column names (lowercase, underscores).")
	}

	// Drop rows where every cell is missing.
	var keep []int
	for i := 0; i < t.NumRows(); i++ {
		empty := true
		for _, c := range t.Columns() {
			if !c.Missing(i) {
				empty = false
				break
			}
		}
		if !empty {
			keep = append(keep, i)
		}
	}
	if dropped := t.NumRows() - len(keep); dropped > 0 {
		report.Audit = append(report.Audit, fmt.Sprintf("Dropped %d fully empty rows.", dropped))
	}
	trimmed := t.TakeRows(keep)

	// Re-infer on the cleaned values so date-named and numeric-looking
	// text columns pick up their proper types.
	cols := make([]Column, trimmed.NumCols())
	for i, c := range trimmed.Columns() {
		inferred := InferColumn(names[i], c.Text)
		if inferred.Type != c.Type {
			switch inferred.Type {
			case Datetime:
				report.Audit = append(report.Audit,
					fmt.Sprintf("Parsed %q as datetime.", names[i]))
			case Numeric:
				report.Audit = append(report.Audit,
					fmt.Sprintf("Converted %q to numeric where possible.", names[i]))
			}
		}
		cols[i] = inferred
	}
	out, err := New(cols)
	if err != nil {
		// Name normalization collided; keep the originals.
		for i, c := range trimmed.Columns() {
			cols[i] = InferColumn(c.Name, c.Text)
		}
		out, _ = New(cols)
		report.Audit = append(report.Audit, "Kept original column names (normalization would collide).")
	}

	report.Rows = out.NumRows()
	report.Columns = out.NumCols()
	report.Duplicates = out.DuplicateRows()
	report.NullPercent = out.MissingPct()
	report.Dtypes = out.Dtypes()
	report.ShapeAfter = [2]int{out.NumRows(), out.NumCols()}
	if report.Duplicates > 0 {
		report.Audit = append(report.Audit,
			fmt.Sprintf("Detected %d duplicate rows.", report.Duplicates))
	}
	if len(report.Audit) == 0 {
		report.Audit = append(report.Audit, "No cleaning actions were necessary.")
	}
	return out, report
}

func normalizeName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, " ", "_")
	return n
}
