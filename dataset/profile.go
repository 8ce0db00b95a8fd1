package dataset

import "fmt"

// Profile is the schema preview handed to callers before any question is
// asked: enough to show the shape of the data without shipping the data.
type Profile struct {
	Columns      []string            `json:"columns"`
	Dtypes       map[string]string   `json:"dtypes"`
	RowCount     int                 `json:"row_count"`
	MissingPct   map[string]float64  `json:"missing_pct"`
	UniqueCounts map[string]int      `json:"unique_counts"`
	SampleRows   []map[string]string `json:"sample_rows"`
}

// profileSampleRows is the number of leading rows included in a Profile.
const profileSampleRows = 5

// BuildProfile summarizes a table's shape.
func BuildProfile(t *Table) (*Profile, error) {
	if t == nil {
		return nil, fmt.Errorf("no table to profile")
	}
	return &Profile{
		Columns:      t.Names(),
		Dtypes:       t.Dtypes(),
		RowCount:     t.NumRows(),
		MissingPct:   t.MissingPct(),
		UniqueCounts: t.UniqueCounts(),
		SampleRows:   t.SampleRows(profileSampleRows),
	}, nil
}
