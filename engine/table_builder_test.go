package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/insight/dataset"
	"github.com/spektr-org/insight/plan"
)

func TestFormatTableAlignment(t *testing.T) {
	table, err := dataset.New([]dataset.Column{
		dataset.TextColumn("region", []string{"East", "West"}),
		dataset.NumericColumn("revenue", []float64{1900, 2150}),
	})
	require.NoError(t, err)

	got := FormatTable(table)
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	require.Len(t, lines, 4, "header, rule, two rows")
	assert.Contains(t, lines[0], "region")
	assert.Contains(t, lines[0], "revenue")
	assert.Contains(t, lines[2], "East")
	assert.Contains(t, lines[2], "1900")
}

func TestFormatTableEmpty(t *testing.T) {
	assert.Equal(t, "(empty result)", FormatTable(nil))
}

func TestFormatQuality(t *testing.T) {
	got := FormatQuality(&QualityReport{
		RowCount:      5,
		DuplicateRows: 1,
		MissingPct:    map[string]float64{"revenue": 20},
		Dtypes:        map[string]string{"revenue": "numeric"},
	})
	assert.Contains(t, got, "Rows: 5")
	assert.Contains(t, got, "Duplicate rows: 1")
	assert.Contains(t, got, "revenue")
}

func TestFormatChart(t *testing.T) {
	got := FormatChart(&ChartSpec{
		Type:   plan.Bar,
		Title:  "revenue by region",
		Points: []Point{{Label: "East", Value: 1}},
	})
	assert.Contains(t, got, "bar chart")
	assert.Contains(t, got, "1 points")
}
