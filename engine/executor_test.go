package engine

import (
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/insight/dataset"
	"github.com/spektr-org/insight/plan"
	"github.com/spektr-org/insight/resolve"
)

// ============================================================================
// EXECUTOR TESTS
// ============================================================================

func salesTable(t *testing.T) *dataset.Table {
	t.Helper()
	table, err := dataset.New([]dataset.Column{
		dataset.TextColumn("region", []string{"West", "East", "West", "South", "East"}),
		dataset.TextColumn("product", []string{"Widget", "Widget", "Gadget", "Widget", "Gadget"}),
		dataset.NumericColumn("revenue", []float64{1200, 800, 950, math.NaN(), 1100}),
		dataset.NumericColumn("units", []float64{3, 2, 1, 4, 2}),
		{Name: "order_date", Type: dataset.Datetime,
			Text: []string{"2026-01-17", "2026-01-15", "2026-01-16", "2026-01-18", "2026-01-19"}},
	})
	require.NoError(t, err)
	return table
}

func newTestExecutor(t *testing.T) *Executor {
	t.Helper()
	return NewExecutor(zerolog.New(zerolog.NewTestWriter(t)))
}

func TestExecuteGroupedSum(t *testing.T) {
	p := plan.NewAggregation([]string{"revenue"}, []string{"region"}, plan.Sum)

	out, err := newTestExecutor(t).Execute(p, salesTable(t))
	require.NoError(t, err)
	require.NotNil(t, out.Table)

	region, _ := out.Table.Column("region")
	rev, _ := out.Table.Column("revenue")
	assert.Equal(t, []string{"East", "South", "West"}, region.Text, "groups sorted ascending")
	assert.Equal(t, []float64{1900, 0, 2150}, rev.Floats, "missing-only group sums to zero")
}

func TestExecuteWholeTableMean(t *testing.T) {
	p := plan.NewAggregation([]string{"units"}, nil, plan.Mean)

	out, err := newTestExecutor(t).Execute(p, salesTable(t))
	require.NoError(t, err)
	require.Equal(t, 1, out.Table.NumRows())

	units, _ := out.Table.Column("units")
	assert.InDelta(t, 2.4, units.Floats[0], 0.001)
}

func TestExecuteCountWithoutMetric(t *testing.T) {
	p := plan.NewAggregation(nil, []string{"product"}, plan.Count)

	out, err := newTestExecutor(t).Execute(p, salesTable(t))
	require.NoError(t, err)

	product, _ := out.Table.Column("product")
	count, _ := out.Table.Column("count")
	assert.Equal(t, []string{"Gadget", "Widget"}, product.Text)
	assert.Equal(t, []float64{2, 3}, count.Floats)
}

func TestExecuteTopK(t *testing.T) {
	p := plan.NewAggregation([]string{"revenue"}, []string{"region"}, plan.Sum)
	p.TopK = 2

	out, err := newTestExecutor(t).Execute(p, salesTable(t))
	require.NoError(t, err)
	require.Equal(t, 2, out.Table.NumRows())

	region, _ := out.Table.Column("region")
	rev, _ := out.Table.Column("revenue")
	assert.Equal(t, []string{"West", "East"}, region.Text, "descending by the first metric")
	assert.Equal(t, []float64{2150, 1900}, rev.Floats)
}

func TestExecuteFiltersApply(t *testing.T) {
	p := plan.NewAggregation([]string{"revenue"}, []string{"region"}, plan.Sum)
	p.Filters = map[string]string{"product": "Widget"}

	out, err := newTestExecutor(t).Execute(p, salesTable(t))
	require.NoError(t, err)

	region, _ := out.Table.Column("region")
	rev, _ := out.Table.Column("revenue")
	assert.Equal(t, []string{"East", "South", "West"}, region.Text)
	assert.Equal(t, []float64{800, 0, 1200}, rev.Floats)
}

func TestExecuteRequestedMetricAmbiguous(t *testing.T) {
	table, err := dataset.New([]dataset.Column{
		dataset.TextColumn("region", []string{"West"}),
		dataset.NumericColumn("revenue_gross", []float64{10}),
		dataset.NumericColumn("revenue_net", []float64{8}),
	})
	require.NoError(t, err)

	p := plan.NewAggregation([]string{"revenue"}, []string{"region"}, plan.Sum)
	_, err = newTestExecutor(t).Execute(p, table)

	var amb *resolve.AmbiguityError
	require.ErrorAs(t, err, &amb)
}

func TestExecuteAggregationNoMetric(t *testing.T) {
	p := plan.NewAggregation([]string{"profit_margin"}, []string{"region"}, plan.Sum)

	_, err := newTestExecutor(t).Execute(p, salesTable(t))
	var ee *ExecutionError
	require.ErrorAs(t, err, &ee)
}

func TestExecuteDataQuality(t *testing.T) {
	out, err := newTestExecutor(t).Execute(plan.NewDataQuality(), salesTable(t))
	require.NoError(t, err)
	require.NotNil(t, out.Quality)

	assert.Equal(t, 5, out.Quality.RowCount)
	assert.Equal(t, 0, out.Quality.DuplicateRows)
	assert.InDelta(t, 20.0, out.Quality.MissingPct["revenue"], 0.01)
	assert.Equal(t, "numeric", out.Quality.Dtypes["revenue"])
}

func TestExecuteSummaryDescribe(t *testing.T) {
	out, err := newTestExecutor(t).Execute(plan.NewSummary([]string{"revenue"}), salesTable(t))
	require.NoError(t, err)
	require.Equal(t, 1, out.Table.NumRows())

	count, _ := out.Table.Column("count")
	mean, _ := out.Table.Column("mean")
	minC, _ := out.Table.Column("min")
	maxC, _ := out.Table.Column("max")
	assert.Equal(t, 4.0, count.Floats[0], "missing cells excluded from count")
	assert.InDelta(t, 1012.5, mean.Floats[0], 0.001)
	assert.Equal(t, 800.0, minC.Floats[0])
	assert.Equal(t, 1200.0, maxC.Floats[0])
}

func TestExecuteSummaryWholeTable(t *testing.T) {
	out, err := newTestExecutor(t).Execute(plan.NewSummary(nil), salesTable(t))
	require.NoError(t, err)
	assert.Equal(t, 5, out.Table.NumRows(), "one row per input column")

	col, _ := out.Table.Column("column")
	assert.Contains(t, col.Text, "region")
	assert.Contains(t, col.Text, "revenue")
}

func TestExecuteBarChart(t *testing.T) {
	p := plan.NewVisualization(plan.Bar, []string{"revenue"}, []string{"region"}, "region", "revenue")

	out, err := newTestExecutor(t).Execute(p, salesTable(t))
	require.NoError(t, err)
	require.NotNil(t, out.Chart)

	assert.Equal(t, plan.Bar, out.Chart.Type)
	assert.Equal(t, "revenue by region", out.Chart.Title)
	require.Len(t, out.Chart.Points, 3)
	assert.Equal(t, Point{Label: "East", Value: 1900}, out.Chart.Points[0])
}

func TestExecuteGroupedChartWithoutX(t *testing.T) {
	// Deserialized plans may carry group columns but no x; the first
	// group column serves as the axis.
	p := plan.NewVisualization(plan.Bar, []string{"revenue"}, []string{"region"}, "", "revenue")

	out, err := newTestExecutor(t).Execute(p, salesTable(t))
	require.NoError(t, err)
	require.NotNil(t, out.Chart)

	assert.Equal(t, "region", out.Chart.XLabel)
	assert.Equal(t, "revenue by region", out.Chart.Title)
	require.Len(t, out.Chart.Points, 3)
	assert.Equal(t, Point{Label: "East", Value: 1900}, out.Chart.Points[0])
}

func TestExecuteBarChartCategoryCap(t *testing.T) {
	n := MaxBarCategories + 10
	labels := make([]string, n)
	values := make([]float64, n)
	for i := range labels {
		labels[i] = string(rune('a'+i%26)) + string(rune('a'+i/26))
		values[i] = float64(i)
	}
	table, err := dataset.New([]dataset.Column{
		dataset.TextColumn("sku", labels),
		dataset.NumericColumn("revenue", values),
	})
	require.NoError(t, err)

	p := plan.NewVisualization(plan.Bar, []string{"revenue"}, []string{"sku"}, "sku", "revenue")
	out, err := newTestExecutor(t).Execute(p, table)
	require.NoError(t, err)
	assert.Len(t, out.Chart.Points, MaxBarCategories)
}

func TestExecuteLineChartSortsByDate(t *testing.T) {
	p := plan.NewVisualization(plan.Line, []string{"revenue"}, nil, "order_date", "revenue")

	out, err := newTestExecutor(t).Execute(p, salesTable(t))
	require.NoError(t, err)

	// Row four's revenue is missing, so its point is dropped; the rest
	// come back in chronological order.
	require.Len(t, out.Chart.Points, 4)
	assert.Equal(t, "2026-01-15", out.Chart.Points[0].Label)
	assert.Equal(t, "2026-01-19", out.Chart.Points[3].Label)
	assert.Equal(t, "revenue over order_date", out.Chart.Title)
}

func TestExecuteLineChartSyntheticIndex(t *testing.T) {
	table, err := dataset.New([]dataset.Column{
		dataset.NumericColumn("revenue", []float64{30, 10, 20}),
	})
	require.NoError(t, err)

	p := plan.NewVisualization(plan.Line, []string{"revenue"}, nil, dataset.IndexColumn, "revenue")
	out, err := newTestExecutor(t).Execute(p, table)
	require.NoError(t, err)

	require.Len(t, out.Chart.Points, 3)
	assert.Equal(t, "0", out.Chart.Points[0].Label, "index axis keeps row order")
	assert.Equal(t, 30.0, out.Chart.Points[0].Value)
}

func TestExecuteHistogram(t *testing.T) {
	p := plan.NewVisualization(plan.Hist, []string{"revenue"}, nil, "", "revenue")

	out, err := newTestExecutor(t).Execute(p, salesTable(t))
	require.NoError(t, err)

	assert.Equal(t, "Histogram of revenue", out.Chart.Title)
	assert.Len(t, out.Chart.Values, 4, "missing values excluded")
}

func TestExecuteChartUnknownColumns(t *testing.T) {
	exec := newTestExecutor(t)

	p := plan.NewVisualization(plan.Bar, []string{"revenue"}, nil, "nope", "revenue")
	_, err := exec.Execute(p, salesTable(t))
	var ee *ExecutionError
	require.ErrorAs(t, err, &ee)

	p = plan.NewVisualization(plan.Hist, nil, nil, "", "nope")
	_, err = exec.Execute(p, salesTable(t))
	require.ErrorAs(t, err, &ee)
}

func TestExecuteInvalidPlan(t *testing.T) {
	p := &plan.Plan{TaskType: plan.Aggregation, ChartType: plan.Bar}

	_, err := newTestExecutor(t).Execute(p, salesTable(t))
	var verr *plan.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestExecuteNilInputs(t *testing.T) {
	exec := newTestExecutor(t)

	_, err := exec.Execute(nil, salesTable(t))
	assert.Error(t, err)

	_, err = exec.Execute(plan.NewDataQuality(), nil)
	assert.Error(t, err)
}
