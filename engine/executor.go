package engine

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/spektr-org/insight/dataset"
	"github.com/spektr-org/insight/plan"
	"github.com/spektr-org/insight/resolve"
)

// ============================================================================
// EXECUTOR — Interprets an analysis plan against a dataset
// ============================================================================
// One terminal branch per task type. The dataset is read-only: every
// branch that needs a modified view works on a derived table. All
// failures, including panics from unexpected data shapes, surface as an
// error return. This function never calls an AI service — all
// computation is local.
// ============================================================================

// ExecutionError reports a failure while interpreting a plan.
type ExecutionError struct {
	Reason string
	Err    error
}

func (e *ExecutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("execution failed: %s: %v", e.Reason, e.Err)
	}
	return "execution failed: " + e.Reason
}

func (e *ExecutionError) Unwrap() error { return e.Err }

func execErr(format string, args ...any) error {
	return &ExecutionError{Reason: fmt.Sprintf(format, args...)}
}

// QualityReport is the data-quality branch output.
type QualityReport struct {
	DuplicateRows int                `json:"duplicate_rows"`
	RowCount      int                `json:"row_count"`
	MissingPct    map[string]float64 `json:"missing_pct"`
	Dtypes        map[string]string  `json:"dtypes"`
}

// Outcome is an execution result: exactly one field is set.
type Outcome struct {
	Table   *dataset.Table `json:"table,omitempty"`
	Chart   *ChartSpec     `json:"chart,omitempty"`
	Quality *QualityReport `json:"quality,omitempty"`
}

// Executor runs plans.
type Executor struct {
	logger zerolog.Logger
}

// NewExecutor builds an Executor.
func NewExecutor(logger zerolog.Logger) *Executor {
	return &Executor{logger: logger}
}

// Execute interprets the plan. The plan and dataset are consumed
// read-only.
func (e *Executor) Execute(p *plan.Plan, t *dataset.Table) (out *Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = &ExecutionError{Reason: fmt.Sprintf("internal failure: %v", r)}
		}
	}()

	if t == nil {
		return nil, execErr("no dataset available for execution")
	}
	if p == nil {
		return nil, execErr("no plan available for execution")
	}
	if verr := p.Validate(); verr != nil {
		return nil, verr
	}

	e.logger.Debug().
		Str("task", string(p.TaskType)).
		Int("rows", t.NumRows()).
		Msg("executing plan")

	work := t
	if p.TaskType == plan.Aggregation || p.TaskType == plan.Visualization {
		for col, val := range p.Filters {
			work = work.FilterEqual(col, val)
		}
	}

	switch p.TaskType {
	case plan.DataQuality:
		return e.runDataQuality(work)
	case plan.Summary:
		return e.runSummary(p, work)
	case plan.Aggregation:
		return e.runAggregation(p, work)
	case plan.Visualization:
		return e.runVisualization(p, work)
	default:
		return nil, execErr("unknown task type %q", p.TaskType)
	}
}

// ─── data_quality ──────────────────────────────────────────────────────────

func (e *Executor) runDataQuality(t *dataset.Table) (*Outcome, error) {
	return &Outcome{Quality: &QualityReport{
		DuplicateRows: t.DuplicateRows(),
		RowCount:      t.NumRows(),
		MissingPct:    t.MissingPct(),
		Dtypes:        t.Dtypes(),
	}}, nil
}

// ─── summary ───────────────────────────────────────────────────────────────

func (e *Executor) runSummary(p *plan.Plan, t *dataset.Table) (*Outcome, error) {
	target := t
	if len(p.Metrics) > 0 {
		resolved, err := resolve.Requested(p.Metrics, t)
		if err != nil {
			return nil, err
		}
		if len(resolved) == 0 {
			return nil, execErr("no valid metric columns found for summary")
		}
		target, err = t.Select(resolved)
		if err != nil {
			return nil, &ExecutionError{Reason: "failed to select summary columns", Err: err}
		}
	}
	return &Outcome{Table: describe(target)}, nil
}

// describe builds per-column descriptive statistics, one output row per
// input column. Numeric statistics stay NaN for non-numeric columns.
func describe(t *dataset.Table) *dataset.Table {
	n := t.NumCols()
	names := make([]string, n)
	counts := make([]float64, n)
	uniques := make([]float64, n)
	tops := make([]string, n)
	freqs := make([]float64, n)
	means := make([]float64, n)
	stds := make([]float64, n)
	mins := make([]float64, n)
	maxs := make([]float64, n)

	hasNumeric := false
	for i, c := range t.Columns() {
		names[i] = c.Name

		count := 0
		freq := make(map[string]int)
		var order []string
		for ri := 0; ri < c.Len(); ri++ {
			if c.Missing(ri) {
				continue
			}
			count++
			if freq[c.Text[ri]] == 0 {
				order = append(order, c.Text[ri])
			}
			freq[c.Text[ri]]++
		}
		counts[i] = float64(count)
		uniques[i] = float64(len(freq))

		top, topN := "", 0
		for _, v := range order {
			if freq[v] > topN {
				top, topN = v, freq[v]
			}
		}
		tops[i] = top
		freqs[i] = float64(topN)

		means[i], stds[i], mins[i], maxs[i] = math.NaN(), math.NaN(), math.NaN(), math.NaN()
		if c.IsNumeric() {
			hasNumeric = true
			idx := allIndices(c.Len())
			means[i] = aggregate(c.Floats, idx, plan.Mean)
			stds[i] = aggregate(c.Floats, idx, plan.Std)
			mins[i] = aggregate(c.Floats, idx, plan.Min)
			maxs[i] = aggregate(c.Floats, idx, plan.Max)
		}
	}

	cols := []dataset.Column{
		dataset.TextColumn("column", names),
		dataset.NumericColumn("count", counts),
		dataset.NumericColumn("unique", uniques),
		dataset.TextColumn("top", tops),
		dataset.NumericColumn("freq", freqs),
	}
	// Numeric statistics only appear when at least one column is numeric.
	if hasNumeric {
		cols = append(cols,
			dataset.NumericColumn("mean", means),
			dataset.NumericColumn("std", stds),
			dataset.NumericColumn("min", mins),
			dataset.NumericColumn("max", maxs),
		)
	}
	out, _ := dataset.New(cols)
	return out
}

// ─── aggregation ───────────────────────────────────────────────────────────

func (e *Executor) runAggregation(p *plan.Plan, t *dataset.Table) (*Outcome, error) {
	metrics, err := resolve.Requested(p.Metrics, t)
	if err != nil {
		return nil, err
	}
	groups := existingColumns(p.GroupBy, t)

	if p.Agg != plan.Count && len(metrics) == 0 {
		return nil, execErr("no valid numeric metric columns found for aggregation")
	}

	// Coerce every metric up front; unparsable cells become missing.
	metricValues := make(map[string][]float64, len(metrics))
	for _, m := range metrics {
		c, _ := t.Column(m)
		metricValues[m] = dataset.CoerceColumn(c)
	}

	var result *dataset.Table
	if len(groups) > 0 {
		result = aggregateGrouped(t, groups, metrics, metricValues, p.Agg)
	} else {
		result = aggregateWhole(t, metrics, metricValues, p.Agg)
	}

	if p.TopK > 0 && p.Agg != plan.Count && len(metrics) > 0 {
		first, _ := result.Column(metrics[0])
		order := allIndices(result.NumRows())
		sortIndicesByValue(order, first.Floats, p.SortDesc)
		if len(order) > p.TopK {
			order = order[:p.TopK]
		}
		result = result.TakeRows(order)
	}

	return &Outcome{Table: zeroFillNumeric(result)}, nil
}

func aggregateGrouped(
	t *dataset.Table,
	groups, metrics []string,
	metricValues map[string][]float64,
	agg plan.Agg,
) *dataset.Table {
	rowGroups := groupRows(t, groups)

	cols := make([]dataset.Column, 0, len(groups)+len(metrics)+1)
	for gi, g := range groups {
		values := make([]string, len(rowGroups))
		for ri, rg := range rowGroups {
			values[ri] = rg.values[gi]
		}
		cols = append(cols, dataset.TextColumn(g, values))
	}

	if agg == plan.Count {
		counts := make([]float64, len(rowGroups))
		for ri, rg := range rowGroups {
			counts[ri] = float64(len(rg.indices))
		}
		cols = append(cols, dataset.NumericColumn("count", counts))
	} else {
		for _, m := range metrics {
			values := make([]float64, len(rowGroups))
			for ri, rg := range rowGroups {
				values[ri] = aggregate(metricValues[m], rg.indices, agg)
			}
			cols = append(cols, dataset.NumericColumn(m, values))
		}
	}

	out, _ := dataset.New(cols)
	return out
}

func aggregateWhole(
	t *dataset.Table,
	metrics []string,
	metricValues map[string][]float64,
	agg plan.Agg,
) *dataset.Table {
	if agg == plan.Count {
		out, _ := dataset.New([]dataset.Column{
			dataset.NumericColumn("count", []float64{float64(t.NumRows())}),
		})
		return out
	}

	idx := allIndices(t.NumRows())
	cols := make([]dataset.Column, len(metrics))
	for i, m := range metrics {
		cols[i] = dataset.NumericColumn(m, []float64{aggregate(metricValues[m], idx, agg)})
	}
	out, _ := dataset.New(cols)
	return out
}

// ─── visualization ─────────────────────────────────────────────────────────

func (e *Executor) runVisualization(p *plan.Plan, t *dataset.Table) (*Outcome, error) {
	if p.ChartType == plan.Hist {
		return e.runHistogram(p, t)
	}

	work := t
	if p.X == dataset.IndexColumn {
		work = work.WithIndex()
	}
	// Grouped plans derive their axis from the first group column, so x
	// only has to resolve when there is nothing to group by.
	groups := existingColumns(p.GroupBy, work)
	if len(groups) == 0 && (p.X == "" || !work.Has(p.X)) {
		return nil, execErr("invalid plot column: x=%q not found in dataset", p.X)
	}
	ycol, ok := work.Column(p.Y)
	if !ok {
		return nil, execErr("invalid plot column: y=%q not found in dataset", p.Y)
	}
	yvals := dataset.CoerceColumn(ycol)

	agg := p.Agg
	if agg == "" {
		agg = plan.Sum
	}

	xName := p.X
	var points []Point
	if len(groups) > 0 {
		// Pre-aggregate y by the group columns; the first group column
		// becomes the plotted axis.
		xName = groups[0]
		for _, rg := range groupRows(work, groups) {
			v := aggregate(yvals, rg.indices, agg)
			if math.IsNaN(v) {
				continue
			}
			points = append(points, Point{Label: rg.values[0], Value: v})
		}
	} else {
		xcol, _ := work.Column(xName)
		for i := 0; i < work.NumRows(); i++ {
			if math.IsNaN(yvals[i]) {
				continue
			}
			points = append(points, Point{Label: xcol.Text[i], Value: yvals[i]})
		}
	}

	xcol, _ := work.Column(xName)
	spec := &ChartSpec{
		Type:   p.ChartType,
		XLabel: xName,
		YLabel: p.Y,
		Hints:  defaultHints(),
	}

	switch p.ChartType {
	case plan.Line:
		sortPointsByX(points, xcol)
		spec.Title = fmt.Sprintf("%s over %s", p.Y, xName)
	case plan.Scatter:
		spec.Title = fmt.Sprintf("%s vs %s", p.Y, xName)
	default:
		if distinctLabels(points) > MaxBarCategories {
			points = points[:MaxBarCategories]
		}
		spec.Title = fmt.Sprintf("%s by %s", p.Y, xName)
	}
	spec.Points = points

	return &Outcome{Chart: spec}, nil
}

func (e *Executor) runHistogram(p *plan.Plan, t *dataset.Table) (*Outcome, error) {
	ycol, ok := t.Column(p.Y)
	if !ok {
		return nil, execErr("histogram needs a numeric column; ask like: 'hist <numeric_col>'")
	}

	var values []float64
	for _, v := range dataset.CoerceColumn(ycol) {
		if !math.IsNaN(v) {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return nil, execErr("column %q has no numeric values to plot", p.Y)
	}

	return &Outcome{Chart: &ChartSpec{
		Type:   plan.Hist,
		Title:  fmt.Sprintf("Histogram of %s", p.Y),
		YLabel: p.Y,
		Values: values,
		Hints:  defaultHints(),
	}}, nil
}

// sortPointsByX orders line-chart points along the x axis: numerically
// when x is numeric, chronologically when every label parses as a date,
// lexically otherwise. A single unparsable date disables chronological
// ordering for the whole series.
func sortPointsByX(points []Point, xcol *dataset.Column) {
	if xcol != nil && xcol.IsNumeric() {
		sort.SliceStable(points, func(a, b int) bool {
			va, _ := strconv.ParseFloat(points[a].Label, 64)
			vb, _ := strconv.ParseFloat(points[b].Label, 64)
			return va < vb
		})
		return
	}

	allDates := len(points) > 0
	for _, pt := range points {
		if _, ok := dataset.ParseDate(pt.Label); !ok {
			allDates = false
			break
		}
	}
	if allDates {
		sort.SliceStable(points, func(a, b int) bool {
			ta, _ := dataset.ParseDate(points[a].Label)
			tb, _ := dataset.ParseDate(points[b].Label)
			return ta.Before(tb)
		})
		return
	}

	sort.SliceStable(points, func(a, b int) bool {
		return points[a].Label < points[b].Label
	})
}

func distinctLabels(points []Point) int {
	seen := make(map[string]bool, len(points))
	for _, p := range points {
		seen[p.Label] = true
	}
	return len(seen)
}

func existingColumns(names []string, t *dataset.Table) []string {
	var out []string
	for _, n := range names {
		if t.Has(n) {
			out = append(out, n)
		}
	}
	return out
}
