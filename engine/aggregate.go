package engine

import (
	"math"
	"sort"
	"strings"

	"github.com/spektr-org/insight/dataset"
	"github.com/spektr-org/insight/plan"
)

// ============================================================================
// AGGREGATION PRIMITIVES — Grouping plus missing-aware fold functions
// ============================================================================
// Missing values (NaN) are skipped by every aggregation. Group keys sort
// ascending by their component values, so grouped output is deterministic
// regardless of row order.
// ============================================================================

const keySep = "\x1f"

// rowGroup is one group of row indices sharing the same key values.
type rowGroup struct {
	values  []string // one value per group-by column
	indices []int
}

// groupRows partitions row indices by the values of the named columns.
// Groups come back sorted ascending by key.
func groupRows(t *dataset.Table, groupBy []string) []rowGroup {
	cols := make([]*dataset.Column, len(groupBy))
	for i, name := range groupBy {
		c, _ := t.Column(name)
		cols[i] = c
	}

	byKey := make(map[string]*rowGroup)
	var keys []string
	for ri := 0; ri < t.NumRows(); ri++ {
		parts := make([]string, len(cols))
		for ci, c := range cols {
			parts[ci] = c.Text[ri]
		}
		key := strings.Join(parts, keySep)
		g, ok := byKey[key]
		if !ok {
			g = &rowGroup{values: parts}
			byKey[key] = g
			keys = append(keys, key)
		}
		g.indices = append(g.indices, ri)
	}

	sort.Strings(keys)
	groups := make([]rowGroup, len(keys))
	for i, k := range keys {
		groups[i] = *byKey[k]
	}
	return groups
}

// aggregate folds the values at the given indices. Count counts rows; the
// others skip missing values. An aggregation with no observations yields
// NaN, except sum which yields zero.
func aggregate(values []float64, indices []int, agg plan.Agg) float64 {
	if agg == plan.Count {
		return float64(len(indices))
	}

	var observed []float64
	for _, i := range indices {
		if !math.IsNaN(values[i]) {
			observed = append(observed, values[i])
		}
	}

	switch agg {
	case plan.Sum, "":
		total := 0.0
		for _, v := range observed {
			total += v
		}
		return total
	case plan.Mean:
		if len(observed) == 0 {
			return math.NaN()
		}
		total := 0.0
		for _, v := range observed {
			total += v
		}
		return total / float64(len(observed))
	case plan.Min:
		if len(observed) == 0 {
			return math.NaN()
		}
		m := observed[0]
		for _, v := range observed[1:] {
			if v < m {
				m = v
			}
		}
		return m
	case plan.Max:
		if len(observed) == 0 {
			return math.NaN()
		}
		m := observed[0]
		for _, v := range observed[1:] {
			if v > m {
				m = v
			}
		}
		return m
	case plan.Std:
		return sampleStd(observed)
	default:
		total := 0.0
		for _, v := range observed {
			total += v
		}
		return total
	}
}

// sampleStd is the n-1 denominator standard deviation. Fewer than two
// observations give NaN.
func sampleStd(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return math.NaN()
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(n)

	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}

// allIndices returns 0..n-1.
func allIndices(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// sortIndicesByValue orders row indices by the given values, missing
// last in either direction.
func sortIndicesByValue(indices []int, values []float64, desc bool) {
	sort.SliceStable(indices, func(a, b int) bool {
		va, vb := values[indices[a]], values[indices[b]]
		na, nb := math.IsNaN(va), math.IsNaN(vb)
		if na || nb {
			return !na && nb
		}
		if desc {
			return va > vb
		}
		return va < vb
	})
}

// zeroFillNumeric replaces every missing value in the table's numeric
// columns with zero, rebuilding the text view to match. Lossy on purpose:
// downstream consumers stay numeric-safe.
func zeroFillNumeric(t *dataset.Table) *dataset.Table {
	cols := make([]dataset.Column, 0, t.NumCols())
	for _, c := range t.Columns() {
		if c.Type == dataset.Numeric {
			filled := make([]float64, len(c.Floats))
			for i, v := range c.Floats {
				if math.IsNaN(v) {
					filled[i] = 0
				} else {
					filled[i] = v
				}
			}
			cols = append(cols, dataset.NumericColumn(c.Name, filled))
			continue
		}
		cols = append(cols, c)
	}
	out, _ := dataset.New(cols)
	return out
}
