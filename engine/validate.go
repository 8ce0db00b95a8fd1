package engine

import (
	"math"

	"github.com/spektr-org/insight/dataset"
)

// ============================================================================
// VALIDATOR — Sanity checks on execution outcomes
// ============================================================================
// Catches a particular failure mode of keyword planning: a structurally
// valid plan that aggregated a mis-resolved column into a table of
// zeros or nothing at all. Validation errors feed the retry router.
// ============================================================================

// Verdict is the result of validating an Outcome.
type Verdict struct {
	OK      bool
	Reason  string
	Warning string
}

func pass() Verdict             { return Verdict{OK: true} }
func passWarn(w string) Verdict { return Verdict{OK: true, Warning: w} }
func fail(reason string) Verdict {
	return Verdict{Reason: reason}
}

// Validate inspects an execution outcome. Chart and quality outcomes
// always pass: a rendered chart spec or a quality report has already
// proven itself. Tables are checked for emptiness and degenerate
// numeric results.
func Validate(out *Outcome) Verdict {
	if out == nil {
		return fail("execution produced no result")
	}
	if out.Chart != nil || out.Quality != nil {
		return pass()
	}
	if out.Table == nil {
		return fail("execution produced no result")
	}
	return validateTable(out.Table)
}

func validateTable(t *dataset.Table) Verdict {
	if t.NumRows() == 0 {
		return fail("result is empty; the plan may have referenced missing columns")
	}

	for _, c := range t.Columns() {
		if !c.IsNumeric() || c.Len() == 0 {
			continue
		}
		allNaN, allZero := true, true
		for _, v := range c.Floats {
			if !math.IsNaN(v) {
				allNaN = false
				if v != 0 {
					allZero = false
				}
			}
		}
		if allNaN {
			return fail("column " + c.Name + " produced no numeric values; it may not be numeric")
		}
		if allZero {
			return fail("column " + c.Name + " aggregated to all zeros; the metric may be mis-resolved")
		}
	}

	if t.NumRows() < 3 {
		return passWarn("result has very few rows; consider a broader question")
	}
	return pass()
}
