package resolve

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spektr-org/insight/dataset"
)

// ============================================================================
// METRIC / GROUP RESOLVER — Which columns does the question mean?
// ============================================================================

// Resolver guesses metric, grouping, and date columns for a question.
type Resolver struct {
	vocab Vocabulary
}

// NewResolver builds a Resolver with the given vocabulary.
func NewResolver(vocab Vocabulary) *Resolver {
	return &Resolver{vocab: vocab}
}

// Metric picks the numeric column the question most likely refers to.
// Order: direct match against numeric columns, then the business-metric
// vocabulary with the loose threshold, then the first numeric column.
func (r *Resolver) Metric(question string, t *dataset.Table) (string, bool) {
	numeric := t.NumericNames()
	if len(numeric) == 0 {
		return "", false
	}

	if col, ok := BestMatch(question, numeric, DefaultMinScore); ok {
		return col, true
	}

	q := strings.ToLower(question)
	for _, kw := range r.vocab.MetricKeywords {
		if strings.Contains(q, kw) {
			for _, probe := range r.vocab.MetricKeywords {
				if col, ok := BestMatch(probe, numeric, LooseMinScore); ok {
					return col, true
				}
			}
			break
		}
	}

	return numeric[0], true
}

var trailingByRe = regexp.MustCompile(`\bby\s+([a-z0-9_ ]+)$`)

// GroupBy picks the grouping column. A trailing "by <text>" clause is
// matched first; failing that the whole question, then the first
// categorical column.
func (r *Resolver) GroupBy(question string, t *dataset.Table) (string, bool) {
	cats := t.CategoricalNames()
	if len(cats) == 0 {
		return "", false
	}

	q := strings.ToLower(strings.TrimSpace(question))
	if m := trailingByRe.FindStringSubmatch(q); m != nil {
		if col, ok := BestMatch(strings.TrimSpace(m[1]), cats, DefaultMinScore); ok {
			return col, true
		}
	}

	if col, ok := BestMatch(question, cats, DefaultMinScore); ok {
		return col, true
	}

	return cats[0], true
}

// DateColumn finds a date-like column: name-based vocabulary probes first,
// then any column whose inferred type is datetime.
func (r *Resolver) DateColumn(t *dataset.Table) (string, bool) {
	names := t.Names()
	for _, kw := range r.vocab.DateKeywords {
		if col, ok := BestMatch(kw, names, LooseMinScore); ok {
			return col, true
		}
	}
	if dates := t.DatetimeNames(); len(dates) > 0 {
		return dates[0], true
	}
	return "", false
}

// ============================================================================
// REQUESTED-METRIC RESOLUTION — Caller-supplied names → actual columns
// ============================================================================

// AmbiguityError reports a requested metric that matches several columns.
type AmbiguityError struct {
	Metric     string
	Candidates []string
	Available  []string
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("cannot uniquely resolve metric %q: candidates %v (available columns: %v)",
		e.Metric, e.Candidates, e.Available)
}

// Requested maps requested metric names onto dataset columns. Exact
// matches win; otherwise a unique prefix match, then a unique substring
// match. A name with several candidates is an AmbiguityError; a name with
// none is dropped so the executor can decide whether an empty metric list
// is fatal.
func Requested(names []string, t *dataset.Table) ([]string, error) {
	columns := t.Names()
	lower := make(map[string]string, len(columns))
	for _, c := range columns {
		lower[strings.ToLower(c)] = c
	}

	var resolved []string
	for _, name := range names {
		nameL := strings.ToLower(name)
		if actual, ok := lower[nameL]; ok {
			resolved = append(resolved, actual)
			continue
		}

		var candidates, prefixes []string
		for _, c := range columns {
			cl := strings.ToLower(c)
			if strings.Contains(cl, nameL) || strings.Contains(nameL, cl) {
				candidates = append(candidates, c)
				if strings.HasPrefix(cl, nameL) {
					prefixes = append(prefixes, c)
				}
			}
		}

		switch {
		case len(prefixes) == 1:
			resolved = append(resolved, prefixes[0])
		case len(candidates) == 1:
			resolved = append(resolved, candidates[0])
		case len(candidates) > 1:
			return nil, &AmbiguityError{Metric: name, Candidates: candidates, Available: columns}
		}
	}
	return resolved, nil
}
