package explain

import (
	"fmt"
	"strings"

	"github.com/spektr-org/insight/engine"
	"github.com/spektr-org/insight/plan"
)

// ============================================================================
// EXPLAINER — Deterministic narration of a completed turn
// ============================================================================
// Templates only. The pipeline treats explanation text as opaque, so
// this package can be swapped for a generative backend without touching
// the engine.
// ============================================================================

// TemplateExplainer implements engine.Explainer with fixed templates.
type TemplateExplainer struct{}

// New builds a TemplateExplainer.
func New() *TemplateExplainer { return &TemplateExplainer{} }

// Explain narrates the turn: what was executed, on which columns, and a
// short note on how the answer was derived.
func (TemplateExplainer) Explain(s *engine.State) string {
	if s == nil || s.Plan == nil {
		return "No analysis was performed for this question."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Executed %s.", s.Plan.TaskType)
	if len(s.Plan.Metrics) > 0 {
		fmt.Fprintf(&b, " Metric: %s.", s.Plan.Metrics[0])
	}
	if len(s.Plan.GroupBy) > 0 {
		fmt.Fprintf(&b, " Grouped by: %s.", s.Plan.GroupBy[0])
	}
	if s.Plan.Agg != "" {
		fmt.Fprintf(&b, " Aggregation: %s.", s.Plan.Agg)
	}

	if note := taskNote(s); note != "" {
		b.WriteString(" ")
		b.WriteString(note)
	}
	return b.String()
}

func taskNote(s *engine.State) string {
	switch s.Plan.TaskType {
	case plan.DataQuality:
		return "This answer is derived from the data-quality audit, including " +
			"missing value percentages, duplicate detection, and column types."
	case plan.Visualization:
		if s.Plan.ChartType == plan.Line {
			return "Trend analysis is descriptive. Without a time column, the x axis " +
				"falls back to row order rather than real timestamps."
		}
	case plan.Aggregation:
		if s.Plan.Agg == plan.Std {
			return "Volatility here is the sample standard deviation of the metric " +
				"within each group. No probabilistic inference was used."
		}
	}
	return ""
}

// Suggest proposes follow-up questions appropriate to the task type.
func (TemplateExplainer) Suggest(s *engine.State) []string {
	if s == nil || s.Plan == nil || s.Failed() {
		return nil
	}
	switch s.Plan.TaskType {
	case plan.DataQuality:
		return []string{
			"Which columns have the most missing values?",
			"Show me a summary of the dataset",
		}
	case plan.Summary:
		return []string{
			"Do you want a breakdown by category?",
			"Should I plot the distribution?",
		}
	case plan.Aggregation:
		return []string{
			"Do you want this as a chart?",
			"How volatile is that?",
		}
	case plan.Visualization:
		return []string{
			"Do you want the underlying numbers?",
			"Should I narrow this to the top categories?",
		}
	}
	return nil
}
