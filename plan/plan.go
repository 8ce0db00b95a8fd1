package plan

import (
	"encoding/json"
	"fmt"
)

// ============================================================================
// ANALYSIS PLAN — Contract between planner and executor
// ============================================================================
// The Plan is the structured, serializable description of what analysis to
// run. The planner produces it, follow-up handling may adjust it before
// execution, the executor consumes it read-only, and the caller carries
// the most recent plan forward for follow-up questions.
// ============================================================================

// TaskType selects which executor branch interprets the plan.
type TaskType string

const (
	DataQuality   TaskType = "data_quality"
	Summary       TaskType = "summary"
	Aggregation   TaskType = "aggregation"
	Visualization TaskType = "visualization"
)

// Agg is the aggregation applied to metric columns.
type Agg string

const (
	Sum   Agg = "sum"
	Mean  Agg = "mean"
	Min   Agg = "min"
	Max   Agg = "max"
	Count Agg = "count"
	Std   Agg = "std"
)

// ChartType selects the visualization shape.
type ChartType string

const (
	Bar     ChartType = "bar"
	Line    ChartType = "line"
	Hist    ChartType = "hist"
	Scatter ChartType = "scatter"
)

// Plan describes one analysis. Fields apply per task type; Validate
// rejects combinations the executor would not honor.
type Plan struct {
	TaskType TaskType          `json:"task_type"`
	Metrics  []string          `json:"metrics"`
	GroupBy  []string          `json:"group_by"`
	Filters  map[string]string `json:"filters"`

	Agg      Agg  `json:"agg,omitempty"`
	TopK     int  `json:"top_k,omitempty"`
	SortDesc bool `json:"sort_desc"`

	ChartType ChartType `json:"chart_type,omitempty"`
	X         string    `json:"x,omitempty"`
	Y         string    `json:"y,omitempty"`
}

// NewDataQuality builds a parameterless data-quality plan.
func NewDataQuality() *Plan {
	return &Plan{TaskType: DataQuality, SortDesc: true}
}

// NewSummary builds a summary plan over the given metric columns (may be
// empty to summarize the whole dataset).
func NewSummary(metrics []string) *Plan {
	return &Plan{TaskType: Summary, Metrics: metrics, SortDesc: true}
}

// NewAggregation builds an aggregation plan. agg defaults to sum.
func NewAggregation(metrics, groupBy []string, agg Agg) *Plan {
	if agg == "" {
		agg = Sum
	}
	return &Plan{
		TaskType: Aggregation,
		Metrics:  metrics,
		GroupBy:  groupBy,
		Agg:      agg,
		SortDesc: true,
	}
}

// NewVisualization builds a visualization plan. agg defaults to sum and is
// used only when group-by pre-aggregation applies.
func NewVisualization(chart ChartType, metrics, groupBy []string, x, y string) *Plan {
	return &Plan{
		TaskType:  Visualization,
		Metrics:   metrics,
		GroupBy:   groupBy,
		Agg:       Sum,
		SortDesc:  true,
		ChartType: chart,
		X:         x,
		Y:         y,
	}
}

// ValidationError reports a field combination the executor cannot honor.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid plan: %s %s", e.Field, e.Reason)
}

// Validate checks task-type field applicability and required fields.
func (p *Plan) Validate() error {
	switch p.TaskType {
	case DataQuality:
		if len(p.Metrics) > 0 || len(p.GroupBy) > 0 || p.ChartType != "" {
			return &ValidationError{Field: "task_type", Reason: "data_quality takes no parameters"}
		}
	case Summary:
		if p.ChartType != "" || p.X != "" || p.Y != "" {
			return &ValidationError{Field: "chart_type", Reason: "does not apply to summary"}
		}
		if p.TopK != 0 {
			return &ValidationError{Field: "top_k", Reason: "does not apply to summary"}
		}
	case Aggregation:
		if p.ChartType != "" || p.X != "" || p.Y != "" {
			return &ValidationError{Field: "chart_type", Reason: "does not apply to aggregation"}
		}
		if !validAgg(p.Agg) {
			return &ValidationError{Field: "agg", Reason: fmt.Sprintf("unknown aggregation %q", p.Agg)}
		}
		if p.TopK < 0 {
			return &ValidationError{Field: "top_k", Reason: "must be positive"}
		}
	case Visualization:
		switch p.ChartType {
		case Bar, Line, Hist, Scatter:
		case "":
			return &ValidationError{Field: "chart_type", Reason: "required for visualization"}
		default:
			return &ValidationError{Field: "chart_type", Reason: fmt.Sprintf("unknown chart type %q", p.ChartType)}
		}
		if p.ChartType != Hist && p.Y == "" {
			return &ValidationError{Field: "y", Reason: "required for non-histogram charts"}
		}
		if p.Agg != "" && !validAgg(p.Agg) {
			return &ValidationError{Field: "agg", Reason: fmt.Sprintf("unknown aggregation %q", p.Agg)}
		}
	default:
		return &ValidationError{Field: "task_type", Reason: fmt.Sprintf("unknown task type %q", p.TaskType)}
	}
	return nil
}

func validAgg(a Agg) bool {
	switch a {
	case Sum, Mean, Min, Max, Count, Std, "":
		return true
	}
	return false
}

// Clone returns a deep copy, used when a follow-up turn adjusts the
// previous plan without disturbing the caller's copy.
func (p *Plan) Clone() *Plan {
	if p == nil {
		return nil
	}
	c := *p
	c.Metrics = append([]string(nil), p.Metrics...)
	c.GroupBy = append([]string(nil), p.GroupBy...)
	if p.Filters != nil {
		c.Filters = make(map[string]string, len(p.Filters))
		for k, v := range p.Filters {
			c.Filters[k] = v
		}
	}
	return &c
}

// Marshal serializes the plan for transport across process boundaries.
func (p *Plan) Marshal() ([]byte, error) { return json.Marshal(p) }

// Unmarshal restores a plan serialized by Marshal. Round-trips are
// lossless for every field.
func Unmarshal(data []byte) (*Plan, error) {
	var p Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse plan: %w", err)
	}
	return &p, nil
}

// String renders a compact one-line description for logs and the CLI.
func (p *Plan) String() string {
	if p == nil {
		return "<no plan>"
	}
	s := string(p.TaskType)
	if len(p.Metrics) > 0 {
		s += fmt.Sprintf(" metrics=%v", p.Metrics)
	}
	if len(p.GroupBy) > 0 {
		s += fmt.Sprintf(" group_by=%v", p.GroupBy)
	}
	if p.Agg != "" && p.TaskType != DataQuality && p.TaskType != Summary {
		s += fmt.Sprintf(" agg=%s", p.Agg)
	}
	if p.TopK > 0 {
		s += fmt.Sprintf(" top_k=%d", p.TopK)
	}
	if p.ChartType != "" {
		s += fmt.Sprintf(" chart=%s x=%q y=%q", p.ChartType, p.X, p.Y)
	}
	return s
}
