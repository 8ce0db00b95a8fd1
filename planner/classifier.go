package planner

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/spektr-org/insight/dataset"
	"github.com/spektr-org/insight/plan"
	"github.com/spektr-org/insight/resolve"
)

// ============================================================================
// INTENT CLASSIFIER — Ordered, first-match-wins rule table
// ============================================================================
// Each rule pairs a keyword predicate with a plan builder. Rules are tried
// strictly in declared order, so the earliest matching category wins:
//
//   meta > visualization > volatility > data quality > top-k >
//   aggregation > summary
//
// The order resolves genuine ambiguity — "show trend of total revenue"
// must chart a trend, not compute a total — by putting the most specific,
// least-reversible categories first. Reordering the table is a behavior
// change; the priority is covered by tests.
// ============================================================================

// Request carries everything one classification needs.
type Request struct {
	Question string
	Table    *dataset.Table
	// Previous is the plan from the last completed turn, reused by
	// follow-up rules such as volatility.
	Previous *plan.Plan
}

// Decision is a classified intent: the plan plus the heuristic confidence.
type Decision struct {
	Plan       *plan.Plan
	Confidence float64
	Rule       string
}

// ClassificationError means no intent category matched the question.
type ClassificationError struct {
	Question string
}

func (e *ClassificationError) Error() string {
	return "could not infer analysis intent from question"
}

// PlanError means a category matched but a required plan field could not
// be filled, e.g. no numeric axis for a non-histogram chart.
type PlanError struct {
	Rule   string
	Reason string
}

func (e *PlanError) Error() string { return e.Reason }

// Rule is one (predicate, builder) entry of the classification table.
type Rule struct {
	Name    string
	Matches func(q string) bool
	Build   func(req Request, q string) (*Decision, error)
}

// Classifier turns questions into Decisions using the rule table.
type Classifier struct {
	resolver *resolve.Resolver
	rules    []Rule
	logger   zerolog.Logger
}

// New builds a Classifier over the given resolver.
func New(resolver *resolve.Resolver, logger zerolog.Logger) *Classifier {
	c := &Classifier{resolver: resolver, logger: logger}
	c.rules = []Rule{
		{Name: "meta_confidence", Matches: containsAny(metaKeywords), Build: c.buildMeta},
		{Name: "visualization", Matches: containsAny(vizKeywords), Build: c.buildVisualization},
		{Name: "volatility", Matches: containsAny(volatilityKeywords), Build: c.buildVolatility},
		{Name: "data_quality", Matches: matchesDataQuality, Build: c.buildDataQuality},
		{Name: "top_k", Matches: containsAny(topKeywords), Build: c.buildTopK},
		{Name: "aggregation", Matches: containsAny(aggKeywords), Build: c.buildAggregation},
		{Name: "summary", Matches: containsAny(summaryKeywords), Build: c.buildSummary},
	}
	return c
}

// RuleNames returns the rule names in priority order.
func (c *Classifier) RuleNames() []string {
	names := make([]string, len(c.rules))
	for i, r := range c.rules {
		names[i] = r.Name
	}
	return names
}

// Classify picks the first matching rule and builds its plan. No match is
// a ClassificationError.
func (c *Classifier) Classify(req Request) (*Decision, error) {
	q := strings.ToLower(strings.TrimSpace(req.Question))
	for _, rule := range c.rules {
		if !rule.Matches(q) {
			continue
		}
		dec, err := rule.Build(req, q)
		if err != nil {
			c.logger.Debug().Str("rule", rule.Name).Err(err).Msg("rule matched but plan build failed")
			return dec, err
		}
		dec.Rule = rule.Name
		c.logger.Debug().
			Str("rule", rule.Name).
			Float64("confidence", dec.Confidence).
			Str("plan", dec.Plan.String()).
			Msg("classified question")
		return dec, nil
	}
	return nil, &ClassificationError{Question: req.Question}
}

// ============================================================================
// KEYWORD SETS
// ============================================================================

var (
	metaKeywords = []string{"how confident", "confidence", "are you confident"}

	vizKeywords = []string{
		"plot", "chart", "graph", "visualize", "visualization",
		"bar", "line", "scatter", "hist", "histogram",
		"growth", "trend", "over time", "time series", "timeseries", "timeline", "increase",
	}

	trendKeywords = []string{"growth", "trend", "over time", "time series", "timeseries", "timeline"}

	volatilityKeywords = []string{"volatility", "how volatile", "standard deviation", "std"}

	qualityKeywords = []string{
		"missing", "null", "empty", "duplicate", "duplicates",
		"cleaning", "audit", "outlier",
	}

	topKeywords = []string{"top", "highest", "largest", "biggest", "best", "rank"}

	aggKeywords = []string{"total", "sum", "average", "avg", "mean", "min", "max", "count"}

	summaryKeywords = []string{"summary", "describe", "stats", "statistics", "distribution"}
)

func containsAny(keywords []string) func(string) bool {
	return func(q string) bool {
		for _, k := range keywords {
			if strings.Contains(q, k) {
				return true
			}
		}
		return false
	}
}

var (
	wordNaRe   = regexp.MustCompile(`\bna\b|\bn/a\b`)
	wordTypeRe = regexp.MustCompile(`\btype\b`)
	topNRe     = regexp.MustCompile(`\btop\s+(\d+)\b`)
)

func matchesDataQuality(q string) bool {
	if containsAny(qualityKeywords)(q) {
		return true
	}
	if strings.Contains(q, "dtype") || strings.Contains(q, "data type") {
		return true
	}
	if wordNaRe.MatchString(q) {
		return true
	}
	return strings.Contains(q, "column") && wordTypeRe.MatchString(q)
}

// ============================================================================
// RULE BUILDERS
// ============================================================================

func (c *Classifier) buildMeta(Request, string) (*Decision, error) {
	return &Decision{Plan: plan.NewDataQuality(), Confidence: 1.0}, nil
}

func (c *Classifier) buildVisualization(req Request, q string) (*Decision, error) {
	metric, hasMetric := c.resolver.Metric(req.Question, req.Table)
	groupBy, hasGroup := c.resolver.GroupBy(req.Question, req.Table)

	chart := plan.Bar
	switch {
	case containsAny(trendKeywords)(q), strings.Contains(q, "line"):
		chart = plan.Line
	case strings.Contains(q, "scatter"):
		chart = plan.Scatter
	case strings.Contains(q, "hist"):
		chart = plan.Hist
	}

	x := ""
	if hasGroup {
		x = groupBy
	}
	if chart == plan.Line {
		if dateCol, ok := c.resolver.DateColumn(req.Table); ok {
			x = dateCol
		} else {
			x = dataset.IndexColumn
		}
	}
	if chart == plan.Hist {
		x = ""
	}

	if chart != plan.Hist && !hasMetric {
		return &Decision{Confidence: 0}, &PlanError{
			Rule:   "visualization",
			Reason: "no numeric column found to plot; ask like: 'plot <numeric_col> by <group_col>'",
		}
	}

	var metrics, groups []string
	y := ""
	if hasMetric {
		metrics = []string{metric}
		y = metric
	}
	if hasGroup {
		groups = []string{groupBy}
	}

	confidence := 0.90
	if strings.Contains(q, "growth") || strings.Contains(q, "trend") {
		confidence = 0.88
	}
	return &Decision{
		Plan:       plan.NewVisualization(chart, metrics, groups, x, y),
		Confidence: confidence,
	}, nil
}

func (c *Classifier) buildVolatility(req Request, _ string) (*Decision, error) {
	metric, hasMetric := c.resolver.Metric(req.Question, req.Table)
	groupBy, hasGroup := c.resolver.GroupBy(req.Question, req.Table)

	var p *plan.Plan
	if req.Previous != nil {
		// Follow-up turn: keep the prior metric and grouping, only
		// switch the task and aggregation.
		p = req.Previous.Clone()
	} else {
		p = plan.NewAggregation(nil, nil, plan.Std)
	}

	p.TaskType = plan.Aggregation
	p.Agg = plan.Std
	p.ChartType = ""
	p.X = ""
	p.Y = ""
	if hasMetric {
		p.Metrics = []string{metric}
	}
	if hasGroup {
		p.GroupBy = []string{groupBy}
	}
	return &Decision{Plan: p, Confidence: 0.95}, nil
}

func (c *Classifier) buildDataQuality(Request, string) (*Decision, error) {
	return &Decision{Plan: plan.NewDataQuality(), Confidence: 1.0}, nil
}

func (c *Classifier) buildTopK(req Request, q string) (*Decision, error) {
	metric, hasMetric := c.resolver.Metric(req.Question, req.Table)
	groupBy, hasGroup := c.resolver.GroupBy(req.Question, req.Table)

	topK := 5
	if m := topNRe.FindStringSubmatch(q); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			topK = n
		}
	}

	var metrics, groups []string
	if hasMetric {
		metrics = []string{metric}
	}
	if hasGroup {
		groups = []string{groupBy}
	}

	p := plan.NewAggregation(metrics, groups, plan.Sum)
	p.TopK = topK
	return &Decision{Plan: p, Confidence: 0.92}, nil
}

func (c *Classifier) buildAggregation(req Request, q string) (*Decision, error) {
	metric, hasMetric := c.resolver.Metric(req.Question, req.Table)
	groupBy, hasGroup := c.resolver.GroupBy(req.Question, req.Table)

	agg := plan.Sum
	switch {
	case strings.Contains(q, "average"), strings.Contains(q, "avg"), strings.Contains(q, "mean"):
		agg = plan.Mean
	case strings.Contains(q, "min"):
		agg = plan.Min
	case strings.Contains(q, "max"):
		agg = plan.Max
	case strings.Contains(q, "count"):
		agg = plan.Count
	}

	var metrics, groups []string
	if hasMetric && agg != plan.Count {
		metrics = []string{metric}
	}
	if hasGroup {
		groups = []string{groupBy}
	}
	return &Decision{Plan: plan.NewAggregation(metrics, groups, agg), Confidence: 0.86}, nil
}

func (c *Classifier) buildSummary(req Request, _ string) (*Decision, error) {
	var metrics []string
	if metric, ok := c.resolver.Metric(req.Question, req.Table); ok {
		metrics = []string{metric}
	}
	return &Decision{Plan: plan.NewSummary(metrics), Confidence: 0.82}, nil
}
