package engine

import (
	"github.com/spektr-org/insight/dataset"
	"github.com/spektr-org/insight/plan"
)

// ============================================================================
// STATE — Per-question pipeline state
// ============================================================================

// State carries everything one question accumulates while moving through
// the pipeline. A fresh State is built per question; nothing is shared
// between turns except what the caller passes via Previous.
type State struct {
	Question string
	Table    *dataset.Table

	// Previous is the prior turn's plan, if any. Follow-up rules such
	// as volatility refinement extend it instead of starting over.
	Previous *plan.Plan

	Plan       *plan.Plan
	Confidence float64
	Rule       string

	Outcome *Outcome
	Err     error
	Warning string

	// Retries counts replans triggered by the router.
	Retries int
}

// Failed reports whether the turn ended in an error.
func (s *State) Failed() bool { return s.Err != nil }

// Response is the caller-facing payload for one question turn. Plan and
// confidence are populated best-effort even on failure so callers can
// see what was attempted.
type Response struct {
	Question    string     `json:"question"`
	Plan        *plan.Plan `json:"plan,omitempty"`
	Confidence  float64    `json:"confidence"`
	Rule        string     `json:"rule,omitempty"`
	Outcome     *Outcome   `json:"outcome,omitempty"`
	ChartPath   string     `json:"chart_path,omitempty"`
	Explanation string     `json:"explanation,omitempty"`
	Suggestions []string   `json:"suggestions,omitempty"`
	Warning     string     `json:"warning,omitempty"`
	Error       string     `json:"error,omitempty"`
	Retries     int        `json:"retries"`
}
