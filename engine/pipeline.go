package engine

import (
	"github.com/rs/zerolog"

	"github.com/spektr-org/insight/dataset"
	"github.com/spektr-org/insight/plan"
	"github.com/spektr-org/insight/planner"
)

// ============================================================================
// PIPELINE — One-question orchestration
// ============================================================================
// Wires the stages in order: classify → execute → validate → route.
// One question is fully resolved before the next is accepted. The only
// cross-question state is the previous plan, supplied by the caller.
// ============================================================================

// Explainer narrates a completed turn. Implementations are free to use
// templates or anything else; the pipeline treats the output as opaque.
type Explainer interface {
	Explain(s *State) string
	Suggest(s *State) []string
}

// Pipeline runs questions end to end.
type Pipeline struct {
	classifier *planner.Classifier
	executor   *Executor
	explainer  Explainer
	renderer   Renderer
	logger     zerolog.Logger
}

// NewPipeline assembles a pipeline.
//
// Options:
//   - WithExplainer(x) — attach a turn narrator
//   - WithRenderer(r) — attach a chart renderer
func NewPipeline(c *planner.Classifier, e *Executor, logger zerolog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{classifier: c, executor: e, logger: logger}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run processes one question against the table. previous is the plan
// from the caller's most recent successful turn, or nil. Run never
// panics; every failure lands in the Response error field alongside the
// plan that was attempted.
func (p *Pipeline) Run(question string, t *dataset.Table, previous *plan.Plan) *Response {
	s := &State{Question: question, Table: t, Previous: previous}

	for {
		p.classify(s)
		if s.Err == nil {
			p.execute(s)
		}
		if s.Err == nil {
			p.validate(s)
		}

		step := Route(s)
		if step == StepRespond {
			break
		}
		p.logger.Info().
			Err(s.Err).
			Int("retries", s.Retries).
			Msg("replanning after failure")
		s.Err = nil
		s.Outcome = nil
		s.Warning = ""
	}

	return p.respond(s)
}

func (p *Pipeline) classify(s *State) {
	dec, err := p.classifier.Classify(planner.Request{
		Question: s.Question,
		Table:    s.Table,
		Previous: s.Previous,
	})
	if dec != nil {
		s.Plan = dec.Plan
		s.Confidence = dec.Confidence
		s.Rule = dec.Rule
	}
	if err != nil {
		s.Err = err
		return
	}
	if s.Plan == nil {
		s.Err = &ExecutionError{Reason: "classification produced no plan"}
	}
}

func (p *Pipeline) execute(s *State) {
	out, err := p.executor.Execute(s.Plan, s.Table)
	if err != nil {
		s.Err = err
		return
	}
	s.Outcome = out
}

func (p *Pipeline) validate(s *State) {
	v := Validate(s.Outcome)
	if !v.OK {
		s.Err = &ExecutionError{Reason: v.Reason}
		return
	}
	s.Warning = v.Warning
}

func (p *Pipeline) respond(s *State) *Response {
	resp := &Response{
		Question:   s.Question,
		Plan:       s.Plan,
		Confidence: s.Confidence,
		Rule:       s.Rule,
		Outcome:    s.Outcome,
		Warning:    s.Warning,
		Retries:    s.Retries,
	}
	if s.Err != nil {
		resp.Error = s.Err.Error()
	}
	if s.Outcome != nil && s.Outcome.Chart != nil && p.renderer != nil {
		path, err := p.renderer.Render(s.Outcome.Chart)
		if err != nil {
			p.logger.Warn().Err(err).Msg("chart render failed")
		} else {
			resp.ChartPath = path
		}
	}
	if p.explainer != nil {
		resp.Explanation = p.explainer.Explain(s)
		resp.Suggestions = p.explainer.Suggest(s)
	}
	return resp
}
