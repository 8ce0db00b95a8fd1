package engine

// ============================================================================
// PIPELINE OPTIONS — Functional options for NewPipeline()
// ============================================================================

// Option configures pipeline behavior via functional options pattern.
type Option func(*Pipeline)

// WithExplainer attaches a narrator for completed turns. Without one,
// responses carry no explanation or suggestions.
func WithExplainer(x Explainer) Option {
	return func(p *Pipeline) { p.explainer = x }
}

// WithRenderer attaches a chart renderer. Without one, chart outcomes
// are returned as specs but never saved.
func WithRenderer(r Renderer) Option {
	return func(p *Pipeline) { p.renderer = r }
}
