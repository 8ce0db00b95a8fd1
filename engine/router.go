package engine

// ============================================================================
// ROUTER — Post-validation branching
// ============================================================================

// Step is the router's instruction to the pipeline.
type Step string

const (
	// StepReplan sends the question back through classification once.
	StepReplan Step = "replan"
	// StepRespond terminates the turn with whatever the state holds.
	StepRespond Step = "respond"
)

// MaxRetries bounds replans per question. One retry is enough: the
// classifier is deterministic, so a second identical replan would loop.
const MaxRetries = 1

// Route decides the next step from the state after validation. A failed
// turn earns exactly one replan (Retries is incremented here), then the
// error stands. Route never fails.
func Route(s *State) Step {
	if s.Err == nil {
		return StepRespond
	}
	if s.Retries >= MaxRetries {
		return StepRespond
	}
	s.Retries++
	return StepReplan
}
