package engine

import (
	"sync"

	"github.com/google/uuid"

	"github.com/spektr-org/insight/plan"
)

// ============================================================================
// MEMORY — Per-session previous-plan store
// ============================================================================
// The pipeline itself is stateless; sessions carry the single piece of
// cross-question state (the last successful plan) so follow-ups like
// "how volatile is that" can extend it.
// ============================================================================

// Snapshot is what a session remembers about its last successful turn.
type Snapshot struct {
	Question string
	Plan     *plan.Plan
}

// Memory holds session snapshots keyed by session id. Safe for
// concurrent use.
type Memory struct {
	mu       sync.Mutex
	sessions map[string]Snapshot
}

// NewMemory builds an empty store.
func NewMemory() *Memory {
	return &Memory{sessions: make(map[string]Snapshot)}
}

// NewSession registers a fresh session and returns its id.
func (m *Memory) NewSession() string {
	id := uuid.NewString()
	m.mu.Lock()
	m.sessions[id] = Snapshot{}
	m.mu.Unlock()
	return id
}

// Previous returns the session's last successful plan, or nil.
func (m *Memory) Previous(id string) *plan.Plan {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id].Plan
}

// Record stores the turn when it succeeded. Failed turns leave the
// previous snapshot intact so a follow-up still has something to extend.
func (m *Memory) Record(id string, resp *Response) {
	if resp == nil || resp.Error != "" || resp.Plan == nil {
		return
	}
	m.mu.Lock()
	m.sessions[id] = Snapshot{Question: resp.Question, Plan: resp.Plan.Clone()}
	m.mu.Unlock()
}

// Drop forgets a session.
func (m *Memory) Drop(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}
