// Package registry holds the in-memory agent roster and each agent's single work slot.
//
// Selection is first-eligible-free in roster order. There is no load balancing or
// least-recently-used tie-break; callers and tests rely on this determinism. A
// different policy would replace FindEligibleFree/ClaimFirstEligible ordering only.
package registry

import (
	"sync"

	"github.com/azlan18/iDEA/internal/domain"
	apperrors "github.com/azlan18/iDEA/pkg/util/errorutil"
)

type slot struct {
	agent   domain.Agent
	current string
}

// Registry is safe for concurrent use. One registry-wide mutex guards every slot.
type Registry struct {
	mu    sync.RWMutex
	order []*slot
	index map[string]*slot
}

// New builds a registry from a static roster. Every agent starts free.
// Duplicate ids keep the first occurrence.
func New(agents []domain.Agent) *Registry {
	r := &Registry{index: make(map[string]*slot, len(agents))}
	for _, a := range agents {
		if _, exists := r.index[a.ID]; exists {
			continue
		}
		a.EligibleDomains = append([]domain.Domain(nil), a.EligibleDomains...)
		a.IsFree = true
		a.CurrentTicketID = ""
		s := &slot{agent: a}
		r.order = append(r.order, s)
		r.index[a.ID] = s
	}
	return r
}

func (s *slot) snapshot() domain.Agent {
	a := s.agent
	a.EligibleDomains = append([]domain.Domain(nil), s.agent.EligibleDomains...)
	a.CurrentTicketID = s.current
	a.IsFree = s.current == ""
	return a
}

// Get returns a snapshot of one agent.
func (r *Registry) Get(agentID string) (domain.Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.index[agentID]
	if !ok {
		return domain.Agent{}, apperrors.NewNotFound("agent", map[string]any{"agent_id": agentID})
	}
	return s.snapshot(), nil
}

// List returns snapshots of every agent in roster order.
func (r *Registry) List() []domain.Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Agent, 0, len(r.order))
	for _, s := range r.order {
		out = append(out, s.snapshot())
	}
	return out
}

// FindEligibleFree lists free agents eligible for d, in roster order.
func (r *Registry) FindEligibleFree(d domain.Domain) []domain.Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Agent
	for _, s := range r.order {
		if s.current == "" && s.agent.Eligible(d) {
			out = append(out, s.snapshot())
		}
	}
	return out
}

// ClaimFirstEligible atomically finds the first eligible free agent and occupies it with ticketID.
func (r *Registry) ClaimFirstEligible(d domain.Domain, ticketID string) (domain.Agent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.order {
		if s.current == "" && s.agent.Eligible(d) {
			s.current = ticketID
			return s.snapshot(), true
		}
	}
	return domain.Agent{}, false
}

// Occupy marks the agent busy with ticketID. Fails with AGENT_BUSY if already occupied.
func (r *Registry) Occupy(agentID, ticketID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.index[agentID]
	if !ok {
		return apperrors.NewNotFound("agent", map[string]any{"agent_id": agentID})
	}
	if s.current != "" {
		return apperrors.NewAgentBusy(agentID, s.current)
	}
	s.current = ticketID
	return nil
}

// Release frees the agent. Releasing a free agent is a no-op.
func (r *Registry) Release(agentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.index[agentID]
	if !ok {
		return apperrors.NewNotFound("agent", map[string]any{"agent_id": agentID})
	}
	s.current = ""
	return nil
}

// ReleaseIf frees the agent only while it still holds ticketID. It reports whether a release happened.
func (r *Registry) ReleaseIf(agentID, ticketID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.index[agentID]
	if !ok || s.current == "" || s.current != ticketID {
		return false
	}
	s.current = ""
	return true
}

// Swap moves the agent's slot from one ticket to another in a single step.
// It fails with AGENT_BUSY when the slot no longer holds from.
func (r *Registry) Swap(agentID, from, to string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.index[agentID]
	if !ok {
		return apperrors.NewNotFound("agent", map[string]any{"agent_id": agentID})
	}
	if s.current != from {
		return apperrors.NewAgentBusy(agentID, s.current)
	}
	s.current = to
	return nil
}
