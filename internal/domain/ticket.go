package domain

import (
	"fmt"
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen      TicketStatus = "Open"
	TicketStatusAssigned  TicketStatus = "Assigned"
	TicketStatusQueued    TicketStatus = "Queued"
	TicketStatusOnHold    TicketStatus = "On Hold"
	TicketStatusCompleted TicketStatus = "Completed"
)

// AllTicketStatuses lists every status in lifecycle order.
var AllTicketStatuses = []TicketStatus{
	TicketStatusOpen,
	TicketStatusAssigned,
	TicketStatusQueued,
	TicketStatusOnHold,
	TicketStatusCompleted,
}

// ParseTicketStatus accepts the canonical labels plus "In Progress" as an alias of Assigned.
func ParseTicketStatus(raw string) (TicketStatus, bool) {
	trimmed := strings.TrimSpace(raw)
	if strings.EqualFold(trimmed, "In Progress") {
		return TicketStatusAssigned, true
	}
	for _, s := range AllTicketStatuses {
		if strings.EqualFold(string(s), trimmed) {
			return s, true
		}
	}
	return "", false
}

// DefaultHoldReason is recorded when a hold arrives without a reason.
const DefaultHoldReason = "Waiting for external requirements"

// AssignmentEntry records one hand-off of a ticket to an agent.
type AssignmentEntry struct {
	AgentID    string    `json:"agent_id"`
	AssignedAt time.Time `json:"assigned_at"`
	WorkDone   string    `json:"work_done"`
}

// Ticket is the aggregate routed by the assignment engine.
type Ticket struct {
	ID                string
	CustomerID        string
	Domain            Domain
	IssueDescription  string
	PriorityScore     int
	Status            TicketStatus
	AssignmentHistory []AssignmentEntry
	CustomerFeedback  string
	SummaryOfWork     string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	StatusChangedAt   time.Time
	ClosedAt          *time.Time
	Version           int64
}

// ActiveAgent returns the agent currently occupying a slot for this ticket.
// Only Assigned tickets hold an agent; held tickets keep their history but release the agent.
func (t *Ticket) ActiveAgent() (string, bool) {
	if t.Status != TicketStatusAssigned || len(t.AssignmentHistory) == 0 {
		return "", false
	}
	return t.AssignmentHistory[len(t.AssignmentHistory)-1].AgentID, true
}

// LastEntry returns the most recent assignment entry, if any.
func (t *Ticket) LastEntry() *AssignmentEntry {
	if len(t.AssignmentHistory) == 0 {
		return nil
	}
	return &t.AssignmentHistory[len(t.AssignmentHistory)-1]
}

// HandledBy reports whether agentID appears anywhere in the assignment history.
func (t *Ticket) HandledBy(agentID string) bool {
	for _, entry := range t.AssignmentHistory {
		if entry.AgentID == agentID {
			return true
		}
	}
	return false
}

// AssignTo appends a fresh history entry and moves the ticket to Assigned.
func (t *Ticket) AssignTo(agentID string, at time.Time) {
	t.AssignmentHistory = append(t.AssignmentHistory, AssignmentEntry{AgentID: agentID, AssignedAt: at})
	t.transition(TicketStatusAssigned, at)
}

// MarkQueued parks a never-assigned ticket until an agent frees up.
func (t *Ticket) MarkQueued(at time.Time) {
	t.transition(TicketStatusQueued, at)
}

// Hold freezes the active entry with reason and pauses the ticket.
func (t *Ticket) Hold(reason string, at time.Time) {
	if t.Status == TicketStatusAssigned {
		if last := t.LastEntry(); last != nil {
			last.WorkDone = reason
		}
	}
	t.transition(TicketStatusOnHold, at)
}

// Complete closes the ticket. summary overrides the work projection when non-empty.
func (t *Ticket) Complete(summary, feedback string, at time.Time) {
	closed := at
	t.ClosedAt = &closed
	t.CustomerFeedback = feedback
	if strings.TrimSpace(summary) != "" {
		t.SummaryOfWork = summary
	}
	t.transition(TicketStatusCompleted, at)
}

// RecomputeSummary rebuilds the "agent: work" projection from the history.
func (t *Ticket) RecomputeSummary() {
	lines := make([]string, 0, len(t.AssignmentHistory))
	for _, entry := range t.AssignmentHistory {
		lines = append(lines, fmt.Sprintf("%s: %s", entry.AgentID, entry.WorkDone))
	}
	t.SummaryOfWork = strings.Join(lines, "\n")
}

// Clone returns a deep copy safe to mutate independently.
func (t *Ticket) Clone() *Ticket {
	if t == nil {
		return nil
	}
	cp := *t
	if t.AssignmentHistory != nil {
		cp.AssignmentHistory = make([]AssignmentEntry, len(t.AssignmentHistory))
		copy(cp.AssignmentHistory, t.AssignmentHistory)
	}
	if t.ClosedAt != nil {
		closed := *t.ClosedAt
		cp.ClosedAt = &closed
	}
	return &cp
}

func (t *Ticket) transition(next TicketStatus, at time.Time) {
	t.Status = next
	t.StatusChangedAt = at
	t.UpdatedAt = at
}
