package events

import (
	"time"

	"github.com/azlan18/iDEA/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketSubmitted   EventType = "ticket_submitted"
	EventTicketAssigned    EventType = "ticket_assigned"
	EventTicketQueued      EventType = "ticket_queued"
	EventTicketHeld        EventType = "ticket_held"
	EventTicketResumed     EventType = "ticket_resumed"
	EventTicketPreempted   EventType = "ticket_preempted"
	EventTicketCompleted   EventType = "ticket_completed"
	EventTicketWorkUpdated EventType = "ticket_work_updated"
	EventDrainFailed       EventType = "drain_failed"
)

// AllEventTypes lists every type the engine emits.
var AllEventTypes = []EventType{
	EventTicketSubmitted,
	EventTicketAssigned,
	EventTicketQueued,
	EventTicketHeld,
	EventTicketResumed,
	EventTicketPreempted,
	EventTicketCompleted,
	EventTicketWorkUpdated,
	EventDrainFailed,
}

// Event represents a domain event emitted by the assignment engine.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  string    `json:"ticket_id"`
	AgentID   string    `json:"agent_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// TicketSubmittedPayload payload.
type TicketSubmittedPayload struct {
	Domain        domain.Domain       `json:"domain"`
	PriorityScore int                 `json:"priority_score"`
	Status        domain.TicketStatus `json:"status"`
}

// TicketAssignedPayload payload. Source is submit, drain or resume.
type TicketAssignedPayload struct {
	Source string `json:"source"`
}

// TicketHeldPayload payload.
type TicketHeldPayload struct {
	Reason string `json:"reason"`
}

// TicketPreemptedPayload payload.
type TicketPreemptedPayload struct {
	PreemptedBy string `json:"preempted_by"`
}

// TicketCompletedPayload payload.
type TicketCompletedPayload struct {
	FreedAgent string `json:"freed_agent,omitempty"`
}

// TicketWorkUpdatedPayload payload.
type TicketWorkUpdatedPayload struct {
	Preview string `json:"preview"`
}

// DrainFailedPayload payload.
type DrainFailedPayload struct {
	CandidateTicketID string `json:"candidate_ticket_id,omitempty"`
	Error             string `json:"error"`
}
