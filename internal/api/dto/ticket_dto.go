package dto

import (
	"time"

	"github.com/azlan18/iDEA/internal/domain"
)

// SubmitTicketRequest payload from the ingress pipeline.
type SubmitTicketRequest struct {
	Domain           string `json:"domain"`
	IssueDescription string `json:"issue_description"`
	PriorityScore    *int   `json:"priority_score"`
	CustomerID       string `json:"customer_id"`

	// Customer is scored when PriorityScore is absent.
	Customer *PriorityScoreRequest `json:"customer"`
}

// CompleteTicketRequest payload.
type CompleteTicketRequest struct {
	SummaryOfWork    string `json:"summary_of_work"`
	CustomerFeedback string `json:"customer_feedback"`
}

// HoldTicketRequest payload. An empty reason records the default.
type HoldTicketRequest struct {
	Reason string `json:"reason"`
}

// ResumeTicketRequest payload.
type ResumeTicketRequest struct {
	AgentID string `json:"agent_id"`
}

// WorkUpdateRequest payload. AgentID defaults to the caller.
type WorkUpdateRequest struct {
	AgentID string `json:"agent_id"`
	Text    string `json:"text"`
}

// AssignmentEntryResponse is one hand-off.
type AssignmentEntryResponse struct {
	AgentID    string    `json:"agent_id"`
	AssignedAt time.Time `json:"assigned_at"`
	WorkDone   string    `json:"work_done"`
}

// TicketResponse is the full ticket view.
type TicketResponse struct {
	ID                string                    `json:"id"`
	CustomerID        string                    `json:"customer_id,omitempty"`
	Domain            domain.Domain             `json:"domain"`
	IssueDescription  string                    `json:"issue_description"`
	PriorityScore     int                       `json:"priority_score"`
	Status            domain.TicketStatus       `json:"status"`
	AssignedAgent     *string                   `json:"assigned_agent"`
	AssignmentHistory []AssignmentEntryResponse `json:"assignment_history"`
	CustomerFeedback  string                    `json:"customer_feedback"`
	SummaryOfWork     string                    `json:"summary_of_work"`
	CreatedAt         time.Time                 `json:"created_at"`
	UpdatedAt         time.Time                 `json:"updated_at"`
	StatusChangedAt   time.Time                 `json:"status_changed_at"`
	ClosedAt          *time.Time                `json:"closed_at"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	history := make([]AssignmentEntryResponse, 0, len(t.AssignmentHistory))
	for _, e := range t.AssignmentHistory {
		history = append(history, AssignmentEntryResponse{AgentID: e.AgentID, AssignedAt: e.AssignedAt, WorkDone: e.WorkDone})
	}
	resp := TicketResponse{
		ID:                t.ID,
		CustomerID:        t.CustomerID,
		Domain:            t.Domain,
		IssueDescription:  t.IssueDescription,
		PriorityScore:     t.PriorityScore,
		Status:            t.Status,
		AssignmentHistory: history,
		CustomerFeedback:  t.CustomerFeedback,
		SummaryOfWork:     t.SummaryOfWork,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
		StatusChangedAt:   t.StatusChangedAt,
		ClosedAt:          t.ClosedAt,
	}
	if agentID, ok := t.ActiveAgent(); ok {
		resp.AssignedAgent = &agentID
	}
	return resp
}
