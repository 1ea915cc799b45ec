package dto

import "github.com/azlan18/iDEA/internal/domain"

// AgentResponse exposes roster entries with their live slot.
type AgentResponse struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Role            domain.AgentRole `json:"role"`
	EligibleDomains []domain.Domain  `json:"eligible_domains"`
	IsFree          bool             `json:"is_free"`
	CurrentTicketID *string          `json:"current_ticket_id"`
}

// NewAgentResponse maps a domain agent. The password hash never leaves the service.
func NewAgentResponse(a domain.Agent) AgentResponse {
	resp := AgentResponse{
		ID:              a.ID,
		Name:            a.Name,
		Role:            a.Role,
		EligibleDomains: a.EligibleDomains,
		IsFree:          a.IsFree,
	}
	if resp.EligibleDomains == nil {
		resp.EligibleDomains = []domain.Domain{}
	}
	if a.CurrentTicketID != "" {
		id := a.CurrentTicketID
		resp.CurrentTicketID = &id
	}
	return resp
}
