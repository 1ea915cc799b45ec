package domain

// AgentRole separates regular agents from supervisors who may act on behalf of others.
type AgentRole string

const (
	AgentRoleAgent      AgentRole = "AGENT"
	AgentRoleSupervisor AgentRole = "SUPERVISOR"
)

// Agent is a human support agent with a single work slot.
type Agent struct {
	ID              string
	Name            string
	Role            AgentRole
	PasswordHash    string
	EligibleDomains []Domain
	IsFree          bool
	CurrentTicketID string
}

// Eligible reports whether the agent may serve tickets in d.
func (a Agent) Eligible(d Domain) bool {
	for _, candidate := range a.EligibleDomains {
		if candidate == d {
			return true
		}
	}
	return false
}
