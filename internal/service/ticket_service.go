package service

import (
	"context"

	"github.com/azlan18/iDEA/internal/domain"
	"github.com/azlan18/iDEA/internal/priority"
	"github.com/azlan18/iDEA/internal/repository"
	apperrors "github.com/azlan18/iDEA/pkg/util/errorutil"
)

// AgentStatistics summarises the tickets an agent has handled.
type AgentStatistics struct {
	AgentID    string                      `json:"agent_id"`
	Total      int                         `json:"total"`
	ByStatus   map[domain.TicketStatus]int `json:"by_status"`
	ByDomain   map[domain.Domain]int       `json:"by_domain"`
	ByPriority map[string]int              `json:"by_priority"`
}

// GetTicket returns one ticket.
func (s *AssignmentService) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	return s.load(ctx, ticketID, "get")
}

// ListTickets returns tickets matching filter.
func (s *AssignmentService) ListTickets(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.NewStorageError(err, map[string]any{"operation": "list"})
	}
	return tickets, nil
}

// ListAgents returns the roster with live slot state.
func (s *AssignmentService) ListAgents() []domain.Agent {
	return s.registry.List()
}

// GetAgent returns one agent with live slot state.
func (s *AssignmentService) GetAgent(agentID string) (domain.Agent, error) {
	return s.registry.Get(agentID)
}

// AgentStatistics counts every ticket whose history mentions agentID.
func (s *AssignmentService) AgentStatistics(ctx context.Context, agentID string) (*AgentStatistics, error) {
	if _, err := s.registry.Get(agentID); err != nil {
		return nil, err
	}
	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{HandledBy: &agentID})
	if err != nil {
		return nil, apperrors.NewStorageError(err, map[string]any{"operation": "agent_statistics", "agent_id": agentID})
	}

	stats := &AgentStatistics{
		AgentID:    agentID,
		Total:      len(tickets),
		ByStatus:   map[domain.TicketStatus]int{},
		ByDomain:   map[domain.Domain]int{},
		ByPriority: map[string]int{priority.BucketLow: 0, priority.BucketMedium: 0, priority.BucketHigh: 0},
	}
	for _, t := range tickets {
		stats.ByStatus[t.Status]++
		stats.ByDomain[t.Domain]++
		stats.ByPriority[priority.Bucket(t.PriorityScore)]++
	}
	return stats, nil
}
