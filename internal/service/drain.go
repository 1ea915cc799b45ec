package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/azlan18/iDEA/internal/domain"
	"github.com/azlan18/iDEA/internal/events"
	"github.com/azlan18/iDEA/internal/observability"
	"github.com/azlan18/iDEA/internal/repository"
)

// drainTimeout bounds a drain once it is detached from the caller's context.
const drainTimeout = 10 * time.Second

type drainOutcome int

const (
	drainSkipped drainOutcome = iota
	drainAssigned
	drainStop
)

// releaseAndDrain frees agentID from fromTicketID and hands it the next pending ticket.
// Failures are logged and counted; they never fail the operation that freed the agent.
// The drain ignores the caller's cancellation: the primary write has already committed,
// and nothing else would offer the freed agent queued work later.
func (s *AssignmentService) releaseAndDrain(ctx context.Context, agentID, fromTicketID string) {
	if !s.registry.ReleaseIf(agentID, fromTicketID) {
		s.logger.Warn("agent slot did not hold ticket on release",
			zap.String("agent_id", agentID),
			zap.String("ticket_id", fromTicketID))
		return
	}
	drainCtx, cancel := detached(ctx)
	defer cancel()
	s.drain(drainCtx, agentID, fromTicketID)
}

// detached keeps ctx's values but drops its deadline and cancellation, bounding the
// result by drainTimeout instead.
func detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), drainTimeout)
}

// drain offers a free agent the oldest eligible Queued ticket, else the On Hold ticket
// it handled most recently. excludeID is never picked.
func (s *AssignmentService) drain(ctx context.Context, agentID, excludeID string) {
	agent, err := s.registry.Get(agentID)
	if err != nil || !agent.IsFree {
		return
	}
	if s.drainQueued(ctx, agent, excludeID) {
		return
	}
	s.drainHeld(ctx, agent, excludeID)
}

func (s *AssignmentService) drainQueued(ctx context.Context, agent domain.Agent, excludeID string) bool {
	if len(agent.EligibleDomains) == 0 {
		return false
	}
	queued, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		Statuses: []domain.TicketStatus{domain.TicketStatusQueued},
		Domains:  agent.EligibleDomains,
		SortBy:   repository.SortByCreatedAt,
		Limit:    s.scanLimit,
	})
	if err != nil {
		s.drainFailed(ctx, agent.ID, "", err)
		return true
	}
	return s.drainFrom(ctx, agent, queued, domain.TicketStatusQueued, excludeID)
}

func (s *AssignmentService) drainHeld(ctx context.Context, agent domain.Agent, excludeID string) bool {
	agentID := agent.ID
	held, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		Statuses:   []domain.TicketStatus{domain.TicketStatusOnHold},
		HandledBy:  &agentID,
		SortBy:     repository.SortByStatusChangedAt,
		Descending: true,
		Limit:      s.scanLimit,
	})
	if err != nil {
		s.drainFailed(ctx, agent.ID, "", err)
		return true
	}
	return s.drainFrom(ctx, agent, held, domain.TicketStatusOnHold, excludeID)
}

// drainFrom walks candidates in order. It reports true once the agent is no longer
// available, whether by this drain or by a concurrent claim.
func (s *AssignmentService) drainFrom(ctx context.Context, agent domain.Agent, candidates []domain.Ticket, expected domain.TicketStatus, excludeID string) bool {
	for _, candidate := range candidates {
		if candidate.ID == excludeID {
			continue
		}
		switch s.tryDrainInto(ctx, agent, candidate.ID, expected) {
		case drainAssigned, drainStop:
			return true
		}
	}
	return false
}

func (s *AssignmentService) tryDrainInto(ctx context.Context, agent domain.Agent, ticketID string, expected domain.TicketStatus) drainOutcome {
	// Candidates locked by another request are mid-transition; skip rather than wait.
	unlock, ok := s.locks.tryLock(ticketID)
	if !ok {
		return drainSkipped
	}
	defer unlock()

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return drainSkipped
		}
		s.drainFailed(ctx, agent.ID, ticketID, err)
		return drainStop
	}
	if ticket.Status != expected || !agent.Eligible(ticket.Domain) {
		return drainSkipped
	}

	if err := s.registry.Occupy(agent.ID, ticket.ID); err != nil {
		return drainStop
	}
	ticket.AssignTo(agent.ID, s.now())
	if err := s.tickets.Update(ctx, ticket); err != nil {
		s.registry.ReleaseIf(agent.ID, ticket.ID)
		s.drainFailed(ctx, agent.ID, ticket.ID, err)
		return drainStop
	}

	s.metrics.Inc(observability.CounterDrained)
	s.recordAssigned(ctx, ticket, agent.ID, "drain")
	return drainAssigned
}

func (s *AssignmentService) drainFailed(ctx context.Context, agentID, candidateID string, err error) {
	s.metrics.Inc(observability.CounterDrainFailures)
	s.logger.Error("queue drain failed",
		zap.String("agent_id", agentID),
		zap.String("ticket_id", candidateID),
		zap.Error(err))
	s.publish(ctx, events.EventDrainFailed, candidateID, agentID, events.DrainFailedPayload{
		CandidateTicketID: candidateID,
		Error:             err.Error(),
	})
}
