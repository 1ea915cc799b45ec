package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/azlan18/iDEA/internal/domain"
	"github.com/azlan18/iDEA/internal/events"
	"github.com/azlan18/iDEA/internal/observability"
	"github.com/azlan18/iDEA/internal/registry"
	"github.com/azlan18/iDEA/internal/repository"
	apperrors "github.com/azlan18/iDEA/pkg/util/errorutil"
)

const defaultDrainScanLimit = 50

// Rules named in work-update rejections.
const (
	ruleActiveAgentOnly  = "active_agent_only"
	ruleHeldRecordFrozen = "held_record_frozen"
)

// AssignmentService is the ticket lifecycle state machine. It is the only writer
// of ticket status and of agent slots.
type AssignmentService struct {
	tickets    repository.TicketRepository
	registry   *registry.Registry
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
	scanLimit  int
	locks      *ticketLocks
}

// AssignmentDependencies bundles collaborators.
type AssignmentDependencies struct {
	TicketRepo     repository.TicketRepository
	Registry       *registry.Registry
	Dispatcher     events.Dispatcher
	Metrics        *observability.Metrics
	Logger         *zap.Logger
	Now            func() time.Time
	DrainScanLimit int
}

// SubmitInput describes a new ticket handed over by the ingress pipeline.
type SubmitInput struct {
	Domain        string
	Description   string
	PriorityScore int
	CustomerID    string
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	s := &AssignmentService{
		tickets:    deps.TicketRepo,
		registry:   deps.Registry,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		now:        deps.Now,
		scanLimit:  deps.DrainScanLimit,
		locks:      newTicketLocks(),
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.scanLimit <= 0 {
		s.scanLimit = defaultDrainScanLimit
	}
	return s
}

// SubmitTicket records a new ticket and hands it to the first eligible free agent,
// or queues it when none is free.
func (s *AssignmentService) SubmitTicket(ctx context.Context, in SubmitInput) (*domain.Ticket, error) {
	d, ok := domain.ParseDomain(in.Domain)
	if !ok {
		return nil, apperrors.NewInvalidDomain(in.Domain)
	}
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, apperrors.NewValidationError("issue description is required", map[string]any{"operation": "submit"})
	}
	if in.PriorityScore < 0 || in.PriorityScore > 100 {
		return nil, apperrors.NewValidationError("priority score must be between 0 and 100", map[string]any{
			"operation":      "submit",
			"priority_score": in.PriorityScore,
		})
	}

	now := s.now()
	ticket := &domain.Ticket{
		ID:               newTicketID(now),
		CustomerID:       strings.TrimSpace(in.CustomerID),
		Domain:           d,
		IssueDescription: description,
		PriorityScore:    in.PriorityScore,
		Status:           domain.TicketStatusOpen,
		CreatedAt:        now,
		UpdatedAt:        now,
		StatusChangedAt:  now,
	}

	unlock := s.locks.lock(ticket.ID)
	defer unlock()

	agent, claimed := s.registry.ClaimFirstEligible(d, ticket.ID)
	if claimed {
		ticket.AssignTo(agent.ID, now)
	} else {
		ticket.MarkQueued(now)
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		if claimed {
			s.registry.ReleaseIf(agent.ID, ticket.ID)
		}
		return nil, s.storageError(err, "submit", ticket)
	}

	s.metrics.Inc(observability.CounterSubmitted)
	s.publish(ctx, events.EventTicketSubmitted, ticket.ID, agent.ID, events.TicketSubmittedPayload{
		Domain:        ticket.Domain,
		PriorityScore: ticket.PriorityScore,
		Status:        ticket.Status,
	})

	if claimed {
		s.recordAssigned(ctx, ticket, agent.ID, "submit")
		return ticket, nil
	}

	s.metrics.Inc(observability.CounterQueued)
	s.logger.Info("ticket queued",
		zap.String("ticket_id", ticket.ID),
		zap.String("domain", string(ticket.Domain)))
	s.publish(ctx, events.EventTicketQueued, ticket.ID, "", nil)

	// An agent may have been released between the claim and the insert; its drain
	// could not see this ticket yet.
	return s.recheckQueued(ctx, ticket), nil
}

func (s *AssignmentService) recheckQueued(ctx context.Context, ticket *domain.Ticket) *domain.Ticket {
	agent, claimed := s.registry.ClaimFirstEligible(ticket.Domain, ticket.ID)
	if !claimed {
		return ticket
	}
	ctx, cancel := detached(ctx)
	defer cancel()
	next := ticket.Clone()
	next.AssignTo(agent.ID, s.now())
	if err := s.tickets.Update(ctx, next); err != nil {
		s.registry.ReleaseIf(agent.ID, ticket.ID)
		s.logger.Warn("queued ticket recheck failed",
			zap.String("ticket_id", ticket.ID),
			zap.String("agent_id", agent.ID),
			zap.Error(err))
		return ticket
	}
	s.recordAssigned(ctx, next, agent.ID, "recheck")
	return next
}

// CompleteTicket closes a ticket and, when it had an active agent, drains that agent's slot.
func (s *AssignmentService) CompleteTicket(ctx context.Context, ticketID, summary, feedback string) (*domain.Ticket, error) {
	unlock := s.locks.lock(ticketID)
	defer unlock()

	ticket, err := s.load(ctx, ticketID, "complete")
	if err != nil {
		return nil, err
	}
	if ticket.Status == domain.TicketStatusCompleted {
		return nil, apperrors.NewInvalidState("ticket already completed", details(ticket, "complete"))
	}

	agentID, hadAgent := ticket.ActiveAgent()
	if strings.TrimSpace(summary) == "" {
		ticket.RecomputeSummary()
	}
	ticket.Complete(summary, feedback, s.now())
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, s.storageError(err, "complete", ticket)
	}

	s.metrics.Inc(observability.CounterCompleted)
	s.logger.Info("ticket completed",
		zap.String("ticket_id", ticket.ID),
		zap.String("agent_id", agentID),
		zap.String("status", string(ticket.Status)))
	s.publish(ctx, events.EventTicketCompleted, ticket.ID, agentID, events.TicketCompletedPayload{FreedAgent: agentID})

	if hadAgent {
		s.releaseAndDrain(ctx, agentID, ticket.ID)
	}
	return ticket, nil
}

// HoldTicket pauses a ticket, freezing the active entry with reason, and drains the freed agent.
func (s *AssignmentService) HoldTicket(ctx context.Context, ticketID, reason string) (*domain.Ticket, error) {
	unlock := s.locks.lock(ticketID)
	defer unlock()

	ticket, err := s.load(ctx, ticketID, "hold")
	if err != nil {
		return nil, err
	}
	switch ticket.Status {
	case domain.TicketStatusOnHold:
		return nil, apperrors.NewInvalidState("ticket already on hold", details(ticket, "hold"))
	case domain.TicketStatusCompleted:
		return nil, apperrors.NewInvalidState("ticket already completed", details(ticket, "hold"))
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = domain.DefaultHoldReason
	}

	agentID, hadAgent := ticket.ActiveAgent()
	ticket.Hold(reason, s.now())
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, s.storageError(err, "hold", ticket)
	}

	s.metrics.Inc(observability.CounterHeld)
	s.logger.Info("ticket held",
		zap.String("ticket_id", ticket.ID),
		zap.String("agent_id", agentID),
		zap.String("reason", reason))
	s.publish(ctx, events.EventTicketHeld, ticket.ID, agentID, events.TicketHeldPayload{Reason: reason})

	if hadAgent {
		s.releaseAndDrain(ctx, agentID, ticket.ID)
	}
	return ticket, nil
}

// ResumeTicket reassigns a held ticket to agentID. A busy agent's current ticket
// is put on hold first.
func (s *AssignmentService) ResumeTicket(ctx context.Context, ticketID, agentID string) (*domain.Ticket, error) {
	unlock := s.locks.lock(ticketID)
	defer unlock()

	ticket, err := s.load(ctx, ticketID, "resume")
	if err != nil {
		return nil, err
	}
	if ticket.Status != domain.TicketStatusOnHold {
		return nil, apperrors.NewInvalidState("ticket is not on hold", details(ticket, "resume"))
	}
	agentDetails := details(ticket, "resume")
	agentDetails["agent_id"] = agentID
	agent, err := s.registry.Get(agentID)
	if err != nil {
		return nil, apperrors.WithDetails(err, agentDetails)
	}
	if !agent.Eligible(ticket.Domain) {
		return nil, apperrors.NewIneligibleAgent(agentID, string(ticket.Domain), details(ticket, "resume"))
	}

	now := s.now()
	var preempted *domain.Ticket
	occupied := false
	if agent.IsFree {
		err := s.registry.Occupy(agentID, ticket.ID)
		switch {
		case err == nil:
			occupied = true
		case errors.Is(err, apperrors.ErrAgentBusy):
			// Claimed by a concurrent submit or drain since the snapshot: preempt that ticket.
			agent, err = s.registry.Get(agentID)
			if err != nil {
				return nil, apperrors.WithDetails(err, agentDetails)
			}
			if agent.IsFree {
				return nil, apperrors.NewConflict("agent slot changed during resume; retry", agentDetails)
			}
		default:
			return nil, apperrors.WithDetails(err, agentDetails)
		}
	}
	if !occupied {
		otherID := agent.CurrentTicketID
		unlockOther, ok := s.locks.tryLock(otherID)
		if !ok {
			return nil, apperrors.NewConflict("agent's current ticket is being modified; retry", map[string]any{
				"ticket_id":         ticket.ID,
				"agent_id":          agentID,
				"current_ticket_id": otherID,
				"operation":         "resume",
			})
		}
		defer unlockOther()

		other, err := s.load(ctx, otherID, "resume")
		if err != nil {
			return nil, err
		}
		if active, ok := other.ActiveAgent(); !ok || active != agentID {
			return nil, apperrors.NewConflict("agent slot does not match its current ticket", map[string]any{
				"ticket_id":         ticket.ID,
				"agent_id":          agentID,
				"current_ticket_id": otherID,
				"operation":         "resume",
			})
		}
		reason := "preempted by " + ticket.ID
		if last := other.LastEntry(); last != nil && strings.TrimSpace(last.WorkDone) != "" {
			reason = last.WorkDone
		}
		other.Hold(reason, now)
		if err := s.registry.Swap(agentID, otherID, ticket.ID); err != nil {
			return nil, apperrors.WithDetails(err, agentDetails)
		}
		preempted = other
	}

	ticket.AssignTo(agentID, now)
	if preempted != nil {
		err = s.tickets.UpdateBatch(ctx, preempted, ticket)
	} else {
		err = s.tickets.Update(ctx, ticket)
	}
	if err != nil {
		if preempted != nil {
			_ = s.registry.Swap(agentID, ticket.ID, preempted.ID)
		} else {
			s.registry.ReleaseIf(agentID, ticket.ID)
		}
		return nil, s.storageError(err, "resume", ticket)
	}

	if preempted != nil {
		s.metrics.Inc(observability.CounterPreempted)
		s.logger.Info("ticket preempted",
			zap.String("ticket_id", preempted.ID),
			zap.String("agent_id", agentID),
			zap.String("preempted_by", ticket.ID))
		s.publish(ctx, events.EventTicketPreempted, preempted.ID, agentID, events.TicketPreemptedPayload{PreemptedBy: ticket.ID})
	}
	s.metrics.Inc(observability.CounterResumed)
	s.publish(ctx, events.EventTicketResumed, ticket.ID, agentID, nil)
	s.recordAssigned(ctx, ticket, agentID, "resume")
	return ticket, nil
}

// AddWorkUpdate records work notes for agentID and refreshes the summary projection.
// Only the active entry of an Assigned ticket, or a Queued ticket's entries, accept notes.
func (s *AssignmentService) AddWorkUpdate(ctx context.Context, ticketID, agentID, text string) (*domain.Ticket, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewValidationError("work update text is required", map[string]any{
			"ticket_id": ticketID,
			"operation": "add_work_update",
		})
	}

	unlock := s.locks.lock(ticketID)
	defer unlock()

	ticket, err := s.load(ctx, ticketID, "add_work_update")
	if err != nil {
		return nil, err
	}
	if _, err := s.registry.Get(agentID); err != nil {
		d := details(ticket, "add_work_update")
		d["agent_id"] = agentID
		return nil, apperrors.WithDetails(err, d)
	}

	now := s.now()
	last := ticket.LastEntry()
	switch ticket.Status {
	case domain.TicketStatusAssigned:
		if last == nil || last.AgentID != agentID {
			d := details(ticket, "add_work_update")
			d["agent_id"] = agentID
			d["rule"] = ruleActiveAgentOnly
			if active, ok := ticket.ActiveAgent(); ok {
				d["active_agent"] = active
			}
			return nil, apperrors.NewInvalidState("work updates on an assigned ticket are limited to its active agent", d)
		}
		last.WorkDone = text
	case domain.TicketStatusQueued:
		if last != nil && last.AgentID == agentID {
			last.WorkDone = text
		} else {
			ticket.AssignmentHistory = append(ticket.AssignmentHistory, domain.AssignmentEntry{
				AgentID:    agentID,
				AssignedAt: now,
				WorkDone:   text,
			})
		}
	case domain.TicketStatusOnHold:
		d := details(ticket, "add_work_update")
		d["agent_id"] = agentID
		d["rule"] = ruleHeldRecordFrozen
		return nil, apperrors.NewInvalidState("work updates are not accepted while a ticket is on hold; resume it first", d)
	default:
		return nil, apperrors.NewInvalidState(fmt.Sprintf("ticket is %s", ticket.Status), details(ticket, "add_work_update"))
	}

	ticket.RecomputeSummary()
	ticket.UpdatedAt = now
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, s.storageError(err, "add_work_update", ticket)
	}

	s.metrics.Inc(observability.CounterWorkUpdates)
	s.logger.Info("work update recorded",
		zap.String("ticket_id", ticket.ID),
		zap.String("agent_id", agentID))
	s.publish(ctx, events.EventTicketWorkUpdated, ticket.ID, agentID, events.TicketWorkUpdatedPayload{Preview: preview(text)})
	return ticket, nil
}

// Reconcile rebuilds agent slots from persisted Assigned tickets and then offers
// queued work to every agent left free. It runs once at startup, before traffic.
func (s *AssignmentService) Reconcile(ctx context.Context) (int, error) {
	assigned, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		Statuses: []domain.TicketStatus{domain.TicketStatusAssigned},
	})
	if err != nil {
		return 0, apperrors.NewStorageError(err, map[string]any{"operation": "reconcile"})
	}

	restored := 0
	for i := range assigned {
		t := &assigned[i]
		agentID, ok := t.ActiveAgent()
		if !ok {
			continue
		}
		if err := s.registry.Occupy(agentID, t.ID); err != nil {
			s.logger.Warn("cannot restore agent slot",
				zap.String("ticket_id", t.ID),
				zap.String("agent_id", agentID),
				zap.Error(err))
			continue
		}
		restored++
	}

	for _, agent := range s.registry.List() {
		if agent.IsFree {
			s.drainQueued(ctx, agent, "")
		}
	}

	s.logger.Info("agent slots reconciled", zap.Int("restored", restored))
	return restored, nil
}

func (s *AssignmentService) load(ctx context.Context, ticketID, op string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, s.storageError(err, op, &domain.Ticket{ID: ticketID})
	}
	return ticket, nil
}

func (s *AssignmentService) recordAssigned(ctx context.Context, ticket *domain.Ticket, agentID, source string) {
	s.metrics.Inc(observability.CounterAssigned)
	s.logger.Info("ticket assigned",
		zap.String("ticket_id", ticket.ID),
		zap.String("agent_id", agentID),
		zap.String("status", string(ticket.Status)),
		zap.String("source", source))
	s.publish(ctx, events.EventTicketAssigned, ticket.ID, agentID, events.TicketAssignedPayload{Source: source})
}

func (s *AssignmentService) publish(ctx context.Context, eventType events.EventType, ticketID, agentID string, payload any) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		AgentID:   agentID,
		Timestamp: s.now(),
		Payload:   payload,
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed",
			zap.String("event_type", string(eventType)),
			zap.String("ticket_id", ticketID),
			zap.Error(err))
	}
}

// storageError maps repository failures onto the caller-facing taxonomy.
func (s *AssignmentService) storageError(err error, op string, ticket *domain.Ticket) error {
	d := details(ticket, op)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound("ticket", d)
	case errors.Is(err, repository.ErrVersionConflict):
		return apperrors.NewConflict("ticket was modified concurrently", d)
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.NewConflict("ticket id already exists", d)
	}
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	s.logger.Error("ticket store failure",
		zap.String("ticket_id", ticket.ID),
		zap.String("operation", op),
		zap.Error(err))
	return apperrors.NewStorageError(err, d)
}

func details(ticket *domain.Ticket, op string) map[string]any {
	d := map[string]any{
		"ticket_id": ticket.ID,
		"operation": op,
	}
	if ticket.Status != "" {
		d["status"] = string(ticket.Status)
	}
	return d
}

func newTicketID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return fmt.Sprintf("TICKET-%d-%s", now.UnixMilli(), strings.ToUpper(suffix))
}

func preview(text string) string {
	const limit = 80
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
