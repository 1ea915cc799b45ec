package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/azlan18/iDEA/internal/domain"
)

type memoryTicketRepository struct {
	mu      sync.RWMutex
	tickets map[string]*domain.Ticket
}

// NewMemoryTicketRepository returns a volatile store. State is lost on restart.
func NewMemoryTicketRepository() TicketRepository {
	return &memoryTicketRepository{tickets: make(map[string]*domain.Ticket)}
}

func (r *memoryTicketRepository) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tickets[ticket.ID]; exists {
		return ErrDuplicate
	}
	ticket.Version = 1
	r.tickets[ticket.ID] = ticket.Clone()
	return nil
}

func (r *memoryTicketRepository) Update(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkVersion(ticket); err != nil {
		return err
	}
	r.store(ticket)
	return nil
}

func (r *memoryTicketRepository) UpdateBatch(_ context.Context, tickets ...*domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range tickets {
		if err := r.checkVersion(t); err != nil {
			return err
		}
	}
	for _, t := range tickets {
		r.store(t)
	}
	return nil
}

func (r *memoryTicketRepository) checkVersion(ticket *domain.Ticket) error {
	current, ok := r.tickets[ticket.ID]
	if !ok {
		return ErrNotFound
	}
	if current.Version != ticket.Version {
		return ErrVersionConflict
	}
	return nil
}

func (r *memoryTicketRepository) store(ticket *domain.Ticket) {
	ticket.Version++
	r.tickets[ticket.ID] = ticket.Clone()
}

func (r *memoryTicketRepository) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return t.Clone(), nil
}

func (r *memoryTicketRepository) ListWithFilter(_ context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	r.mu.RLock()
	result := make([]domain.Ticket, 0, len(r.tickets))
	for _, t := range r.tickets {
		if matches(t, filter) {
			result = append(result, *t.Clone())
		}
	}
	r.mu.RUnlock()

	sortTickets(result, filter.SortBy, filter.Descending)

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []domain.Ticket{}, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (r *memoryTicketRepository) Ping(context.Context) error {
	return nil
}

func matches(t *domain.Ticket, f TicketFilter) bool {
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, t.Status) {
		return false
	}
	if len(f.Domains) > 0 && !containsDomain(f.Domains, t.Domain) {
		return false
	}
	if f.HandledBy != nil && !t.HandledBy(*f.HandledBy) {
		return false
	}
	if f.CustomerID != nil && t.CustomerID != *f.CustomerID {
		return false
	}
	if f.CreatedFrom != nil && t.CreatedAt.Before(*f.CreatedFrom) {
		return false
	}
	if f.CreatedTo != nil && t.CreatedAt.After(*f.CreatedTo) {
		return false
	}
	return true
}

func containsStatus(list []domain.TicketStatus, s domain.TicketStatus) bool {
	for _, candidate := range list {
		if candidate == s {
			return true
		}
	}
	return false
}

func containsDomain(list []domain.Domain, d domain.Domain) bool {
	for _, candidate := range list {
		if candidate == d {
			return true
		}
	}
	return false
}

func sortTickets(tickets []domain.Ticket, key SortKey, desc bool) {
	if parsed, ok := ParseSortKey(string(key)); ok {
		key = parsed
	} else {
		key = SortByCreatedAt
	}
	sort.SliceStable(tickets, func(i, j int) bool {
		a, b := &tickets[i], &tickets[j]
		cmp := compareBy(a, b, key)
		if cmp == 0 {
			switch {
			case a.ID < b.ID:
				cmp = -1
			case a.ID > b.ID:
				cmp = 1
			}
		}
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
}

func compareBy(a, b *domain.Ticket, key SortKey) int {
	switch key {
	case SortByUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case SortByStatusChangedAt:
		return a.StatusChangedAt.Compare(b.StatusChangedAt)
	case SortByPriority:
		return a.PriorityScore - b.PriorityScore
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}
