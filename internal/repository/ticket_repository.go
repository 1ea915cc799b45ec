package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/azlan18/iDEA/internal/domain"
)

var (
	ErrNotFound        = errors.New("ticket not found")
	ErrVersionConflict = errors.New("ticket was modified concurrently")
	ErrDuplicate       = errors.New("ticket id already exists")
)

// SortKey selects the ordering column for ListWithFilter.
type SortKey string

const (
	SortByCreatedAt       SortKey = "created_at"
	SortByUpdatedAt       SortKey = "updated_at"
	SortByStatusChangedAt SortKey = "status_changed_at"
	SortByPriority        SortKey = "priority_score"
)

// ParseSortKey accepts a column name; empty input means created_at.
func ParseSortKey(raw string) (SortKey, bool) {
	switch SortKey(strings.ToLower(strings.TrimSpace(raw))) {
	case "", SortByCreatedAt:
		return SortByCreatedAt, true
	case SortByUpdatedAt:
		return SortByUpdatedAt, true
	case SortByStatusChangedAt:
		return SortByStatusChangedAt, true
	case SortByPriority:
		return SortByPriority, true
	}
	return "", false
}

// TicketFilter captures search parameters. Zero values mean "any".
type TicketFilter struct {
	Statuses    []domain.TicketStatus
	Domains     []domain.Domain
	HandledBy   *string
	CustomerID  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	SortBy      SortKey
	Descending  bool
	Limit       int
	Offset      int
}

// TicketRepository encapsulates ticket persistence.
//
// Every successful write bumps Version on the stored row and on the passed ticket.
// Update and UpdateBatch only apply when the stored Version equals the passed one.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	UpdateBatch(ctx context.Context, tickets ...*domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	Ping(ctx context.Context) error
}

// whereBuilder assembles a parameterised WHERE clause for either SQL dialect.
type whereBuilder struct {
	clauses     []string
	args        []any
	placeholder func(n int) string
}

func (w *whereBuilder) add(format string, values ...any) {
	marks := make([]any, len(values))
	for i, v := range values {
		w.args = append(w.args, v)
		marks[i] = w.placeholder(len(w.args))
	}
	w.clauses = append(w.clauses, fmt.Sprintf(format, marks...))
}

func (w *whereBuilder) in(column string, values []string) {
	if len(values) == 0 {
		return
	}
	marks := make([]string, len(values))
	for i, v := range values {
		w.args = append(w.args, v)
		marks[i] = w.placeholder(len(w.args))
	}
	w.clauses = append(w.clauses, fmt.Sprintf("%s IN (%s)", column, strings.Join(marks, ",")))
}

func (w *whereBuilder) sql() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

func orderAndPage(filter TicketFilter, unlimited string) string {
	sortBy, ok := ParseSortKey(string(filter.SortBy))
	if !ok {
		sortBy = SortByCreatedAt
	}
	dir := "ASC"
	if filter.Descending {
		dir = "DESC"
	}
	var b strings.Builder
	fmt.Fprintf(&b, " ORDER BY %s %s, id %s", sortBy, dir, dir)
	switch {
	case filter.Limit > 0:
		fmt.Fprintf(&b, " LIMIT %d", filter.Limit)
	case filter.Offset > 0:
		b.WriteString(" LIMIT " + unlimited)
	}
	if filter.Offset > 0 {
		fmt.Fprintf(&b, " OFFSET %d", filter.Offset)
	}
	return b.String()
}

func statusStrings(statuses []domain.TicketStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func domainStrings(domains []domain.Domain) []string {
	out := make([]string, len(domains))
	for i, d := range domains {
		out[i] = string(d)
	}
	return out
}
