package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/azlan18/iDEA/internal/domain"
)

const pgUniqueViolation = "23505"

const pgTicketColumns = `id, customer_id, domain, issue_description, priority_score, status,
               assignment_history, customer_feedback, summary_of_work,
               created_at, updated_at, status_changed_at, closed_at, version`

// pgExecutor is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type postgresTicketRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTicketRepository instantiates the pgx-backed repository.
func NewPostgresTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &postgresTicketRepository{pool: pool}
}

func (r *postgresTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	history, err := json.Marshal(historyOrEmpty(ticket.AssignmentHistory))
	if err != nil {
		return fmt.Errorf("encode assignment history: %w", err)
	}
	const query = `
        INSERT INTO tickets (id, customer_id, domain, issue_description, priority_score, status,
            assignment_history, customer_feedback, summary_of_work,
            created_at, updated_at, status_changed_at, closed_at, version)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,1)`
	_, err = r.pool.Exec(ctx, query,
		ticket.ID,
		ticket.CustomerID,
		string(ticket.Domain),
		ticket.IssueDescription,
		ticket.PriorityScore,
		string(ticket.Status),
		history,
		ticket.CustomerFeedback,
		ticket.SummaryOfWork,
		ticket.CreatedAt,
		ticket.UpdatedAt,
		ticket.StatusChangedAt,
		ticket.ClosedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicate
		}
		return err
	}
	ticket.Version = 1
	return nil
}

func (r *postgresTicketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	if err := pgUpdate(ctx, r.pool, ticket); err != nil {
		return err
	}
	ticket.Version++
	return nil
}

func (r *postgresTicketRepository) UpdateBatch(ctx context.Context, tickets ...*domain.Ticket) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, t := range tickets {
		if err := pgUpdate(ctx, tx, t); err != nil {
			return err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	for _, t := range tickets {
		t.Version++
	}
	return nil
}

func pgUpdate(ctx context.Context, db pgExecutor, ticket *domain.Ticket) error {
	history, err := json.Marshal(historyOrEmpty(ticket.AssignmentHistory))
	if err != nil {
		return fmt.Errorf("encode assignment history: %w", err)
	}
	const query = `
        UPDATE tickets SET status=$1, assignment_history=$2, customer_feedback=$3, summary_of_work=$4,
            updated_at=$5, status_changed_at=$6, closed_at=$7, version=version+1
        WHERE id=$8 AND version=$9`
	cmd, err := db.Exec(ctx, query,
		string(ticket.Status),
		history,
		ticket.CustomerFeedback,
		ticket.SummaryOfWork,
		ticket.UpdatedAt,
		ticket.StatusChangedAt,
		ticket.ClosedAt,
		ticket.ID,
		ticket.Version,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		var exists bool
		if err := db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tickets WHERE id=$1)`, ticket.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	return nil
}

func (r *postgresTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + pgTicketColumns + ` FROM tickets WHERE id=$1`
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return ticket, nil
}

func (r *postgresTicketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	where := &whereBuilder{placeholder: func(n int) string { return fmt.Sprintf("$%d", n) }}
	where.in("status", statusStrings(filter.Statuses))
	if len(filter.Domains) > 0 {
		where.add("domain = ANY(%s)", domainStrings(filter.Domains))
	}
	if filter.HandledBy != nil {
		probe, err := json.Marshal([]map[string]string{{"agent_id": *filter.HandledBy}})
		if err != nil {
			return nil, err
		}
		where.add("assignment_history @> %s::jsonb", string(probe))
	}
	if filter.CustomerID != nil {
		where.add("customer_id = %s", *filter.CustomerID)
	}
	if filter.CreatedFrom != nil {
		where.add("created_at >= %s", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		where.add("created_at <= %s", *filter.CreatedTo)
	}

	query := `SELECT ` + pgTicketColumns + ` FROM tickets` + where.sql() + orderAndPage(filter, "ALL")
	rows, err := r.pool.Query(ctx, query, where.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func (r *postgresTicketRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		ticket      domain.Ticket
		domainLabel string
		status      string
		history     []byte
		closedAt    *time.Time
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.CustomerID,
		&domainLabel,
		&ticket.IssueDescription,
		&ticket.PriorityScore,
		&status,
		&history,
		&ticket.CustomerFeedback,
		&ticket.SummaryOfWork,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.StatusChangedAt,
		&closedAt,
		&ticket.Version,
	); err != nil {
		return nil, err
	}
	ticket.Domain = domain.Domain(domainLabel)
	ticket.Status = domain.TicketStatus(status)
	ticket.ClosedAt = closedAt
	if err := json.Unmarshal(history, &ticket.AssignmentHistory); err != nil {
		return nil, fmt.Errorf("decode assignment history for %s: %w", ticket.ID, err)
	}
	return &ticket, nil
}

func historyOrEmpty(h []domain.AssignmentEntry) []domain.AssignmentEntry {
	if h == nil {
		return []domain.AssignmentEntry{}
	}
	return h
}
