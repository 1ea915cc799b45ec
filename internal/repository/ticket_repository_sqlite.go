package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/azlan18/iDEA/internal/domain"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS tickets (
    id TEXT PRIMARY KEY,
    customer_id TEXT NOT NULL DEFAULT '',
    domain TEXT NOT NULL,
    issue_description TEXT NOT NULL,
    priority_score INTEGER NOT NULL,
    status TEXT NOT NULL,
    assignment_history TEXT NOT NULL DEFAULT '[]',
    customer_feedback TEXT NOT NULL DEFAULT '',
    summary_of_work TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    status_changed_at INTEGER NOT NULL,
    closed_at INTEGER,
    version INTEGER NOT NULL DEFAULT 1
);
CREATE INDEX IF NOT EXISTS idx_tickets_status_domain_created ON tickets(status, domain, created_at);
CREATE INDEX IF NOT EXISTS idx_tickets_status_changed ON tickets(status, status_changed_at);
CREATE INDEX IF NOT EXISTS idx_tickets_customer ON tickets(customer_id);
`

const sqliteTicketColumns = `id, customer_id, domain, issue_description, priority_score, status,
       assignment_history, customer_feedback, summary_of_work,
       created_at, updated_at, status_changed_at, closed_at, version`

// sqlExecutor is satisfied by both *sql.DB and *sql.Tx.
type sqlExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type sqliteTicketRepository struct {
	db *sql.DB
}

// NewSQLiteTicketRepository prepares the schema and returns the embedded store.
func NewSQLiteTicketRepository(ctx context.Context, db *sql.DB) (TicketRepository, error) {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &sqliteTicketRepository{db: db}, nil
}

func (r *sqliteTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	history, err := json.Marshal(historyOrEmpty(ticket.AssignmentHistory))
	if err != nil {
		return fmt.Errorf("encode assignment history: %w", err)
	}
	const query = `
        INSERT INTO tickets (id, customer_id, domain, issue_description, priority_score, status,
            assignment_history, customer_feedback, summary_of_work,
            created_at, updated_at, status_changed_at, closed_at, version)
        VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,1)`
	_, err = r.db.ExecContext(ctx, query,
		ticket.ID,
		ticket.CustomerID,
		string(ticket.Domain),
		ticket.IssueDescription,
		ticket.PriorityScore,
		string(ticket.Status),
		string(history),
		ticket.CustomerFeedback,
		ticket.SummaryOfWork,
		toUnix(ticket.CreatedAt),
		toUnix(ticket.UpdatedAt),
		toUnix(ticket.StatusChangedAt),
		nullableUnix(ticket.ClosedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicate
		}
		return err
	}
	ticket.Version = 1
	return nil
}

func (r *sqliteTicketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	if err := sqliteUpdate(ctx, r.db, ticket); err != nil {
		return err
	}
	ticket.Version++
	return nil
}

func (r *sqliteTicketRepository) UpdateBatch(ctx context.Context, tickets ...*domain.Ticket) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, t := range tickets {
		if err := sqliteUpdate(ctx, tx, t); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	for _, t := range tickets {
		t.Version++
	}
	return nil
}

func sqliteUpdate(ctx context.Context, db sqlExecutor, ticket *domain.Ticket) error {
	history, err := json.Marshal(historyOrEmpty(ticket.AssignmentHistory))
	if err != nil {
		return fmt.Errorf("encode assignment history: %w", err)
	}
	const query = `
        UPDATE tickets SET status=?, assignment_history=?, customer_feedback=?, summary_of_work=?,
            updated_at=?, status_changed_at=?, closed_at=?, version=version+1
        WHERE id=? AND version=?`
	res, err := db.ExecContext(ctx, query,
		string(ticket.Status),
		string(history),
		ticket.CustomerFeedback,
		ticket.SummaryOfWork,
		toUnix(ticket.UpdatedAt),
		toUnix(ticket.StatusChangedAt),
		nullableUnix(ticket.ClosedAt),
		ticket.ID,
		ticket.Version,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var exists int
		if err := db.QueryRowContext(ctx, `SELECT COUNT(1) FROM tickets WHERE id=?`, ticket.ID).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	return nil
}

func (r *sqliteTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + sqliteTicketColumns + ` FROM tickets WHERE id=?`
	ticket, err := scanSQLiteTicket(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return ticket, nil
}

func (r *sqliteTicketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	where := &whereBuilder{placeholder: func(int) string { return "?" }}
	where.in("status", statusStrings(filter.Statuses))
	where.in("domain", domainStrings(filter.Domains))
	if filter.HandledBy != nil {
		where.add("EXISTS (SELECT 1 FROM json_each(tickets.assignment_history) AS h WHERE json_extract(h.value, '$.agent_id') = %s)", *filter.HandledBy)
	}
	if filter.CustomerID != nil {
		where.add("customer_id = %s", *filter.CustomerID)
	}
	if filter.CreatedFrom != nil {
		where.add("created_at >= %s", toUnix(*filter.CreatedFrom))
	}
	if filter.CreatedTo != nil {
		where.add("created_at <= %s", toUnix(*filter.CreatedTo))
	}

	query := `SELECT ` + sqliteTicketColumns + ` FROM tickets` + where.sql() + orderAndPage(filter, "-1")
	rows, err := r.db.QueryContext(ctx, query, where.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanSQLiteTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func (r *sqliteTicketRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteTicket(row rowScanner) (*domain.Ticket, error) {
	var (
		ticket                              domain.Ticket
		domainLabel, status, history        string
		createdAt, updatedAt, statusChanged int64
		closedAt                            sql.NullInt64
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
		&createdAt,
		&updatedAt,
		&statusChanged,
		&closedAt,
		&ticket.Version,
	); err != nil {
		return nil, err
	}
	ticket.Domain = domain.Domain(domainLabel)
	ticket.Status = domain.TicketStatus(status)
	ticket.CreatedAt = fromUnix(createdAt)
	ticket.UpdatedAt = fromUnix(updatedAt)
	ticket.StatusChangedAt = fromUnix(statusChanged)
	if closedAt.Valid {
		closed := fromUnix(closedAt.Int64)
		ticket.ClosedAt = &closed
	}
	if err := json.Unmarshal([]byte(history), &ticket.AssignmentHistory); err != nil {
		return nil, fmt.Errorf("decode assignment history for %s: %w", ticket.ID, err)
	}
	return &ticket, nil
}

func toUnix(t time.Time) int64 {
	return t.UnixNano()
}

func fromUnix(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

func nullableUnix(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixNano()
}
