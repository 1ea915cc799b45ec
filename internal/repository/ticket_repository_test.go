package repository_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/azlan18/iDEA/internal/config"
	"github.com/azlan18/iDEA/internal/domain"
	"github.com/azlan18/iDEA/internal/persistence"
	"github.com/azlan18/iDEA/internal/repository"
)

var base = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newSQLiteRepo(t *testing.T) repository.TicketRepository {
	t.Helper()
	ctx := context.Background()
	db, err := persistence.OpenSQLite(ctx, config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "tickets.db")}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	repo, err := repository.NewSQLiteTicketRepository(ctx, db)
	require.NoError(t, err)
	return repo
}

func forEachStore(t *testing.T, fn func(t *testing.T, repo repository.TicketRepository)) {
	t.Run("memory", func(t *testing.T) { fn(t, repository.NewMemoryTicketRepository()) })
	t.Run("sqlite", func(t *testing.T) { fn(t, newSQLiteRepo(t)) })
}

func newTicket(id string, d domain.Domain, status domain.TicketStatus, created time.Time) *domain.Ticket {
	return &domain.Ticket{
		ID:               id,
		CustomerID:       "CUST-1",
		Domain:           d,
		IssueDescription: "card declined",
		PriorityScore:    40,
		Status:           status,
		CreatedAt:        created,
		UpdatedAt:        created,
		StatusChangedAt:  created,
	}
}

func TestTicketRepository_CreateAndGet(t *testing.T) {
	forEachStore(t, func(t *testing.T, repo repository.TicketRepository) {
		ctx := context.Background()
		ticket := newTicket("T1", domain.DomainPayments, domain.TicketStatusAssigned, base)
		ticket.AssignmentHistory = []domain.AssignmentEntry{{AgentID: "EMP001", AssignedAt: base}}
		require.NoError(t, repo.Create(ctx, ticket))
		assert.EqualValues(t, 1, ticket.Version)

		got, err := repo.GetByID(ctx, "T1")
		require.NoError(t, err)
		assert.Equal(t, domain.DomainPayments, got.Domain)
		assert.Equal(t, domain.TicketStatusAssigned, got.Status)
		assert.True(t, got.CreatedAt.Equal(base))
		assert.Nil(t, got.ClosedAt)
		require.Len(t, got.AssignmentHistory, 1)
		assert.Equal(t, "EMP001", got.AssignmentHistory[0].AgentID)
		assert.True(t, got.AssignmentHistory[0].AssignedAt.Equal(base))

		assert.ErrorIs(t, repo.Create(ctx, newTicket("T1", domain.DomainPayments, domain.TicketStatusQueued, base)), repository.ErrDuplicate)

		_, err = repo.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestTicketRepository_UpdateVersioning(t *testing.T) {
	forEachStore(t, func(t *testing.T, repo repository.TicketRepository) {
		ctx := context.Background()
		require.NoError(t, repo.Create(ctx, newTicket("T1", domain.DomainPayments, domain.TicketStatusQueued, base)))

		first, err := repo.GetByID(ctx, "T1")
		require.NoError(t, err)
		stale, err := repo.GetByID(ctx, "T1")
		require.NoError(t, err)

		closed := base.Add(time.Hour)
		first.Complete("done", "thanks", closed)
		require.NoError(t, repo.Update(ctx, first))
		assert.EqualValues(t, 2, first.Version)

		stale.Hold("", closed)
		assert.ErrorIs(t, repo.Update(ctx, stale), repository.ErrVersionConflict)

		got, err := repo.GetByID(ctx, "T1")
		require.NoError(t, err)
		assert.Equal(t, domain.TicketStatusCompleted, got.Status)
		require.NotNil(t, got.ClosedAt)
		assert.True(t, got.ClosedAt.Equal(closed))
		assert.Equal(t, "thanks", got.CustomerFeedback)
		assert.Equal(t, "done", got.SummaryOfWork)

		assert.ErrorIs(t, repo.Update(ctx, newTicket("ghost", domain.DomainPayments, domain.TicketStatusQueued, base)), repository.ErrNotFound)
	})
}

func TestTicketRepository_UpdateBatchAllOrNothing(t *testing.T) {
	forEachStore(t, func(t *testing.T, repo repository.TicketRepository) {
		ctx := context.Background()
		require.NoError(t, repo.Create(ctx, newTicket("A", domain.DomainPayments, domain.TicketStatusAssigned, base)))
		require.NoError(t, repo.Create(ctx, newTicket("B", domain.DomainPayments, domain.TicketStatusOnHold, base)))

		a, _ := repo.GetByID(ctx, "A")
		b, _ := repo.GetByID(ctx, "B")
		b.Version = 99

		a.Hold("preempted", base.Add(time.Minute))
		b.AssignTo("EMP001", base.Add(time.Minute))
		assert.ErrorIs(t, repo.UpdateBatch(ctx, a, b), repository.ErrVersionConflict)

		gotA, _ := repo.GetByID(ctx, "A")
		assert.Equal(t, domain.TicketStatusAssigned, gotA.Status, "first write must roll back")

		a, _ = repo.GetByID(ctx, "A")
		b, _ = repo.GetByID(ctx, "B")
		a.Hold("preempted", base.Add(time.Minute))
		b.AssignTo("EMP001", base.Add(time.Minute))
		require.NoError(t, repo.UpdateBatch(ctx, a, b))
		assert.EqualValues(t, 2, a.Version)
		assert.EqualValues(t, 2, b.Version)

		gotB, _ := repo.GetByID(ctx, "B")
		assert.Equal(t, domain.TicketStatusAssigned, gotB.Status)
	})
}

func TestTicketRepository_ListWithFilter(t *testing.T) {
	forEachStore(t, func(t *testing.T, repo repository.TicketRepository) {
		ctx := context.Background()
		q1 := newTicket("Q1", domain.DomainLoanCredit, domain.TicketStatusQueued, base.Add(2*time.Minute))
		q2 := newTicket("Q2", domain.DomainLoanCredit, domain.TicketStatusQueued, base.Add(time.Minute))
		q3 := newTicket("Q3", domain.DomainPayments, domain.TicketStatusQueued, base)
		h1 := newTicket("H1", domain.DomainPayments, domain.TicketStatusOnHold, base)
		h1.AssignmentHistory = []domain.AssignmentEntry{{AgentID: "EMP001", AssignedAt: base, WorkDone: "waiting"}}
		h1.CustomerID = "CUST-9"
		h1.PriorityScore = 90
		for _, tk := range []*domain.Ticket{q1, q2, q3, h1} {
			require.NoError(t, repo.Create(ctx, tk))
		}

		got, err := repo.ListWithFilter(ctx, repository.TicketFilter{
			Statuses: []domain.TicketStatus{domain.TicketStatusQueued},
			Domains:  []domain.Domain{domain.DomainLoanCredit},
		})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Q2", got[0].ID)
		assert.Equal(t, "Q1", got[1].ID)

		agent := "EMP001"
		got, err = repo.ListWithFilter(ctx, repository.TicketFilter{HandledBy: &agent})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "H1", got[0].ID)

		customer := "CUST-9"
		got, err = repo.ListWithFilter(ctx, repository.TicketFilter{CustomerID: &customer})
		require.NoError(t, err)
		require.Len(t, got, 1)

		got, err = repo.ListWithFilter(ctx, repository.TicketFilter{SortBy: repository.SortByPriority, Descending: true, Limit: 1})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "H1", got[0].ID)

		// Equal created_at ties break on id.
		got, err = repo.ListWithFilter(ctx, repository.TicketFilter{Domains: []domain.Domain{domain.DomainPayments}})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "H1", got[0].ID)
		assert.Equal(t, "Q3", got[1].ID)

		got, err = repo.ListWithFilter(ctx, repository.TicketFilter{Offset: 3})
		require.NoError(t, err)
		assert.Len(t, got, 1)

		from := base.Add(time.Minute)
		got, err = repo.ListWithFilter(ctx, repository.TicketFilter{CreatedFrom: &from})
		require.NoError(t, err)
		assert.Len(t, got, 2)

		assert.NoError(t, repo.Ping(ctx))
	})
}

func TestParseSortKey(t *testing.T) {
	key, ok := repository.ParseSortKey("")
	assert.True(t, ok)
	assert.Equal(t, repository.SortByCreatedAt, key)

	key, ok = repository.ParseSortKey("PRIORITY_SCORE")
	assert.True(t, ok)
	assert.Equal(t, repository.SortByPriority, key)

	_, ok = repository.ParseSortKey("id; DROP TABLE tickets")
	assert.False(t, ok)
}
