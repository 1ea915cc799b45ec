package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/azlan18/iDEA/internal/domain"
	"github.com/azlan18/iDEA/internal/observability"
	"github.com/azlan18/iDEA/internal/repository"
	"github.com/azlan18/iDEA/internal/service"
)

// Gauge names maintained by the queue monitor.
const (
	GaugeQueued     = "tickets_queued"
	GaugeOnHold     = "tickets_on_hold"
	GaugeAgentsBusy = "agents_busy"
)

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}

// TicketLister is the read side of the engine the monitor needs.
type TicketLister interface {
	ListTickets(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error)
	ListAgents() []domain.Agent
}

// QueueMonitor periodically records how much work is waiting.
type QueueMonitor struct {
	engine   TicketLister
	metrics  *observability.Metrics
	logger   *zap.Logger
	interval time.Duration
}

// NewQueueMonitor builds a monitor. A non-positive interval defaults to 30s.
func NewQueueMonitor(engine TicketLister, metrics *observability.Metrics, logger *zap.Logger, interval time.Duration) *QueueMonitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &QueueMonitor{engine: engine, metrics: metrics, logger: logger, interval: interval}
}

// Run samples until ctx is cancelled.
func (m *QueueMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Sample(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sample(ctx)
		}
	}
}

// Sample records one reading.
func (m *QueueMonitor) Sample(ctx context.Context) {
	queued, err := m.engine.ListTickets(ctx, repository.TicketFilter{Statuses: []domain.TicketStatus{domain.TicketStatusQueued}})
	if err != nil {
		m.logger.Warn("queue monitor: list queued", zap.Error(err))
		return
	}
	held, err := m.engine.ListTickets(ctx, repository.TicketFilter{Statuses: []domain.TicketStatus{domain.TicketStatusOnHold}})
	if err != nil {
		m.logger.Warn("queue monitor: list on hold", zap.Error(err))
		return
	}
	busy := 0
	for _, a := range m.engine.ListAgents() {
		if !a.IsFree {
			busy++
		}
	}

	m.metrics.SetGauge(GaugeQueued, int64(len(queued)))
	m.metrics.SetGauge(GaugeOnHold, int64(len(held)))
	m.metrics.SetGauge(GaugeAgentsBusy, int64(busy))
	m.logger.Debug("queue sample",
		zap.Int("queued", len(queued)),
		zap.Int("on_hold", len(held)),
		zap.Int("agents_busy", busy))
}
