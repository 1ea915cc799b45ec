package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/azlan18/iDEA/internal/events"
)

// defaultPublishTimeout bounds one Redis publish made on the engine's request path.
const defaultPublishTimeout = 2 * time.Second

// EventPublisher is the slice of the go-redis client used for fan-out.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// NotificationService relays engine events to the log and, when configured, a Redis channel.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	publisher  EventPublisher
	channel    string
	timeout    time.Duration
}

// NewNotificationService creates the service. publisher may be nil.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, publisher EventPublisher, channel string) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		publisher:  publisher,
		channel:    channel,
		timeout:    defaultPublishTimeout,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for _, eventType := range events.AllEventTypes {
		n.dispatcher.Subscribe(eventType, n.handle)
	}
}

func (n *NotificationService) handle(ctx context.Context, event events.Event) error {
	level := n.logger.Debug
	if event.Type == events.EventDrainFailed {
		level = n.logger.Warn
	}
	level("engine event",
		zap.String("event_type", string(event.Type)),
		zap.String("ticket_id", event.TicketID),
		zap.String("agent_id", event.AgentID),
		zap.Any("payload", event.Payload))

	return n.fanOut(ctx, event)
}

func (n *NotificationService) fanOut(ctx context.Context, event events.Event) error {
	if n.publisher == nil || n.channel == "" {
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	// Events for committed transitions still go out when the request that caused them is gone.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
	defer cancel()
	if err := n.publisher.Publish(pubCtx, n.channel, body).Err(); err != nil {
		return fmt.Errorf("publish %s to %s: %w", event.Type, n.channel, err)
	}
	return nil
}
