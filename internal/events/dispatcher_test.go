package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatcher_DeliversToSubscribersOfType(t *testing.T) {
	d := NewInMemoryDispatcher()
	var got []string
	d.Subscribe(EventTicketHeld, func(_ context.Context, e Event) error {
		got = append(got, "held:"+e.TicketID)
		return nil
	})
	d.Subscribe(EventTicketCompleted, func(_ context.Context, e Event) error {
		got = append(got, "completed:"+e.TicketID)
		return nil
	})

	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketHeld, TicketID: "T1"}))
	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketQueued, TicketID: "T2"}))
	assert.Equal(t, []string{"held:T1"}, got)
}

func TestDispatcher_HandlerFailureDoesNotStopOthers(t *testing.T) {
	d := NewInMemoryDispatcher()
	boom := errors.New("boom")
	calls := 0
	d.Subscribe(EventDrainFailed, func(context.Context, Event) error { calls++; return boom })
	d.Subscribe(EventDrainFailed, func(context.Context, Event) error { calls++; return nil })

	err := d.Publish(context.Background(), Event{Type: EventDrainFailed})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}
