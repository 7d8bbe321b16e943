package events

import (
	"context"
	"errors"
	"testing"
)

func TestDispatcherRunsAllHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls []string
	d.Subscribe(EventTicketNotified, func(context.Context, Event) error {
		calls = append(calls, "first")
		return errors.New("boom")
	})
	d.Subscribe(EventTicketNotified, func(_ context.Context, e Event) error {
		calls = append(calls, "second:"+e.TicketID)
		return nil
	})
	d.Subscribe(EventUserProvisioned, func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	err := d.Publish(context.Background(), New(EventTicketNotified, "t1", nil))
	if err == nil || err.Error() != "boom" {
		t.Errorf("Publish error = %v", err)
	}
	if len(calls) != 2 || calls[0] != "first" || calls[1] != "second:t1" {
		t.Errorf("calls = %v", calls)
	}
}
