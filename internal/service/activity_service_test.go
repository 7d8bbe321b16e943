package service_test

import (
	"context"
	"testing"

	"github.com/helpdesk-tools/ticket-dashboard/internal/domain"
	"github.com/helpdesk-tools/ticket-dashboard/internal/events"
	"github.com/helpdesk-tools/ticket-dashboard/internal/service"
)

func TestActivityKeepsRecentEvents(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	activity := service.NewActivityService(dispatcher, nil, 2)
	activity.RegisterHandlers()
	ctx := context.Background()

	publish := func(e events.Event) {
		if err := dispatcher.Publish(ctx, e); err != nil {
			t.Fatal(err)
		}
	}
	publish(events.New(events.EventSessionStarted, "", events.SessionPayload{Role: domain.RoleAdmin}))
	publish(events.New(events.EventTicketsPageLoaded, "", events.PageLoadedPayload{Page: 1, Received: 10}))
	publish(events.New(events.EventTicketNotified, "t1", nil))
	publish(events.New(events.EventTicketStatusChanged, "t2", events.TicketStatusChangedPayload{NewStatus: domain.TicketStatusClosed}))

	recent := activity.Recent(0)
	if len(recent) != 2 {
		t.Fatalf("Recent() len = %d, want 2", len(recent))
	}
	if recent[0].TicketID != "t2" || recent[1].TicketID != "t1" {
		t.Errorf("Recent() = %+v, want newest first", recent)
	}
	if got := activity.Recent(1); len(got) != 1 || got[0].TicketID != "t2" {
		t.Errorf("Recent(1) = %+v", got)
	}

	publish(events.New(events.EventSessionEnded, "", nil))
	if got := activity.Recent(0); len(got) != 0 {
		t.Errorf("Recent() after logout = %+v", got)
	}
}
