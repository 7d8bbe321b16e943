package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/helpdesk-tools/ticket-dashboard/internal/events"
)

const defaultActivityCapacity = 50

// ActivityService logs what the operator did and keeps the most recent
// entries for the landing pages.
type ActivityService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	capacity   int

	mu     sync.Mutex
	recent []events.Event
}

// NewActivityService creates the service. capacity <= 0 uses the default.
func NewActivityService(dispatcher events.Dispatcher, logger *zap.Logger, capacity int) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if capacity <= 0 {
		capacity = defaultActivityCapacity
	}
	return &ActivityService{dispatcher: dispatcher, logger: logger, capacity: capacity}
}

// RegisterHandlers subscribes to events.
func (a *ActivityService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventSessionStarted, a.handleSession)
	a.dispatcher.Subscribe(events.EventSessionEnded, a.handleSession)
	a.dispatcher.Subscribe(events.EventTicketsPageLoaded, a.handlePageLoaded)
	a.dispatcher.Subscribe(events.EventTicketStatusChanged, a.handleTicket)
	a.dispatcher.Subscribe(events.EventTicketStatusReverted, a.handleTicket)
	a.dispatcher.Subscribe(events.EventTicketNotified, a.handleTicket)
	a.dispatcher.Subscribe(events.EventUserProvisioned, a.handleUserProvisioned)
}

func (a *ActivityService) handleSession(_ context.Context, event events.Event) error {
	a.logger.Info(string(event.Type), zap.Any("payload", event.Payload))
	if event.Type == events.EventSessionEnded {
		a.clear()
		return nil
	}
	a.record(event)
	return nil
}

func (a *ActivityService) handlePageLoaded(_ context.Context, event events.Event) error {
	a.logger.Debug(string(event.Type), zap.Any("payload", event.Payload))
	return nil
}

func (a *ActivityService) handleTicket(_ context.Context, event events.Event) error {
	a.logger.Info(string(event.Type), zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	a.record(event)
	return nil
}

func (a *ActivityService) handleUserProvisioned(_ context.Context, event events.Event) error {
	a.logger.Info(string(event.Type), zap.Any("payload", event.Payload))
	a.record(event)
	return nil
}

func (a *ActivityService) record(event events.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.recent = append(a.recent, event)
	if over := len(a.recent) - a.capacity; over > 0 {
		a.recent = append([]events.Event(nil), a.recent[over:]...)
	}
}

func (a *ActivityService) clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.recent = nil
}

// Recent returns up to n events, newest first.
func (a *ActivityService) Recent(n int) []events.Event {
	a.mu.Lock()
	defer a.mu.Unlock()
	if n <= 0 || n > len(a.recent) {
		n = len(a.recent)
	}
	out := make([]events.Event, 0, n)
	for i := len(a.recent) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, a.recent[i])
	}
	return out
}
