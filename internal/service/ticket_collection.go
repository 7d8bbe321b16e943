package service

import (
	"context"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/helpdesk-tools/ticket-dashboard/internal/domain"
	"github.com/helpdesk-tools/ticket-dashboard/internal/events"
	apperrors "github.com/helpdesk-tools/ticket-dashboard/pkg/util/errorutil"
)

// TicketPageSize is the fixed window requested per page.
const TicketPageSize = 10

var (
	ErrUpdateInFlight = apperrors.NewConflict("a status update is already in progress", nil)
	ErrNotifyInFlight = apperrors.NewConflict("a notification for this ticket is already being sent", nil)
)

// TicketCollectionOptions selects the stricter behaviors. Both default to off,
// matching the web client: failed status writes stay applied locally and
// tickets repeated across pages are kept.
type TicketCollectionOptions struct {
	RevertOnFailure bool
	DedupeByID      bool
}

// PageResult reports what a FetchNextPage call did.
type PageResult struct {
	Page      int
	Received  int
	Exhausted bool
}

// TicketCollection is the loaded, displayed ticket list: incremental page
// loading, client-side sorting and optimistic status changes.
type TicketCollection struct {
	backend TicketBackend
	events  events.Dispatcher
	logger  *zap.Logger
	opts    TicketCollectionOptions

	fetches singleflight.Group

	mu         sync.Mutex
	tickets    []domain.Ticket
	nextPage   int
	exhausted  bool
	fetched    bool
	loading    bool
	updating   bool
	notifying  map[string]bool
	sortBy     SortCriterion
	generation uint64
	// last is the result of the most recent applied page.
	last PageResult
}

// NewTicketCollection builds an empty collection positioned at page 1.
func NewTicketCollection(backend TicketBackend, dispatcher events.Dispatcher, logger *zap.Logger, opts TicketCollectionOptions) *TicketCollection {
	if dispatcher == nil {
		dispatcher = events.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketCollection{
		backend:   backend,
		events:    dispatcher,
		logger:    logger,
		opts:      opts,
		nextPage:  1,
		notifying: map[string]bool{},
		sortBy:    SortByCreatedAt,
	}
}

// FetchNextPage loads the page at the cursor and appends it. Once a page comes
// back empty the collection is exhausted and no further requests are made.
// Concurrent calls for the same page share one request.
func (c *TicketCollection) FetchNextPage(ctx context.Context) (PageResult, error) {
	c.mu.Lock()
	page, gen := c.nextPage, c.generation
	if c.exhausted {
		c.mu.Unlock()
		return PageResult{Page: page, Exhausted: true}, nil
	}
	c.mu.Unlock()

	key := strconv.FormatUint(gen, 10) + "/" + strconv.Itoa(page)
	v, err, _ := c.fetches.Do(key, func() (interface{}, error) {
		return c.fetchPage(ctx, gen, page)
	})
	if err != nil {
		return PageResult{Page: page}, err
	}
	return v.(PageResult), nil
}

func (c *TicketCollection) fetchPage(ctx context.Context, gen uint64, page int) (PageResult, error) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return PageResult{Page: page}, nil
	}
	if c.settled(page) {
		res := c.settledResult(page)
		c.mu.Unlock()
		return res, nil
	}
	c.loading = true
	c.mu.Unlock()

	items, err := c.backend.ListTickets(ctx, (page-1)*TicketPageSize, TicketPageSize)

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return PageResult{Page: page}, nil
	}
	c.loading = false
	if err != nil {
		c.mu.Unlock()
		c.logger.Warn("ticket page fetch failed", zap.Int("page", page), zap.Error(err))
		return PageResult{Page: page}, err
	}

	if c.settled(page) {
		res := c.settledResult(page)
		c.mu.Unlock()
		return res, nil
	}

	result := PageResult{Page: page, Received: len(items)}
	c.fetched = true
	if len(items) == 0 {
		c.exhausted = true
		result.Exhausted = true
	} else {
		c.tickets = c.appendPage(c.tickets, items)
		c.nextPage = page + 1
	}
	c.last = result
	c.mu.Unlock()

	_ = c.events.Publish(ctx, events.New(events.EventTicketsPageLoaded, "", events.PageLoadedPayload{
		Page:      result.Page,
		Received:  result.Received,
		Exhausted: result.Exhausted,
	}))
	return result, nil
}

// settled reports whether page was already applied by an earlier call, so its
// items must not be appended again. Callers hold mu.
func (c *TicketCollection) settled(page int) bool {
	return page != c.nextPage || c.exhausted
}

// settledResult answers a late caller with what the winning call saw.
func (c *TicketCollection) settledResult(page int) PageResult {
	if c.last.Page == page {
		return c.last
	}
	return PageResult{Page: page, Exhausted: c.exhausted}
}

// appendPage must be called with mu held.
func (c *TicketCollection) appendPage(dst, items []domain.Ticket) []domain.Ticket {
	if !c.opts.DedupeByID {
		return append(dst, items...)
	}
	seen := make(map[string]struct{}, len(dst)+len(items))
	for _, t := range dst {
		seen[t.ID] = struct{}{}
	}
	for _, t := range items {
		if _, dup := seen[t.ID]; dup {
			continue
		}
		seen[t.ID] = struct{}{}
		dst = append(dst, t)
	}
	return dst
}

// SortBy stably re-sorts everything loaded so far. It never fetches.
func (c *TicketCollection) SortBy(criterion SortCriterion) error {
	less, err := ticketLess(criterion)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.tickets = sortedCopy(c.tickets, less)
	c.sortBy = criterion
	return nil
}

// UpdateStatus applies the new status locally, then writes it to the backend.
// A failed write is returned to the caller; the local change is kept unless
// RevertOnFailure is set.
func (c *TicketCollection) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) error {
	if !status.Valid() {
		return apperrors.NewValidationError("unknown ticket status", map[string]any{"status": string(status)})
	}
	if id == "" {
		return apperrors.NewValidationError("ticket id required", nil)
	}

	c.mu.Lock()
	if c.updating {
		c.mu.Unlock()
		return ErrUpdateInFlight
	}
	gen := c.generation
	var previous domain.TicketStatus
	matched := false
	for i := range c.tickets {
		if c.tickets[i].ID != id {
			continue
		}
		if !matched {
			previous = c.tickets[i].Status
			matched = true
		}
		c.tickets[i].Status = status
	}
	c.updating = true
	c.mu.Unlock()

	err := c.backend.UpdateTicketStatus(ctx, id, status)

	c.mu.Lock()
	if gen == c.generation {
		c.updating = false
	}
	reverted := false
	if err != nil && c.opts.RevertOnFailure && matched && gen == c.generation {
		for i := range c.tickets {
			if c.tickets[i].ID == id && c.tickets[i].Status == status {
				c.tickets[i].Status = previous
			}
		}
		reverted = true
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("ticket status update failed",
			zap.String("ticket_id", id),
			zap.String("status", string(status)),
			zap.Bool("reverted", reverted),
			zap.Error(err))
		if reverted {
			_ = c.events.Publish(ctx, events.New(events.EventTicketStatusReverted, id, events.TicketStatusChangedPayload{
				OldStatus: status,
				NewStatus: previous,
			}))
		}
		return err
	}

	_ = c.events.Publish(ctx, events.New(events.EventTicketStatusChanged, id, events.TicketStatusChangedPayload{
		OldStatus: previous,
		NewStatus: status,
	}))
	return nil
}

// Notify asks the backend to email the ticket's requester. Repeat requests for
// the same ticket are refused while one is pending.
func (c *TicketCollection) Notify(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.NewValidationError("ticket id required", nil)
	}

	c.mu.Lock()
	if c.notifying[id] {
		c.mu.Unlock()
		return ErrNotifyInFlight
	}
	c.notifying[id] = true
	c.mu.Unlock()

	err := c.backend.NotifyTicket(ctx, id)

	c.mu.Lock()
	delete(c.notifying, id)
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("ticket notification failed", zap.String("ticket_id", id), zap.Error(err))
		return err
	}
	_ = c.events.Publish(ctx, events.New(events.EventTicketNotified, id, nil))
	return nil
}

// Reset drops all loaded state. Requests still in flight are ignored when they land.
func (c *TicketCollection) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tickets = nil
	c.nextPage = 1
	c.exhausted = false
	c.fetched = false
	c.loading = false
	c.updating = false
	c.notifying = map[string]bool{}
	c.sortBy = SortByCreatedAt
	c.last = PageResult{}
	c.generation++
}

// Tickets returns a copy of the displayed sequence.
func (c *TicketCollection) Tickets() []domain.Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Ticket(nil), c.tickets...)
}

// Len returns the number of loaded tickets.
func (c *TicketCollection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tickets)
}

// Loaded reports whether at least one page fetch has completed.
func (c *TicketCollection) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetched
}

// HasMore reports whether another page may exist.
func (c *TicketCollection) HasMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.exhausted
}

// PagesLoaded returns how many non-empty pages have been appended.
func (c *TicketCollection) PagesLoaded() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nextPage - 1
}

// Loading reports whether a page fetch is in flight.
func (c *TicketCollection) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Updating reports whether a status update is in flight.
func (c *TicketCollection) Updating() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updating
}

// NotifyInFlight reports whether a notification for id is pending.
func (c *TicketCollection) NotifyInFlight(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.notifying[id]
}

// Criterion returns the last applied sort criterion.
func (c *TicketCollection) Criterion() SortCriterion {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sortBy
}
