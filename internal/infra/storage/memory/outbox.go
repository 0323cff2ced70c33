package memory

import (
	"context"
	"log/slog"
	"sync"

	appoutbox "skillswap/internal/app/outbox"
	"skillswap/internal/app/uow"
)

// Outbox relays records in process. Records added inside a unit of work are held by
// the unit and only queued once it commits; Flush hands queued records to the router.
type Outbox struct {
	Router *appoutbox.Router
	Logger *slog.Logger

	mu      sync.Mutex
	pending []appoutbox.EventRecord
}

func NewOutbox(router *appoutbox.Router, logger *slog.Logger) *Outbox {
	return &Outbox{Router: router, Logger: logger}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	if unit, ok := uow.FromContext(ctx); ok {
		if mem, ok := unit.(*Unit); ok && mem.outbox == o {
			mem.records = append(mem.records, record)
			return nil
		}
	}
	o.enqueue([]appoutbox.EventRecord{record})
	return nil
}

// Flush routes queued records. Subscriber failures are logged, not returned: the
// command that produced the records has already committed.
func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	batch := o.pending
	o.pending = nil
	o.mu.Unlock()
	if o.Router == nil {
		return nil
	}
	for _, rec := range batch {
		if err := o.Router.Route(ctx, rec); err != nil && o.Logger != nil {
			o.Logger.ErrorContext(ctx, "event subscriber failed", "event", rec.Name, "aggregate", rec.Aggregate, "error", err)
		}
	}
	return nil
}

// Pending reports queued, not yet flushed records.
func (o *Outbox) Pending() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]appoutbox.EventRecord(nil), o.pending...)
}

func (o *Outbox) enqueue(records []appoutbox.EventRecord) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending = append(o.pending, records...)
}

var _ appoutbox.Outbox = (*Outbox)(nil)
