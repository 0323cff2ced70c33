package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"skillswap/internal/domain/shared/events"
)

type EventRecord struct {
	ID         string
	Name       string
	Payload    []byte
	OccurredAt time.Time
	Aggregate  string
	Headers    map[string]string
}

// Outbox buffers records inside the command's unit of work; Flush hands them on
// after commit.
type Outbox interface {
	Add(ctx context.Context, record EventRecord) error
	Flush(ctx context.Context) error
}

type EventEncoder interface {
	Encode(ev events.DomainEvent) (EventRecord, error)
}

type JSONEventEncoder struct {
	IDGenerator func() string
}

func (e JSONEventEncoder) Encode(ev events.DomainEvent) (EventRecord, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return EventRecord{}, err
	}
	idGen := e.IDGenerator
	if idGen == nil {
		idGen = uuid.NewString
	}
	return EventRecord{
		ID:         idGen(),
		Name:       ev.EventName(),
		Payload:    payload,
		OccurredAt: ev.OccurredAt(),
		Aggregate:  ev.AggregateID(),
		Headers:    map[string]string{},
	}, nil
}

// EventSource is any aggregate embedding events.EventRecorder.
type EventSource interface {
	Drain() []events.DomainEvent
}

// Publisher moves pending aggregate events into an outbox.
type Publisher struct {
	Outbox  Outbox
	Encoder EventEncoder
}

// Collect drains every source and records its events. A nil outbox drops them.
func (p Publisher) Collect(ctx context.Context, sources ...EventSource) error {
	var evs []events.DomainEvent
	for _, src := range sources {
		if src == nil {
			continue
		}
		evs = append(evs, src.Drain()...)
	}
	return RecordDomainEvents(ctx, p.Outbox, p.Encoder, evs)
}

func RecordDomainEvents(ctx context.Context, box Outbox, encoder EventEncoder, evs []events.DomainEvent) error {
	if box == nil || len(evs) == 0 {
		return nil
	}
	if encoder == nil {
		encoder = JSONEventEncoder{}
	}
	for _, ev := range evs {
		rec, err := encoder.Encode(ev)
		if err != nil {
			return err
		}
		if err := box.Add(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}
