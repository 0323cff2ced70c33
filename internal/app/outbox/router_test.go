package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouterFansOutAndJoinsErrors(t *testing.T) {
	r := NewRouter()
	var calls int
	boom := errors.New("boom")
	r.Subscribe("user.banned", func(ctx context.Context, rec EventRecord) error {
		calls++
		return boom
	})
	r.Subscribe("user.banned", func(ctx context.Context, rec EventRecord) error {
		calls++
		return nil
	})

	assert.True(t, r.Handles("user.banned"))
	assert.False(t, r.Handles("swap.accepted"))

	err := r.Route(context.Background(), EventRecord{Name: "user.banned"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)

	assert.NoError(t, r.Route(context.Background(), EventRecord{Name: "swap.accepted"}))
}

func TestRouterRejectsInvalidSubscription(t *testing.T) {
	assert.Panics(t, func() { NewRouter().Subscribe("", nil) })
}

type testEvent struct {
	SwapID string    `json:"swapId"`
	At     time.Time `json:"at"`
}

func (e testEvent) EventName() string     { return "swap.accepted" }
func (e testEvent) AggregateID() string   { return e.SwapID }
func (e testEvent) OccurredAt() time.Time { return e.At }

type recordingOutbox struct{ recs []EventRecord }

func (o *recordingOutbox) Add(ctx context.Context, rec EventRecord) error {
	o.recs = append(o.recs, rec)
	return nil
}

func (o *recordingOutbox) Flush(ctx context.Context) error { return nil }

func TestJSONEventEncoderUsesGenerator(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rec, err := JSONEventEncoder{IDGenerator: func() string { return "fixed" }}.Encode(testEvent{SwapID: "s1", At: at})
	require.NoError(t, err)
	assert.Equal(t, "fixed", rec.ID)
	assert.Equal(t, "swap.accepted", rec.Name)
	assert.Equal(t, "s1", rec.Aggregate)
	assert.JSONEq(t, `{"swapId":"s1","at":"2024-01-01T00:00:00Z"}`, string(rec.Payload))
}

func TestRecordDomainEventsSkipsNilOutbox(t *testing.T) {
	assert.NoError(t, RecordDomainEvents(context.Background(), nil, nil, nil))

	box := &recordingOutbox{}
	require.NoError(t, RecordDomainEvents(context.Background(), box, nil, nil))
	assert.Empty(t, box.recs)
}
