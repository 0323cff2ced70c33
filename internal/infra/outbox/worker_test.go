package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appoutbox "skillswap/internal/app/outbox"
)

type fakeQueue struct {
	docs   []*EventDocument
	sent   []string
	failed map[string]time.Time
}

func (q *fakeQueue) Claim(ctx context.Context, workerID string, staleAfter time.Duration) (*EventDocument, error) {
	if len(q.docs) == 0 {
		return nil, nil
	}
	doc := q.docs[0]
	q.docs = q.docs[1:]
	return doc, nil
}

func (q *fakeQueue) MarkSent(ctx context.Context, id string) error {
	q.sent = append(q.sent, id)
	return nil
}

func (q *fakeQueue) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	if q.failed == nil {
		q.failed = map[string]time.Time{}
	}
	q.failed[id] = next
	return nil
}

type published struct {
	topic   string
	key     string
	payload []byte
}

type fakeProducer struct {
	out  []published
	fail error
}

func (p *fakeProducer) Publish(ctx context.Context, topic, key string, payload []byte, headers map[string]string) error {
	if p.fail != nil {
		return p.fail
	}
	p.out = append(p.out, published{topic: topic, key: key, payload: payload})
	return nil
}

func doc(id, name string) *EventDocument {
	return &EventDocument{
		ID:         id,
		Name:       name,
		Payload:    []byte(`{"swapId":"s1"}`),
		Aggregate:  "s1",
		OccurredAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestEnvelopeRoundTripKeepsRecordIdentity(t *testing.T) {
	rec := doc("evt-1", "swap.accepted").Record()
	rec.Headers = map[string]string{"traceparent": "00-abc-def-01"}

	body, headers, err := Encode(rec, "app://test")
	require.NoError(t, err)
	assert.Equal(t, cloudEventsContent, headers["content-type"])

	got, err := Decode(body)
	require.NoError(t, err)
	assert.Equal(t, "evt-1", got.ID)
	assert.Equal(t, "swap.accepted", got.Name)
	assert.Equal(t, "s1", got.Aggregate)
	assert.JSONEq(t, `{"swapId":"s1"}`, string(got.Payload))
	assert.Equal(t, "00-abc-def-01", got.Headers["traceparent"])
	assert.True(t, rec.OccurredAt.Equal(got.OccurredAt))
}

func TestEnvelopeRejectsInvalidInput(t *testing.T) {
	_, _, err := Encode(appoutbox.EventRecord{Name: "x", Payload: []byte("{")}, "")
	assert.ErrorIs(t, err, ErrMalformedEnvelope)

	_, err = Decode([]byte(`{"specversion":"1.0"}`))
	assert.ErrorIs(t, err, ErrMalformedEnvelope)
}

func TestTopicFor(t *testing.T) {
	assert.Equal(t, "dev.swap.events.v1", TopicFor("dev.", "swap.accepted"))
	assert.Equal(t, "user.events.v1", TopicFor("", "user.banned"))
	assert.Equal(t, "audit.events.v1", TopicFor("", "audit"))
}

func TestWorkerDrainPublishesAndMarksSent(t *testing.T) {
	queue := &fakeQueue{docs: []*EventDocument{doc("a", "swap.accepted"), doc("b", "user.banned")}}
	producer := &fakeProducer{}
	w := &Worker{Store: queue, Producer: producer, TopicPrefix: "t."}

	require.NoError(t, w.Drain(context.Background()))

	assert.Equal(t, []string{"a", "b"}, queue.sent)
	require.Len(t, producer.out, 2)
	assert.Equal(t, "t.swap.events.v1", producer.out[0].topic)
	assert.Equal(t, "s1", producer.out[0].key)
	assert.Equal(t, "t.user.events.v1", producer.out[1].topic)
}

func TestWorkerSchedulesRetryWithBackoff(t *testing.T) {
	failing := doc("a", "swap.accepted")
	failing.Attempts = 1
	queue := &fakeQueue{docs: []*EventDocument{failing}}
	w := &Worker{
		Store:    queue,
		Producer: &fakeProducer{fail: errors.New("broker down")},
		Backoff:  []time.Duration{time.Second, time.Minute},
	}

	before := time.Now()
	require.NoError(t, w.Drain(context.Background()))

	assert.Empty(t, queue.sent)
	next, ok := queue.failed["a"]
	require.True(t, ok)
	assert.WithinDuration(t, before.Add(time.Minute), next, 5*time.Second)
}

func TestWorkerRespectsBatchSize(t *testing.T) {
	queue := &fakeQueue{docs: []*EventDocument{doc("a", "x.y"), doc("b", "x.y"), doc("c", "x.y")}}
	w := &Worker{Store: queue, Producer: &fakeProducer{}, BatchSize: 2}

	require.NoError(t, w.Drain(context.Background()))
	assert.Equal(t, []string{"a", "b"}, queue.sent)
	assert.Len(t, queue.docs, 1)
}

func TestLocalProducerRoutesDecodedRecords(t *testing.T) {
	router := appoutbox.NewRouter()
	var got []appoutbox.EventRecord
	router.Subscribe("swap.accepted", func(ctx context.Context, rec appoutbox.EventRecord) error {
		got = append(got, rec)
		return nil
	})
	w := &Worker{Store: &fakeQueue{docs: []*EventDocument{doc("a", "swap.accepted")}}, Producer: LocalProducer{Router: router}}

	require.NoError(t, w.Drain(context.Background()))
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
}

func TestWorkerRunRequiresDependencies(t *testing.T) {
	assert.ErrorIs(t, (&Worker{}).Run(context.Background()), ErrWorkerNotConfigured)
}
