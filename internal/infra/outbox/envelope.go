package outbox

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	appoutbox "skillswap/internal/app/outbox"
)

const (
	envelopeVersion    = "1.0"
	eventTypeSuffix    = ".v1"
	cloudEventsContent = "application/cloudevents+json"
)

var ErrMalformedEnvelope = errors.New("outbox: malformed event envelope")

// Envelope is the CloudEvents structured-mode body published for every record.
type Envelope struct {
	SpecVersion     string          `json:"specversion"`
	ID              string          `json:"id"`
	Type            string          `json:"type"`
	Source          string          `json:"source"`
	Subject         string          `json:"subject,omitempty"`
	Time            time.Time       `json:"time"`
	DataContentType string          `json:"datacontenttype"`
	Data            json.RawMessage `json:"data"`
	TraceParent     string          `json:"traceparent,omitempty"`
}

// Encode wraps rec for the wire. The record id becomes the envelope id so consumers
// can deduplicate redeliveries.
func Encode(rec appoutbox.EventRecord, source string) ([]byte, map[string]string, error) {
	if !json.Valid(rec.Payload) {
		return nil, nil, ErrMalformedEnvelope
	}
	id := rec.ID
	if id == "" {
		id = uuid.NewString()
	}
	env := Envelope{
		SpecVersion:     envelopeVersion,
		ID:              id,
		Type:            rec.Name + eventTypeSuffix,
		Source:          source,
		Subject:         rec.Aggregate,
		Time:            rec.OccurredAt,
		DataContentType: "application/json",
		Data:            rec.Payload,
		TraceParent:     rec.Headers["traceparent"],
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return nil, nil, err
	}
	headers := map[string]string{"content-type": cloudEventsContent}
	for k, v := range rec.Headers {
		headers[k] = v
	}
	return payload, headers, nil
}

func Decode(body []byte) (appoutbox.EventRecord, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return appoutbox.EventRecord{}, err
	}
	if env.ID == "" || env.Type == "" {
		return appoutbox.EventRecord{}, ErrMalformedEnvelope
	}
	rec := appoutbox.EventRecord{
		ID:         env.ID,
		Name:       strings.TrimSuffix(env.Type, eventTypeSuffix),
		Payload:    env.Data,
		OccurredAt: env.Time,
		Aggregate:  env.Subject,
		Headers:    map[string]string{},
	}
	if env.TraceParent != "" {
		rec.Headers["traceparent"] = env.TraceParent
	}
	return rec, nil
}

// TopicFor maps an event name such as "swap.accepted" to "<prefix>swap.events.v1".
func TopicFor(prefix, name string) string {
	base := name
	if idx := strings.IndexRune(name, '.'); idx > 0 {
		base = name[:idx]
	}
	return prefix + base + ".events.v1"
}
