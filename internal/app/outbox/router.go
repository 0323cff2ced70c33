package outbox

import (
	"context"
	"errors"
	"sync"
)

// Subscriber reacts to a committed event record.
type Subscriber func(ctx context.Context, rec EventRecord) error

// Router fans committed records out to the subscribers registered for their name.
// It serves both the in-process relay and the broker consumer.
type Router struct {
	mu   sync.RWMutex
	subs map[string][]Subscriber
}

func NewRouter() *Router {
	return &Router{subs: make(map[string][]Subscriber)}
}

func (r *Router) Subscribe(name string, sub Subscriber) {
	if name == "" || sub == nil {
		panic("outbox: invalid subscription")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs[name] = append(r.subs[name], sub)
}

// Handles reports whether anyone listens to name.
func (r *Router) Handles(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs[name]) > 0
}

// Route runs every subscriber for rec and joins their errors.
func (r *Router) Route(ctx context.Context, rec EventRecord) error {
	r.mu.RLock()
	subs := append([]Subscriber(nil), r.subs[rec.Name]...)
	r.mu.RUnlock()
	var errs []error
	for _, sub := range subs {
		if err := sub(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
