package memory

import (
	"sync"

	"skillswap/internal/domain/chat"
	"skillswap/internal/domain/shared/events"
	"skillswap/internal/domain/shared/failure"
	"skillswap/internal/domain/swap"
	"skillswap/internal/domain/user"
)

var (
	ErrConcurrentUpdate = failure.Conflict("memory: concurrent update detected")
	ErrReadOnly         = failure.InvalidState("memory: unit of work is read-only")
	ErrUnitClosed       = failure.InvalidState("memory: unit of work already finished")
)

// Store keeps every aggregate in process. Units stage writes and apply them on Commit
// after a version check, so the store never holds a half-applied command.
type Store struct {
	mu    sync.RWMutex
	users *table[user.ID, *user.User]
	swaps *table[swap.ID, *swap.Swap]
	chats *table[chat.ID, *chat.Chat]
}

func NewStore() *Store {
	return &Store{
		users: newTable(func(u *user.User) user.ID { return u.ID }, func(u *user.User) *int64 { return &u.Version }, cloneUser),
		swaps: newTable(func(s *swap.Swap) swap.ID { return s.ID }, func(s *swap.Swap) *int64 { return &s.Version }, cloneSwap),
		chats: newTable(func(c *chat.Chat) chat.ID { return c.ID }, func(c *chat.Chat) *int64 { return &c.Version }, cloneChat),
	}
}

// PutUser stores u as is. Accounts come from the identity subsystem; this is how
// they reach the in-memory store.
func (s *Store) PutUser(u *user.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users.rows[u.ID] = cloneUser(u)
}

type table[K comparable, V any] struct {
	rows    map[K]V
	key     func(V) K
	version func(V) *int64
	clone   func(V) V
}

func newTable[K comparable, V any](key func(V) K, version func(V) *int64, clone func(V) V) *table[K, V] {
	return &table[K, V]{rows: make(map[K]V), key: key, version: version, clone: clone}
}

func (t *table[K, V]) storedVersion(k K) int64 {
	if v, ok := t.rows[k]; ok {
		return *t.version(v)
	}
	return 0
}

type stagedRow[V any] struct {
	expected int64
	value    V
}

// view is one unit's window on a table: reads see its own staged writes first.
type view[K comparable, V any] struct {
	mu     *sync.RWMutex
	base   *table[K, V]
	staged map[K]stagedRow[V]
}

func newView[K comparable, V any](mu *sync.RWMutex, base *table[K, V]) *view[K, V] {
	return &view[K, V]{mu: mu, base: base, staged: make(map[K]stagedRow[V])}
}

func (v *view[K, V]) get(k K) (V, bool) {
	if row, ok := v.staged[k]; ok {
		return v.base.clone(row.value), true
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	row, ok := v.base.rows[k]
	if !ok {
		var zero V
		return zero, false
	}
	return v.base.clone(row), true
}

func (v *view[K, V]) all() []V {
	v.mu.RLock()
	out := make([]V, 0, len(v.base.rows)+len(v.staged))
	for k, row := range v.base.rows {
		if _, shadowed := v.staged[k]; !shadowed {
			out = append(out, v.base.clone(row))
		}
	}
	v.mu.RUnlock()
	for _, row := range v.staged {
		out = append(out, v.base.clone(row.value))
	}
	return out
}

// save stages a copy of val and bumps its version, failing when val was loaded at a
// version that is no longer current.
func (v *view[K, V]) save(val V) error {
	k := v.base.key(val)
	current := *v.base.version(val)
	expected := current
	if row, ok := v.staged[k]; ok {
		if *v.base.version(row.value) != current {
			return ErrConcurrentUpdate
		}
		expected = row.expected
	} else {
		v.mu.RLock()
		stored := v.base.storedVersion(k)
		v.mu.RUnlock()
		if stored != current {
			return ErrConcurrentUpdate
		}
	}
	*v.base.version(val) = current + 1
	v.staged[k] = stagedRow[V]{expected: expected, value: v.base.clone(val)}
	return nil
}

// check and apply run under the store write lock.
func (v *view[K, V]) check() error {
	for k, row := range v.staged {
		if v.base.storedVersion(k) != row.expected {
			return ErrConcurrentUpdate
		}
	}
	return nil
}

func (v *view[K, V]) apply() {
	for k, row := range v.staged {
		v.base.rows[k] = row.value
	}
	v.staged = make(map[K]stagedRow[V])
}

func cloneUser(u *user.User) *user.User {
	cp := *u
	cp.EventRecorder = events.EventRecorder{}
	return &cp
}

func cloneSwap(s *swap.Swap) *swap.Swap {
	cp := *s
	cp.EventRecorder = events.EventRecorder{}
	if s.RequesterRating != nil {
		r := *s.RequesterRating
		cp.RequesterRating = &r
	}
	if s.RecipientRating != nil {
		r := *s.RecipientRating
		cp.RecipientRating = &r
	}
	return &cp
}

func cloneChat(c *chat.Chat) *chat.Chat {
	cp := *c
	cp.EventRecorder = events.EventRecorder{}
	cp.Participants = append([]user.ID(nil), c.Participants...)
	cp.Messages = append([]chat.Message(nil), c.Messages...)
	cp.StudySessions = append([]chat.StudySession(nil), c.StudySessions...)
	cp.Warnings = append([]chat.Warning(nil), c.Warnings...)
	return &cp
}
