package cache

import (
	"context"
	"sync"
	"time"

	"skillswap/internal/domain/user"
)

// MemoryBans is the in-process ban cache used when Redis is not configured.
type MemoryBans struct {
	Lookup LookupFunc
	TTL    time.Duration
	Clock  func() time.Time

	mu      sync.Mutex
	entries map[user.ID]banEntry
}

type banEntry struct {
	banned    bool
	expiresAt time.Time
}

func NewMemoryBans(lookup LookupFunc, ttl time.Duration) *MemoryBans {
	return &MemoryBans{Lookup: lookup, TTL: ttl, entries: make(map[user.ID]banEntry)}
}

func (c *MemoryBans) IsBanned(ctx context.Context, id user.ID) (bool, error) {
	now := c.now()
	c.mu.Lock()
	entry, ok := c.entries[id]
	c.mu.Unlock()
	if ok && now.Before(entry.expiresAt) {
		return entry.banned, nil
	}
	banned, err := c.Lookup(ctx, id)
	if err != nil {
		return false, err
	}
	c.put(id, banned, now)
	return banned, nil
}

func (c *MemoryBans) MarkBanned(_ context.Context, id user.ID) error {
	c.put(id, true, c.now())
	return nil
}

func (c *MemoryBans) put(id user.ID, banned bool, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = make(map[user.ID]banEntry)
	}
	c.entries[id] = banEntry{banned: banned, expiresAt: now.Add(c.TTL)}
}

func (c *MemoryBans) now() time.Time {
	if c.Clock != nil {
		return c.Clock()
	}
	return time.Now()
}
