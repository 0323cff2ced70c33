package memory

import (
	"context"
	"sort"
	"time"

	"skillswap/internal/domain/chat"
	"skillswap/internal/domain/swap"
	"skillswap/internal/domain/user"
)

type UserRepository struct {
	unit *Unit
	rows *view[user.ID, *user.User]
}

func (r *UserRepository) ByID(ctx context.Context, id user.ID) (*user.User, error) {
	if u, ok := r.rows.get(id); ok {
		return u, nil
	}
	return nil, user.ErrNotFound
}

func (r *UserRepository) Save(ctx context.Context, u *user.User) error {
	if err := r.unit.writable(); err != nil {
		return err
	}
	if u == nil || u.ID == "" {
		return user.ErrIDRequired
	}
	return r.rows.save(u)
}

type SwapRepository struct {
	unit *Unit
	rows *view[swap.ID, *swap.Swap]
}

func (r *SwapRepository) ByID(ctx context.Context, id swap.ID) (*swap.Swap, error) {
	if s, ok := r.rows.get(id); ok {
		return s, nil
	}
	return nil, swap.ErrNotFound
}

func (r *SwapRepository) Save(ctx context.Context, s *swap.Swap) error {
	if err := r.unit.writable(); err != nil {
		return err
	}
	return r.rows.save(s)
}

// ListByUser returns swaps the user takes part in, newest first.
func (r *SwapRepository) ListByUser(ctx context.Context, userID user.ID) ([]*swap.Swap, error) {
	var out []*swap.Swap
	for _, s := range r.rows.all() {
		if s.IsParticipant(userID) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type ChatRepository struct {
	unit *Unit
	rows *view[chat.ID, *chat.Chat]
}

func (r *ChatRepository) ByID(ctx context.Context, id chat.ID) (*chat.Chat, error) {
	if c, ok := r.rows.get(id); ok {
		return c, nil
	}
	return nil, chat.ErrNotFound
}

func (r *ChatRepository) BySwapID(ctx context.Context, swapID swap.ID) (*chat.Chat, error) {
	for _, c := range r.rows.all() {
		if c.SwapID == swapID {
			return c, nil
		}
	}
	return nil, chat.ErrNotFound
}

func (r *ChatRepository) ListByParticipant(ctx context.Context, userID user.ID) ([]*chat.Chat, error) {
	var out []*chat.Chat
	for _, c := range r.rows.all() {
		if c.IsActive && c.IsParticipant(userID) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Stats.LastActivity.After(out[j].Stats.LastActivity)
	})
	return out, nil
}

// ListFlagged orders chats by their most recent flag, like a descending sort on the
// nested flaggedAt field.
func (r *ChatRepository) ListFlagged(ctx context.Context, page chat.Page) ([]*chat.Chat, int, error) {
	var flagged []*chat.Chat
	for _, c := range r.rows.all() {
		if len(c.FlaggedMessages()) > 0 {
			flagged = append(flagged, c)
		}
	}
	sort.SliceStable(flagged, func(i, j int) bool {
		return latestFlag(flagged[i]).After(latestFlag(flagged[j]))
	})
	total := len(flagged)
	if page.Limit <= 0 {
		return flagged, total, nil
	}
	start := page.Offset()
	if start >= total {
		return []*chat.Chat{}, total, nil
	}
	end := start + page.Limit
	if end > total {
		end = total
	}
	return flagged[start:end], total, nil
}

func latestFlag(c *chat.Chat) time.Time {
	var latest time.Time
	for _, m := range c.FlaggedMessages() {
		if m.FlaggedAt.After(latest) {
			latest = m.FlaggedAt
		}
	}
	return latest
}

func (r *ChatRepository) Save(ctx context.Context, c *chat.Chat) error {
	if err := r.unit.writable(); err != nil {
		return err
	}
	if c == nil || c.ID == "" {
		return chat.ErrNotFound
	}
	for _, existing := range r.rows.all() {
		if existing.SwapID == c.SwapID && existing.ID != c.ID {
			return ErrConcurrentUpdate
		}
	}
	return r.rows.save(c)
}
