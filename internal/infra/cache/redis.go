package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"skillswap/internal/domain/user"
)

const banKeyPrefix = "skillswap:ban:"

// RedisBans caches platform ban flags in Redis with a TTL.
type RedisBans struct {
	Client redis.UniversalClient
	TTL    time.Duration
	Lookup LookupFunc
	Logger *slog.Logger
}

// NewRedisClient connects and pings the server.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func (c *RedisBans) IsBanned(ctx context.Context, id user.ID) (bool, error) {
	val, err := c.Client.Get(ctx, banKeyPrefix+string(id)).Result()
	switch {
	case err == nil:
		return val == "1", nil
	case !errors.Is(err, redis.Nil):
		// Redis trouble degrades to the repository.
		if c.Logger != nil {
			c.Logger.Warn("ban cache read failed", "user_id", id, "error", err)
		}
		return c.Lookup(ctx, id)
	}

	banned, err := c.Lookup(ctx, id)
	if err != nil {
		return false, err
	}
	c.store(ctx, id, banned)
	return banned, nil
}

func (c *RedisBans) MarkBanned(ctx context.Context, id user.ID) error {
	return c.Client.Set(ctx, banKeyPrefix+string(id), "1", c.TTL).Err()
}

func (c *RedisBans) store(ctx context.Context, id user.ID, banned bool) {
	val := "0"
	if banned {
		val = "1"
	}
	if err := c.Client.Set(ctx, banKeyPrefix+string(id), val, c.TTL).Err(); err != nil && c.Logger != nil {
		c.Logger.Warn("ban cache write failed", "user_id", id, "error", err)
	}
}
