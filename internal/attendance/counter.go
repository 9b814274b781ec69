package attendance

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"eventpass/internal/shared/constants"
)

// GuestCounter owns live per-room guest counts
type GuestCounter interface {
	// Move shifts headcount from one room to another in one atomic step.
	// An empty from only increments to.
	Move(ctx context.Context, from, to string, headcount int) error
	Count(ctx context.Context, roomID string) (int64, error)
}

// RedisGuestCounter keeps counts under eventpass:guest_count:{room}
type RedisGuestCounter struct {
	client redis.Cmdable
}

func NewRedisGuestCounter(client redis.Cmdable) *RedisGuestCounter {
	return &RedisGuestCounter{client: client}
}

// Move runs DECRBY and INCRBY inside MULTI/EXEC so concurrent movements never lose updates
func (c *RedisGuestCounter) Move(ctx context.Context, from, to string, headcount int) error {
	if headcount == 0 {
		return nil
	}

	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if from != "" {
			pipe.DecrBy(ctx, constants.BuildGuestCountKey(from), int64(headcount))
		}
		if to != "" {
			pipe.IncrBy(ctx, constants.BuildGuestCountKey(to), int64(headcount))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to move guest count: %w", err)
	}
	return nil
}

// Count returns zero for a room nobody has entered yet
func (c *RedisGuestCounter) Count(ctx context.Context, roomID string) (int64, error) {
	count, err := c.client.Get(ctx, constants.BuildGuestCountKey(roomID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read guest count: %w", err)
	}
	return count, nil
}
