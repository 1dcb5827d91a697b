package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/airticket/config"
	"github.com/redis/go-redis/v9"
)

// releaseHold deletes a hold only if it still belongs to the caller.
var releaseHold = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RedisSeatHolds keeps short-lived per-seat holds while a booking attempt is
// between its conflict check and its ticket insert.
type RedisSeatHolds struct {
	client *redis.Client
}

func NewRedisSeatHolds(cfg config.RedisConfig) *RedisSeatHolds {
	return &RedisSeatHolds{
		client: redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
	}
}

func (c *RedisSeatHolds) AcquireSeatHold(ctx context.Context, flightID int64, seat, owner string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, seatHoldKey(flightID, seat), owner, ttl).Result()
}

func (c *RedisSeatHolds) ReleaseSeatHold(ctx context.Context, flightID int64, seat, owner string) error {
	return releaseHold.Run(ctx, c.client, []string{seatHoldKey(flightID, seat)}, owner).Err()
}

func (c *RedisSeatHolds) Close() error {
	return c.client.Close()
}

func seatHoldKey(flightID int64, seat string) string {
	return fmt.Sprintf("hold:flight:%d:seat:%s", flightID, seat)
}
