package store

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
)

var delScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
else
    return 0
end
`)

// Redis implements Store using a Redis backend. SetIfAbsent maps to SET NX
// with a millisecond expiry and DeleteIfMatch runs a server-side Lua script,
// so both compare-and-act steps happen atomically inside Redis.
type Redis struct {
	client *redis.Client
}

// NewRedis returns a new Redis store using the provided client. The client
// may be shared with other consumers; it must tolerate concurrent use.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// SetIfAbsent implements Store.SetIfAbsent.
func (r *Redis) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, key, value, ttl).Result()
}

// DeleteIfMatch implements Store.DeleteIfMatch.
func (r *Redis) DeleteIfMatch(ctx context.Context, key, value string) (bool, error) {
	res, err := delScript.Run(ctx, r.client, []string{key}, value).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	n, ok := res.(int64)
	return ok && n == 1, nil
}
