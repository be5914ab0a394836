package presets

import (
	redis "github.com/redis/go-redis/v9"

	"github.com/mirkobrombin/go-dislock/v1/lock"
	"github.com/mirkobrombin/go-dislock/v1/store"
)

// RedisOptions configures the connection to Redis.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedis creates a Locker backed by a fresh Redis client. Any number of
// processes pointing the same Redis endpoint coordinate through it; all
// atomicity lives server-side.
func NewRedis(opts RedisOptions, lockOpts ...lock.Option) *lock.Locker {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return lock.New(store.NewRedis(client), lockOpts...)
}

// NewRedisClient creates a Locker on top of an existing go-redis client,
// for callers that already manage their own connection.
func NewRedisClient(client *redis.Client, lockOpts ...lock.Option) *lock.Locker {
	return lock.New(store.NewRedis(client), lockOpts...)
}

// NewInMemoryStandalone creates a Locker that runs entirely in-memory with
// no external dependencies. Useful for local development and tests; it only
// coordinates goroutines within one process.
func NewInMemoryStandalone(lockOpts ...lock.Option) *lock.Locker {
	return lock.New(store.NewInMemory(), lockOpts...)
}
