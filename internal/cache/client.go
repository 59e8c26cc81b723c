package cache

import (
	"time"

	"github.com/redis/go-redis/v9"
)

// New builds a Redis client for the catalog cache, order-status cache,
// and cart change fan-out.
func New(addr string) *redis.Client {
	r := redis.NewClient(&redis.Options{Addr: addr})
	_ = r.WithTimeout(2 * time.Second)
	return r
}
