package redis_adapter

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// commands - подмножество команд Redis, которое используют адаптеры. *redis.Client его реализует.
type commands interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}
