package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RateLimitRepository 以固定時間窗計數請求
type RateLimitRepository interface {
	// Allow 遞增 key 的計數，回傳是否仍在 limit 之內
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// fixedWindowScript 只在時間窗的第一個請求設定過期時間，時間窗到期後計數歸零
var fixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// redisRateLimitRepository 以 Lua 腳本原子地完成 INCR 與首次 PEXPIRE
type redisRateLimitRepository struct {
	client    *redis.Client
	keyPrefix string
}

func NewRedisRateLimitRepository(client *redis.Client, keyPrefix string) *redisRateLimitRepository {
	if client == nil {
		panic("redis client cannot be nil for redisRateLimitRepository")
	}
	if keyPrefix == "" {
		keyPrefix = "santa:"
	}
	return &redisRateLimitRepository{client: client, keyPrefix: keyPrefix}
}

func (r *redisRateLimitRepository) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	fullKey := r.keyPrefix + "ratelimit:" + key

	count, err := fixedWindowScript.Run(ctx, r.client, []string{fullKey}, window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("redis: rate limit script on %s: %w", fullKey, err)
	}
	return count <= int64(limit), nil
}

var _ RateLimitRepository = (*redisRateLimitRepository)(nil)
