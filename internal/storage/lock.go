package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const lockKeyPrefix = "stocknews:run:"

var ErrLocked = errors.New("another run holds the lock")

// 只有持有者（token 相同）才能释放
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RunLock 同一工作表同一时间只允许一个批次写入。nil 或未配置 Redis 时不加锁
type RunLock struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRunLock(rdb *redis.Client, ttl time.Duration) *RunLock {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RunLock{rdb: rdb, ttl: ttl}
}

// Acquire 成功时返回释放函数；锁被占用返回 ErrLocked
func (l *RunLock) Acquire(ctx context.Context, name string) (func(context.Context) error, error) {
	if l == nil || l.rdb == nil {
		return func(context.Context) error { return nil }, nil
	}
	key := lockKeyPrefix + name
	token := uuid.NewString()

	ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLocked
	}
	return func(ctx context.Context) error {
		return releaseScript.Run(ctx, l.rdb, []string{key}, token).Err()
	}, nil
}
