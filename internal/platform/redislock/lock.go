// Package redislock provides a single-holder lease backed by Redis, used to
// keep two ETL runs from materializing the graph at the same time.
package redislock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/shopgraph/internal/platform/logger"
)

const DefaultKey = "shopgraph:etl:lock"

var ErrLockHeld = errors.New("redislock: lock held by another holder")

// Only the holder that set the token may delete the key.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type Lock struct {
	rdb *goredis.Client
	key string
	log *logger.Logger
}

func New(rdb *goredis.Client, key string, log *logger.Logger) *Lock {
	key = strings.TrimSpace(key)
	if key == "" {
		key = DefaultKey
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Lock{rdb: rdb, key: key, log: log.With("component", "RedisLock", "key", key)}
}

// Dial connects to addr and verifies it with PING.
func Dial(ctx context.Context, addr string) (*goredis.Client, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("redislock: missing redis address")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// Acquire takes the lease for ttl. The returned release func is safe to call
// after the lease expired; it never deletes a lease taken by someone else.
func (l *Lock) Acquire(ctx context.Context, ttl time.Duration) (func(context.Context) error, error) {
	if l == nil || l.rdb == nil {
		return nil, fmt.Errorf("redislock: not initialized")
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, l.key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redislock: acquire: %w", err)
	}
	if !ok {
		holder, _ := l.rdb.Get(ctx, l.key).Result()
		l.log.Warn("lock already held", "holder", holder)
		return nil, ErrLockHeld
	}
	l.log.Debug("lock acquired", "ttl", ttl.String())

	release := func(ctx context.Context) error {
		n, err := releaseScript.Run(ctx, l.rdb, []string{l.key}, token).Int()
		if err != nil && !errors.Is(err, goredis.Nil) {
			return fmt.Errorf("redislock: release: %w", err)
		}
		if n == 0 {
			l.log.Warn("lock expired before release")
		}
		return nil
	}
	return release, nil
}
