package redislock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*goredis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())
	return client, mr
}

func TestAcquireIsExclusive(t *testing.T) {
	client, _ := setupTestRedis(t)
	ctx := context.Background()
	lock := New(client, "", nil)

	release, err := lock.Acquire(ctx, time.Minute)
	require.NoError(t, err)

	_, err = lock.Acquire(ctx, time.Minute)
	assert.True(t, errors.Is(err, ErrLockHeld), "second acquire should see the held lock, got %v", err)

	require.NoError(t, release(ctx))

	again, err := lock.Acquire(ctx, time.Minute)
	require.NoError(t, err)
	require.NoError(t, again(ctx))
}

func TestReleaseDoesNotStealNewHolder(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()
	lock := New(client, "etl-test", nil)

	staleRelease, err := lock.Acquire(ctx, time.Second)
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	freshRelease, err := lock.Acquire(ctx, time.Minute)
	require.NoError(t, err)

	require.NoError(t, staleRelease(ctx))
	assert.True(t, mr.Exists("etl-test"), "stale release must not delete the new holder's lease")

	require.NoError(t, freshRelease(ctx))
	assert.False(t, mr.Exists("etl-test"))
}

func TestDialRejectsEmptyAddr(t *testing.T) {
	_, err := Dial(context.Background(), " ")
	assert.Error(t, err)
}
