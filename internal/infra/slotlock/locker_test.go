package slotlock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lockDate = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

func newLocker(t *testing.T, wait time.Duration) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLocker(client, 5*time.Second, wait), mr
}

func TestWithLock_ReleasesAfterRun(t *testing.T) {
	locker, mr := newLocker(t, 0)

	err := locker.WithLock(context.Background(), 3, lockDate, func(ctx context.Context) error {
		assert.True(t, mr.Exists(Key(3, lockDate)))
		return nil
	})

	require.NoError(t, err)
	assert.False(t, mr.Exists(Key(3, lockDate)))
}

func TestWithLock_BusyKey(t *testing.T) {
	locker, mr := newLocker(t, 50*time.Millisecond)
	require.NoError(t, mr.Set(Key(3, lockDate), "someone-else"))

	called := false
	err := locker.WithLock(context.Background(), 3, lockDate, func(ctx context.Context) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, ErrLockNotAcquired)
	assert.False(t, called)

	// Чужой токен не снимается
	got, _ := mr.Get(Key(3, lockDate))
	assert.Equal(t, "someone-else", got)
}

func TestWithLock_OtherDateIndependent(t *testing.T) {
	locker, mr := newLocker(t, 0)
	require.NoError(t, mr.Set(Key(3, lockDate), "someone-else"))

	err := locker.WithLock(context.Background(), 3, lockDate.AddDate(0, 0, 1), func(ctx context.Context) error { return nil })

	assert.NoError(t, err)
}

func TestWithLock_PropagatesError(t *testing.T) {
	locker, mr := newLocker(t, 0)
	boom := errors.New("boom")

	err := locker.WithLock(context.Background(), 3, lockDate, func(ctx context.Context) error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists(Key(3, lockDate)))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "lock:slot:3:2025-06-02", Key(3, lockDate))
}

func TestNoopLocker(t *testing.T) {
	called := false
	err := NoopLocker{}.WithLock(context.Background(), 1, lockDate, func(ctx context.Context) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
}
