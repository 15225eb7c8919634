package slotlock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

const retryInterval = 25 * time.Millisecond

// Locker сериализует изменения записей одной услуги на одну дату
type Locker interface {
	WithLock(ctx context.Context, serviceID int64, date time.Time, fn func(ctx context.Context) error) error
}

// RedisLocker блокировка по ключу lock:slot:<serviceId>:<date> (SET NX с токеном владельца)
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
}

// NewRedisLocker создает блокировку. ttl ограничивает время жизни ключа,
// wait ограничивает ожидание занятой блокировки.
func NewRedisLocker(client *redis.Client, ttl, wait time.Duration) *RedisLocker {
	return &RedisLocker{client: client, ttl: ttl, wait: wait}
}

// Key ключ блокировки для услуги и даты
func Key(serviceID int64, date time.Time) string {
	return fmt.Sprintf("lock:slot:%d:%s", serviceID, date.Format(domain.DateFormat))
}

// WithLock выполняет fn под блокировкой. Контекст fn ограничен ttl блокировки.
func (l *RedisLocker) WithLock(ctx context.Context, serviceID int64, date time.Time, fn func(ctx context.Context) error) error {
	key := Key(serviceID, date)
	token := uuid.NewString()

	if err := l.acquire(ctx, key, token); err != nil {
		return err
	}

	defer func() {
		// Снимаем блокировку даже если контекст запроса уже отменен
		_ = l.release(context.WithoutCancel(ctx), key, token)
	}()

	lockCtx, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(lockCtx)
}

func (l *RedisLocker) acquire(ctx context.Context, key, token string) error {
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return fmt.Errorf("%w: acquire %s: %v", ErrRedis, key, err)
		}
		if ok {
			return nil
		}
		if !time.Now().Before(deadline) {
			return ErrLockNotAcquired
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrLockNotAcquired, ctx.Err())
		case <-time.After(retryInterval):
		}
	}
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *RedisLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: release %s: %v", ErrRedis, key, err)
	}
	return nil
}

// NoopLocker выполняет fn без блокировки (Redis отключен)
type NoopLocker struct{}

func (NoopLocker) WithLock(ctx context.Context, _ int64, _ time.Time, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
