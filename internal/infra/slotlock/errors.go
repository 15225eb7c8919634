package slotlock

import "errors"

var (
	// ErrLockNotAcquired возвращается, когда блокировку не удалось взять за время ожидания
	ErrLockNotAcquired = errors.New("slotlock: lock not acquired")

	// ErrRedis возвращается при ошибках обращения к Redis
	ErrRedis = errors.New("slotlock: redis error")
)
