package subscriptions

import "errors"

var (
	// ErrUserNotFound возвращается, когда пользователь не найден
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidPlan возвращается при неизвестном плане
	ErrInvalidPlan = errors.New("invalid subscription plan")

	// ErrFreePlanUsed возвращается при повторной активации бесплатного плана
	ErrFreePlanUsed = errors.New("free plan can be used only once")

	// ErrUpgradeOnlyYearly возвращается при повторной покупке месячного плана
	ErrUpgradeOnlyYearly = errors.New("you can upgrade only to yearly plan")

	// ErrAlreadyYearly возвращается, когда активен годовой план
	ErrAlreadyYearly = errors.New("you already have pro yearly plan")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
