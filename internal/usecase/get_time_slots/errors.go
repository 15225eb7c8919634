package get_time_slots

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_time_slots: invalid input data")

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("get_time_slots: service not found")

	// ErrAvailabilityNotConfigured возвращается, когда у услуги и компании нет правил доступности
	ErrAvailabilityNotConfigured = errors.New("get_time_slots: availability not set")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_time_slots: internal error")
)
