package create_booking

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("create_booking: service not found")

	// ErrServiceInactive возвращается, когда услуга выключена
	ErrServiceInactive = errors.New("create_booking: service not available")

	// ErrCustomerNotFound возвращается, когда клиент не найден
	ErrCustomerNotFound = errors.New("create_booking: customer not found")

	// ErrSubscriptionExpired возвращается, когда подписка клиента истекла
	ErrSubscriptionExpired = errors.New("create_booking: your plan has expired, please upgrade your plan to continue")

	// ErrQuotaExceeded возвращается, когда бесплатный лимит записей исчерпан
	ErrQuotaExceeded = errors.New("create_booking: your free plan booking limit is over, please upgrade to monthly or yearly plan")

	// ErrAvailabilityNotConfigured возвращается, когда у услуги и компании нет правил доступности
	ErrAvailabilityNotConfigured = errors.New("create_booking: availability not configured")

	// ErrSlotUnavailable возвращается, когда время не проходит правила доступности.
	// Оборачивает scheduling.Rejection с машиночитаемой причиной.
	ErrSlotUnavailable = errors.New("create_booking: slot not available")

	// ErrSlotConflict возвращается, когда слот уже занят другой записью
	ErrSlotConflict = errors.New("create_booking: this time slot is already booked")

	// ErrSlotBusy возвращается, когда параллельно идет запись на ту же услугу и дату
	ErrSlotBusy = errors.New("create_booking: slot is being booked, try again")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
