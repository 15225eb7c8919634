package reschedule_booking

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("reschedule_booking: invalid input data")

	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("reschedule_booking: appointment not found")

	// ErrForbidden возвращается, когда запись принадлежит другому клиенту
	ErrForbidden = errors.New("reschedule_booking: not authorized")

	// ErrInvalidStatus возвращается, когда запись в статусе, не допускающем перенос
	ErrInvalidStatus = errors.New("reschedule_booking: appointment cannot be rescheduled")

	// ErrAvailabilityNotConfigured возвращается, когда у услуги и компании нет правил доступности
	ErrAvailabilityNotConfigured = errors.New("reschedule_booking: availability not configured")

	// ErrSlotUnavailable возвращается, когда новое время не проходит правила доступности.
	// Оборачивает scheduling.Rejection.
	ErrSlotUnavailable = errors.New("reschedule_booking: slot not available")

	// ErrSlotConflict возвращается, когда новый слот занят другой записью
	ErrSlotConflict = errors.New("reschedule_booking: this time slot is already booked")

	// ErrSlotBusy возвращается, когда параллельно идет запись на ту же услугу и дату
	ErrSlotBusy = errors.New("reschedule_booking: slot is being booked, try again")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("reschedule_booking: internal error")
)
