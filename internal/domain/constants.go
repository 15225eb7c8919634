package domain

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// Business validation constants
const (
	MinServiceDurationMinutes = 1
	MaxServiceDurationMinutes = 1440
	MaxNotesLength            = 500
	MaxRejectionReasonLength  = 500
	MaxServiceNameLength      = 200
)

// Subscription defaults
const (
	DefaultFreeBookingLimit = 10
)

// Pagination defaults
const (
	DefaultPage      = 1
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// DefaultRejectionReason подставляется в уведомление, если администратор не указал причину
const DefaultRejectionReason = "not specified"

// SlotHoldingStatuses статусы, при которых запись занимает слот.
// Отклоненная запись слот освобождает, отмененная продолжает его удерживать.
var SlotHoldingStatuses = []AppointmentStatus{
	StatusPending,
	StatusApproved,
	StatusCancelled,
	StatusRescheduled,
}

// SlotReleasingStatuses статусы, при которых запись не участвует в проверке конфликтов
var SlotReleasingStatuses = []AppointmentStatus{
	StatusRejected,
}
