package domain

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending     AppointmentStatus = "pending"
	StatusApproved    AppointmentStatus = "approved"
	StatusRejected    AppointmentStatus = "rejected"
	StatusCancelled   AppointmentStatus = "cancelled"
	StatusRescheduled AppointmentStatus = "rescheduled"
)

// Appointment represents a customer's booking of a service slot
type Appointment struct {
	ID         int64
	CustomerID int64
	ServiceID  int64
	CompanyID  int64 // denormalized owner for tenant isolation
	Date       time.Time
	TimeSlot   types.TimeString // slot start
	Notes      *string
	Status     AppointmentStatus

	RejectionReason string
	RescheduledFrom *time.Time

	// Populated by listing queries
	ServiceName     string
	ServicePrice    float64
	ServiceDuration int
	CustomerName    string
	CustomerEmail   string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HoldsSlot returns true if the appointment still occupies its slot for conflict purposes
func (a *Appointment) HoldsSlot() bool {
	return a.Status.HoldsSlot()
}

// CanBeCancelled returns true if the customer may cancel the appointment
func (a *Appointment) CanBeCancelled() bool {
	return a.Status == StatusPending || a.Status == StatusApproved || a.Status == StatusRescheduled
}

// CanBeRescheduled returns true if the customer may move the appointment
func (a *Appointment) CanBeRescheduled() bool {
	return a.Status == StatusPending || a.Status == StatusApproved || a.Status == StatusRescheduled
}

// CanBeDecided returns true if an admin may approve or reject the appointment
func (a *Appointment) CanBeDecided() bool {
	return a.Status == StatusPending
}

// IsTerminal returns true for statuses that allow no further transitions
func (a *Appointment) IsTerminal() bool {
	return a.Status == StatusRejected || a.Status == StatusCancelled
}

// BelongsTo returns true if the appointment is owned by the customer
func (a *Appointment) BelongsTo(customerID int64) bool {
	return a.CustomerID == customerID
}

// HoldsSlot returns true if an appointment in this status blocks its slot
func (s AppointmentStatus) HoldsSlot() bool {
	for _, st := range SlotHoldingStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// IsValid returns true for known statuses
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled, StatusRescheduled:
		return true
	}
	return false
}

// SlotKey identifies a bookable slot of a service
type SlotKey struct {
	ServiceID int64
	Date      time.Time
	TimeSlot  types.TimeString
}

// AppointmentsFilter фильтр для выборки записей
type AppointmentsFilter struct {
	CompanyID   *int64             // Обязателен для админских выборок (изоляция арендаторов)
	CustomerID  *int64             // Фильтр по клиенту
	Status      *AppointmentStatus // Фильтр по статусу
	FromDate    *time.Time         // Начало периода по дате записи
	ToDate      *time.Time         // Конец периода по дате записи
	CreatedFrom *time.Time         // Начало периода по времени создания
	CreatedTo   *time.Time         // Конец периода по времени создания
	Search      string             // Поиск по имени клиента или названию услуги
}
