package create_booking

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	createBooking "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_booking"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	ServiceID int64   `json:"serviceId"`
	Date      string  `json:"date"`     // "2025-06-02"
	TimeSlot  string  `json:"timeSlot"` // "10:00"
	Notes     *string `json:"notes,omitempty"`
}

// CreateBookingResponse HTTP response model
// User содержит обновленную квоту клиента
type CreateBookingResponse struct {
	Appointment *models.AppointmentResponse `json:"appointment"`
	User        domain.Quota                `json:"user"`
}

var (
	errInvalidDate = errors.New("invalid date")
	errInvalidTime = errors.New("invalid time slot")
)

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(customerID int64) (*createBooking.Request, error) {
	// Парсим дату
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidDate, err)
	}

	// Парсим время
	slot, err := types.NewTimeStringFromString(r.TimeSlot)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidTime, err)
	}

	return &createBooking.Request{
		CustomerID: customerID,
		ServiceID:  r.ServiceID,
		Date:       date,
		TimeSlot:   slot,
		Notes:      r.Notes,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *CreateBookingResponse {
	return &CreateBookingResponse{
		Appointment: models.FromDomainAppointment(resp.Appointment),
		User:        resp.Quota,
	}
}
