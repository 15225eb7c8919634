package reschedule_booking

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	rescheduleBooking "github.com/m04kA/SMC-AppointmentService/internal/usecase/reschedule_booking"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// RescheduleRequest HTTP request model
type RescheduleRequest struct {
	Date     string `json:"date"`     // "2025-06-03"
	TimeSlot string `json:"timeSlot"` // "11:00"
}

var errInvalidTime = errors.New("invalid time slot")

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *RescheduleRequest) ToUseCaseRequest(customerID, appointmentID int64) (*rescheduleBooking.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, err
	}

	slot, err := types.NewTimeStringFromString(r.TimeSlot)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidTime, err)
	}

	return &rescheduleBooking.Request{
		CustomerID:    customerID,
		AppointmentID: appointmentID,
		Date:          date,
		TimeSlot:      slot,
	}, nil
}
