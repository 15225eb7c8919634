package get_time_slots

import (
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	getTimeSlots "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_time_slots"
)

// TimeSlotsResponse HTTP response model
type TimeSlotsResponse struct {
	Date      string     `json:"date"`
	ServiceID int64      `json:"serviceId"`
	Source    string     `json:"source,omitempty"` // service | company
	Slots     []TimeSlot `json:"slots"`
}

// TimeSlot модель временного слота
type TimeSlot struct {
	Slot      string `json:"slot"` // "09:00-09:30"
	Start     string `json:"start"`
	End       string `json:"end"`
	Available bool   `json:"available"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getTimeSlots.Response) *TimeSlotsResponse {
	slots := make([]TimeSlot, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = TimeSlot{
			Slot:      slot.Label(),
			Start:     slot.Start.String(),
			End:       slot.End.String(),
			Available: slot.Available,
		}
	}

	return &TimeSlotsResponse{
		Date:      resp.Date.Format(domain.DateFormat),
		ServiceID: resp.ServiceID,
		Source:    string(resp.Source),
		Slots:     slots,
	}
}
