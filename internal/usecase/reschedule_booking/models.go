package reschedule_booking

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Request модель запроса на перенос записи
type Request struct {
	CustomerID    int64            // ID клиента из заголовка авторизации
	AppointmentID int64            // ID переносимой записи
	Date          time.Time        // Новая дата
	TimeSlot      types.TimeString // Новое время начала слота, HH:MM
}
