package create_booking

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Request модель запроса на запись
type Request struct {
	CustomerID int64            // ID клиента из заголовка авторизации
	ServiceID  int64            // ID услуги
	Date       time.Time        // Дата записи (без времени)
	TimeSlot   types.TimeString // Начало слота, HH:MM
	Notes      *string          // Комментарий клиента (опционально)
}

// Response созданная запись и обновленная квота клиента
type Response struct {
	Appointment *domain.Appointment
	Quota       domain.Quota
}
