package get_time_slots

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Request модель запроса на получение слотов
type Request struct {
	ServiceID int64     // ID услуги
	Date      time.Time // Дата (без времени)
}

// Response модель ответа со списком слотов
type Response struct {
	Date      time.Time              // Дата, на которую запрашивались слоты
	ServiceID int64                  // ID услуги
	Source    domain.RuleSource      // Откуда взяты правила: service или company
	Slots     []domain.AvailableSlot // Слоты по возрастанию; занятые помечены Available=false
}
