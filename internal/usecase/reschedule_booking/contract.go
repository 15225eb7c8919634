package reschedule_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	FindSlotHolders(ctx context.Context, key domain.SlotKey, excludeID *int64) ([]*domain.Appointment, error)
	Reschedule(ctx context.Context, id int64, date time.Time, timeSlot types.TimeString, previousDate time.Time) error
}

// ServiceRepository интерфейс репозитория услуг
type ServiceRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
}

// AvailabilityRepository интерфейс репозитория конфигурации доступности компании
type AvailabilityRepository interface {
	GetByCompany(ctx context.Context, companyID int64) (*domain.AvailabilityConfig, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// SlotLocker сериализует запись на одну услугу в один день
type SlotLocker interface {
	WithLock(ctx context.Context, serviceID int64, date time.Time, fn func(ctx context.Context) error) error
}

// Notifier асинхронная отправка уведомлений
type Notifier interface {
	Notify(n domain.Notification)
}

// Metrics счетчик исходов операций с записями
type Metrics interface {
	ObserveBooking(operation, outcome string)
	ObserveSlotLockFailure(reason string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
