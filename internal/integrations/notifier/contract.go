package notifier

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Sender доставляет уведомление в один канал (email, поток событий)
type Sender interface {
	Name() string
	Send(ctx context.Context, n domain.Notification) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Metrics счетчики доставки уведомлений
type Metrics interface {
	ObserveNotification(kind, result string)
	ObserveNotificationDropped(kind string)
}
