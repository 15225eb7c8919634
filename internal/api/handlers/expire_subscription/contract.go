package expire_subscription

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/service/subscriptions/models"
)

type SubscriptionService interface {
	Expire(ctx context.Context, userID int64) (*models.SubscriptionResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
