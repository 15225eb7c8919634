package models

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// ActivateRequest запрос на активацию плана после оплаты
type ActivateRequest struct {
	UserID   int64  `json:"-"`
	PlanType string `json:"planType"` // free | monthly | yearly
}

// SubscriptionResponse ответ с данными подписки пользователя
type SubscriptionResponse struct {
	UserID    int64      `json:"userId"`
	PlanType  string     `json:"planType"`
	Status    string     `json:"subscriptionStatus"`
	StartDate *time.Time `json:"subscriptionStartDate,omitempty"`
	EndDate   *time.Time `json:"subscriptionEndDate,omitempty"`

	BookingLimit *int `json:"bookingLimit"` // nil = без ограничений
	BookingUsed  int  `json:"bookingUsed"`
}

// FromDomainUser конвертирует поля подписки пользователя в DTO
func FromDomainUser(u *domain.User) *SubscriptionResponse {
	if u == nil {
		return nil
	}

	return &SubscriptionResponse{
		UserID:    u.ID,
		PlanType:  string(u.PlanType),
		Status:    string(u.SubscriptionStatus),
		StartDate: u.SubscriptionStartDate,
		EndDate:   u.SubscriptionEndDate,

		BookingLimit: u.BookingLimit,
		BookingUsed:  u.BookingUsed,
	}
}
