package activate_subscription

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/service/subscriptions"
	"github.com/m04kA/SMC-AppointmentService/internal/service/subscriptions/models"
)

const (
	msgInvalidUserID      = "некорректный ID пользователя"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgUserNotFound       = "пользователь не найден"
	msgInvalidPlan        = "неизвестный план подписки"
	msgFreePlanUsed       = "бесплатный план можно активировать только один раз"
	msgUpgradeOnlyYearly  = "перейти можно только на годовой план"
	msgAlreadyYearly      = "годовой план уже активен"
)

type Handler struct {
	service SubscriptionService
	logger  Logger
}

func NewHandler(service SubscriptionService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/internal/customers/{userId}/subscription
// Вызывается платежным сервисом после успешной оплаты
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, err := handlers.PathInt64(r, "userId")
	if err != nil {
		h.logger.Warn("POST /internal/customers/{id}/subscription - Invalid user ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidUserID)
		return
	}

	var req models.ActivateRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /internal/customers/{id}/subscription - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.UserID = userID

	result, err := h.service.Activate(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, subscriptions.ErrUserNotFound):
			h.logger.Warn("POST /internal/customers/{id}/subscription - User not found: user_id=%d", userID)
			handlers.RespondNotFound(w, msgUserNotFound)

		case errors.Is(err, subscriptions.ErrInvalidPlan):
			handlers.RespondBadRequest(w, msgInvalidPlan)

		case errors.Is(err, subscriptions.ErrFreePlanUsed):
			handlers.RespondBadRequest(w, msgFreePlanUsed)

		case errors.Is(err, subscriptions.ErrUpgradeOnlyYearly):
			handlers.RespondBadRequest(w, msgUpgradeOnlyYearly)

		case errors.Is(err, subscriptions.ErrAlreadyYearly):
			handlers.RespondBadRequest(w, msgAlreadyYearly)

		default:
			h.logger.Error("POST /internal/customers/{id}/subscription - Failed to activate: user_id=%d, error=%v",
				userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /internal/customers/{id}/subscription - Plan activated: user_id=%d, plan=%s",
		userID, result.PlanType)
	handlers.RespondJSON(w, http.StatusOK, result)
}
