package expire_subscription

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/service/subscriptions"
)

const (
	msgInvalidUserID = "некорректный ID пользователя"
	msgUserNotFound  = "пользователь не найден"
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

// Handle DELETE /api/v1/internal/customers/{userId}/subscription
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, err := handlers.PathInt64(r, "userId")
	if err != nil {
		h.logger.Warn("DELETE /internal/customers/{id}/subscription - Invalid user ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidUserID)
		return
	}

	result, err := h.service.Expire(r.Context(), userID)
	if err != nil {
		if errors.Is(err, subscriptions.ErrUserNotFound) {
			h.logger.Warn("DELETE /internal/customers/{id}/subscription - User not found: user_id=%d", userID)
			handlers.RespondNotFound(w, msgUserNotFound)
			return
		}

		h.logger.Error("DELETE /internal/customers/{id}/subscription - Failed to expire: user_id=%d, error=%v",
			userID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("DELETE /internal/customers/{id}/subscription - Plan expired: user_id=%d", userID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
