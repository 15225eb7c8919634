package create_service

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/catalog"
	"github.com/m04kA/SMC-AppointmentService/internal/service/catalog/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgForbidden          = "доступ запрещен"
)

type Handler struct {
	service CatalogService
	logger  Logger
}

func NewHandler(service CatalogService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/services
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /services - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.CreateServiceRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /services - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.ActorID = userID

	result, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.respondError(w, "POST /services", userID, err)
		return
	}

	h.logger.Info("POST /services - Service created: service_id=%d, company_id=%d", result.ID, result.CompanyID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}

// HandleBulk POST /api/v1/services/bulk
// Создает все услуги или ни одной
func (h *Handler) HandleBulk(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /services/bulk - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req BulkCreateRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /services/bulk - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.BulkCreate(r.Context(), userID, req.Services)
	if err != nil {
		h.respondError(w, "POST /services/bulk", userID, err)
		return
	}

	h.logger.Info("POST /services/bulk - Services created: count=%d, user_id=%d", result.Count, userID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}

func (h *Handler) respondError(w http.ResponseWriter, route string, userID int64, err error) {
	switch {
	case errors.Is(err, catalog.ErrAccessDenied):
		h.logger.Warn("%s - Access denied: user_id=%d", route, userID)
		handlers.RespondForbidden(w, msgForbidden)

	case errors.Is(err, catalog.ErrInvalidInput):
		h.logger.Warn("%s - Invalid data: user_id=%d, error=%v", route, userID, err)
		handlers.RespondBadRequest(w, err.Error())

	default:
		h.logger.Error("%s - Failed to create service: user_id=%d, error=%v", route, userID, err)
		handlers.RespondInternalError(w)
	}
}
