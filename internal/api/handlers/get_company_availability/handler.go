package get_company_availability

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/service/availability"
)

const (
	msgInvalidCompanyID = "некорректный ID компании"
	msgNotFound         = "расписание не настроено"
)

type Handler struct {
	service AvailabilityService
	logger  Logger
}

func NewHandler(service AvailabilityService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/companies/{companyId}/availability
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	companyID, err := handlers.PathInt64(r, "companyId")
	if err != nil {
		h.logger.Warn("GET /companies/{id}/availability - Invalid company ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidCompanyID)
		return
	}

	result, err := h.service.Get(r.Context(), companyID)
	if err != nil {
		if errors.Is(err, availability.ErrConfigNotFound) {
			h.logger.Warn("GET /companies/{id}/availability - Not configured: company_id=%d", companyID)
			handlers.RespondNotFound(w, msgNotFound)
			return
		}

		h.logger.Error("GET /companies/{id}/availability - Failed to get config: company_id=%d, error=%v",
			companyID, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
