package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling"
	createBooking "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidDate          = "некорректный формат даты записи, ожидается YYYY-MM-DD"
	msgInvalidTime          = "некорректный формат времени слота, ожидается HH:MM"
	msgInvalidInput         = "некорректные данные записи"
	msgMissingUserID        = "отсутствует ID пользователя"
	msgServiceNotFound      = "услуга не найдена"
	msgServiceInactive      = "услуга недоступна для записи"
	msgCustomerNotFound     = "пользователь не найден"
	msgQuotaExceeded        = "лимит записей бесплатного плана исчерпан, перейдите на месячный или годовой план"
	msgSubscriptionExpired  = "срок действия плана истек, продлите подписку"
	msgAvailabilityNotSet   = "расписание не настроено"
	msgSlotNotAvailable     = "выбранный слот недоступен"
	msgSlotAlreadyBooked    = "этот слот уже занят"
	msgSlotBusy             = "слот сейчас бронируется, попробуйте еще раз"
	reasonQuotaExceeded     = "BOOKING_LIMIT_REACHED"
	reasonSubscriptionEnded = "SUBSCRIPTION_EXPIRED"
	reasonSlotTaken         = "SLOT_TAKEN"
	redirectPricing         = "pricing"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Получаем userID из контекста (через middleware Auth)
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Конвертируем HTTP запрос в модель use case (с парсингом даты и времени)
	useCaseReq, err := req.ToUseCaseRequest(userID)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse request: %v", err)
		if errors.Is(err, errInvalidTime) {
			handlers.RespondBadRequest(w, msgInvalidTime)
		} else {
			handlers.RespondBadRequest(w, msgInvalidDate)
		}
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		h.respondUseCaseError(w, err, userID, req.ServiceID)
		return
	}

	h.logger.Info("POST /bookings - Appointment created: appointment_id=%d, user_id=%d, service_id=%d",
		result.Appointment.ID, userID, req.ServiceID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}

func (h *Handler) respondUseCaseError(w http.ResponseWriter, err error, userID, serviceID int64) {
	var rejection *scheduling.Rejection

	switch {
	case errors.Is(err, createBooking.ErrInvalidInput):
		h.logger.Warn("POST /bookings - Invalid input: user_id=%d, error=%v", userID, err)
		handlers.RespondBadRequest(w, msgInvalidInput)

	case errors.Is(err, createBooking.ErrServiceNotFound):
		h.logger.Warn("POST /bookings - Service not found: service_id=%d", serviceID)
		handlers.RespondNotFound(w, msgServiceNotFound)

	case errors.Is(err, createBooking.ErrServiceInactive):
		h.logger.Warn("POST /bookings - Service inactive: service_id=%d", serviceID)
		handlers.RespondBadRequest(w, msgServiceInactive)

	case errors.Is(err, createBooking.ErrCustomerNotFound):
		h.logger.Warn("POST /bookings - Customer not found: user_id=%d", userID)
		handlers.RespondNotFound(w, msgCustomerNotFound)

	case errors.Is(err, createBooking.ErrQuotaExceeded):
		h.logger.Warn("POST /bookings - Quota exceeded: user_id=%d", userID)
		handlers.RespondErrorWithReason(w, http.StatusForbidden, msgQuotaExceeded, reasonQuotaExceeded, redirectPricing)

	case errors.Is(err, createBooking.ErrSubscriptionExpired):
		h.logger.Warn("POST /bookings - Subscription expired: user_id=%d", userID)
		handlers.RespondErrorWithReason(w, http.StatusForbidden, msgSubscriptionExpired, reasonSubscriptionEnded, redirectPricing)

	case errors.Is(err, createBooking.ErrAvailabilityNotConfigured):
		h.logger.Warn("POST /bookings - Availability not configured: service_id=%d", serviceID)
		handlers.RespondBadRequest(w, msgAvailabilityNotSet)

	case errors.As(err, &rejection):
		h.logger.Warn("POST /bookings - Slot rejected: service_id=%d, reason=%s", serviceID, rejection.Reason)
		handlers.RespondErrorWithReason(w, http.StatusBadRequest, rejection.Message, string(rejection.Reason), "")

	case errors.Is(err, createBooking.ErrSlotUnavailable):
		h.logger.Warn("POST /bookings - Slot unavailable: service_id=%d", serviceID)
		handlers.RespondBadRequest(w, msgSlotNotAvailable)

	case errors.Is(err, createBooking.ErrSlotConflict):
		h.logger.Warn("POST /bookings - Slot already booked: user_id=%d, service_id=%d", userID, serviceID)
		handlers.RespondErrorWithReason(w, http.StatusConflict, msgSlotAlreadyBooked, reasonSlotTaken, "")

	case errors.Is(err, createBooking.ErrSlotBusy):
		h.logger.Warn("POST /bookings - Slot lock busy: service_id=%d", serviceID)
		handlers.RespondConflict(w, msgSlotBusy)

	default:
		h.logger.Error("POST /bookings - Failed to create appointment: user_id=%d, service_id=%d, error=%v",
			userID, serviceID, err)
		handlers.RespondInternalError(w)
	}
}
