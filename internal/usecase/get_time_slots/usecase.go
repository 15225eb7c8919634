package get_time_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	availabilityRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/availability"
	serviceRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/service"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling"
)

// UseCase use case получения слотов услуги на дату
type UseCase struct {
	appointmentRepo  AppointmentRepository
	serviceRepo      ServiceRepository
	availabilityRepo AvailabilityRepository
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	serviceRepo ServiceRepository,
	availabilityRepo AvailabilityRepository,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo:  appointmentRepo,
		serviceRepo:      serviceRepo,
		availabilityRepo: availabilityRepo,
		logger:           logger,
	}
}

// Execute строит слоты по действующим правилам услуги.
// Закрытый день, выходной или закрытый прием записей дают пустой список.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetTimeSlots: service=%d, date=%s", req.ServiceID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetTimeSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем услугу
	service, err := uc.serviceRepo.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, serviceRepo.ErrServiceNotFound) {
			uc.logger.Warn("GetTimeSlots: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetTimeSlots: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	// 3. Действующие правила
	company, err := uc.availabilityRepo.GetByCompany(ctx, service.CompanyID)
	if err != nil && !errors.Is(err, availabilityRepo.ErrConfigNotFound) {
		uc.logger.Error("GetTimeSlots: failed to get availability for company=%d: %v", service.CompanyID, err)
		return nil, fmt.Errorf("%w: failed to get availability: %v", ErrInternal, err)
	}

	rules, err := scheduling.ResolveRules(service, company)
	if err != nil {
		uc.logger.Warn("GetTimeSlots: no availability rules for service id=%d", service.ID)
		return nil, ErrAvailabilityNotConfigured
	}

	resp := &Response{
		Date:      req.Date,
		ServiceID: service.ID,
		Source:    rules.Source,
		Slots:     []domain.AvailableSlot{},
	}

	// 4. День закрыт: слотов нет
	if !scheduling.IsDayOpen(req.Date, rules) {
		uc.logger.Info("GetTimeSlots: service=%d closed on %s", service.ID, req.Date.Format(domain.DateFormat))
		return resp, nil
	}

	// 5. Генерируем слоты и отмечаем занятые
	slots := scheduling.GenerateSlotsForRules(rules, service.DurationMinutes)
	if len(slots) == 0 {
		return resp, nil
	}

	existing, err := uc.appointmentRepo.FindByServiceAndDate(ctx, service.ID, req.Date)
	if err != nil {
		uc.logger.Error("GetTimeSlots: failed to get appointments for service=%d: %v", service.ID, err)
		return nil, fmt.Errorf("%w: failed to get appointments: %v", ErrInternal, err)
	}

	resp.Slots = scheduling.MarkOccupied(slots, existing)

	uc.logger.Info("GetTimeSlots: service=%d, date=%s, slots=%d", service.ID, req.Date.Format(domain.DateFormat), len(resp.Slots))

	return resp, nil
}
