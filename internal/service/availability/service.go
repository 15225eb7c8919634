package availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	availabilityRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/availability"
	customerRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/customer"
	serviceRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/service"
	"github.com/m04kA/SMC-AppointmentService/internal/service/availability/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Service сервис для работы с правилами доступности компании и услуг
type Service struct {
	availabilityRepo AvailabilityRepository
	serviceRepo      ServiceRepository
	userRepo         UserRepository
	logger           Logger
}

// NewService создает новый экземпляр сервиса доступности
func NewService(
	availabilityRepo AvailabilityRepository,
	serviceRepo ServiceRepository,
	userRepo UserRepository,
	logger Logger,
) *Service {
	return &Service{
		availabilityRepo: availabilityRepo,
		serviceRepo:      serviceRepo,
		userRepo:         userRepo,
		logger:           logger,
	}
}

// Get возвращает конфигурацию доступности компании
func (s *Service) Get(ctx context.Context, companyID int64) (*models.ConfigResponse, error) {
	s.logger.Info("Get: fetching availability for company=%d", companyID)

	cfg, err := s.availabilityRepo.GetByCompany(ctx, companyID)
	if err != nil {
		if errors.Is(err, availabilityRepo.ErrConfigNotFound) {
			s.logger.Warn("Get: availability for company=%d not set", companyID)
			return nil, ErrConfigNotFound
		}
		s.logger.Error("Get: repository error for company=%d: %v", companyID, err)
		return nil, fmt.Errorf("%w: Get - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainConfig(cfg), nil
}

// Upsert создает или целиком заменяет конфигурацию компании
// Доступно только администратору компании
func (s *Service) Upsert(ctx context.Context, req *models.UpsertConfigRequest) (*models.ConfigResponse, error) {
	s.logger.Info("Upsert: availability for company=%d by user=%d", req.CompanyID, req.ActorID)

	// 1. Валидируем входные данные
	if err := validateRules(&req.RulesDTO, true); err != nil {
		s.logger.Warn("Upsert: validation failed: %v", err)
		return nil, err
	}

	// 2. Проверяем права доступа
	if err := s.requireAdmin(ctx, "Upsert", req.ActorID, req.CompanyID); err != nil {
		return nil, err
	}

	// 3. Сохраняем
	bookingOpen := true
	if req.BookingOpen != nil {
		bookingOpen = *req.BookingOpen
	}

	saved, err := s.availabilityRepo.Upsert(ctx, &domain.AvailabilityConfig{
		CompanyID:   req.CompanyID,
		WorkingDays: req.WorkingDays,
		StartTime:   types.TimeString(req.StartTime),
		EndTime:     types.TimeString(req.EndTime),
		Breaks:      req.ToDomainBreaks(),
		Holidays:    req.Holidays,
		BookingOpen: bookingOpen,
	})
	if err != nil {
		s.logger.Error("Upsert: repository error for company=%d: %v", req.CompanyID, err)
		return nil, fmt.Errorf("%w: Upsert - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Upsert: availability for company=%d saved, bookingOpen=%t", req.CompanyID, saved.BookingOpen)
	return models.FromDomainConfig(saved), nil
}

// SetServiceOverride задает правила услуги, заменяющие правила компании целиком
// Доступно только администратору компании услуги
func (s *Service) SetServiceOverride(ctx context.Context, req *models.SetServiceOverrideRequest) (*models.ServiceOverrideResponse, error) {
	s.logger.Info("SetServiceOverride: service=%d, enabled=%t by user=%d", req.ServiceID, req.Enabled, req.ActorID)

	// 1. Валидируем входные данные
	if err := validateRules(&req.RulesDTO, false); err != nil {
		s.logger.Warn("SetServiceOverride: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем услугу
	service, err := s.serviceRepo.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, serviceRepo.ErrServiceNotFound) {
			s.logger.Warn("SetServiceOverride: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		s.logger.Error("SetServiceOverride: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: SetServiceOverride - failed to get service: %v", ErrInternal, err)
	}

	// 3. Проверяем права доступа
	if err := s.requireAdmin(ctx, "SetServiceOverride", req.ActorID, service.CompanyID); err != nil {
		return nil, err
	}

	// 4. Сохраняем
	override := domain.ServiceAvailabilityOverride{
		Enabled:     req.Enabled,
		WorkingDays: req.WorkingDays,
		StartTime:   types.TimeString(req.StartTime),
		EndTime:     types.TimeString(req.EndTime),
		Breaks:      req.ToDomainBreaks(),
		Holidays:    req.Holidays,
	}
	if err := s.serviceRepo.SetAvailability(ctx, service.ID, override); err != nil {
		s.logger.Error("SetServiceOverride: repository error for service=%d: %v", service.ID, err)
		return nil, fmt.Errorf("%w: SetServiceOverride - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainOverride(service.ID, override), nil
}

// requireAdmin проверяет, что пользователь администратор компании
func (s *Service) requireAdmin(ctx context.Context, op string, actorID, companyID int64) error {
	user, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, customerRepo.ErrUserNotFound) {
			s.logger.Warn("%s: user=%d not found", op, actorID)
			return ErrAccessDenied
		}
		s.logger.Error("%s: failed to get user=%d: %v", op, actorID, err)
		return fmt.Errorf("%w: %s - failed to get user: %v", ErrInternal, op, err)
	}

	if !user.IsAdmin() || user.CompanyID != companyID {
		s.logger.Warn("%s: user=%d is not an admin of company=%d", op, actorID, companyID)
		return ErrAccessDenied
	}

	return nil
}
