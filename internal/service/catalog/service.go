package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	customerRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/customer"
	serviceRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/service"
	"github.com/m04kA/SMC-AppointmentService/internal/service/catalog/models"
)

// Service сервис каталога услуг компании
type Service struct {
	serviceRepo ServiceRepository
	userRepo    UserRepository
	txManager   TransactionManager
	logger      Logger
}

// NewService создает новый экземпляр сервиса каталога
func NewService(
	serviceRepo ServiceRepository,
	userRepo UserRepository,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		serviceRepo: serviceRepo,
		userRepo:    userRepo,
		txManager:   txManager,
		logger:      logger,
	}
}

// Create создает услугу в компании администратора
func (s *Service) Create(ctx context.Context, req *models.CreateServiceRequest) (*models.ServiceResponse, error) {
	s.logger.Info("Create: service %q by user=%d", req.Name, req.ActorID)

	admin, err := s.requireAdmin(ctx, "Create", req.ActorID)
	if err != nil {
		return nil, err
	}

	service, err := s.create(ctx, admin.CompanyID, req)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Create: service id=%d created for company=%d", service.ID, service.CompanyID)
	return models.FromDomainService(service), nil
}

// BulkCreate создает несколько услуг в одной транзакции: либо все, либо ни одной
func (s *Service) BulkCreate(ctx context.Context, actorID int64, reqs []models.CreateServiceRequest) (*models.BulkCreateResponse, error) {
	s.logger.Info("BulkCreate: %d services by user=%d", len(reqs), actorID)

	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: array of services is required", ErrInvalidInput)
	}

	admin, err := s.requireAdmin(ctx, "BulkCreate", actorID)
	if err != nil {
		return nil, err
	}

	for i := range reqs {
		if err := validateCreate(&reqs[i]); err != nil {
			s.logger.Warn("BulkCreate: invalid service at index %d: %v", i, err)
			return nil, fmt.Errorf("invalid service at index %d: %w", i, err)
		}
	}

	resp := &models.BulkCreateResponse{Services: make([]models.ServiceResponse, 0, len(reqs))}
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		for i := range reqs {
			service, err := s.create(txCtx, admin.CompanyID, &reqs[i])
			if err != nil {
				return err
			}
			resp.Services = append(resp.Services, *models.FromDomainService(service))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp.Count = len(resp.Services)
	return resp, nil
}

// GetByID возвращает услугу
func (s *Service) GetByID(ctx context.Context, id int64) (*models.ServiceResponse, error) {
	service, err := s.getService(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}
	return models.FromDomainService(service), nil
}

// List возвращает страницу услуг, по умолчанию только активные, сначала новые
func (s *Service) List(ctx context.Context, req *models.ListServicesRequest) (*models.ServiceListResponse, error) {
	s.logger.Info("List: company=%v, status=%q, page=%d, limit=%d", req.CompanyID, req.Status, req.Page, req.Limit)

	filter := domain.ServicesFilter{
		CompanyID: req.CompanyID,
		Page:      req.Page,
		Limit:     req.Limit,
	}

	if req.Status != models.StatusAll {
		status, err := parseStatus(req.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = &status
	}

	if filter.Page < 1 {
		filter.Page = domain.DefaultPage
	}
	if filter.Limit < 1 {
		filter.Limit = domain.DefaultPageLimit
	}
	if filter.Limit > domain.MaxPageLimit {
		filter.Limit = domain.MaxPageLimit
	}

	services, total, err := s.serviceRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainServiceList(services, total, filter.Page, filter.Limit), nil
}

// ListForAdmin возвращает услуги компании администратора в любом статусе
func (s *Service) ListForAdmin(ctx context.Context, actorID int64, page, limit int) (*models.ServiceListResponse, error) {
	admin, err := s.requireAdmin(ctx, "ListForAdmin", actorID)
	if err != nil {
		return nil, err
	}

	return s.List(ctx, &models.ListServicesRequest{
		CompanyID: &admin.CompanyID,
		Status:    models.StatusAll,
		Page:      page,
		Limit:     limit,
	})
}

// Update частично обновляет услугу
func (s *Service) Update(ctx context.Context, id int64, req *models.UpdateServiceRequest) (*models.ServiceResponse, error) {
	s.logger.Info("Update: service id=%d by user=%d", id, req.ActorID)

	service, err := s.getOwnService(ctx, "Update", id, req.ActorID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := validateName(*req.Name); err != nil {
			return nil, err
		}
		service.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		service.Description = strings.TrimSpace(*req.Description)
	}
	if req.DurationMinutes != nil {
		if err := validateDuration(*req.DurationMinutes); err != nil {
			return nil, err
		}
		service.DurationMinutes = *req.DurationMinutes
	}
	if req.Price != nil {
		if err := validatePrice(*req.Price); err != nil {
			return nil, err
		}
		service.Price = *req.Price
	}
	if req.Status != nil {
		status, err := parseStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		service.Status = status
	}

	if err := s.serviceRepo.Update(ctx, service); err != nil {
		return nil, s.mapRepoError("Update", id, err)
	}

	return models.FromDomainService(service), nil
}

// Toggle переключает услугу между active и inactive
func (s *Service) Toggle(ctx context.Context, id int64, actorID int64) (*models.ServiceResponse, error) {
	service, err := s.getOwnService(ctx, "Toggle", id, actorID)
	if err != nil {
		return nil, err
	}

	next := domain.ServiceStatusInactive
	if service.Status == domain.ServiceStatusInactive {
		next = domain.ServiceStatusActive
	}

	if err := s.serviceRepo.SetStatus(ctx, id, next); err != nil {
		return nil, s.mapRepoError("Toggle", id, err)
	}

	s.logger.Info("Toggle: service id=%d is %s", id, next)
	service.Status = next
	return models.FromDomainService(service), nil
}

// Delete удаляет услугу
func (s *Service) Delete(ctx context.Context, id int64, actorID int64) error {
	if _, err := s.getOwnService(ctx, "Delete", id, actorID); err != nil {
		return err
	}

	if err := s.serviceRepo.Delete(ctx, id); err != nil {
		return s.mapRepoError("Delete", id, err)
	}

	s.logger.Info("Delete: service id=%d deleted by user=%d", id, actorID)
	return nil
}

func (s *Service) create(ctx context.Context, companyID int64, req *models.CreateServiceRequest) (*domain.Service, error) {
	if err := validateCreate(req); err != nil {
		s.logger.Warn("create: validation failed: %v", err)
		return nil, err
	}
	status, _ := parseStatus(req.Status)

	service, err := s.serviceRepo.Create(ctx, &domain.Service{
		CompanyID:       companyID,
		Name:            strings.TrimSpace(req.Name),
		Description:     strings.TrimSpace(req.Description),
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
		Status:          status,
	})
	if err != nil {
		s.logger.Error("create: repository error for company=%d: %v", companyID, err)
		return nil, fmt.Errorf("%w: create - repository error: %v", ErrInternal, err)
	}

	return service, nil
}

func (s *Service) getService(ctx context.Context, op string, id int64) (*domain.Service, error) {
	service, err := s.serviceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(op, id, err)
	}
	return service, nil
}

// getOwnService возвращает услугу, если пользователь администратор её компании
func (s *Service) getOwnService(ctx context.Context, op string, id, actorID int64) (*domain.Service, error) {
	admin, err := s.requireAdmin(ctx, op, actorID)
	if err != nil {
		return nil, err
	}

	service, err := s.getService(ctx, op, id)
	if err != nil {
		return nil, err
	}

	if service.CompanyID != admin.CompanyID {
		s.logger.Warn("%s: service id=%d belongs to company=%d, admin company=%d", op, id, service.CompanyID, admin.CompanyID)
		return nil, ErrServiceNotFound
	}

	return service, nil
}

func (s *Service) requireAdmin(ctx context.Context, op string, actorID int64) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, customerRepo.ErrUserNotFound) {
			s.logger.Warn("%s: user=%d not found", op, actorID)
			return nil, ErrAccessDenied
		}
		s.logger.Error("%s: failed to get user=%d: %v", op, actorID, err)
		return nil, fmt.Errorf("%w: %s - failed to get user: %v", ErrInternal, op, err)
	}

	if !user.IsAdmin() {
		s.logger.Warn("%s: user=%d is not an admin", op, actorID)
		return nil, ErrAccessDenied
	}

	return user, nil
}

func (s *Service) mapRepoError(op string, id int64, err error) error {
	if errors.Is(err, serviceRepo.ErrServiceNotFound) {
		s.logger.Warn("%s: service id=%d not found", op, id)
		return ErrServiceNotFound
	}
	s.logger.Error("%s: repository error for service id=%d: %v", op, id, err)
	return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
}
