package subscriptions

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	customerRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/customer"
	"github.com/m04kA/SMC-AppointmentService/internal/service/subscriptions/models"
)

// Service сервис подписок клиентов
type Service struct {
	userRepo         UserRepository
	freeBookingLimit int
	timeProvider     TimeProvider
	logger           Logger
}

// NewService создает новый экземпляр сервиса подписок
func NewService(userRepo UserRepository, freeBookingLimit int, logger Logger) *Service {
	if freeBookingLimit <= 0 {
		freeBookingLimit = domain.DefaultFreeBookingLimit
	}
	return &Service{
		userRepo:         userRepo,
		freeBookingLimit: freeBookingLimit,
		timeProvider:     RealTimeProvider{},
		logger:           logger,
	}
}

// Activate активирует план после успешной оплаты.
// Бесплатный план доступен один раз; активный месячный план можно поднять только до годового.
// Счетчик записей обнуляется.
func (s *Service) Activate(ctx context.Context, req *models.ActivateRequest) (*models.SubscriptionResponse, error) {
	s.logger.Info("Activate: plan=%s for user=%d", req.PlanType, req.UserID)

	// 1. Валидируем план
	plan := domain.PlanType(req.PlanType)
	if !plan.IsValid() {
		s.logger.Warn("Activate: invalid plan=%q", req.PlanType)
		return nil, ErrInvalidPlan
	}

	// 2. Получаем пользователя
	user, err := s.getUser(ctx, "Activate", req.UserID)
	if err != nil {
		return nil, err
	}

	// 3. Проверяем допустимость перехода
	active := user.SubscriptionStatus == domain.SubscriptionActive
	switch {
	case plan == domain.PlanFree && user.FreePlanUsed:
		s.logger.Warn("Activate: user=%d already used free plan", user.ID)
		return nil, ErrFreePlanUsed
	case active && user.PlanType == domain.PlanYearly:
		s.logger.Warn("Activate: user=%d already has yearly plan", user.ID)
		return nil, ErrAlreadyYearly
	case active && user.PlanType == domain.PlanMonthly && plan == domain.PlanMonthly:
		s.logger.Warn("Activate: user=%d already has monthly plan", user.ID)
		return nil, ErrUpgradeOnlyYearly
	}

	// 4. Записываем новый план
	now := s.timeProvider.Now()
	start := now
	user.PlanType = plan
	user.SubscriptionStatus = domain.SubscriptionActive
	user.SubscriptionStartDate = &start
	user.BookingUsed = 0

	switch plan {
	case domain.PlanFree:
		limit := s.freeBookingLimit
		user.BookingLimit = &limit
		user.SubscriptionEndDate = nil
		user.FreePlanUsed = true
	case domain.PlanMonthly:
		end := now.AddDate(0, 1, 0)
		user.BookingLimit = nil
		user.SubscriptionEndDate = &end
	case domain.PlanYearly:
		end := now.AddDate(1, 0, 0)
		user.BookingLimit = nil
		user.SubscriptionEndDate = &end
	}

	if err := s.userRepo.ActivatePlan(ctx, user); err != nil {
		s.logger.Error("Activate: failed to update user=%d: %v", user.ID, err)
		return nil, fmt.Errorf("%w: Activate - update subscription: %v", ErrInternal, err)
	}

	s.logger.Info("Activate: user=%d is on %s plan", user.ID, plan)
	return models.FromDomainUser(user), nil
}

// Expire переводит подписку пользователя в expired.
// Меняется только статус, счетчик записей остается как есть.
func (s *Service) Expire(ctx context.Context, userID int64) (*models.SubscriptionResponse, error) {
	s.logger.Info("Expire: user=%d", userID)

	if err := s.userRepo.ExpireSubscription(ctx, userID); err != nil {
		if errors.Is(err, customerRepo.ErrUserNotFound) {
			s.logger.Warn("Expire: user=%d not found", userID)
			return nil, ErrUserNotFound
		}
		s.logger.Error("Expire: failed to update user=%d: %v", userID, err)
		return nil, fmt.Errorf("%w: Expire - update subscription: %v", ErrInternal, err)
	}

	user, err := s.getUser(ctx, "Expire", userID)
	if err != nil {
		return nil, err
	}

	return models.FromDomainUser(user), nil
}

// ExpireDue переводит в expired платные подписки с истекшим сроком
func (s *Service) ExpireDue(ctx context.Context) ([]int64, error) {
	ids, err := s.userRepo.ExpireDue(ctx, s.timeProvider.Now())
	if err != nil {
		s.logger.Error("ExpireDue: repository error: %v", err)
		return nil, fmt.Errorf("%w: ExpireDue - repository error: %v", ErrInternal, err)
	}

	if len(ids) > 0 {
		s.logger.Info("ExpireDue: expired %d subscriptions: %v", len(ids), ids)
	}
	return ids, nil
}

func (s *Service) getUser(ctx context.Context, op string, id int64) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, customerRepo.ErrUserNotFound) {
			s.logger.Warn("%s: user=%d not found", op, id)
			return nil, ErrUserNotFound
		}
		s.logger.Error("%s: failed to get user=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - failed to get user: %v", ErrInternal, op, err)
	}
	return user, nil
}
