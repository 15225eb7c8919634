package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	availabilityRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/availability"
	customerRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/customer"
	serviceRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/service"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/slotlock"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling"
	"github.com/m04kA/SMC-AppointmentService/pkg/txmanager"
)

const operation = "create"

// UseCase use case записи клиента на услугу
type UseCase struct {
	appointmentRepo  AppointmentRepository
	serviceRepo      ServiceRepository
	availabilityRepo AvailabilityRepository
	customerRepo     CustomerRepository
	conflicts        *scheduling.ConflictDetector
	txManager        TransactionManager
	locker           SlotLocker
	notifier         Notifier
	metrics          Metrics
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	serviceRepo ServiceRepository,
	availabilityRepo AvailabilityRepository,
	customerRepo CustomerRepository,
	txManager TransactionManager,
	locker SlotLocker,
	notifier Notifier,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo:  appointmentRepo,
		serviceRepo:      serviceRepo,
		availabilityRepo: availabilityRepo,
		customerRepo:     customerRepo,
		conflicts:        scheduling.NewConflictDetector(appointmentRepo),
		txManager:        txManager,
		locker:           locker,
		notifier:         notifier,
		metrics:          metrics,
		logger:           logger,
	}
}

// Execute выполняет запись на слот.
// Проверка конфликта, создание записи и списание квоты выполняются в одной
// сериализуемой транзакции под блокировкой услуги на дату.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	resp, err := uc.execute(ctx, req)
	uc.metrics.ObserveBooking(operation, outcome(err))
	return resp, err
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: customer=%d, service=%d, date=%s, time=%s",
		req.CustomerID, req.ServiceID, req.Date.Format(domain.DateFormat), req.TimeSlot)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем клиента
	customer, err := uc.customerRepo.GetByID(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, customerRepo.ErrUserNotFound) {
			uc.logger.Warn("CreateBooking: customer id=%d not found", req.CustomerID)
			return nil, ErrCustomerNotFound
		}
		uc.logger.Error("CreateBooking: failed to get customer id=%d: %v", req.CustomerID, err)
		return nil, fmt.Errorf("%w: failed to get customer: %v", ErrInternal, err)
	}

	// 3. Получаем услугу: она должна существовать, быть активной и принадлежать компании клиента
	service, err := uc.serviceRepo.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, serviceRepo.ErrServiceNotFound) {
			uc.logger.Warn("CreateBooking: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateBooking: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}
	if service.CompanyID != customer.CompanyID {
		uc.logger.Warn("CreateBooking: service id=%d belongs to company=%d, customer company=%d",
			service.ID, service.CompanyID, customer.CompanyID)
		return nil, ErrServiceNotFound
	}
	if !service.IsActive() {
		uc.logger.Warn("CreateBooking: service id=%d is inactive", service.ID)
		return nil, ErrServiceInactive
	}

	// 4. Подписка и квота
	if customer.IsSubscriptionExpired() {
		uc.logger.Warn("CreateBooking: customer id=%d subscription expired", customer.ID)
		return nil, ErrSubscriptionExpired
	}
	if customer.QuotaReached() {
		uc.logger.Warn("CreateBooking: customer id=%d reached booking limit %d/%d",
			customer.ID, customer.BookingUsed, *customer.BookingLimit)
		return nil, ErrQuotaExceeded
	}

	// 5. Правила доступности и проверка времени
	if err := uc.checkAvailability(ctx, service, req); err != nil {
		return nil, err
	}

	// 6. Конфликт, создание и квота атомарно
	var (
		created *domain.Appointment
		quota   *domain.Quota
	)

	err = uc.locker.WithLock(ctx, service.ID, req.Date, func(lockCtx context.Context) error {
		return uc.txManager.DoSerializable(lockCtx, func(txCtx context.Context) error {
			key := domain.SlotKey{ServiceID: service.ID, Date: req.Date, TimeSlot: req.TimeSlot}

			// 6.1. Слот не должен удерживаться другой записью
			conflict, err := uc.conflicts.HasConflict(txCtx, key, nil)
			if err != nil {
				return fmt.Errorf("%w: failed to check conflicts: %v", ErrInternal, err)
			}
			if conflict {
				return ErrSlotConflict
			}

			// 6.2. Списываем квоту условным обновлением
			quota, err = uc.customerRepo.IncrementBookingUsed(txCtx, customer.ID)
			if err != nil {
				if errors.Is(err, customerRepo.ErrQuotaExceeded) {
					return ErrQuotaExceeded
				}
				return fmt.Errorf("%w: failed to increment booking counter: %v", ErrInternal, err)
			}

			// 6.3. Создаем запись
			created, err = uc.appointmentRepo.Create(txCtx, &domain.Appointment{
				CustomerID: customer.ID,
				ServiceID:  service.ID,
				CompanyID:  service.CompanyID,
				Date:       req.Date,
				TimeSlot:   req.TimeSlot,
				Notes:      req.Notes,
				Status:     domain.StatusPending,
			})
			if err != nil {
				if errors.Is(err, appointmentRepo.ErrSlotConflict) {
					return ErrSlotConflict
				}
				return fmt.Errorf("%w: failed to create appointment: %v", ErrInternal, err)
			}

			return nil
		})
	})
	if err != nil {
		return nil, uc.mapWriteError(err, req)
	}

	created.ServiceName = service.Name
	created.ServicePrice = service.Price
	created.ServiceDuration = service.DurationMinutes
	created.CustomerName = customer.Name
	created.CustomerEmail = customer.Email

	uc.logger.Info("CreateBooking: created appointment id=%d, customer=%d, used=%d",
		created.ID, customer.ID, quota.BookingUsed)

	// 7. Уведомление не влияет на результат
	uc.notifier.Notify(domain.Notification{
		Kind:          domain.NotificationBookingCreated,
		AppointmentID: created.ID,
		CompanyID:     created.CompanyID,
		CustomerID:    customer.ID,
		CustomerName:  customer.Name,
		CustomerEmail: customer.Email,
		ServiceName:   service.Name,
		Date:          created.Date.Format(domain.DateFormat),
		TimeSlot:      created.TimeSlot,
		Status:        created.Status,
		OccurredAt:    time.Now(),
	})

	return &Response{Appointment: created, Quota: *quota}, nil
}

// checkAvailability выбирает действующие правила и проверяет по ним дату и время
func (uc *UseCase) checkAvailability(ctx context.Context, service *domain.Service, req *Request) error {
	company, err := uc.availabilityRepo.GetByCompany(ctx, service.CompanyID)
	if err != nil && !errors.Is(err, availabilityRepo.ErrConfigNotFound) {
		uc.logger.Error("CreateBooking: failed to get availability for company=%d: %v", service.CompanyID, err)
		return fmt.Errorf("%w: failed to get availability: %v", ErrInternal, err)
	}

	rules, err := scheduling.ResolveRules(service, company)
	if err != nil {
		uc.logger.Warn("CreateBooking: no availability rules for service id=%d", service.ID)
		return ErrAvailabilityNotConfigured
	}

	if err := scheduling.ValidateBooking(req.Date, req.TimeSlot, rules); err != nil {
		uc.logger.Warn("CreateBooking: %s rules rejected %s %s: %v",
			rules.Source, req.Date.Format(domain.DateFormat), req.TimeSlot, err)
		return fmt.Errorf("%w: %w", ErrSlotUnavailable, err)
	}

	return nil
}

func (uc *UseCase) mapWriteError(err error, req *Request) error {
	switch {
	case errors.Is(err, ErrSlotConflict), errors.Is(err, txmanager.ErrSerialization):
		uc.logger.Warn("CreateBooking: slot service=%d %s %s already taken",
			req.ServiceID, req.Date.Format(domain.DateFormat), req.TimeSlot)
		return ErrSlotConflict
	case errors.Is(err, ErrQuotaExceeded):
		uc.logger.Warn("CreateBooking: customer id=%d reached booking limit concurrently", req.CustomerID)
		return ErrQuotaExceeded
	case errors.Is(err, slotlock.ErrLockNotAcquired):
		uc.metrics.ObserveSlotLockFailure("timeout")
		uc.logger.Warn("CreateBooking: lock for service=%d on %s is busy", req.ServiceID, req.Date.Format(domain.DateFormat))
		return ErrSlotBusy
	case errors.Is(err, slotlock.ErrRedis):
		uc.metrics.ObserveSlotLockFailure("redis")
		uc.logger.Error("CreateBooking: slot lock failed: %v", err)
		return fmt.Errorf("%w: %v", ErrInternal, err)
	case errors.Is(err, ErrInternal):
		uc.logger.Error("CreateBooking: %v", err)
		return err
	default:
		uc.logger.Error("CreateBooking: write failed: %v", err)
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrSlotConflict), errors.Is(err, ErrSlotBusy):
		return "conflict"
	case errors.Is(err, ErrQuotaExceeded), errors.Is(err, ErrSubscriptionExpired):
		return "quota"
	case errors.Is(err, ErrInternal):
		return "error"
	default:
		return "rejected"
	}
}
