package reschedule_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	availabilityRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/availability"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/slotlock"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling"
	"github.com/m04kA/SMC-AppointmentService/pkg/txmanager"
)

const operation = "reschedule"

// UseCase use case переноса записи клиентом
type UseCase struct {
	appointmentRepo  AppointmentRepository
	serviceRepo      ServiceRepository
	availabilityRepo AvailabilityRepository
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
		conflicts:        scheduling.NewConflictDetector(appointmentRepo),
		txManager:        txManager,
		locker:           locker,
		notifier:         notifier,
		metrics:          metrics,
		logger:           logger,
	}
}

// Execute переносит запись на новую дату и время.
// Запись не конфликтует сама с собой, поэтому перенос на текущий слот допустим.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*domain.Appointment, error) {
	appointment, err := uc.execute(ctx, req)
	uc.metrics.ObserveBooking(operation, outcome(err))
	return appointment, err
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*domain.Appointment, error) {
	uc.logger.Info("RescheduleBooking: customer=%d, appointment=%d, date=%s, time=%s",
		req.CustomerID, req.AppointmentID, req.Date.Format(domain.DateFormat), req.TimeSlot)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RescheduleBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем запись и проверяем владельца и статус
	current, err := uc.loadOwned(ctx, req)
	if err != nil {
		return nil, err
	}

	// 3. Правила доступности для нового времени
	service, err := uc.serviceRepo.GetByID(ctx, current.ServiceID)
	if err != nil {
		uc.logger.Error("RescheduleBooking: failed to get service id=%d: %v", current.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}
	if err := uc.checkAvailability(ctx, service, req); err != nil {
		return nil, err
	}

	// 4. Конфликт и перенос атомарно
	previousDate := current.Date
	err = uc.locker.WithLock(ctx, current.ServiceID, req.Date, func(lockCtx context.Context) error {
		return uc.txManager.DoSerializable(lockCtx, func(txCtx context.Context) error {
			// 4.1. Перечитываем запись под блокировкой строки
			locked, err := uc.loadOwned(txCtx, req)
			if err != nil {
				return err
			}
			previousDate = locked.Date

			// 4.2. Новый слот не должен удерживаться другой записью
			key := domain.SlotKey{ServiceID: locked.ServiceID, Date: req.Date, TimeSlot: req.TimeSlot}
			conflict, err := uc.conflicts.HasConflict(txCtx, key, &locked.ID)
			if err != nil {
				return fmt.Errorf("%w: failed to check conflicts: %v", ErrInternal, err)
			}
			if conflict {
				return ErrSlotConflict
			}

			// 4.3. Переносим
			if err := uc.appointmentRepo.Reschedule(txCtx, locked.ID, req.Date, req.TimeSlot, locked.Date); err != nil {
				if errors.Is(err, appointmentRepo.ErrSlotConflict) {
					return ErrSlotConflict
				}
				return fmt.Errorf("%w: failed to reschedule appointment: %v", ErrInternal, err)
			}

			return nil
		})
	})
	if err != nil {
		return nil, uc.mapWriteError(err, req)
	}

	updated, err := uc.appointmentRepo.GetByID(ctx, req.AppointmentID)
	if err != nil {
		uc.logger.Error("RescheduleBooking: failed to reload appointment id=%d: %v", req.AppointmentID, err)
		return nil, fmt.Errorf("%w: failed to reload appointment: %v", ErrInternal, err)
	}

	uc.logger.Info("RescheduleBooking: appointment id=%d moved from %s to %s %s",
		updated.ID, previousDate.Format(domain.DateFormat), updated.Date.Format(domain.DateFormat), updated.TimeSlot)

	// 5. Уведомление администратору
	uc.notifier.Notify(domain.Notification{
		Kind:          domain.NotificationBookingRescheduled,
		AppointmentID: updated.ID,
		CompanyID:     updated.CompanyID,
		CustomerID:    updated.CustomerID,
		CustomerName:  updated.CustomerName,
		CustomerEmail: updated.CustomerEmail,
		ServiceName:   updated.ServiceName,
		Date:          updated.Date.Format(domain.DateFormat),
		TimeSlot:      updated.TimeSlot,
		PreviousDate:  previousDate.Format(domain.DateFormat),
		Status:        updated.Status,
		OccurredAt:    time.Now(),
	})

	return updated, nil
}

func (uc *UseCase) loadOwned(ctx context.Context, req *Request) (*domain.Appointment, error) {
	appointment, err := uc.appointmentRepo.GetByID(ctx, req.AppointmentID)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			uc.logger.Warn("RescheduleBooking: appointment id=%d not found", req.AppointmentID)
			return nil, ErrAppointmentNotFound
		}
		uc.logger.Error("RescheduleBooking: failed to get appointment id=%d: %v", req.AppointmentID, err)
		return nil, fmt.Errorf("%w: failed to get appointment: %v", ErrInternal, err)
	}

	if !appointment.BelongsTo(req.CustomerID) {
		uc.logger.Warn("RescheduleBooking: customer=%d is not owner of appointment id=%d", req.CustomerID, appointment.ID)
		return nil, ErrForbidden
	}

	if !appointment.CanBeRescheduled() {
		uc.logger.Warn("RescheduleBooking: appointment id=%d has status %s", appointment.ID, appointment.Status)
		return nil, fmt.Errorf("%w: status %s", ErrInvalidStatus, appointment.Status)
	}

	return appointment, nil
}

// checkAvailability выбирает действующие правила и проверяет по ним новое время
func (uc *UseCase) checkAvailability(ctx context.Context, service *domain.Service, req *Request) error {
	company, err := uc.availabilityRepo.GetByCompany(ctx, service.CompanyID)
	if err != nil && !errors.Is(err, availabilityRepo.ErrConfigNotFound) {
		uc.logger.Error("RescheduleBooking: failed to get availability for company=%d: %v", service.CompanyID, err)
		return fmt.Errorf("%w: failed to get availability: %v", ErrInternal, err)
	}

	rules, err := scheduling.ResolveRules(service, company)
	if err != nil {
		uc.logger.Warn("RescheduleBooking: no availability rules for service id=%d", service.ID)
		return ErrAvailabilityNotConfigured
	}

	if err := scheduling.ValidateBooking(req.Date, req.TimeSlot, rules); err != nil {
		uc.logger.Warn("RescheduleBooking: %s rules rejected %s %s: %v",
			rules.Source, req.Date.Format(domain.DateFormat), req.TimeSlot, err)
		return fmt.Errorf("%w: %w", ErrSlotUnavailable, err)
	}

	return nil
}

func (uc *UseCase) mapWriteError(err error, req *Request) error {
	switch {
	case errors.Is(err, ErrSlotConflict), errors.Is(err, txmanager.ErrSerialization):
		uc.logger.Warn("RescheduleBooking: slot %s %s already taken", req.Date.Format(domain.DateFormat), req.TimeSlot)
		return ErrSlotConflict
	case errors.Is(err, ErrAppointmentNotFound), errors.Is(err, ErrForbidden), errors.Is(err, ErrInvalidStatus):
		return err
	case errors.Is(err, slotlock.ErrLockNotAcquired):
		uc.metrics.ObserveSlotLockFailure("timeout")
		uc.logger.Warn("RescheduleBooking: lock on %s is busy", req.Date.Format(domain.DateFormat))
		return ErrSlotBusy
	case errors.Is(err, slotlock.ErrRedis):
		uc.metrics.ObserveSlotLockFailure("redis")
		uc.logger.Error("RescheduleBooking: slot lock failed: %v", err)
		return fmt.Errorf("%w: %v", ErrInternal, err)
	case errors.Is(err, ErrInternal):
		uc.logger.Error("RescheduleBooking: %v", err)
		return err
	default:
		uc.logger.Error("RescheduleBooking: write failed: %v", err)
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrSlotConflict), errors.Is(err, ErrSlotBusy):
		return "conflict"
	case errors.Is(err, ErrInternal):
		return "error"
	default:
		return "rejected"
	}
}
