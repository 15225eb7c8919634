package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	customerRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/customer"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

// Service сервис для работы с записями: просмотр, отмена, решение администратора
type Service struct {
	appointmentRepo AppointmentRepository
	userRepo        UserRepository
	txManager       TransactionManager
	notifier        Notifier
	metrics         Metrics
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	appointmentRepo AppointmentRepository,
	userRepo UserRepository,
	txManager TransactionManager,
	notifier Notifier,
	metrics Metrics,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		userRepo:        userRepo,
		txManager:       txManager,
		notifier:        notifier,
		metrics:         metrics,
		timeProvider:    RealTimeProvider{},
		logger:          logger,
	}
}

// GetByID получает запись по ID
// Видеть запись может её владелец или администратор компании
func (s *Service) GetByID(ctx context.Context, id int64, actorID int64) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%d for user=%d", id, actorID)

	appointment, err := s.getAppointment(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if !appointment.BelongsTo(actorID) {
		if _, err := s.requireAdmin(ctx, "GetByID", actorID, appointment.CompanyID); err != nil {
			return nil, err
		}
	}

	return models.FromDomainAppointment(appointment), nil
}

// ListMine возвращает записи клиента, сначала новые
func (s *Service) ListMine(ctx context.Context, customerID int64) (*models.AppointmentListResponse, error) {
	s.logger.Info("ListMine: fetching appointments for user=%d", customerID)

	appointments, err := s.appointmentRepo.List(ctx, domain.AppointmentsFilter{CustomerID: &customerID})
	if err != nil {
		s.logger.Error("ListMine: repository error for user=%d: %v", customerID, err)
		return nil, fmt.Errorf("%w: ListMine - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainAppointmentList(appointments), nil
}

// ListCompany возвращает записи компании администратора с фильтрами
func (s *Service) ListCompany(ctx context.Context, req *models.ListAppointmentsRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("ListCompany: user=%d, status=%q, search=%q", req.ActorID, req.Status, req.Search)

	admin, err := s.requireAdmin(ctx, "ListCompany", req.ActorID, 0)
	if err != nil {
		return nil, err
	}

	filter, err := req.ToDomainFilter(admin.CompanyID)
	if err != nil {
		s.logger.Warn("ListCompany: invalid filter for company=%d: %v", admin.CompanyID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	appointments, err := s.appointmentRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("ListCompany: repository error for company=%d: %v", admin.CompanyID, err)
		return nil, fmt.Errorf("%w: ListCompany - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListCompany: fetched %d appointments for company=%d", len(appointments), admin.CompanyID)
	return models.FromDomainAppointmentList(appointments), nil
}

// Today возвращает записи компании, созданные сегодня (UTC)
func (s *Service) Today(ctx context.Context, actorID int64) (*models.AppointmentListResponse, error) {
	admin, err := s.requireAdmin(ctx, "Today", actorID, 0)
	if err != nil {
		return nil, err
	}

	now := s.timeProvider.Now().UTC()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	appointments, err := s.appointmentRepo.List(ctx, domain.AppointmentsFilter{
		CompanyID:   &admin.CompanyID,
		CreatedFrom: &from,
		CreatedTo:   &to,
	})
	if err != nil {
		s.logger.Error("Today: repository error for company=%d: %v", admin.CompanyID, err)
		return nil, fmt.Errorf("%w: Today - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Today: fetched %d appointments for company=%d", len(appointments), admin.CompanyID)
	return models.FromDomainAppointmentList(appointments), nil
}

// Cancel отменяет запись клиента.
// Отмененная запись продолжает удерживать слот; квота бесплатного плана возвращается, но не уходит ниже нуля.
func (s *Service) Cancel(ctx context.Context, id int64, customerID int64) (*models.AppointmentResponse, error) {
	s.logger.Info("Cancel: cancelling appointment id=%d by user=%d", id, customerID)

	var cancelled *domain.Appointment
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		// 1. Получаем запись под блокировкой строки
		appointment, err := s.getAppointment(txCtx, "Cancel", id)
		if err != nil {
			return err
		}

		// 2. Отменить может только владелец
		if !appointment.BelongsTo(customerID) {
			s.logger.Warn("Cancel: user=%d is not owner of appointment id=%d", customerID, id)
			return ErrAccessDenied
		}

		// 3. Проверяем статус
		if appointment.Status == domain.StatusCancelled {
			s.logger.Warn("Cancel: appointment id=%d already cancelled", id)
			return ErrAlreadyCancelled
		}
		if !appointment.CanBeCancelled() {
			s.logger.Warn("Cancel: appointment id=%d cannot be cancelled, status=%s", id, appointment.Status)
			return ErrCannotCancel
		}

		// 4. Меняем статус
		if err := s.appointmentRepo.UpdateStatus(txCtx, id, domain.StatusCancelled, appointment.RejectionReason); err != nil {
			s.logger.Error("Cancel: failed to update status of appointment id=%d: %v", id, err)
			return fmt.Errorf("%w: Cancel - update status: %v", ErrInternal, err)
		}

		// 5. Возвращаем единицу квоты
		if _, err := s.userRepo.DecrementBookingUsed(txCtx, customerID); err != nil {
			s.logger.Error("Cancel: failed to release quota of user=%d: %v", customerID, err)
			return fmt.Errorf("%w: Cancel - release quota: %v", ErrInternal, err)
		}

		appointment.Status = domain.StatusCancelled
		cancelled = appointment
		return nil
	})
	s.metrics.ObserveBooking("cancel", outcome(err))
	if err != nil {
		return nil, err
	}

	s.logger.Info("Cancel: appointment id=%d cancelled", id)
	s.notify(domain.NotificationBookingCancelled, cancelled, "")

	return models.FromDomainAppointment(cancelled), nil
}

// UpdateStatus решение администратора: pending → approved или pending → rejected.
// Отклонение освобождает слот и возвращает единицу квоты бесплатного плана.
func (s *Service) UpdateStatus(ctx context.Context, id int64, req *models.UpdateStatusRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("UpdateStatus: appointment id=%d to status=%s by user=%d", id, req.Status, req.ActorID)

	status := domain.AppointmentStatus(req.Status)
	if status != domain.StatusApproved && status != domain.StatusRejected {
		s.logger.Warn("UpdateStatus: invalid status=%q", req.Status)
		return nil, ErrInvalidStatus
	}

	reason := ""
	if status == domain.StatusRejected {
		reason = req.RejectionReason
		if len([]rune(reason)) > domain.MaxRejectionReasonLength {
			return nil, fmt.Errorf("%w: rejectionReason must not exceed %d characters", ErrInvalidInput, domain.MaxRejectionReasonLength)
		}
	}

	var updated *domain.Appointment
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		// 1. Получаем запись под блокировкой строки
		appointment, err := s.getAppointment(txCtx, "UpdateStatus", id)
		if err != nil {
			return err
		}

		// 2. Решение принимает администратор компании записи
		if _, err := s.requireAdmin(txCtx, "UpdateStatus", req.ActorID, appointment.CompanyID); err != nil {
			return err
		}

		// 3. Решение принимается только по ожидающей записи
		if !appointment.CanBeDecided() {
			s.logger.Warn("UpdateStatus: appointment id=%d has status %s", id, appointment.Status)
			return fmt.Errorf("%w: current status %s", ErrInvalidTransition, appointment.Status)
		}

		// 4. Меняем статус
		if err := s.appointmentRepo.UpdateStatus(txCtx, id, status, reason); err != nil {
			s.logger.Error("UpdateStatus: failed to update appointment id=%d: %v", id, err)
			return fmt.Errorf("%w: UpdateStatus - update status: %v", ErrInternal, err)
		}

		// 5. Отклоненная запись не расходует квоту
		if status == domain.StatusRejected {
			if _, err := s.userRepo.DecrementBookingUsed(txCtx, appointment.CustomerID); err != nil {
				s.logger.Error("UpdateStatus: failed to release quota of user=%d: %v", appointment.CustomerID, err)
				return fmt.Errorf("%w: UpdateStatus - release quota: %v", ErrInternal, err)
			}
		}

		appointment.Status = status
		appointment.RejectionReason = reason
		updated = appointment
		return nil
	})
	s.metrics.ObserveBooking(string(status), outcome(err))
	if err != nil {
		return nil, err
	}

	s.logger.Info("UpdateStatus: appointment id=%d is %s", id, status)

	notifyReason := ""
	if status == domain.StatusRejected {
		notifyReason = reason
		if notifyReason == "" {
			notifyReason = domain.DefaultRejectionReason
		}
	}
	s.notify(domain.NotificationStatusChanged, updated, notifyReason)

	return models.FromDomainAppointment(updated), nil
}

func (s *Service) getAppointment(ctx context.Context, op string, id int64) (*domain.Appointment, error) {
	appointment, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("%s: appointment id=%d not found", op, id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("%s: repository error for appointment id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return appointment, nil
}

// requireAdmin проверяет, что пользователь администратор; companyID=0 пропускает проверку компании
func (s *Service) requireAdmin(ctx context.Context, op string, actorID int64, companyID int64) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, customerRepo.ErrUserNotFound) {
			s.logger.Warn("%s: user=%d not found", op, actorID)
			return nil, ErrAccessDenied
		}
		s.logger.Error("%s: failed to get user=%d: %v", op, actorID, err)
		return nil, fmt.Errorf("%w: %s - failed to get user: %v", ErrInternal, op, err)
	}

	if !user.IsAdmin() || (companyID != 0 && user.CompanyID != companyID) {
		s.logger.Warn("%s: user=%d is not an admin of company=%d", op, actorID, companyID)
		return nil, ErrAccessDenied
	}

	return user, nil
}

func (s *Service) notify(kind domain.NotificationKind, a *domain.Appointment, reason string) {
	s.notifier.Notify(domain.Notification{
		Kind:          kind,
		AppointmentID: a.ID,
		CompanyID:     a.CompanyID,
		CustomerID:    a.CustomerID,
		CustomerName:  a.CustomerName,
		CustomerEmail: a.CustomerEmail,
		ServiceName:   a.ServiceName,
		Date:          a.Date.Format(domain.DateFormat),
		TimeSlot:      a.TimeSlot,
		Status:        a.Status,
		Reason:        reason,
		OccurredAt:    s.timeProvider.Now(),
	})
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrInternal):
		return "error"
	default:
		return "rejected"
	}
}
