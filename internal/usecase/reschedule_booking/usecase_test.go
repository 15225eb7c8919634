package reschedule_booking

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/slotlock"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/usecasetest"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

const companyID int64 = 1

type fixture struct {
	store       *usecasetest.Store
	notifier    *usecasetest.Notifier
	uc          *UseCase
	service     *domain.Service
	customer    *domain.User
	appointment *domain.Appointment
}

func newFixture(t *testing.T, status domain.AppointmentStatus) *fixture {
	t.Helper()

	store := usecasetest.NewStore()
	store.AddConfig(usecasetest.WeekdayConfig(companyID))
	f := &fixture{
		store:    store,
		notifier: &usecasetest.Notifier{},
		service:  store.AddService(usecasetest.ActiveService(companyID)),
		customer: store.AddUser(usecasetest.FreeCustomer(companyID, 1)),
	}
	f.appointment = store.AddAppointment(domain.Appointment{
		CustomerID: f.customer.ID,
		ServiceID:  f.service.ID,
		CompanyID:  companyID,
		Date:       usecasetest.Monday,
		TimeSlot:   "10:00",
		Status:     status,
	})
	f.uc = NewUseCase(
		store.Appointments(),
		store.Services(),
		store.Availability(),
		store.TxManager(),
		slotlock.NoopLocker{},
		f.notifier,
		usecasetest.NewMetrics(),
		logger.NewNop(),
	)
	return f
}

func (f *fixture) request(days int, slot string) *Request {
	return &Request{
		CustomerID:    f.customer.ID,
		AppointmentID: f.appointment.ID,
		Date:          usecasetest.Monday.AddDate(0, 0, days),
		TimeSlot:      types.TimeString(slot),
	}
}

func TestExecute_MovesAppointment(t *testing.T) {
	f := newFixture(t, domain.StatusApproved)

	updated, err := f.uc.Execute(context.Background(), f.request(1, "14:00"))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusRescheduled, updated.Status)
	assert.Equal(t, "2025-06-03", updated.Date.Format(domain.DateFormat))
	assert.Equal(t, types.TimeString("14:00"), updated.TimeSlot)
	require.NotNil(t, updated.RescheduledFrom)
	assert.Equal(t, "2025-06-02", updated.RescheduledFrom.Format(domain.DateFormat))

	sent := f.notifier.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, domain.NotificationBookingRescheduled, sent[0].Kind)
	assert.Equal(t, "2025-06-02", sent[0].PreviousDate)
	assert.Equal(t, "2025-06-03", sent[0].Date)
}

func TestExecute_OwnSlotIsNotAConflict(t *testing.T) {
	f := newFixture(t, domain.StatusPending)

	updated, err := f.uc.Execute(context.Background(), f.request(0, "10:00"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRescheduled, updated.Status)
}

func TestExecute_SlotHeldByAnother(t *testing.T) {
	f := newFixture(t, domain.StatusPending)
	other := f.store.AddUser(usecasetest.FreeCustomer(companyID, 1))
	f.store.AddAppointment(domain.Appointment{
		CustomerID: other.ID,
		ServiceID:  f.service.ID,
		CompanyID:  companyID,
		Date:       usecasetest.Monday,
		TimeSlot:   "11:00",
		Status:     domain.StatusCancelled,
	})

	_, err := f.uc.Execute(context.Background(), f.request(0, "11:00"))
	assert.ErrorIs(t, err, ErrSlotConflict)

	stored, _ := f.store.Appointment(f.appointment.ID)
	assert.Equal(t, types.TimeString("10:00"), stored.TimeSlot)
	assert.Empty(t, f.notifier.Sent())
}

func TestExecute_NotOwner(t *testing.T) {
	f := newFixture(t, domain.StatusPending)
	req := f.request(1, "14:00")
	req.CustomerID = f.customer.ID + 100

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestExecute_TerminalStatus(t *testing.T) {
	for _, status := range []domain.AppointmentStatus{domain.StatusCancelled, domain.StatusRejected} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture(t, status)
			_, err := f.uc.Execute(context.Background(), f.request(1, "14:00"))
			assert.ErrorIs(t, err, ErrInvalidStatus)
		})
	}
}

func TestExecute_RulesApplyToNewTime(t *testing.T) {
	f := newFixture(t, domain.StatusPending)

	// 2025-06-07 суббота
	_, err := f.uc.Execute(context.Background(), f.request(5, "10:00"))
	require.ErrorIs(t, err, ErrSlotUnavailable)

	var rejection *scheduling.Rejection
	require.True(t, errors.As(err, &rejection))
	assert.Equal(t, scheduling.ReasonClosedDay, rejection.Reason)
}

func TestExecute_NotFound(t *testing.T) {
	f := newFixture(t, domain.StatusPending)
	req := f.request(1, "14:00")
	req.AppointmentID = 999

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestExecute_InvalidInput(t *testing.T) {
	for _, slot := range []string{"", "24:00", "9:00"} {
		t.Run(slot, func(t *testing.T) {
			f := newFixture(t, domain.StatusPending)

			_, err := f.uc.Execute(context.Background(), f.request(1, slot))
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
