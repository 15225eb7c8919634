package subscriptions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/subscriptions/models"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/usecasetest"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type fixedTime time.Time

func (t fixedTime) Now() time.Time { return time.Time(t) }

var now = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

func newService(store *usecasetest.Store) *Service {
	s := NewService(store.Customers(), 10, logger.NewNop())
	s.timeProvider = fixedTime(now)
	return s
}

func newUser(plan domain.PlanType, status domain.SubscriptionStatus, freeUsed bool) domain.User {
	u := usecasetest.FreeCustomer(1, 7)
	u.PlanType = plan
	u.SubscriptionStatus = status
	u.FreePlanUsed = freeUsed
	return u
}

func TestActivate_Paid(t *testing.T) {
	store := usecasetest.NewStore()
	user := store.AddUser(newUser(domain.PlanFree, domain.SubscriptionActive, true))

	resp, err := newService(store).Activate(context.Background(), &models.ActivateRequest{UserID: user.ID, PlanType: "monthly"})
	require.NoError(t, err)
	assert.Equal(t, "monthly", resp.PlanType)
	assert.Nil(t, resp.BookingLimit)
	assert.Zero(t, resp.BookingUsed)
	require.NotNil(t, resp.EndDate)
	assert.Equal(t, now.AddDate(0, 1, 0), *resp.EndDate)

	stored, _ := store.User(user.ID)
	assert.Equal(t, domain.PlanMonthly, stored.PlanType)
	assert.Zero(t, stored.BookingUsed)
}

func TestActivate_Free(t *testing.T) {
	store := usecasetest.NewStore()
	user := store.AddUser(newUser(domain.PlanFree, domain.SubscriptionExpired, false))

	resp, err := newService(store).Activate(context.Background(), &models.ActivateRequest{UserID: user.ID, PlanType: "free"})
	require.NoError(t, err)
	require.NotNil(t, resp.BookingLimit)
	assert.Equal(t, 10, *resp.BookingLimit)
	assert.Nil(t, resp.EndDate)

	stored, _ := store.User(user.ID)
	assert.True(t, stored.FreePlanUsed)
}

func TestActivate_Rules(t *testing.T) {
	tests := []struct {
		name    string
		user    domain.User
		plan    string
		wantErr error
	}{
		{"unknown plan", newUser(domain.PlanFree, domain.SubscriptionActive, false), "weekly", ErrInvalidPlan},
		{"free twice", newUser(domain.PlanFree, domain.SubscriptionActive, true), "free", ErrFreePlanUsed},
		{"monthly twice", newUser(domain.PlanMonthly, domain.SubscriptionActive, true), "monthly", ErrUpgradeOnlyYearly},
		{"yearly active", newUser(domain.PlanYearly, domain.SubscriptionActive, true), "monthly", ErrAlreadyYearly},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := usecasetest.NewStore()
			user := store.AddUser(tt.user)

			_, err := newService(store).Activate(context.Background(), &models.ActivateRequest{UserID: user.ID, PlanType: tt.plan})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestActivate_ExpiredMonthlyCanRenew(t *testing.T) {
	store := usecasetest.NewStore()
	user := store.AddUser(newUser(domain.PlanMonthly, domain.SubscriptionExpired, true))

	_, err := newService(store).Activate(context.Background(), &models.ActivateRequest{UserID: user.ID, PlanType: "monthly"})
	assert.NoError(t, err)
}

func TestExpireAndExpireDue(t *testing.T) {
	store := usecasetest.NewStore()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	due := newUser(domain.PlanMonthly, domain.SubscriptionActive, true)
	due.SubscriptionEndDate = &past
	dueUser := store.AddUser(due)

	fresh := newUser(domain.PlanYearly, domain.SubscriptionActive, true)
	fresh.SubscriptionEndDate = &future
	freshUser := store.AddUser(fresh)

	free := store.AddUser(newUser(domain.PlanFree, domain.SubscriptionActive, true))

	svc := newService(store)
	ids, err := svc.ExpireDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{dueUser.ID}, ids)

	stored, _ := store.User(freshUser.ID)
	assert.Equal(t, domain.SubscriptionActive, stored.SubscriptionStatus)

	resp, err := svc.Expire(context.Background(), free.ID)
	require.NoError(t, err)
	assert.Equal(t, "expired", resp.Status)

	_, err = svc.Expire(context.Background(), 999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

// bookingDuringExpire засчитывает запись клиента сразу после чтения пользователя,
// как конкурентная запись, зафиксированная между чтением и обновлением
type bookingDuringExpire struct {
	*usecasetest.Customers
}

func (r bookingDuringExpire) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	u, err := r.Customers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := r.Customers.IncrementBookingUsed(ctx, id); err != nil {
		return nil, err
	}
	return u, nil
}

func TestExpire_KeepsConcurrentCounterChange(t *testing.T) {
	store := usecasetest.NewStore()
	user := store.AddUser(newUser(domain.PlanFree, domain.SubscriptionActive, true))

	svc := NewService(bookingDuringExpire{store.Customers()}, 10, logger.NewNop())
	svc.timeProvider = fixedTime(now)

	_, err := svc.Expire(context.Background(), user.ID)
	require.NoError(t, err)

	stored, _ := store.User(user.ID)
	assert.Equal(t, domain.SubscriptionExpired, stored.SubscriptionStatus)
	assert.Equal(t, 8, stored.BookingUsed)
}

func TestActivate_ResetsCounterAndKeepsFreePlanFlag(t *testing.T) {
	store := usecasetest.NewStore()
	user := store.AddUser(newUser(domain.PlanFree, domain.SubscriptionActive, true))

	_, err := newService(store).Activate(context.Background(), &models.ActivateRequest{UserID: user.ID, PlanType: "yearly"})
	require.NoError(t, err)

	stored, _ := store.User(user.ID)
	assert.Equal(t, domain.PlanYearly, stored.PlanType)
	assert.Zero(t, stored.BookingUsed)
	assert.True(t, stored.FreePlanUsed)
}
