package customer

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
)

func newRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepository(dbmetrics.Wrap(db, nil, "test")), mock
}

func TestIncrementBookingUsed_ConditionalUpdate(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"UPDATE users SET booking_used = booking_used + 1, updated_at = NOW() WHERE id = $1 AND "+
			"(plan_type <> $2 OR booking_limit IS NULL OR booking_used < booking_limit) "+
			"RETURNING plan_type, booking_limit, booking_used")).
		WithArgs(int64(7), "free").
		WillReturnRows(sqlmock.NewRows([]string{"plan_type", "booking_limit", "booking_used"}).AddRow("free", 10, 4))

	quota, err := repo.IncrementBookingUsed(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, domain.PlanFree, quota.PlanType)
	require.NotNil(t, quota.BookingLimit)
	assert.Equal(t, 10, *quota.BookingLimit)
	assert.Equal(t, 4, quota.BookingUsed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementBookingUsed_QuotaExceeded(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users SET booking_used = booking_used + 1")).
		WillReturnRows(sqlmock.NewRows([]string{"plan_type", "booking_limit", "booking_used"}))

	_, err := repo.IncrementBookingUsed(context.Background(), 7)

	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestDecrementBookingUsed_NeverBelowZero(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"UPDATE users SET booking_used = booking_used - 1, updated_at = NOW() WHERE id = $1 AND plan_type = $2 AND booking_used > $3")).
		WithArgs(int64(7), "free", 0).
		WillReturnRows(sqlmock.NewRows([]string{"plan_type", "booking_limit", "booking_used"}))

	quota, err := repo.DecrementBookingUsed(context.Background(), 7)

	require.NoError(t, err)
	assert.Nil(t, quota)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "company_id", "name", "email", "role", "plan_type", "subscription_status",
			"subscription_start_date", "subscription_end_date", "booking_limit", "booking_used", "free_plan_used",
			"created_at", "updated_at",
		}).AddRow(int64(7), int64(1), "Alice", "alice@example.com", "customer", "monthly", "active",
			now, now.AddDate(0, 1, 0), nil, 3, true, now, now))

	u, err := repo.GetByID(context.Background(), 7)

	require.NoError(t, err)
	assert.Nil(t, u.BookingLimit)
	assert.True(t, u.PlanType.IsPaid())
	require.NotNil(t, u.SubscriptionEndDate)
	assert.False(t, u.QuotaReached())
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), 7)

	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestExpireDue(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(
		"UPDATE users SET subscription_status = $1, updated_at = NOW() WHERE plan_type <> $2 AND subscription_status = $3 AND subscription_end_date < $4 RETURNING id")).
		WithArgs("expired", "free", "active", now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)).AddRow(int64(8)))

	ids, err := repo.ExpireDue(context.Background(), now)

	require.NoError(t, err)
	assert.Equal(t, []int64{3, 8}, ids)
}

func TestExpireSubscription_LeavesCounterUntouched(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE users SET subscription_status = $1, updated_at = NOW() WHERE id = $2")).
		WithArgs("expired", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.ExpireSubscription(context.Background(), 7)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExpireSubscription_NotFound(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET subscription_status = $1")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.ExpireSubscription(context.Background(), 7)

	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestActivatePlan_ResetsCounterInQuery(t *testing.T) {
	repo, mock := newRepo(t)
	start := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE users SET plan_type = $1, subscription_status = $2, subscription_start_date = $3, "+
			"subscription_end_date = $4, booking_limit = $5, booking_used = 0, "+
			"free_plan_used = free_plan_used OR $6, updated_at = NOW() WHERE id = $7")).
		WithArgs("monthly", "active", &start, &end, nil, false, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.ActivatePlan(context.Background(), &domain.User{
		ID:                    7,
		PlanType:              domain.PlanMonthly,
		SubscriptionStartDate: &start,
		SubscriptionEndDate:   &end,
		BookingUsed:           3,
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
