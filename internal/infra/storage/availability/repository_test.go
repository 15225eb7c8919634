package availability

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

func TestGetByCompany(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM availability_configs WHERE company_id = $1")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "company_id", "working_days", "start_time", "end_time", "breaks", "holidays", "booking_open", "created_at", "updated_at",
		}).AddRow(
			int64(3), int64(1), "{Monday,Tuesday}", "09:00", "18:00",
			[]byte(`[{"start":"13:00","end":"14:00"}]`), "{2025-12-25}", true, now, now,
		))

	cfg, err := repo.GetByCompany(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, []string{"Monday", "Tuesday"}, cfg.WorkingDays)
	assert.Equal(t, "09:00", cfg.StartTime.String())
	assert.Equal(t, []domain.Break{{Start: "13:00", End: "14:00"}}, cfg.Breaks)
	assert.Equal(t, []string{"2025-12-25"}, cfg.Holidays)
	assert.True(t, cfg.BookingOpen)
}

func TestGetByCompany_NotFound(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM availability_configs")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByCompany(context.Background(), 1)

	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestUpsert(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO availability_configs")).
		WithArgs(int64(1), sqlmock.AnyArg(), "09:00", "18:00", `[]`, sqlmock.AnyArg(), false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(5), now, now))

	cfg, err := repo.Upsert(context.Background(), &domain.AvailabilityConfig{
		CompanyID:   1,
		StartTime:   "09:00",
		EndTime:     "18:00",
		BookingOpen: false,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(5), cfg.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBreaksRoundTrip(t *testing.T) {
	encoded, err := EncodeBreaks(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", encoded)

	decoded, err := DecodeBreaks(nil)
	require.NoError(t, err)
	assert.Empty(t, decoded)
	assert.NotNil(t, decoded)
}
