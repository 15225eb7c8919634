package service

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
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
)

func newRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepository(dbmetrics.Wrap(db, nil, "test")), mock
}

func serviceRow(id int64, enabled bool) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(serviceColumns).AddRow(
		id, int64(1), "Haircut", "", 30, "25.00", "active",
		enabled, "{Monday}", "10:00", "12:00", []byte(`[]`), "{}", now, now,
	)
}

func TestGetByID(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM services WHERE id = $1")).
		WithArgs(int64(3)).
		WillReturnRows(serviceRow(3, true))

	s, err := repo.GetByID(context.Background(), 3)

	require.NoError(t, err)
	assert.Equal(t, 25.0, s.Price)
	assert.True(t, s.IsActive())
	assert.True(t, s.Availability.Enabled)
	assert.Equal(t, []string{"Monday"}, s.Availability.WorkingDays)
	assert.Equal(t, "10:00", s.Availability.StartTime.String())
	assert.Empty(t, s.Availability.Holidays)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM services")).
		WillReturnRows(sqlmock.NewRows(serviceColumns))

	_, err := repo.GetByID(context.Background(), 3)

	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestList_Paginates(t *testing.T) {
	repo, mock := newRepo(t)
	status := domain.ServiceStatusActive

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM services WHERE (status = $1)")).
		WithArgs("active").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery(regexp.QuoteMeta("FROM services WHERE (status = $1) ORDER BY created_at DESC, id DESC LIMIT 10 OFFSET 10")).
		WithArgs("active").
		WillReturnRows(serviceRow(11, false))

	list, total, err := repo.List(context.Background(), domain.ServicesFilter{Status: &status, Page: 2})

	require.NoError(t, err)
	assert.Equal(t, 12, total)
	require.Len(t, list, 1)
	assert.Equal(t, int64(11), list[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList_ByCompanyAllStatuses(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM services WHERE (company_id = $1)")).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("LIMIT 100 OFFSET 0")).
		WillReturnRows(sqlmock.NewRows(serviceColumns))

	list, total, err := repo.List(context.Background(), domain.ServicesFilter{CompanyID: ptr.Ptr(int64(4)), Limit: 1000})

	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)
}

func TestSetAvailability_NotFound(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE services SET availability_enabled = $1")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetAvailability(context.Background(), 3, domain.ServiceAvailabilityOverride{Enabled: true})

	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestDelete(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM services WHERE id = $1")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), 3))
}
