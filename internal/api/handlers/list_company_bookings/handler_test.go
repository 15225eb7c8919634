package list_company_bookings

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type stubService struct {
	got *models.ListAppointmentsRequest
	err error
}

func (s *stubService) ListCompany(_ context.Context, req *models.ListAppointmentsRequest) (*models.AppointmentListResponse, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	return &models.AppointmentListResponse{Appointments: []models.AppointmentResponse{}}, nil
}

func TestToServiceRequest(t *testing.T) {
	q := url.Values{}
	q.Set("userId", "5")
	q.Set("status", "all")
	q.Set("fromDate", "2025-06-01")
	q.Set("toDate", "2025-06-30")
	q.Set("search", "jane")

	req, err := ToServiceRequest(2, q)
	require.NoError(t, err)

	assert.Equal(t, int64(2), req.ActorID)
	assert.Equal(t, int64(5), *req.CustomerID)
	assert.Equal(t, "all", req.Status)
	assert.Equal(t, "jane", req.Search)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), *req.FromDate)
	assert.Equal(t, time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), *req.ToDate)
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name  string
		query string
		err   error
		want  int
	}{
		{name: "no filters", query: "", want: http.StatusOK},
		{name: "bad user id", query: "?userId=abc", want: http.StatusBadRequest},
		{name: "bad date", query: "?fromDate=01-06-2025", want: http.StatusBadRequest},
		{name: "not admin", query: "", err: appointments.ErrAccessDenied, want: http.StatusForbidden},
		{name: "invalid filter", query: "?status=unknown", err: appointments.ErrInvalidInput, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/bookings"+tt.query, nil)
			req = req.WithContext(middleware.WithUserID(req.Context(), 2))
			rec := httptest.NewRecorder()

			NewHandler(&stubService{err: tt.err}, logger.NewNop()).Handle(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
