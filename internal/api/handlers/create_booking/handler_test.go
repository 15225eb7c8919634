package create_booking

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling"
	createBooking "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_booking"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

type stubUseCase struct {
	got  *createBooking.Request
	resp *createBooking.Response
	err  error
}

func (s *stubUseCase) Execute(_ context.Context, req *createBooking.Request) (*createBooking.Response, error) {
	s.got = req
	return s.resp, s.err
}

func serve(t *testing.T, uc *stubUseCase, body string, userID int64) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	if userID != 0 {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	}
	rec := httptest.NewRecorder()
	NewHandler(uc, logger.NewNop()).Handle(rec, req)
	return rec
}

const validBody = `{"serviceId":3,"date":"2025-06-02","timeSlot":"10:00","notes":"first visit"}`

func TestHandle_Created(t *testing.T) {
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	uc := &stubUseCase{resp: &createBooking.Response{
		Appointment: &domain.Appointment{
			ID:         11,
			CustomerID: 5,
			ServiceID:  3,
			CompanyID:  1,
			Date:       date,
			TimeSlot:   types.TimeString("10:00"),
			Status:     domain.StatusPending,
		},
		Quota: domain.Quota{PlanType: domain.PlanFree, BookingLimit: ptr.Ptr(10), BookingUsed: 4},
	}}

	rec := serve(t, uc, validBody, 5)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, uc.got)
	assert.Equal(t, int64(5), uc.got.CustomerID)
	assert.Equal(t, int64(3), uc.got.ServiceID)
	assert.Equal(t, date, uc.got.Date)
	assert.Equal(t, types.TimeString("10:00"), uc.got.TimeSlot)
	assert.Equal(t, "first visit", *uc.got.Notes)

	var body CreateBookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(11), body.Appointment.ID)
	assert.Equal(t, "2025-06-02", body.Appointment.Date)
	assert.Equal(t, "10:00", body.Appointment.TimeSlot)
	assert.Equal(t, "pending", body.Appointment.Status)
	assert.Equal(t, 4, body.User.BookingUsed)
	assert.Equal(t, domain.PlanFree, body.User.PlanType)
}

func TestHandle_RequestErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		userID int64
		want   int
	}{
		{name: "no identity", body: validBody, want: http.StatusUnauthorized},
		{name: "malformed json", body: `{`, userID: 5, want: http.StatusBadRequest},
		{name: "bad date", body: `{"serviceId":3,"date":"02.06.2025","timeSlot":"10:00"}`, userID: 5, want: http.StatusBadRequest},
		{name: "bad time", body: `{"serviceId":3,"date":"2025-06-02","timeSlot":"25:00"}`, userID: 5, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &stubUseCase{}
			rec := serve(t, uc, tt.body, tt.userID)
			assert.Equal(t, tt.want, rec.Code)
			assert.Nil(t, uc.got)
		})
	}
}

func TestHandle_UseCaseErrors(t *testing.T) {
	holiday := &scheduling.Rejection{Reason: scheduling.ReasonHoliday, Message: "closed on holiday"}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantReason string
		wantRedir  string
	}{
		{name: "quota", err: createBooking.ErrQuotaExceeded, wantStatus: http.StatusForbidden, wantReason: reasonQuotaExceeded, wantRedir: redirectPricing},
		{name: "expired", err: createBooking.ErrSubscriptionExpired, wantStatus: http.StatusForbidden, wantReason: reasonSubscriptionEnded, wantRedir: redirectPricing},
		{name: "rejection", err: fmt.Errorf("%w: %w", createBooking.ErrSlotUnavailable, holiday), wantStatus: http.StatusBadRequest, wantReason: "HOLIDAY"},
		{name: "conflict", err: createBooking.ErrSlotConflict, wantStatus: http.StatusConflict, wantReason: reasonSlotTaken},
		{name: "busy", err: createBooking.ErrSlotBusy, wantStatus: http.StatusConflict},
		{name: "service not found", err: createBooking.ErrServiceNotFound, wantStatus: http.StatusNotFound},
		{name: "inactive", err: createBooking.ErrServiceInactive, wantStatus: http.StatusBadRequest},
		{name: "not configured", err: createBooking.ErrAvailabilityNotConfigured, wantStatus: http.StatusBadRequest},
		{name: "internal", err: fmt.Errorf("%w: db down", createBooking.ErrInternal), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, &stubUseCase{err: tt.err}, validBody, 5)
			require.Equal(t, tt.wantStatus, rec.Code)

			var body handlers.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantReason, body.Reason)
			assert.Equal(t, tt.wantRedir, body.Redirect)
		})
	}
}
