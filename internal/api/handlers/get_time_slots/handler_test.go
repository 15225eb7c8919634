package get_time_slots

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	getTimeSlots "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_time_slots"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

type stubUseCase struct {
	got  *getTimeSlots.Request
	resp *getTimeSlots.Response
	err  error
}

func (s *stubUseCase) Execute(_ context.Context, req *getTimeSlots.Request) (*getTimeSlots.Response, error) {
	s.got = req
	return s.resp, s.err
}

func newRouter(uc *stubUseCase) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/services/{serviceId}/time-slots", NewHandler(uc, logger.NewNop()).Handle).Methods(http.MethodGet)
	return r
}

func slot(start, end string, available bool) domain.AvailableSlot {
	return domain.AvailableSlot{
		TimeSlot:  domain.TimeSlot{Start: types.TimeString(start), End: types.TimeString(end)},
		Available: available,
	}
}

func TestHandle_OK(t *testing.T) {
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	uc := &stubUseCase{resp: &getTimeSlots.Response{
		Date:      date,
		ServiceID: 3,
		Source:    domain.RuleSourceCompany,
		Slots: []domain.AvailableSlot{
			slot("09:00", "09:30", true),
			slot("09:30", "10:00", false),
		},
	}}

	rec := httptest.NewRecorder()
	newRouter(uc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/services/3/time-slots?date=2025-06-02", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(3), uc.got.ServiceID)
	assert.Equal(t, date, uc.got.Date)

	var body TimeSlotsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "2025-06-02", body.Date)
	assert.Equal(t, "company", body.Source)
	require.Len(t, body.Slots, 2)
	assert.Equal(t, TimeSlot{Slot: "09:00-09:30", Start: "09:00", End: "09:30", Available: true}, body.Slots[0])
	assert.False(t, body.Slots[1].Available)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name string
		url  string
		err  error
		want int
	}{
		{name: "missing date", url: "/services/3/time-slots", want: http.StatusBadRequest},
		{name: "bad date", url: "/services/3/time-slots?date=june", want: http.StatusBadRequest},
		{name: "bad id", url: "/services/x/time-slots?date=2025-06-02", want: http.StatusBadRequest},
		{name: "not found", url: "/services/3/time-slots?date=2025-06-02", err: getTimeSlots.ErrServiceNotFound, want: http.StatusNotFound},
		{name: "not configured", url: "/services/3/time-slots?date=2025-06-02", err: getTimeSlots.ErrAvailabilityNotConfigured, want: http.StatusNotFound},
		{name: "internal", url: "/services/3/time-slots?date=2025-06-02", err: getTimeSlots.ErrInternal, want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newRouter(&stubUseCase{err: tt.err}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.url, nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
