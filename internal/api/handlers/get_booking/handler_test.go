package get_booking

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/usecasetest"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

func TestHandle(t *testing.T) {
	store := usecasetest.NewStore()
	svc := appointments.NewService(
		store.Appointments(),
		store.Customers(),
		store.TxManager(),
		&usecasetest.Notifier{},
		usecasetest.NewMetrics(),
		logger.NewNop(),
	)

	r := mux.NewRouter()
	r.Use(middleware.Auth)
	r.HandleFunc("/bookings/{bookingId}", NewHandler(svc, logger.NewNop()).Handle).Methods(http.MethodGet)

	owner := store.AddUser(usecasetest.FreeCustomer(1, 1))
	stranger := store.AddUser(usecasetest.FreeCustomer(1, 0))
	admin := store.AddUser(usecasetest.Admin(1))
	foreignAdmin := store.AddUser(usecasetest.Admin(2))
	service := store.AddService(usecasetest.ActiveService(1))
	booking := store.AddAppointment(domain.Appointment{
		CustomerID: owner.ID,
		ServiceID:  service.ID,
		CompanyID:  1,
		Date:       usecasetest.Monday,
		TimeSlot:   types.TimeString("10:00"),
		Status:     domain.StatusPending,
	})

	get := func(path string, userID int64) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set(middleware.HeaderUserID, strconv.FormatInt(userID, 10))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}
	bookingPath := "/bookings/" + strconv.FormatInt(booking.ID, 10)

	t.Run("owner", func(t *testing.T) {
		rec := get(bookingPath, owner.ID)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp models.AppointmentResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, booking.ID, resp.ID)
		assert.Equal(t, "10:00", resp.TimeSlot)
	})

	tests := []struct {
		name   string
		path   string
		userID int64
		want   int
	}{
		{name: "company admin", path: bookingPath, userID: admin.ID, want: http.StatusOK},
		{name: "other customer", path: bookingPath, userID: stranger.ID, want: http.StatusForbidden},
		{name: "admin of another company", path: bookingPath, userID: foreignAdmin.ID, want: http.StatusForbidden},
		{name: "unknown booking", path: "/bookings/9999", userID: owner.ID, want: http.StatusNotFound},
		{name: "invalid id", path: "/bookings/abc", userID: owner.ID, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, get(tt.path, tt.userID).Code)
		})
	}
}
