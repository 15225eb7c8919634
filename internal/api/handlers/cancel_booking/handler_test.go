package cancel_booking

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

type fixture struct {
	store    *usecasetest.Store
	router   *mux.Router
	customer *domain.User
	service  *domain.Service
}

func newFixture() *fixture {
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
	r.HandleFunc("/bookings/{bookingId}/cancel", NewHandler(svc, logger.NewNop()).Handle).Methods(http.MethodPatch)

	return &fixture{
		store:    store,
		router:   r,
		customer: store.AddUser(usecasetest.FreeCustomer(1, 1)),
		service:  store.AddService(usecasetest.ActiveService(1)),
	}
}

func (f *fixture) book(status domain.AppointmentStatus) *domain.Appointment {
	return f.store.AddAppointment(domain.Appointment{
		CustomerID: f.customer.ID,
		ServiceID:  f.service.ID,
		CompanyID:  1,
		Date:       usecasetest.Monday,
		TimeSlot:   types.TimeString("10:00"),
		Status:     status,
	})
}

func (f *fixture) cancel(bookingID, userID int64) *httptest.ResponseRecorder {
	path := "/bookings/" + strconv.FormatInt(bookingID, 10) + "/cancel"
	req := httptest.NewRequest(http.MethodPatch, path, nil)
	req.Header.Set(middleware.HeaderUserID, strconv.FormatInt(userID, 10))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestHandle_OwnerCancels(t *testing.T) {
	f := newFixture()
	a := f.book(domain.StatusPending)

	rec := f.cancel(a.ID, f.customer.ID)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.AppointmentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(domain.StatusCancelled), resp.Status)

	u, _ := f.store.User(f.customer.ID)
	assert.Equal(t, 0, u.BookingUsed)
}

func TestHandle_Errors(t *testing.T) {
	f := newFixture()
	stranger := f.store.AddUser(usecasetest.FreeCustomer(1, 0))
	pending := f.book(domain.StatusPending)
	cancelled := f.book(domain.StatusCancelled)
	rejected := f.book(domain.StatusRejected)

	tests := []struct {
		name      string
		bookingID int64
		userID    int64
		want      int
	}{
		{name: "not owner", bookingID: pending.ID, userID: stranger.ID, want: http.StatusForbidden},
		{name: "already cancelled", bookingID: cancelled.ID, userID: f.customer.ID, want: http.StatusBadRequest},
		{name: "rejected", bookingID: rejected.ID, userID: f.customer.ID, want: http.StatusBadRequest},
		{name: "missing", bookingID: 9999, userID: f.customer.ID, want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.cancel(tt.bookingID, tt.userID).Code)
		})
	}
}
