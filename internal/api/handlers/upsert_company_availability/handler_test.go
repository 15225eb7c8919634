package upsert_company_availability

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/availability"
	"github.com/m04kA/SMC-AppointmentService/internal/service/availability/models"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/usecasetest"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

const companyID = 1

func newRouter(store *usecasetest.Store) *mux.Router {
	svc := availability.NewService(store.Availability(), store.Services(), store.Customers(), logger.NewNop())

	r := mux.NewRouter()
	r.Use(middleware.Auth)
	r.HandleFunc("/companies/{companyId}/availability", NewHandler(svc, logger.NewNop()).Handle).Methods(http.MethodPut)
	return r
}

func put(r http.Handler, userID int64, company string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPut, "/companies/"+company+"/availability", strings.NewReader(body))
	req.Header.Set(middleware.HeaderUserID, strconv.FormatInt(userID, 10))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

const body = `{
	"workingDays": ["Monday", "Tuesday"],
	"startTime": "09:00",
	"endTime": "17:00",
	"breaks": [{"start": "12:00", "end": "13:00"}],
	"holidays": ["2025-12-25"]
}`

func TestHandle_AdminSavesConfig(t *testing.T) {
	store := usecasetest.NewStore()
	admin := store.AddUser(usecasetest.Admin(companyID))

	rec := put(newRouter(store), admin.ID, "1", body)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.ConfigResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(companyID), resp.CompanyID)
	assert.Equal(t, []string{"Monday", "Tuesday"}, resp.WorkingDays)
	assert.True(t, resp.BookingOpen)
	assert.Equal(t, []models.BreakDTO{{Start: "12:00", End: "13:00"}}, resp.Breaks)
}

func TestHandle_Errors(t *testing.T) {
	store := usecasetest.NewStore()
	admin := store.AddUser(usecasetest.Admin(companyID))
	otherAdmin := store.AddUser(usecasetest.Admin(2))
	customer := store.AddUser(usecasetest.FreeCustomer(companyID, 0))

	tests := []struct {
		name    string
		userID  int64
		company string
		body    string
		want    int
	}{
		{name: "customer", userID: customer.ID, company: "1", body: body, want: http.StatusForbidden},
		{name: "other tenant admin", userID: otherAdmin.ID, company: "1", body: body, want: http.StatusForbidden},
		{name: "start after end", userID: admin.ID, company: "1", body: `{"workingDays":["Monday"],"startTime":"18:00","endTime":"09:00"}`, want: http.StatusBadRequest},
		{name: "unknown weekday", userID: admin.ID, company: "1", body: `{"workingDays":["Funday"],"startTime":"09:00","endTime":"17:00"}`, want: http.StatusBadRequest},
		{name: "bad company id", userID: admin.ID, company: "abc", body: body, want: http.StatusBadRequest},
		{name: "malformed body", userID: admin.ID, company: "1", body: `{"workingDays":`, want: http.StatusBadRequest},
	}

	r := newRouter(store)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := put(r, tt.userID, tt.company, tt.body)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
