package activate_subscription

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

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/subscriptions"
	"github.com/m04kA/SMC-AppointmentService/internal/service/subscriptions/models"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/usecasetest"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

func newRouter(store *usecasetest.Store) *mux.Router {
	svc := subscriptions.NewService(store.Customers(), domain.DefaultFreeBookingLimit, logger.NewNop())

	r := mux.NewRouter()
	r.HandleFunc("/internal/customers/{userId}/subscription", NewHandler(svc, logger.NewNop()).Handle).
		Methods(http.MethodPost)
	return r
}

func activate(r http.Handler, userID int64, plan string) *httptest.ResponseRecorder {
	path := "/internal/customers/" + strconv.FormatInt(userID, 10) + "/subscription"
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"planType":"`+plan+`"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandle_MonthlyThenYearly(t *testing.T) {
	store := usecasetest.NewStore()
	customer := store.AddUser(usecasetest.FreeCustomer(1, 7))
	r := newRouter(store)

	rec := activate(r, customer.ID, "monthly")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.SubscriptionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "monthly", resp.PlanType)
	assert.Nil(t, resp.BookingLimit)
	assert.Zero(t, resp.BookingUsed)
	require.NotNil(t, resp.EndDate)

	assert.Equal(t, http.StatusBadRequest, activate(r, customer.ID, "monthly").Code)
	assert.Equal(t, http.StatusOK, activate(r, customer.ID, "yearly").Code)
	assert.Equal(t, http.StatusBadRequest, activate(r, customer.ID, "yearly").Code)
}

func TestHandle_Errors(t *testing.T) {
	store := usecasetest.NewStore()
	customer := store.AddUser(usecasetest.FreeCustomer(1, 0))
	r := newRouter(store)

	assert.Equal(t, http.StatusNotFound, activate(r, 9999, "monthly").Code)
	assert.Equal(t, http.StatusBadRequest, activate(r, customer.ID, "lifetime").Code)

	require.Equal(t, http.StatusOK, activate(r, customer.ID, "free").Code)
	assert.Equal(t, http.StatusBadRequest, activate(r, customer.ID, "free").Code)
}
