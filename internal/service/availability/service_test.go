package availability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/service/availability/models"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/usecasetest"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

const companyID int64 = 1

func newService(store *usecasetest.Store) *Service {
	return NewService(store.Availability(), store.Services(), store.Customers(), logger.NewNop())
}

func validRules() models.RulesDTO {
	return models.RulesDTO{
		WorkingDays: []string{"Monday", "Friday"},
		StartTime:   "09:00",
		EndTime:     "18:00",
		Breaks:      []models.BreakDTO{{Start: "13:00", End: "14:00"}},
		Holidays:    []string{"2026-01-26"},
	}
}

func TestUpsert_CreatesThenReplaces(t *testing.T) {
	store := usecasetest.NewStore()
	admin := store.AddUser(usecasetest.Admin(companyID))
	svc := newService(store)
	ctx := context.Background()

	created, err := svc.Upsert(ctx, &models.UpsertConfigRequest{ActorID: admin.ID, CompanyID: companyID, RulesDTO: validRules()})
	require.NoError(t, err)
	assert.True(t, created.BookingOpen)
	assert.Equal(t, []models.BreakDTO{{Start: "13:00", End: "14:00"}}, created.Breaks)

	rules := validRules()
	rules.Breaks = nil
	replaced, err := svc.Upsert(ctx, &models.UpsertConfigRequest{
		ActorID:     admin.ID,
		CompanyID:   companyID,
		RulesDTO:    rules,
		BookingOpen: ptr.Ptr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, replaced.ID)
	assert.False(t, replaced.BookingOpen)
	assert.Empty(t, replaced.Breaks)

	got, err := svc.Get(ctx, companyID)
	require.NoError(t, err)
	assert.False(t, got.BookingOpen)
}

func TestUpsert_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *models.RulesDTO)
	}{
		{"no working days", func(r *models.RulesDTO) { r.WorkingDays = nil }},
		{"unknown day", func(r *models.RulesDTO) { r.WorkingDays = []string{"Mon"} }},
		{"no hours", func(r *models.RulesDTO) { r.EndTime = "" }},
		{"inverted hours", func(r *models.RulesDTO) { r.StartTime, r.EndTime = "18:00", "09:00" }},
		{"bad break", func(r *models.RulesDTO) { r.Breaks = []models.BreakDTO{{Start: "14:00", End: "13:00"}} }},
		{"bad holiday", func(r *models.RulesDTO) { r.Holidays = []string{"26/01/2026"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := usecasetest.NewStore()
			admin := store.AddUser(usecasetest.Admin(companyID))
			rules := validRules()
			tt.mutate(&rules)

			_, err := newService(store).Upsert(context.Background(), &models.UpsertConfigRequest{ActorID: admin.ID, CompanyID: companyID, RulesDTO: rules})
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestUpsert_AccessDenied(t *testing.T) {
	store := usecasetest.NewStore()
	customer := store.AddUser(usecasetest.FreeCustomer(companyID, 0))
	foreign := store.AddUser(usecasetest.Admin(companyID + 1))
	svc := newService(store)

	for _, actor := range []int64{customer.ID, foreign.ID, 999} {
		_, err := svc.Upsert(context.Background(), &models.UpsertConfigRequest{ActorID: actor, CompanyID: companyID, RulesDTO: validRules()})
		assert.ErrorIs(t, err, ErrAccessDenied)
	}
}

func TestGet_NotSet(t *testing.T) {
	_, err := newService(usecasetest.NewStore()).Get(context.Background(), companyID)
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestSetServiceOverride(t *testing.T) {
	store := usecasetest.NewStore()
	admin := store.AddUser(usecasetest.Admin(companyID))
	service := store.AddService(usecasetest.ActiveService(companyID))
	svc := newService(store)
	ctx := context.Background()

	resp, err := svc.SetServiceOverride(ctx, &models.SetServiceOverrideRequest{
		ActorID:   admin.ID,
		ServiceID: service.ID,
		Enabled:   true,
		RulesDTO:  models.RulesDTO{StartTime: "10:00", EndTime: "12:00"},
	})
	require.NoError(t, err)
	assert.True(t, resp.Enabled)
	assert.Empty(t, resp.WorkingDays)

	stored, err := store.Services().GetByID(ctx, service.ID)
	require.NoError(t, err)
	assert.True(t, stored.Availability.Enabled)
	assert.Equal(t, types.TimeString("10:00"), stored.Availability.StartTime)

	_, err = svc.SetServiceOverride(ctx, &models.SetServiceOverrideRequest{ActorID: admin.ID, ServiceID: 999})
	assert.ErrorIs(t, err, ErrServiceNotFound)

	foreign := store.AddUser(usecasetest.Admin(companyID + 1))
	_, err = svc.SetServiceOverride(ctx, &models.SetServiceOverrideRequest{ActorID: foreign.ID, ServiceID: service.ID})
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.SetServiceOverride(ctx, &models.SetServiceOverrideRequest{
		ActorID:   admin.ID,
		ServiceID: service.ID,
		RulesDTO:  models.RulesDTO{StartTime: "10:00"},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
