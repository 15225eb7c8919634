package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

func typesTime(s string) types.TimeString {
	return types.TimeString(s)
}

func TestResolveRules_ServiceOverrideReplacesCompany(t *testing.T) {
	company := &domain.AvailabilityConfig{
		CompanyID:   1,
		WorkingDays: []string{"Monday"},
		StartTime:   "09:00",
		EndTime:     "18:00",
		Breaks:      []domain.Break{{Start: "13:00", End: "14:00"}},
		Holidays:    []string{"2025-12-25"},
		BookingOpen: false,
	}
	service := &domain.Service{
		ID: 10,
		Availability: domain.ServiceAvailabilityOverride{
			Enabled:   true,
			StartTime: "10:00",
			EndTime:   "12:00",
		},
	}

	rules, err := ResolveRules(service, company)
	require.NoError(t, err)

	assert.Equal(t, domain.RuleSourceService, rules.Source)
	assert.Equal(t, typesTime("10:00"), rules.StartTime)
	assert.Equal(t, typesTime("12:00"), rules.EndTime)
	// Поля, не заданные в переопределении, не наследуются от компании
	assert.Empty(t, rules.WorkingDays)
	assert.Empty(t, rules.Breaks)
	assert.Empty(t, rules.Holidays)
	assert.True(t, rules.BookingOpen)
}

func TestResolveRules_CompanyWhenOverrideDisabled(t *testing.T) {
	company := &domain.AvailabilityConfig{StartTime: "09:00", EndTime: "18:00", BookingOpen: true}
	service := &domain.Service{Availability: domain.ServiceAvailabilityOverride{Enabled: false, StartTime: "10:00"}}

	rules, err := ResolveRules(service, company)
	require.NoError(t, err)

	assert.Equal(t, domain.RuleSourceCompany, rules.Source)
	assert.Equal(t, typesTime("09:00"), rules.StartTime)
	assert.True(t, rules.IsCompanyWide())
}

func TestResolveRules_Unavailable(t *testing.T) {
	_, err := ResolveRules(&domain.Service{}, nil)
	assert.ErrorIs(t, err, ErrRulesUnavailable)

	_, err = ResolveRules(nil, nil)
	assert.ErrorIs(t, err, ErrRulesUnavailable)
}

func TestResolveRules_OverrideWithoutCompany(t *testing.T) {
	service := &domain.Service{Availability: domain.ServiceAvailabilityOverride{Enabled: true}}

	rules, err := ResolveRules(service, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.RuleSourceService, rules.Source)
}
