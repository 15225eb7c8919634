package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// 2025-06-02 понедельник
var monday = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

func companyRules() *domain.RuleSet {
	return &domain.RuleSet{
		Source:      domain.RuleSourceCompany,
		WorkingDays: []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"},
		StartTime:   "09:00",
		EndTime:     "18:00",
		Breaks:      []domain.Break{{Start: "13:00", End: "14:00"}},
		Holidays:    []string{"2025-06-03"},
		BookingOpen: true,
	}
}

func TestValidateBooking(t *testing.T) {
	tests := []struct {
		name     string
		date     time.Time
		slot     string
		mutate   func(r *domain.RuleSet)
		wantErr  error
		wantCode Reason
	}{
		{name: "ok", date: monday, slot: "10:00"},
		{name: "first minute of day", date: monday, slot: "09:00"},
		{name: "last minute before end", date: monday, slot: "17:59"},
		{name: "right after break", date: monday, slot: "14:00"},
		{
			name: "booking closed", date: monday, slot: "10:00",
			mutate:  func(r *domain.RuleSet) { r.BookingOpen = false },
			wantErr: ErrBookingClosed, wantCode: ReasonBookingClosed,
		},
		{name: "weekend", date: monday.AddDate(0, 0, 5), slot: "10:00", wantErr: ErrClosedDay, wantCode: ReasonClosedDay},
		{name: "holiday", date: monday.AddDate(0, 0, 1), slot: "10:00", wantErr: ErrHoliday, wantCode: ReasonHoliday},
		{name: "before opening", date: monday, slot: "08:59", wantErr: ErrOutsideWorkingHours, wantCode: ReasonOutsideHours},
		{name: "at closing", date: monday, slot: "18:00", wantErr: ErrOutsideWorkingHours, wantCode: ReasonOutsideHours},
		{name: "inside break", date: monday, slot: "13:30", wantErr: ErrInsideBreak, wantCode: ReasonInsideBreak},
		{name: "break start", date: monday, slot: "13:00", wantErr: ErrInsideBreak, wantCode: ReasonInsideBreak},
		{name: "malformed slot", date: monday, slot: "1000", wantErr: ErrInvalidTimeSlot, wantCode: ReasonInvalidTimeSlot},
		{
			name: "booking gate checked before day",
			date: monday.AddDate(0, 0, 5), slot: "10:00",
			mutate:  func(r *domain.RuleSet) { r.BookingOpen = false },
			wantErr: ErrBookingClosed, wantCode: ReasonBookingClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := companyRules()
			if tt.mutate != nil {
				tt.mutate(rules)
			}

			err := ValidateBooking(tt.date, typesTime(tt.slot), rules)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, tt.wantErr)
			var rejection *Rejection
			require.ErrorAs(t, err, &rejection)
			assert.Equal(t, tt.wantCode, rejection.Reason)
		})
	}
}

func TestValidateBooking_HolidayWinsOverEverything(t *testing.T) {
	// Разрешены все дни, широкие часы, нет перерывов, но дата выходная
	rules := &domain.RuleSet{
		Source:      domain.RuleSourceCompany,
		StartTime:   "00:00",
		EndTime:     "24:00",
		Holidays:    []string{"2025-06-02"},
		BookingOpen: true,
	}

	for _, slot := range []string{"00:00", "09:00", "12:30", "23:59"} {
		assert.ErrorIs(t, ValidateBooking(monday, typesTime(slot), rules), ErrHoliday, slot)
	}
}

func TestValidateBooking_PermissiveDefaults(t *testing.T) {
	rules := &domain.RuleSet{Source: domain.RuleSourceCompany, BookingOpen: true}

	assert.NoError(t, ValidateBooking(monday.AddDate(0, 0, 6), "03:00", rules))
}

func TestValidateBooking_ServiceRulesIgnoreGate(t *testing.T) {
	rules := &domain.RuleSet{Source: domain.RuleSourceService, BookingOpen: false}

	assert.NoError(t, ValidateBooking(monday, "10:00", rules))
}

func TestValidateBooking_NilRules(t *testing.T) {
	assert.ErrorIs(t, ValidateBooking(monday, "10:00", nil), ErrRulesUnavailable)
}

func TestIsDayOpen(t *testing.T) {
	rules := companyRules()

	assert.True(t, IsDayOpen(monday, rules))
	assert.False(t, IsDayOpen(monday.AddDate(0, 0, 1), rules), "holiday")
	assert.False(t, IsDayOpen(monday.AddDate(0, 0, 6), rules), "sunday")

	rules.BookingOpen = false
	assert.False(t, IsDayOpen(monday, rules))
}
