package domain

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Break represents a non-bookable window inside working hours, [Start, End)
type Break struct {
	Start types.TimeString `json:"start"`
	End   types.TimeString `json:"end"`
}

// AvailabilityConfig is the company-wide availability configuration (one per company)
type AvailabilityConfig struct {
	ID          int64
	CompanyID   int64
	WorkingDays []string // English weekday names, e.g. "Monday"
	StartTime   types.TimeString
	EndTime     types.TimeString
	Breaks      []Break
	Holidays    []string // ISO dates, YYYY-MM-DD
	BookingOpen bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ServiceAvailabilityOverride is a service-level rule block. When Enabled,
// it replaces the company configuration entirely for that service.
type ServiceAvailabilityOverride struct {
	Enabled     bool
	WorkingDays []string
	StartTime   types.TimeString
	EndTime     types.TimeString
	Breaks      []Break
	Holidays    []string
}

// RuleSource identifies where the effective rules came from
type RuleSource string

const (
	RuleSourceCompany RuleSource = "company"
	RuleSourceService RuleSource = "service"
)

// RuleSet is the resolved set of rules governing one booking attempt
type RuleSet struct {
	Source      RuleSource
	WorkingDays []string
	StartTime   types.TimeString
	EndTime     types.TimeString
	Breaks      []Break
	Holidays    []string
	BookingOpen bool
}

// IsCompanyWide returns true if the rules come from the company configuration
func (r *RuleSet) IsCompanyWide() bool {
	return r.Source == RuleSourceCompany
}

// HasWorkingHours returns true if both bounds of working hours are configured
func (r *RuleSet) HasWorkingHours() bool {
	return !r.StartTime.IsZero() && !r.EndTime.IsZero()
}

// IsHoliday returns true if the ISO date is in the holiday set
func (r *RuleSet) IsHoliday(isoDate string) bool {
	for _, h := range r.Holidays {
		if h == isoDate {
			return true
		}
	}
	return false
}

// IsWorkingDay returns true if the weekday is allowed; an empty set allows every day
func (r *RuleSet) IsWorkingDay(weekday string) bool {
	if len(r.WorkingDays) == 0 {
		return true
	}
	for _, d := range r.WorkingDays {
		if d == weekday {
			return true
		}
	}
	return false
}
