package models

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Request модели

// BreakDTO перерыв внутри рабочих часов
type BreakDTO struct {
	Start string `json:"start"` // "13:00"
	End   string `json:"end"`   // "14:00"
}

// RulesDTO блок правил доступности
type RulesDTO struct {
	WorkingDays []string   `json:"workingDays"` // ["Monday", "Tuesday"]
	StartTime   string     `json:"startTime"`   // "09:00"
	EndTime     string     `json:"endTime"`     // "18:00"
	Breaks      []BreakDTO `json:"breaks"`
	Holidays    []string   `json:"holidays"` // ["2026-01-26"]
}

// UpsertConfigRequest запрос на создание или замену конфигурации компании
type UpsertConfigRequest struct {
	ActorID   int64 `json:"-"`
	CompanyID int64 `json:"-"`
	RulesDTO
	BookingOpen *bool `json:"bookingOpen,omitempty"` // nil = прием открыт
}

// SetServiceOverrideRequest запрос на установку правил услуги
// При Enabled=false услуга использует конфигурацию компании
type SetServiceOverrideRequest struct {
	ActorID   int64 `json:"-"`
	ServiceID int64 `json:"-"`
	Enabled   bool  `json:"availabilityEnabled"`
	RulesDTO
}

// Response модели

// ConfigResponse ответ с конфигурацией компании
type ConfigResponse struct {
	ID          int64      `json:"id"`
	CompanyID   int64      `json:"companyId"`
	WorkingDays []string   `json:"workingDays"`
	StartTime   string     `json:"startTime"`
	EndTime     string     `json:"endTime"`
	Breaks      []BreakDTO `json:"breaks"`
	Holidays    []string   `json:"holidays"`
	BookingOpen bool       `json:"bookingOpen"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ServiceOverrideResponse ответ с правилами услуги
type ServiceOverrideResponse struct {
	ServiceID   int64      `json:"serviceId"`
	Enabled     bool       `json:"availabilityEnabled"`
	WorkingDays []string   `json:"workingDays"`
	StartTime   string     `json:"startTime,omitempty"`
	EndTime     string     `json:"endTime,omitempty"`
	Breaks      []BreakDTO `json:"breaks"`
	Holidays    []string   `json:"holidays"`
}

// Методы конвертации

// ToDomainBreaks конвертирует перерывы в domain модель
func (r *RulesDTO) ToDomainBreaks() []domain.Break {
	breaks := make([]domain.Break, 0, len(r.Breaks))
	for _, b := range r.Breaks {
		breaks = append(breaks, domain.Break{Start: types.TimeString(b.Start), End: types.TimeString(b.End)})
	}
	return breaks
}

// FromDomainConfig конвертирует domain модель в DTO
func FromDomainConfig(c *domain.AvailabilityConfig) *ConfigResponse {
	if c == nil {
		return nil
	}

	return &ConfigResponse{
		ID:          c.ID,
		CompanyID:   c.CompanyID,
		WorkingDays: nonNil(c.WorkingDays),
		StartTime:   c.StartTime.String(),
		EndTime:     c.EndTime.String(),
		Breaks:      fromDomainBreaks(c.Breaks),
		Holidays:    nonNil(c.Holidays),
		BookingOpen: c.BookingOpen,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// FromDomainOverride конвертирует правила услуги в DTO
func FromDomainOverride(serviceID int64, o domain.ServiceAvailabilityOverride) *ServiceOverrideResponse {
	return &ServiceOverrideResponse{
		ServiceID:   serviceID,
		Enabled:     o.Enabled,
		WorkingDays: nonNil(o.WorkingDays),
		StartTime:   o.StartTime.String(),
		EndTime:     o.EndTime.String(),
		Breaks:      fromDomainBreaks(o.Breaks),
		Holidays:    nonNil(o.Holidays),
	}
}

func fromDomainBreaks(breaks []domain.Break) []BreakDTO {
	out := make([]BreakDTO, 0, len(breaks))
	for _, b := range breaks {
		out = append(out, BreakDTO{Start: b.Start.String(), End: b.End.String()})
	}
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
