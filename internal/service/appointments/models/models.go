package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Request модели

// UpdateStatusRequest решение администратора по записи
type UpdateStatusRequest struct {
	ActorID         int64  `json:"-"`
	Status          string `json:"status"`
	RejectionReason string `json:"rejectionReason"`
}

// ListAppointmentsRequest фильтры админского списка записей
type ListAppointmentsRequest struct {
	ActorID    int64      `json:"-"`
	CustomerID *int64     `json:"userId,omitempty"`   // Фильтр по клиенту (опционально)
	Status     string     `json:"status,omitempty"`   // "all" или пусто = любой статус
	FromDate   *time.Time `json:"fromDate,omitempty"` // Начало периода по дате записи
	ToDate     *time.Time `json:"toDate,omitempty"`   // Конец периода по дате записи
	Search     string     `json:"search,omitempty"`   // Поиск по имени клиента или названию услуги
}

// ToDomainFilter конвертирует request в domain фильтр компании
func (r *ListAppointmentsRequest) ToDomainFilter(companyID int64) (domain.AppointmentsFilter, error) {
	filter := domain.AppointmentsFilter{
		CompanyID:  &companyID,
		CustomerID: r.CustomerID,
		FromDate:   r.FromDate,
		ToDate:     r.ToDate,
		Search:     strings.TrimSpace(r.Search),
	}

	if r.Status != "" && r.Status != StatusAll {
		status := domain.AppointmentStatus(r.Status)
		if !status.IsValid() {
			return filter, fmt.Errorf("unknown status %q", r.Status)
		}
		filter.Status = &status
	}

	if r.FromDate != nil && r.ToDate != nil && r.ToDate.Before(*r.FromDate) {
		return filter, fmt.Errorf("toDate is before fromDate")
	}

	return filter, nil
}

// StatusAll отключает фильтр по статусу
const StatusAll = "all"

// Response модели

// AppointmentResponse ответ с данными записи
type AppointmentResponse struct {
	ID              int64   `json:"id"`
	CustomerID      int64   `json:"userId"`
	ServiceID       int64   `json:"serviceId"`
	CompanyID       int64   `json:"companyId"`
	Date            string  `json:"date"`     // "2025-06-02"
	TimeSlot        string  `json:"timeSlot"` // "10:00"
	Notes           *string `json:"notes,omitempty"`
	Status          string  `json:"status"`
	RejectionReason string  `json:"rejectionReason,omitempty"`
	RescheduledFrom *string `json:"rescheduledFrom,omitempty"`

	// Денормализованные данные
	ServiceName     string  `json:"serviceName,omitempty"`
	ServicePrice    float64 `json:"servicePrice,omitempty"`
	ServiceDuration int     `json:"serviceDuration,omitempty"`
	CustomerName    string  `json:"userName,omitempty"`
	CustomerEmail   string  `json:"userEmail,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AppointmentListResponse ответ со списком записей
type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}

// Методы конвертации

// FromDomainAppointment конвертирует domain модель в DTO
func FromDomainAppointment(a *domain.Appointment) *AppointmentResponse {
	if a == nil {
		return nil
	}

	resp := &AppointmentResponse{
		ID:              a.ID,
		CustomerID:      a.CustomerID,
		ServiceID:       a.ServiceID,
		CompanyID:       a.CompanyID,
		Date:            a.Date.Format(domain.DateFormat),
		TimeSlot:        a.TimeSlot.String(),
		Notes:           a.Notes,
		Status:          string(a.Status),
		RejectionReason: a.RejectionReason,
		ServiceName:     a.ServiceName,
		ServicePrice:    a.ServicePrice,
		ServiceDuration: a.ServiceDuration,
		CustomerName:    a.CustomerName,
		CustomerEmail:   a.CustomerEmail,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}

	if a.RescheduledFrom != nil {
		from := a.RescheduledFrom.Format(domain.DateFormat)
		resp.RescheduledFrom = &from
	}

	return resp
}

// FromDomainAppointmentList конвертирует список domain моделей в DTO
func FromDomainAppointmentList(appointments []*domain.Appointment) *AppointmentListResponse {
	resp := &AppointmentListResponse{
		Appointments: make([]AppointmentResponse, 0, len(appointments)),
	}
	for _, a := range appointments {
		resp.Appointments = append(resp.Appointments, *FromDomainAppointment(a))
	}
	resp.Total = len(resp.Appointments)
	return resp
}
