package models

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Request модели

// CreateServiceRequest запрос на создание услуги
type CreateServiceRequest struct {
	ActorID         int64   `json:"-"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	DurationMinutes int     `json:"duration"`
	Price           float64 `json:"price"`
	Status          string  `json:"status,omitempty"` // пусто = active
}

// UpdateServiceRequest запрос на обновление услуги
// Все поля опциональны - обновляются только переданные значения
type UpdateServiceRequest struct {
	ActorID         int64    `json:"-"`
	Name            *string  `json:"name,omitempty"`
	Description     *string  `json:"description,omitempty"`
	DurationMinutes *int     `json:"duration,omitempty"`
	Price           *float64 `json:"price,omitempty"`
	Status          *string  `json:"status,omitempty"`
}

// ListServicesRequest запрос на получение списка услуг
type ListServicesRequest struct {
	CompanyID *int64 // nil = все компании
	Status    string // пусто = active, "all" = любой статус
	Page      int
	Limit     int
}

// StatusAll отключает фильтр по статусу
const StatusAll = "all"

// Response модели

// ServiceResponse ответ с данными услуги
type ServiceResponse struct {
	ID                  int64     `json:"id"`
	CompanyID           int64     `json:"companyId"`
	Name                string    `json:"name"`
	Description         string    `json:"description"`
	DurationMinutes     int       `json:"duration"`
	Price               float64   `json:"price"`
	Status              string    `json:"status"`
	AvailabilityEnabled bool      `json:"availabilityEnabled"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// Pagination параметры страницы
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
}

// ServiceListResponse ответ со списком услуг
type ServiceListResponse struct {
	Services   []ServiceResponse `json:"services"`
	Pagination Pagination        `json:"pagination"`
}

// BulkCreateResponse ответ на массовое создание
type BulkCreateResponse struct {
	Count    int               `json:"count"`
	Services []ServiceResponse `json:"services"`
}

// Методы конвертации

// FromDomainService конвертирует domain модель в DTO
func FromDomainService(s *domain.Service) *ServiceResponse {
	if s == nil {
		return nil
	}

	return &ServiceResponse{
		ID:                  s.ID,
		CompanyID:           s.CompanyID,
		Name:                s.Name,
		Description:         s.Description,
		DurationMinutes:     s.DurationMinutes,
		Price:               s.Price,
		Status:              string(s.Status),
		AvailabilityEnabled: s.Availability.Enabled,
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           s.UpdatedAt,
	}
}

// FromDomainServiceList конвертирует страницу услуг в DTO
func FromDomainServiceList(services []*domain.Service, total, page, limit int) *ServiceListResponse {
	resp := &ServiceListResponse{
		Services:   make([]ServiceResponse, 0, len(services)),
		Pagination: Pagination{Total: total, Page: page},
	}
	for _, s := range services {
		resp.Services = append(resp.Services, *FromDomainService(s))
	}
	if limit > 0 {
		resp.Pagination.Pages = (total + limit - 1) / limit
	}
	return resp
}
