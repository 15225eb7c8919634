package domain

import "time"

// ServiceStatus represents whether a service can be booked
type ServiceStatus string

const (
	ServiceStatusActive   ServiceStatus = "active"
	ServiceStatusInactive ServiceStatus = "inactive"
)

// Service is a bookable offering of a company
type Service struct {
	ID              int64
	CompanyID       int64
	Name            string
	Description     string
	DurationMinutes int
	Price           float64
	Status          ServiceStatus
	Availability    ServiceAvailabilityOverride
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsActive returns true if customers can book the service
func (s *Service) IsActive() bool {
	return s.Status == ServiceStatusActive
}

// IsValid returns true for known statuses
func (s ServiceStatus) IsValid() bool {
	return s == ServiceStatusActive || s == ServiceStatusInactive
}

// ServicesFilter фильтр для выборки услуг
type ServicesFilter struct {
	CompanyID *int64
	Status    *ServiceStatus // nil = все статусы
	Page      int
	Limit     int
}
