package usecasetest

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Monday понедельник, на который назначаются записи в тестах
var Monday = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

// AddService сохраняет услугу как есть
func (s *Store) AddService(svc domain.Service) *domain.Service {
	s.mu.Lock()
	defer s.mu.Unlock()
	svc.ID = s.id()
	s.services[svc.ID] = svc
	return &svc
}

// AddUser сохраняет пользователя как есть
func (s *Store) AddUser(u domain.User) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = s.id()
	s.users[u.ID] = u
	return &u
}

// AddConfig сохраняет конфигурацию компании
func (s *Store) AddConfig(cfg domain.AvailabilityConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg.ID = s.id()
	s.configs[cfg.CompanyID] = cfg
}

// AddAppointment сохраняет запись без проверки занятости слота.
// Пустой CreatedAt заполняется часами хранилища.
func (s *Store) AddAppointment(a domain.Appointment) *domain.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.id()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now()
	}
	s.appointments[a.ID] = a
	return &a
}

// WeekdayConfig пн-пт 09:00-17:00, перерыв 12:00-13:00, прием открыт
func WeekdayConfig(companyID int64) domain.AvailabilityConfig {
	return domain.AvailabilityConfig{
		CompanyID:   companyID,
		WorkingDays: []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"},
		StartTime:   types.TimeString("09:00"),
		EndTime:     types.TimeString("17:00"),
		Breaks:      []domain.Break{{Start: "12:00", End: "13:00"}},
		BookingOpen: true,
	}
}

// ActiveService активная услуга на 30 минут
func ActiveService(companyID int64) domain.Service {
	return domain.Service{
		CompanyID:       companyID,
		Name:            "Consultation",
		DurationMinutes: 30,
		Price:           50,
		Status:          domain.ServiceStatusActive,
	}
}

// FreeCustomer клиент бесплатного плана с лимитом 10 и заданным числом использованных записей
func FreeCustomer(companyID int64, used int) domain.User {
	limit := domain.DefaultFreeBookingLimit
	return domain.User{
		CompanyID:          companyID,
		Name:               "Jane Customer",
		Email:              "jane@example.com",
		Role:               domain.RoleCustomer,
		PlanType:           domain.PlanFree,
		SubscriptionStatus: domain.SubscriptionActive,
		BookingLimit:       &limit,
		BookingUsed:        used,
	}
}

// Admin администратор компании
func Admin(companyID int64) domain.User {
	return domain.User{
		CompanyID: companyID,
		Name:      "Ada Admin",
		Email:     "admin@example.com",
		Role:      domain.RoleAdmin,
		PlanType:  domain.PlanYearly,
	}
}
