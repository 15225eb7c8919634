// Package usecasetest содержит хранилище в памяти для тестов usecase и service слоев.
// Ошибки совпадают с ошибками PostgreSQL-репозиториев.
package usecasetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	availabilityRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/availability"
	customerRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/customer"
	serviceRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/service"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Store общее состояние всех репозиториев в памяти
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex

	nextID       int64
	services     map[int64]domain.Service
	users        map[int64]domain.User
	configs      map[int64]domain.AvailabilityConfig
	appointments map[int64]domain.Appointment
	clock        time.Time
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{
		services:     make(map[int64]domain.Service),
		users:        make(map[int64]domain.User),
		configs:      make(map[int64]domain.AvailabilityConfig),
		appointments: make(map[int64]domain.Appointment),
		clock:        time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// now возвращает монотонно растущее время, чтобы порядок created_at был детерминированным
func (s *Store) now() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

// Services репозиторий услуг
func (s *Store) Services() *Services { return &Services{s} }

// Customers репозиторий пользователей
func (s *Store) Customers() *Customers { return &Customers{s} }

// Availability репозиторий конфигураций доступности
func (s *Store) Availability() *Availability { return &Availability{s} }

// Appointments репозиторий записей
func (s *Store) Appointments() *Appointments { return &Appointments{s} }

// TxManager менеджер транзакций; сериализует все транзакции
func (s *Store) TxManager() *TxManager { return &TxManager{s} }

// Appointment возвращает копию записи для проверок в тестах
func (s *Store) Appointment(id int64) (domain.Appointment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	return a, ok
}

// User возвращает копию пользователя для проверок в тестах
func (s *Store) User(id int64) (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	return u, ok
}

// Services реализация репозитория услуг
type Services struct{ s *Store }

func (r *Services) Create(_ context.Context, svc *domain.Service) (*domain.Service, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	svc.ID = r.s.id()
	svc.CreatedAt = r.s.now()
	svc.UpdatedAt = svc.CreatedAt
	r.s.services[svc.ID] = *svc
	out := *svc
	return &out, nil
}

func (r *Services) GetByID(_ context.Context, id int64) (*domain.Service, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	svc, ok := r.s.services[id]
	if !ok {
		return nil, serviceRepo.ErrServiceNotFound
	}
	return &svc, nil
}

func (r *Services) List(_ context.Context, filter domain.ServicesFilter) ([]*domain.Service, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	matched := make([]*domain.Service, 0)
	for _, svc := range r.s.services {
		if filter.CompanyID != nil && svc.CompanyID != *filter.CompanyID {
			continue
		}
		if filter.Status != nil && svc.Status != *filter.Status {
			continue
		}
		svc := svc
		matched = append(matched, &svc)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = domain.DefaultPage
	}
	if limit < 1 {
		limit = domain.DefaultPageLimit
	}
	if limit > domain.MaxPageLimit {
		limit = domain.MaxPageLimit
	}

	total := len(matched)
	from := (page - 1) * limit
	if from > total {
		from = total
	}
	to := from + limit
	if to > total {
		to = total
	}
	return matched[from:to], total, nil
}

func (r *Services) Update(_ context.Context, svc *domain.Service) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.services[svc.ID]
	if !ok {
		return serviceRepo.ErrServiceNotFound
	}
	stored.Name = svc.Name
	stored.Description = svc.Description
	stored.DurationMinutes = svc.DurationMinutes
	stored.Price = svc.Price
	stored.Status = svc.Status
	stored.UpdatedAt = r.s.now()
	r.s.services[svc.ID] = stored
	return nil
}

func (r *Services) SetStatus(_ context.Context, id int64, status domain.ServiceStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	svc, ok := r.s.services[id]
	if !ok {
		return serviceRepo.ErrServiceNotFound
	}
	svc.Status = status
	r.s.services[id] = svc
	return nil
}

func (r *Services) SetAvailability(_ context.Context, id int64, o domain.ServiceAvailabilityOverride) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	svc, ok := r.s.services[id]
	if !ok {
		return serviceRepo.ErrServiceNotFound
	}
	svc.Availability = o
	r.s.services[id] = svc
	return nil
}

func (r *Services) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.services[id]; !ok {
		return serviceRepo.ErrServiceNotFound
	}
	delete(r.s.services, id)
	return nil
}

// Customers реализация репозитория пользователей
type Customers struct{ s *Store }

func (r *Customers) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u.ID = r.s.id()
	u.CreatedAt = r.s.now()
	u.UpdatedAt = u.CreatedAt
	r.s.users[u.ID] = *u
	out := *u
	return &out, nil
}

func (r *Customers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, customerRepo.ErrUserNotFound
	}
	return &u, nil
}

func (r *Customers) IncrementBookingUsed(_ context.Context, id int64) (*domain.Quota, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok || u.QuotaReached() {
		return nil, customerRepo.ErrQuotaExceeded
	}
	u.BookingUsed++
	r.s.users[id] = u
	q := u.Quota()
	return &q, nil
}

func (r *Customers) DecrementBookingUsed(_ context.Context, id int64) (*domain.Quota, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok || !u.IsFreePlan() || u.BookingUsed <= 0 {
		return nil, nil
	}
	u.BookingUsed--
	r.s.users[id] = u
	q := u.Quota()
	return &q, nil
}

func (r *Customers) ActivatePlan(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.users[u.ID]
	if !ok {
		return customerRepo.ErrUserNotFound
	}
	stored.PlanType = u.PlanType
	stored.SubscriptionStatus = domain.SubscriptionActive
	stored.SubscriptionStartDate = u.SubscriptionStartDate
	stored.SubscriptionEndDate = u.SubscriptionEndDate
	stored.BookingLimit = u.BookingLimit
	stored.BookingUsed = 0
	stored.FreePlanUsed = stored.FreePlanUsed || u.FreePlanUsed
	r.s.users[u.ID] = stored
	return nil
}

func (r *Customers) ExpireSubscription(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.users[id]
	if !ok {
		return customerRepo.ErrUserNotFound
	}
	stored.SubscriptionStatus = domain.SubscriptionExpired
	r.s.users[id] = stored
	return nil
}

func (r *Customers) ExpireDue(_ context.Context, now time.Time) ([]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := make([]int64, 0)
	for id, u := range r.s.users {
		if u.IsFreePlan() || u.SubscriptionStatus != domain.SubscriptionActive {
			continue
		}
		if u.SubscriptionEndDate == nil || !u.SubscriptionEndDate.Before(now) {
			continue
		}
		u.SubscriptionStatus = domain.SubscriptionExpired
		r.s.users[id] = u
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Availability реализация репозитория конфигураций доступности
type Availability struct{ s *Store }

func (r *Availability) GetByCompany(_ context.Context, companyID int64) (*domain.AvailabilityConfig, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cfg, ok := r.s.configs[companyID]
	if !ok {
		return nil, availabilityRepo.ErrConfigNotFound
	}
	return &cfg, nil
}

func (r *Availability) Upsert(_ context.Context, cfg *domain.AvailabilityConfig) (*domain.AvailabilityConfig, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.configs[cfg.CompanyID]
	if ok {
		cfg.ID = stored.ID
		cfg.CreatedAt = stored.CreatedAt
	} else {
		cfg.ID = r.s.id()
		cfg.CreatedAt = r.s.now()
	}
	cfg.UpdatedAt = r.s.now()
	r.s.configs[cfg.CompanyID] = *cfg
	out := *cfg
	return &out, nil
}

// Appointments реализация репозитория записей.
// Create и Reschedule повторяют частичный уникальный индекс по удерживающим слот записям.
type Appointments struct{ s *Store }

func (r *Appointments) Create(_ context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.holderExists(a.ServiceID, a.Date, a.TimeSlot, 0) {
		return nil, appointmentRepo.ErrSlotConflict
	}
	a.ID = r.s.id()
	a.CreatedAt = r.s.now()
	a.UpdatedAt = a.CreatedAt
	r.s.appointments[a.ID] = *a
	out := *a
	return &out, nil
}

func (r *Appointments) GetByID(_ context.Context, id int64) (*domain.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.appointments[id]
	if !ok {
		return nil, appointmentRepo.ErrAppointmentNotFound
	}
	r.fillDetails(&a)
	return &a, nil
}

func (r *Appointments) FindSlotHolders(_ context.Context, key domain.SlotKey, excludeID *int64) ([]*domain.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	holders := make([]*domain.Appointment, 0)
	for _, a := range r.s.appointments {
		if excludeID != nil && a.ID == *excludeID {
			continue
		}
		if a.ServiceID != key.ServiceID || a.TimeSlot != key.TimeSlot || !sameDay(a.Date, key.Date) {
			continue
		}
		if !a.HoldsSlot() {
			continue
		}
		a := a
		holders = append(holders, &a)
	}
	return holders, nil
}

func (r *Appointments) FindByServiceAndDate(_ context.Context, serviceID int64, date time.Time) ([]*domain.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	result := make([]*domain.Appointment, 0)
	for _, a := range r.s.appointments {
		if a.ServiceID == serviceID && sameDay(a.Date, date) {
			a := a
			result = append(result, &a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].TimeSlot < result[j].TimeSlot })
	return result, nil
}

func (r *Appointments) List(_ context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	search := strings.ToLower(filter.Search)
	result := make([]*domain.Appointment, 0)
	for _, a := range r.s.appointments {
		if filter.CompanyID != nil && a.CompanyID != *filter.CompanyID {
			continue
		}
		if filter.CustomerID != nil && a.CustomerID != *filter.CustomerID {
			continue
		}
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}
		if filter.FromDate != nil && a.Date.Before(*filter.FromDate) {
			continue
		}
		if filter.ToDate != nil && a.Date.After(*filter.ToDate) {
			continue
		}
		if filter.CreatedFrom != nil && a.CreatedAt.Before(*filter.CreatedFrom) {
			continue
		}
		if filter.CreatedTo != nil && !a.CreatedAt.Before(*filter.CreatedTo) {
			continue
		}
		a := a
		r.fillDetails(&a)
		if search != "" &&
			!strings.Contains(strings.ToLower(a.CustomerName), search) &&
			!strings.Contains(strings.ToLower(a.ServiceName), search) {
			continue
		}
		result = append(result, &a)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.After(result[j].Date)
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *Appointments) UpdateStatus(_ context.Context, id int64, status domain.AppointmentStatus, rejectionReason string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.appointments[id]
	if !ok {
		return appointmentRepo.ErrAppointmentNotFound
	}
	if status.HoldsSlot() && !a.Status.HoldsSlot() && r.holderExists(a.ServiceID, a.Date, a.TimeSlot, id) {
		return appointmentRepo.ErrSlotConflict
	}
	a.Status = status
	a.RejectionReason = rejectionReason
	a.UpdatedAt = r.s.now()
	r.s.appointments[id] = a
	return nil
}

func (r *Appointments) Reschedule(_ context.Context, id int64, date time.Time, timeSlot types.TimeString, previousDate time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.appointments[id]
	if !ok {
		return appointmentRepo.ErrAppointmentNotFound
	}
	if r.holderExists(a.ServiceID, date, timeSlot, id) {
		return appointmentRepo.ErrSlotConflict
	}
	prev := previousDate
	a.Date = date
	a.TimeSlot = timeSlot
	a.RescheduledFrom = &prev
	a.Status = domain.StatusRescheduled
	a.UpdatedAt = r.s.now()
	r.s.appointments[id] = a
	return nil
}

func (r *Appointments) holderExists(serviceID int64, date time.Time, slot types.TimeString, excludeID int64) bool {
	for _, a := range r.s.appointments {
		if a.ID != excludeID && a.ServiceID == serviceID && a.TimeSlot == slot && sameDay(a.Date, date) && a.HoldsSlot() {
			return true
		}
	}
	return false
}

func (r *Appointments) fillDetails(a *domain.Appointment) {
	if svc, ok := r.s.services[a.ServiceID]; ok {
		a.ServiceName = svc.Name
		a.ServicePrice = svc.Price
		a.ServiceDuration = svc.DurationMinutes
	}
	if u, ok := r.s.users[a.CustomerID]; ok {
		a.CustomerName = u.Name
		a.CustomerEmail = u.Email
	}
}

// TxManager выполняет транзакции строго по очереди
type TxManager struct{ s *Store }

func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	m.s.txMu.Lock()
	defer m.s.txMu.Unlock()
	return fn(ctx)
}

func (m *TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.Do(ctx, fn)
}

func sameDay(a, b time.Time) bool {
	return a.Format(domain.DateFormat) == b.Format(domain.DateFormat)
}
