package usecasetest

import (
	"sync"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Notifier запоминает отправленные уведомления
type Notifier struct {
	mu   sync.Mutex
	sent []domain.Notification
}

func (n *Notifier) Notify(notification domain.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification)
}

// Sent возвращает копию отправленных уведомлений
func (n *Notifier) Sent() []domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.Notification(nil), n.sent...)
}

// Metrics считает исходы операций по ключу "operation/outcome"
type Metrics struct {
	mu           sync.Mutex
	Outcomes     map[string]int
	LockFailures map[string]int
}

func NewMetrics() *Metrics {
	return &Metrics{Outcomes: make(map[string]int), LockFailures: make(map[string]int)}
}

func (m *Metrics) ObserveBooking(operation, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Outcomes[operation+"/"+outcome]++
}

func (m *Metrics) ObserveSlotLockFailure(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LockFailures[reason]++
}

// Count возвращает число исходов operation/outcome
func (m *Metrics) Count(operation, outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Outcomes[operation+"/"+outcome]
}
