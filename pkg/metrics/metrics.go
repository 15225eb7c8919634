package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор Prometheus метрик сервиса
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueryDuration    *prometheus.HistogramVec
	DBQueryErrorsTotal *prometheus.CounterVec
	DBOpenConnections  *prometheus.GaugeVec
	DBInUseConnections *prometheus.GaugeVec
	DBIdleConnections  *prometheus.GaugeVec
	DBWaitCount        *prometheus.GaugeVec

	BookingOutcomesTotal   *prometheus.CounterVec
	NotificationsTotal     *prometheus.CounterVec
	NotificationsDropped   *prometheus.CounterVec
	SlotLockAcquireFailure *prometheus.CounterVec
}

// New регистрирует метрики в глобальном реестре Prometheus
func New(serviceName string) *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer, serviceName)
}

// NewWithRegisterer регистрирует метрики в переданном реестре
func NewWithRegisterer(reg prometheus.Registerer, serviceName string) *Metrics {
	f := promauto.With(reg)
	constLabels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),

		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),

		DBQueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration in seconds",
			ConstLabels: constLabels,
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),

		DBQueryErrorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_query_errors_total",
			Help:        "Total number of failed database queries",
			ConstLabels: constLabels,
		}, []string{"operation"}),

		DBOpenConnections: f.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Number of established connections",
			ConstLabels: constLabels,
		}, []string{"db"}),

		DBInUseConnections: f.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Number of connections currently in use",
			ConstLabels: constLabels,
		}, []string{"db"}),

		DBIdleConnections: f.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Number of idle connections",
			ConstLabels: constLabels,
		}, []string{"db"}),

		DBWaitCount: f.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_wait_count",
			Help:        "Total number of connections waited for",
			ConstLabels: constLabels,
		}, []string{"db"}),

		BookingOutcomesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "booking_outcomes_total",
			Help:        "Booking lifecycle operations by outcome",
			ConstLabels: constLabels,
		}, []string{"operation", "outcome"}),

		NotificationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "notifications_total",
			Help:        "Notifications processed by kind and result",
			ConstLabels: constLabels,
		}, []string{"kind", "result"}),

		NotificationsDropped: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "notifications_dropped_total",
			Help:        "Notifications dropped because the queue was full",
			ConstLabels: constLabels,
		}, []string{"kind"}),

		SlotLockAcquireFailure: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "slot_lock_acquire_failures_total",
			Help:        "Failed attempts to acquire a booking slot lock",
			ConstLabels: constLabels,
		}, []string{"reason"}),
	}
}

// ObserveBooking увеличивает счетчик результатов операций бронирования
func (m *Metrics) ObserveBooking(operation, outcome string) {
	if m == nil {
		return
	}
	m.BookingOutcomesTotal.WithLabelValues(operation, outcome).Inc()
}

// ObserveNotification учитывает обработанное уведомление
func (m *Metrics) ObserveNotification(kind, result string) {
	if m == nil {
		return
	}
	m.NotificationsTotal.WithLabelValues(kind, result).Inc()
}

// ObserveNotificationDropped учитывает отброшенное уведомление
func (m *Metrics) ObserveNotificationDropped(kind string) {
	if m == nil {
		return
	}
	m.NotificationsDropped.WithLabelValues(kind).Inc()
}

// ObserveSlotLockFailure учитывает неудачную попытку взять блокировку слота
func (m *Metrics) ObserveSlotLockFailure(reason string) {
	if m == nil {
		return
	}
	m.SlotLockAcquireFailure.WithLabelValues(reason).Inc()
}
