package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveBooking(t *testing.T) {
	m := NewWithRegisterer(prometheus.NewRegistry(), "appointments")

	m.ObserveBooking("create", "ok")
	m.ObserveBooking("create", "ok")
	m.ObserveBooking("create", "conflict")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.BookingOutcomesTotal.WithLabelValues("create", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingOutcomesTotal.WithLabelValues("create", "conflict")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveBooking("create", "ok")
		m.ObserveNotification("booking-created", "sent")
		m.ObserveNotificationDropped("booking-created")
		m.ObserveSlotLockFailure("busy")
	})
}
