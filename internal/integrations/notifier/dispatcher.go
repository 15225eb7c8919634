package notifier

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

const (
	resultSent   = "sent"
	resultFailed = "failed"

	defaultSendTimeout = 10 * time.Second
)

// Dispatcher асинхронно рассылает уведомления по всем каналам.
// Notify никогда не блокирует вызывающего: при переполненной очереди уведомление отбрасывается.
// Доставка не более одного раза, без повторов и без упорядочивания.
type Dispatcher struct {
	senders []Sender
	queue   chan domain.Notification
	workers int
	timeout time.Duration
	logger  Logger
	metrics Metrics

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher создает диспетчер с очередью queueSize и workers обработчиками
func NewDispatcher(senders []Sender, workers, queueSize int, logger Logger, metrics Metrics) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &Dispatcher{
		senders: senders,
		queue:   make(chan domain.Notification, queueSize),
		workers: workers,
		timeout: defaultSendTimeout,
		logger:  logger,
		metrics: metrics,
	}
}

// Start запускает обработчики очереди
func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.run()
	}
	d.logger.Info("Notifier started: workers=%d, channels=%d", d.workers, len(d.senders))
}

// Notify ставит уведомление в очередь, не дожидаясь отправки
func (d *Dispatcher) Notify(n domain.Notification) {
	if n.OccurredAt.IsZero() {
		n.OccurredAt = time.Now()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.Warn("Notifier: dropped %s for appointment=%d, dispatcher stopped", n.Kind, n.AppointmentID)
		d.observeDropped(n.Kind)
		return
	}

	select {
	case d.queue <- n:
	default:
		d.logger.Warn("Notifier: dropped %s for appointment=%d, queue is full", n.Kind, n.AppointmentID)
		d.observeDropped(n.Kind)
	}
}

// Stop закрывает очередь и ждет, пока обработчики разошлют уже принятые уведомления
func (d *Dispatcher) Stop(ctx context.Context) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("Notifier stopped")
	case <-ctx.Done():
		d.logger.Warn("Notifier: stop timed out, pending notifications abandoned")
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for n := range d.queue {
		d.deliver(n)
	}
}

func (d *Dispatcher) deliver(n domain.Notification) {
	for _, s := range d.senders {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		err := d.safeSend(ctx, s, n)
		cancel()

		if err != nil {
			d.logger.Error("Notifier: %s failed for %s appointment=%d: %v", s.Name(), n.Kind, n.AppointmentID, err)
			d.observe(n.Kind, resultFailed)
			continue
		}
		d.observe(n.Kind, resultSent)
	}
}

// safeSend не дает панике в канале остановить обработчик
func (d *Dispatcher) safeSend(ctx context.Context, s Sender, n domain.Notification) (err error) {
	defer func() {
		if p := recover(); p != nil {
			d.logger.Error("Notifier: %s panicked: %v", s.Name(), p)
			err = fmt.Errorf("%w: %s: %v", ErrSenderPanic, s.Name(), p)
		}
	}()
	return s.Send(ctx, n)
}

func (d *Dispatcher) observe(kind domain.NotificationKind, result string) {
	if d.metrics != nil {
		d.metrics.ObserveNotification(string(kind), result)
	}
}

func (d *Dispatcher) observeDropped(kind domain.NotificationKind) {
	if d.metrics != nil {
		d.metrics.ObserveNotificationDropped(string(kind))
	}
}
