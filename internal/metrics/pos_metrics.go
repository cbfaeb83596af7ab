package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Исходы команды для метки outcome.
const (
	OutcomeOK = "ok"
)

// PosMetrics содержит метрики кассового ядра.
type PosMetrics struct {
	// Счётчики и длительность команд
	commandsTotal   *prometheus.CounterVec
	commandDuration *prometheus.HistogramVec

	// Ожидание эксклюзивного доступа к базе
	storeLockWait prometheus.Histogram

	// Продажи
	ordersCreated prometheus.Counter
	orderRevenue  *prometheus.CounterVec
	orderItems    prometheus.Histogram

	databaseResets  prometheus.Counter
	eventsPublished *prometheus.CounterVec
}

// NewPosMetrics регистрирует метрики в prometheus.DefaultRegisterer.
func NewPosMetrics() *PosMetrics {
	return NewPosMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewPosMetricsWithRegisterer регистрирует метрики в переданном реестре.
// Повторная регистрация возвращает уже существующие коллекторы.
func NewPosMetricsWithRegisterer(registerer prometheus.Registerer) *PosMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &PosMetrics{
		commandsTotal: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "pos_commands_total",
			Help: "Total number of commands handled, by command and outcome",
		}, []string{"command", "outcome"}),
		commandDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "pos_command_duration_seconds",
			Help:    "Duration of command handling in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}, []string{"command"}),
		storeLockWait: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "pos_store_lock_wait_seconds",
			Help:    "Time spent waiting for exclusive access to the database",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		}),
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "pos_orders_created_total",
			Help: "Total number of orders created",
		}),
		orderRevenue: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "pos_order_revenue_cents_total",
			Help: "Total revenue of created orders in cents, by payment method",
		}, []string{"payment_method"}),
		orderItems: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "pos_order_items",
			Help:    "Number of line items per created order",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
		}),
		databaseResets: registerCounter(registerer, prometheus.CounterOpts{
			Name: "pos_database_resets_total",
			Help: "Total number of database resets",
		}),
		eventsPublished: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "pos_events_published_total",
			Help: "Total number of domain events handed to the broker, by event and result",
		}, []string{"event", "result"}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordCommand фиксирует исход и длительность команды.
// outcome: OutcomeOK или вид ошибки (not_found, conflict, ...).
func (m *PosMetrics) RecordCommand(command, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	if outcome == "" {
		outcome = OutcomeOK
	}
	m.commandsTotal.WithLabelValues(command, outcome).Inc()
	m.commandDuration.WithLabelValues(command).Observe(duration.Seconds())
}

// RecordLockWait записывает время ожидания блокировки хранилища.
func (m *PosMetrics) RecordLockWait(wait time.Duration) {
	if m == nil {
		return
	}
	m.storeLockWait.Observe(wait.Seconds())
}

// RecordOrderCreated учитывает созданный заказ: количество, выручку и число позиций.
func (m *PosMetrics) RecordOrderCreated(paymentMethod string, totalCents int64, items int) {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
	if totalCents > 0 {
		m.orderRevenue.WithLabelValues(paymentMethod).Add(float64(totalCents))
	}
	m.orderItems.Observe(float64(items))
}

// RecordDatabaseReset увеличивает счётчик сбросов базы.
func (m *PosMetrics) RecordDatabaseReset() {
	if m == nil {
		return
	}
	m.databaseResets.Inc()
}

// RecordEventPublished учитывает попытку публикации события.
func (m *PosMetrics) RecordEventPublished(event string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.eventsPublished.WithLabelValues(event, result).Inc()
}
