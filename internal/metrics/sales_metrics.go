package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Результаты операций для метки result.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// SalesMetrics содержит метрики операций над продажами.
type SalesMetrics struct {
	operations        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	salesCreated      prometheus.Counter
	salesCancelled    prometheus.Counter
	itemsInSale       prometheus.Histogram
	idempotentReplays *prometheus.CounterVec
	productCache      *prometheus.CounterVec
	cleanupRuns       *prometheus.CounterVec
	cleanupDeleted    prometheus.Counter
}

// NewSalesMetrics регистрирует метрики в DefaultRegisterer.
func NewSalesMetrics() *SalesMetrics {
	return NewSalesMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewSalesMetricsWithRegisterer регистрирует метрики в переданном реестре.
// Повторная регистрация возвращает уже существующие коллекторы.
func NewSalesMetricsWithRegisterer(registerer prometheus.Registerer) *SalesMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &SalesMetrics{
		operations: register(registerer, "sales_operations_total", prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sales_operations_total",
			Help: "Total number of sale operations by result",
		}, []string{"operation", "result"})),
		operationDuration: register(registerer, "sales_operation_duration_seconds", prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sales_operation_duration_seconds",
			Help:    "Duration of sale operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		}, []string{"operation"})),
		salesCreated: register(registerer, "sales_created_total", prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sales_created_total",
			Help: "Total number of sales created",
		})),
		salesCancelled: register(registerer, "sales_cancelled_total", prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sales_cancelled_total",
			Help: "Total number of sales cancelled",
		})),
		itemsInSale: register(registerer, "sales_items_per_sale", prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sales_items_per_sale",
			Help:    "Number of distinct products in a sale after a mutation",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
		})),
		idempotentReplays: register(registerer, "sales_idempotent_replays_total", prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sales_idempotent_replays_total",
			Help: "Requests answered from the idempotency store",
		}, []string{"status"})),
		productCache: register(registerer, "sales_product_cache_requests_total", prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sales_product_cache_requests_total",
			Help: "Product catalog cache lookups by outcome",
		}, []string{"outcome"})),
		cleanupRuns: register(registerer, "sales_idempotency_cleanup_runs_total", prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sales_idempotency_cleanup_runs_total",
			Help: "Idempotency cleanup runs grouped by result",
		}, []string{"result"})),
		cleanupDeleted: register(registerer, "sales_idempotency_cleanup_deleted_total", prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sales_idempotency_cleanup_deleted_total",
			Help: "Expired idempotency records deleted by the cleanup worker",
		})),
	}
}

func register[T prometheus.Collector](registerer prometheus.Registerer, name string, collector T) T {
	if err := registerer.Register(collector); err != nil {
		var alreadyRegistered prometheus.AlreadyRegisteredError
		if errors.As(err, &alreadyRegistered) {
			existing, ok := alreadyRegistered.ExistingCollector.(T)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", name))
			}
			return existing
		}
		panic(fmt.Sprintf("register collector %q: %v", name, err))
	}
	return collector
}

// ObserveOperation записывает результат и длительность операции.
func (m *SalesMetrics) ObserveOperation(operation, result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, result).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordSaleCreated учитывает новую продажу и количество позиций в ней.
func (m *SalesMetrics) RecordSaleCreated(items int) {
	if m == nil {
		return
	}
	m.salesCreated.Inc()
	m.itemsInSale.Observe(float64(items))
}

// RecordSaleModified учитывает количество позиций после изменения.
func (m *SalesMetrics) RecordSaleModified(items int) {
	if m == nil {
		return
	}
	m.itemsInSale.Observe(float64(items))
}

// RecordSaleCancelled увеличивает счётчик отменённых продаж.
func (m *SalesMetrics) RecordSaleCancelled() {
	if m == nil {
		return
	}
	m.salesCancelled.Inc()
}

// RecordIdempotentReplay учитывает ответ, выданный из хранилища идемпотентности.
func (m *SalesMetrics) RecordIdempotentReplay(status string) {
	if m == nil {
		return
	}
	m.idempotentReplays.WithLabelValues(status).Inc()
}

// RecordProductCache учитывает обращение к кэшу каталога: hit, miss или error.
func (m *SalesMetrics) RecordProductCache(outcome string) {
	if m == nil {
		return
	}
	m.productCache.WithLabelValues(outcome).Inc()
}

// RecordIdempotencyCleanup учитывает прогон очистки и число удалённых записей.
func (m *SalesMetrics) RecordIdempotencyCleanup(result string, deleted int) {
	if m == nil {
		return
	}
	m.cleanupRuns.WithLabelValues(result).Inc()
	if deleted > 0 {
		m.cleanupDeleted.Add(float64(deleted))
	}
}
