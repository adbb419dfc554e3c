// Package metrics объявляет метрики Prometheus сервиса подписок.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Результаты операций для метки result.
const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultError    = "error"
)

var (
	// HTTPRequests считает HTTP-запросы по шаблону маршрута, методу и коду ответа.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	// HTTPDuration — длительность HTTP-запросов.
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	// AuthRejections считает отклонённые запросы без валидного токена.
	AuthRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_rejections_total",
			Help: "Total number of unauthorized requests",
		},
		[]string{"reason"},
	)
	// SubscriptionOps считает активации и отмены подписок по результату.
	SubscriptionOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscription_operations_total",
			Help: "Subscription activations and cancellations by result",
		},
		[]string{"operation", "result"},
	)
	// StoreFailures считает ошибки хранилища документов по операции.
	StoreFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_failures_total",
			Help: "Document store failures by operation",
		},
		[]string{"operation"},
	)
	// NoticesPublished считает опубликованные уведомления об истечении подписки.
	NoticesPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "expiry_notices_total",
			Help: "Expiry notices by result",
		},
		[]string{"result"},
	)
)

var once sync.Once

// Register регистрирует метрики в реестре по умолчанию. Повторные вызовы ничего не делают.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			HTTPRequests,
			HTTPDuration,
			AuthRejections,
			SubscriptionOps,
			StoreFailures,
			NoticesPublished,
		)
	})
}
