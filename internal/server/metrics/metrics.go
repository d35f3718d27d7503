// Package metrics собирает Prometheus метрики сервера и отдает их на /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// События аутентификации для RecordAuthEvent
const (
	EventRegister        = "register"
	EventLogin           = "login"
	EventLoginFailed     = "login_failed"
	EventRefresh         = "refresh"
	EventRefreshFailed   = "refresh_failed"
	EventResetRequested  = "password_reset_requested"
	EventPasswordReset   = "password_reset"
	EventPasswordChanged = "password_changed"
	EventLogout          = "logout"
)

const (
	metricNamespace = "globalconnect"
	// routeUnmatched метка route для запросов без подходящего маршрута
	routeUnmatched = "unmatched"
)

// Collector хранит метрики HTTP слоя, аутентификации и фоновой очистки
type Collector struct {
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	authEvents   *prometheus.CounterVec
	tokensPurged prometheus.Counter
}

// NewCollector создает Collector и регистрирует метрики в reg
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status code",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		authEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "auth_events_total",
			Help:      "Authentication events by kind",
		}, []string{"event"}),
		tokensPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "refresh_tokens_purged_total",
			Help:      "Expired refresh tokens removed by the cleanup job",
		}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.authEvents,
		c.tokensPurged,
	)

	return c
}

// RecordAuthEvent увеличивает счетчик события аутентификации
func (c *Collector) RecordAuthEvent(event string) {
	c.authEvents.WithLabelValues(event).Inc()
}

// RecordTokensPurged учитывает удаленные просроченные refresh токены
func (c *Collector) RecordTokensPurged(count int) {
	c.tokensPurged.Add(float64(count))
}

// RecordRequest учитывает обработанный HTTP запрос
func (c *Collector) RecordRequest(method, route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Middleware учитывает запросы по шаблону маршрута chi,
// чтобы path параметры не раздували кардинальность.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := routeUnmatched
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		c.RecordRequest(r.Method, route, rec.status, time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Handler возвращает HTTP handler для Prometheus scrape
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
