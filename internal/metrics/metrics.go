// Package metrics содержит метрики Prometheus сервиса.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics содержит реестр и метрики HTTP-запросов и задолженности.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	outstandingAmount   *prometheus.GaugeVec
	outstandingInvoices *prometheus.GaugeVec
	statusDrift         prometheus.Gauge
	reconcileRuns       *prometheus.CounterVec
}

// New создаёт реестр и регистрирует метрики.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "piutang_http_requests_total",
		Help: "Number of HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "piutang_http_request_duration_seconds",
		Help:    "HTTP request duration by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	amount := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "piutang_outstanding_amount",
		Help: "Outstanding receivables in rupiah by collectibility quality.",
	}, []string{"quality"})
	invoices := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "piutang_outstanding_invoices",
		Help: "Outstanding invoices by collectibility quality.",
	}, []string{"quality"})
	drift := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "piutang_status_drift_invoices",
		Help: "Invoices whose stored payment status disagrees with their payments.",
	})
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "piutang_reconcile_runs_total",
		Help: "Status reconciliation runs by result.",
	}, []string{"result"})

	registry.MustRegister(requests, duration, amount, invoices, drift, runs)

	return &Metrics{
		registry:            registry,
		handler:             promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:       requests,
		requestDuration:     duration,
		outstandingAmount:   amount,
		outstandingInvoices: invoices,
		statusDrift:         drift,
		reconcileRuns:       runs,
	}
}

// Handler возвращает обработчик эндпоинта /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware учитывает количество и длительность HTTP-запросов по шаблону маршрута.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// SetOutstanding выставляет сумму и количество неоплаченных счетов для категории качества.
func (m *Metrics) SetOutstanding(quality string, count int, amount int64) {
	if m == nil {
		return
	}
	m.outstandingInvoices.WithLabelValues(quality).Set(float64(count))
	m.outstandingAmount.WithLabelValues(quality).Set(float64(amount))
}

// SetStatusDrift выставляет количество счетов с расхождением статуса.
func (m *Metrics) SetStatusDrift(n int) {
	if m == nil {
		return
	}
	m.statusDrift.Set(float64(n))
}

// ReconcileDone учитывает завершённый проход сверки.
func (m *Metrics) ReconcileDone(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.reconcileRuns.WithLabelValues(result).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
