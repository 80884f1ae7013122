package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_RecordsRoutePattern(t *testing.T) {
	m := New()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/invoices/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/invoices/42", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("/api/invoices/{id}", "404")))
}

func TestDomainGauges(t *testing.T) {
	m := New()

	m.SetOutstanding("CURRENT", 3, 4_500_000)
	m.SetStatusDrift(2)
	m.ReconcileDone(nil)
	m.ReconcileDone(errors.New("db down"))

	assert.Equal(t, 3.0, testutil.ToFloat64(m.outstandingInvoices.WithLabelValues("CURRENT")))
	assert.Equal(t, 4_500_000.0, testutil.ToFloat64(m.outstandingAmount.WithLabelValues("CURRENT")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.statusDrift))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reconcileRuns.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reconcileRuns.WithLabelValues("error")))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	m := New()
	m.SetStatusDrift(1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "piutang_status_drift_invoices 1"))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	m.SetOutstanding("CURRENT", 1, 1)
	m.SetStatusDrift(1)
	m.ReconcileDone(nil)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })
	rec := httptest.NewRecorder()
	m.Middleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	rec = httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
