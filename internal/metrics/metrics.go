// Package metrics provides Prometheus metrics for the SellerLegend client.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the client.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RetriesTotal    *prometheus.CounterVec
	RefreshesTotal  *prometheus.CounterVec
	TokenValid      prometheus.Gauge

	registry *prometheus.Registry
}

// New creates and registers all metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sl_client_requests_total",
				Help: "Total API requests by method and outcome status.",
			},
			[]string{"method", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sl_client_request_duration_seconds",
				Help:    "API request duration by method.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		RetriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sl_client_retries_total",
				Help: "Retry attempts by method.",
			},
			[]string{"method"},
		),
		RefreshesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sl_client_token_refreshes_total",
				Help: "Token refresh attempts by result.",
			},
			[]string{"result"},
		),
		TokenValid: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "sl_client_token_valid",
				Help: "Whether the held access token is currently valid (1) or not (0).",
			},
		),
		registry: reg,
	}

	reg.MustRegister(m.RequestsTotal)
	reg.MustRegister(m.RequestDuration)
	reg.MustRegister(m.RetriesTotal)
	reg.MustRegister(m.RefreshesTotal)
	reg.MustRegister(m.TokenValid)

	return m
}

// Handler returns an http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest increments the request counter.
func (m *Metrics) RecordRequest(method, status string) {
	m.RequestsTotal.WithLabelValues(method, status).Inc()
}

// RecordRetry increments the retry counter.
func (m *Metrics) RecordRetry(method string) {
	m.RetriesTotal.WithLabelValues(method).Inc()
}

// RecordRefresh increments the token refresh counter.
func (m *Metrics) RecordRefresh(result string) {
	m.RefreshesTotal.WithLabelValues(result).Inc()
}

// ObserveDuration records request duration.
func (m *Metrics) ObserveDuration(method string, seconds float64) {
	m.RequestDuration.WithLabelValues(method).Observe(seconds)
}

// SetTokenValid sets the token validity gauge.
func (m *Metrics) SetTokenValid(valid bool) {
	if valid {
		m.TokenValid.Set(1)
	} else {
		m.TokenValid.Set(0)
	}
}
