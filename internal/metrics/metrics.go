// Package metrics collects Prometheus metrics for credential lifecycle and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcomes recorded for authentication operations.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Collector is the Prometheus-backed metrics implementation.
type Collector struct {
	login      *prometheus.CounterVec
	refresh    *prometheus.CounterVec
	gate       *prometheus.CounterVec
	httpStatus *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		login: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "videotube_auth_login_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
		refresh: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "videotube_auth_refresh_total",
			Help: "Refresh token rotations by outcome",
		}, []string{"outcome"}),
		gate: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "videotube_auth_gate_total",
			Help: "Access token checks on protected routes by outcome",
		}, []string{"outcome"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "videotube_http_status_total",
			Help: "HTTP responses by status code",
		}, []string{"status_code"}),
	}

	reg.MustRegister(c.login, c.refresh, c.gate, c.httpStatus)

	return c
}

// RecordLogin records a login attempt.
func (c *Collector) RecordLogin(outcome string) {
	c.login.WithLabelValues(outcome).Inc()
}

// RecordRefresh records a refresh attempt.
func (c *Collector) RecordRefresh(outcome string) {
	c.refresh.WithLabelValues(outcome).Inc()
}

// RecordGate records an access check.
func (c *Collector) RecordGate(outcome string) {
	c.gate.WithLabelValues(outcome).Inc()
}

// RecordHTTPStatus records the status code of a response.
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler returns the HTTP handler for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Outcome maps an operation error to its outcome label.
func Outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}
