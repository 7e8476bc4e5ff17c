// Package metrics exposes Prometheus counters for the web app.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	LoginSuccess   = "success"
	LoginInvalid   = "invalid"
	LoginInactive  = "inactive"
	LoginThrottled = "throttled"

	ProfileSaved    = "saved"
	ProfileWaiting  = "waiting"
	ProfileRejected = "rejected"
)

type Collector struct {
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	registrations  prometheus.Counter
	logins         *prometheus.CounterVec
	profileUpdates *prometheus.CounterVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "donorlink_http_requests_total",
			Help: "HTTP requests by method and status code.",
		}, []string{"method", "status_code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "donorlink_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "donorlink_registrations_total",
			Help: "Accounts created through the registration form.",
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "donorlink_logins_total",
			Help: "Login attempts by result.",
		}, []string{"result"}),
		profileUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "donorlink_profile_saves_total",
			Help: "Profile completion and update attempts by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.registrations,
		c.logins,
		c.profileUpdates,
	)

	return c
}

func (c *Collector) ObserveHTTPRequest(method string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
	c.httpDuration.WithLabelValues(method).Observe(duration.Seconds())
}

func (c *Collector) RecordRegistration() {
	c.registrations.Inc()
}

func (c *Collector) RecordLogin(result string) {
	c.logins.WithLabelValues(result).Inc()
}

// RecordProfileSave counts a completion or update by outcome: saved, waiting
// (inside the cooldown window) or rejected (field validation).
func (c *Collector) RecordProfileSave(outcome string) {
	c.profileUpdates.WithLabelValues(outcome).Inc()
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
