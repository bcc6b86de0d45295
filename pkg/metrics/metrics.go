// Package metrics holds the Prometheus instruments shared across the API.
// All collectors are registered with the default registry, so mounting
// promhttp.Handler is enough to expose them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Result label values.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

var (
	UploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "site_uploads_total",
			Help: "Uploaded files by slot and outcome.",
		}, []string{"slot", "result"})

	MailSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "site_mail_sent_total",
			Help: "Outbound mail by template kind and outcome.",
		}, []string{"kind", "result"})

	LoginAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "site_login_attempts_total",
			Help: "Admin login attempts by outcome.",
		}, []string{"result"})

	RateLimitedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "site_rate_limited_total",
			Help: "Requests rejected by the rate limiter, by route group.",
		}, []string{"group"})

	FileCleanupFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "site_file_cleanup_failures_total",
			Help: "Uploaded files that could not be removed after a record change.",
		})
)

func init() {
	prometheus.MustRegister(
		UploadsTotal,
		MailSentTotal,
		LoginAttemptsTotal,
		RateLimitedTotal,
		FileCleanupFailuresTotal,
	)
}
