package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	Submissions      = prometheus.NewCounter(prometheus.CounterOpts{Name: "searchwait_submissions_total", Help: "Jobs submitted to the remote service"})
	SubmitFailures   = prometheus.NewCounter(prometheus.CounterOpts{Name: "searchwait_submit_failures_total", Help: "Submissions rejected or failed before a handle was issued"})
	PollAttempts     = prometheus.NewCounter(prometheus.CounterOpts{Name: "searchwait_poll_attempts_total", Help: "Status requests issued"})
	PollSoftFailures = prometheus.NewCounter(prometheus.CounterOpts{Name: "searchwait_poll_soft_failures_total", Help: "Poll attempts skipped due to transport errors or unparseable bodies"})
	JobsCompleted    = prometheus.NewCounter(prometheus.CounterOpts{Name: "searchwait_jobs_completed_total", Help: "Jobs that reached the completed state"})
	JobsFailed       = prometheus.NewCounter(prometheus.CounterOpts{Name: "searchwait_jobs_failed_total", Help: "Jobs the service reported as failed"})
	PollTimeouts     = prometheus.NewCounter(prometheus.CounterOpts{Name: "searchwait_poll_timeouts_total", Help: "Poll loops that exhausted the attempt budget"})
)

// Handler exposes the /metrics HTTP handler with a singleton registry.
func Handler() http.Handler {
	once.Do(func() {
		prometheus.MustRegister(
			Submissions,
			SubmitFailures,
			PollAttempts,
			PollSoftFailures,
			JobsCompleted,
			JobsFailed,
			PollTimeouts,
		)
	})
	return promhttp.Handler()
}
