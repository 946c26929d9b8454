package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const jobLabel = "job"

// CronJobMetrics tracks execution outcomes for scheduled jobs. A zero value
// (or one built with a nil registerer) is a safe no-op.
type CronJobMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewCronJobMetrics registers the job instruments on reg. Passing a nil
// registerer disables collection without changing any call sites.
func NewCronJobMetrics(reg prometheus.Registerer) *CronJobMetrics {
	if reg == nil {
		return &CronJobMetrics{}
	}

	m := &CronJobMetrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "job_duration_seconds",
			Help:    "Duration of cron jobs in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{jobLabel}),
		success: newJobCounter("job_success", "Successful cron job executions."),
		failure: newJobCounter("job_failure", "Failed cron job executions."),
	}
	reg.MustRegister(m.duration, m.success, m.failure)
	return m
}

func newJobCounter(name, help string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: name,
		Help: help,
	}, []string{jobLabel})
}

// ObserveDuration records how long the named job ran.
func (c *CronJobMetrics) ObserveDuration(job string, elapsed time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(jobName(job)).Observe(elapsed.Seconds())
}

// IncSuccess counts one successful run of the named job.
func (c *CronJobMetrics) IncSuccess(job string) {
	if c == nil || c.success == nil {
		return
	}
	c.success.WithLabelValues(jobName(job)).Inc()
}

// IncFailure counts one failed run of the named job.
func (c *CronJobMetrics) IncFailure(job string) {
	if c == nil || c.failure == nil {
		return
	}
	c.failure.WithLabelValues(jobName(job)).Inc()
}

func jobName(job string) string {
	if job == "" {
		return "unknown"
	}
	return job
}
