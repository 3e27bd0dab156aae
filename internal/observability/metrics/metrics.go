// Package metrics defines the Prometheus instruments exposed on /metrics.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/target/tasker/internal/domain/model"
)

// Metrics holds every instrument the service registers. A single struct
// keeps registration in one place and lets tests use their own registry.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	TasksSubmittedTotal *prometheus.CounterVec
	TasksCompletedTotal *prometheus.CounterVec
	TaskDuration        *prometheus.HistogramVec
}

// PendingCounter reports the number of tasks currently pending; the gauge
// reads it on every scrape.
type PendingCounter interface {
	CountByStatus(ctx context.Context, status model.TaskStatus) (int64, error)
}

// NewMetrics creates and registers the instrument set on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tasker_http_requests_total",
			Help: "HTTP requests served, by method, endpoint and status code.",
		}, []string{"method", "endpoint", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tasker_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method", "endpoint"}),
		TasksSubmittedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tasker_tasks_submitted_total",
			Help: "Tasks accepted for execution, by task name.",
		}, []string{"task_name"}),
		TasksCompletedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tasker_tasks_completed_total",
			Help: "Task executions reaching a terminal state, by task name and outcome.",
		}, []string{"task_name", "status"}),
		TaskDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tasker_task_duration_seconds",
			Help:    "Task execution time in seconds, from start to terminal state.",
			Buckets: []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60, 120},
		}, []string{"task_name"}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.TasksSubmittedTotal,
		m.TasksCompletedTotal,
		m.TaskDuration,
	)
	return m
}

// RegisterPendingGauge registers a gauge that queries the store on scrape.
// Registered separately because the store does not exist yet when the
// instrument set is built in tests.
func (m *Metrics) RegisterPendingGauge(reg prometheus.Registerer, counter PendingCounter) {
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "tasker_tasks_pending",
		Help: "Tasks currently waiting for a worker.",
	}, func() float64 {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		n, err := counter.CountByStatus(ctx, model.TaskStatusPending)
		if err != nil {
			return 0
		}
		return float64(n)
	}))
}

// ObserveSubmission records an accepted submission.
func (m *Metrics) ObserveSubmission(taskName string) {
	m.TasksSubmittedTotal.WithLabelValues(taskName).Inc()
}

// ObserveCompletion records a terminal transition with its duration.
func (m *Metrics) ObserveCompletion(taskName string, status model.TaskStatus, d time.Duration) {
	m.TasksCompletedTotal.WithLabelValues(taskName, string(status)).Inc()
	m.TaskDuration.WithLabelValues(taskName).Observe(d.Seconds())
}
