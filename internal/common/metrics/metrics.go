// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PreviewsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "automation_previews_total",
			Help: "Test executions by outcome (ok, gaps, refused, error)",
		},
		[]string{"result"},
	)

	DispatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "automation_dispatches_total",
			Help: "Real dispatch attempts by channel and outcome",
		},
		[]string{"channel", "result"},
	)

	RenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "automation_render_duration_seconds",
			Help:    "Time spent resolving and rendering a single message",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
		[]string{"mode"},
	)

	EntityFetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "automation_entity_fetch_failures_total",
			Help: "Entity list fetches that failed, by entity kind",
		},
		[]string{"kind"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)
