// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	RankingCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ranking_candidates",
			Help:    "Number of applications considered per ranking request",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	RankingMalformedTags = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ranking_malformed_tags_total",
			Help: "Tag entries skipped because they were neither a string nor a tag object",
		},
	)

	PreferenceCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "preference_cache_lookups_total",
			Help: "Investor preference cache lookups by result",
		},
		[]string{"result"},
	)
)
