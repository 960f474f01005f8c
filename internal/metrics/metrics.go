package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LookupsTotal counts enrichment lookups by kind (product, photo) and outcome (success, fallback).
	LookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meeteo_enrichment_lookups_total",
			Help: "Total number of enrichment lookups by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "meeteo_pipeline_stage_duration_seconds",
			Help:    "Duration of recommendation pipeline stages in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	StageFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meeteo_pipeline_stage_failures_total",
			Help: "Total number of recommendation pipeline stage failures",
		},
		[]string{"stage"},
	)

	AnalysisJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meeteo_analysis_jobs_total",
			Help: "Total number of outfit analysis jobs by terminal status",
		},
		[]string{"status"},
	)

	AnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "meeteo_analysis_duration_seconds",
			Help:    "Duration of outfit analysis jobs in seconds",
			Buckets: []float64{1, 2.5, 5, 10, 20, 40, 80},
		},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meeteo_http_requests_total",
			Help: "Total number of HTTP requests by route pattern and status",
		},
		[]string{"method", "route", "status"},
	)
)
