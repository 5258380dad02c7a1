package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP request handling in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	AnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "resume_analysis_duration_seconds",
			Help:    "Duration of a full resume analysis in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
	)

	AnalysisOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_analysis_total",
			Help: "Total number of resume analyses by outcome",
		},
		[]string{"outcome"},
	)

	MatchScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "resume_match_score",
			Help:    "Distribution of resume to job match scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	FeedbackOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_feedback_total",
			Help: "Total number of LLM feedback requests by outcome",
		},
		[]string{"outcome"},
	)
)

// ObserveFeedback is shaped for ai.Feedback.WithObserver.
func ObserveFeedback(outcome string) {
	FeedbackOutcomes.WithLabelValues(outcome).Inc()
}
