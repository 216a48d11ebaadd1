package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Detection outcomes
const (
	OutcomeNoText     = "no_text"
	OutcomeSuppressed = "suppressed"
	OutcomeNoMatch    = "no_match"
	OutcomeDetected   = "detected"
	OutcomeError      = "error"
)

// Detection and recognizer Prometheus metrics.
var (
	DetectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clipsentinel",
			Name:      "detections_total",
			Help:      "Total number of detect calls by outcome",
		},
		[]string{"outcome"},
	)

	DetectionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "clipsentinel",
			Name:      "detection_duration_seconds",
			Help:      "Duration of detect calls in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"outcome"},
	)

	RecognitionQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clipsentinel",
			Name:      "recognition_queries_total",
			Help:      "Total number of recognizer queries by stage and status",
		},
		[]string{"stage", "status"},
	)
)

func init() {
	prometheus.MustRegister(DetectionsTotal)
	prometheus.MustRegister(DetectionDuration)
	prometheus.MustRegister(RecognitionQueriesTotal)
}

// ObserveDetection records the outcome and duration of one detect call
func ObserveDetection(outcome string, started time.Time) {
	DetectionsTotal.WithLabelValues(outcome).Inc()
	DetectionDuration.WithLabelValues(outcome).Observe(time.Since(started).Seconds())
}

// ObserveQuery records one recognizer query
func ObserveQuery(stage string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	RecognitionQueriesTotal.WithLabelValues(stage, status).Inc()
}
