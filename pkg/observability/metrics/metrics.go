package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	assessmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cvdrisk_assessments_total",
		Help: "Completed risk assessments by strategy, band set and risk level.",
	}, []string{"strategy", "band_set", "level"})

	assessmentFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cvdrisk_assessment_failures_total",
		Help: "Rejected or failed risk assessments by error kind.",
	}, []string{"strategy", "kind"})

	assessmentDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cvdrisk_assessment_duration_seconds",
		Help:    "Time spent evaluating one profile.",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8), // 10us to ~160ms
	}, []string{"strategy"})

	artifactReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cvdrisk_artifact_reloads_total",
		Help: "Classifier artifact reload attempts by result.",
	}, []string{"result"})
)

func ObserveAssessment(strategy, bandSet, level string, elapsed time.Duration) {
	assessmentsTotal.WithLabelValues(strategy, bandSet, level).Inc()
	assessmentDuration.WithLabelValues(strategy).Observe(elapsed.Seconds())
}

func ObserveFailure(strategy, kind string) {
	assessmentFailures.WithLabelValues(strategy, kind).Inc()
}

// ObserveReload records "loaded", "unchanged" or "failed".
func ObserveReload(result string) {
	artifactReloads.WithLabelValues(result).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}
