package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Submission metrics
	backtestSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_builder_backtest_submissions_total",
			Help: "Total number of backtest submissions",
		},
		[]string{"bot_type", "status"},
	)

	strategySaves = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_builder_strategy_saves_total",
			Help: "Total number of strategy save requests",
		},
		[]string{"bot_type", "status"},
	)

	// Validation metrics
	validationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_builder_validation_failures_total",
			Help: "Total number of submission validations that reported violations",
		},
		[]string{"bot_type"},
	)

	// Collaborator metrics
	catalogFetchFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_builder_catalog_fetch_failures_total",
			Help: "Total number of catalog fetches that fell back to builtins",
		},
		[]string{"catalog"},
	)

	sessionDrafts = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bot_builder_active_drafts",
			Help: "Drafts currently owned by editing sessions",
		},
		[]string{"bot_type"},
	)
)

func init() {
	prometheus.MustRegister(backtestSubmissions)
	prometheus.MustRegister(strategySaves)
	prometheus.MustRegister(validationFailures)
	prometheus.MustRegister(catalogFetchFailures)
	prometheus.MustRegister(sessionDrafts)
}

// RecordBacktestSubmission records one submission attempt and its
// outcome ("ok", "rejected", "failed", "cancelled").
func RecordBacktestSubmission(botType, status string) {
	backtestSubmissions.WithLabelValues(botType, status).Inc()
}

// RecordStrategySave records one persistence attempt and its outcome.
func RecordStrategySave(botType, status string) {
	strategySaves.WithLabelValues(botType, status).Inc()
}

// RecordValidationFailure records a submission validation that reported
// at least one violation.
func RecordValidationFailure(botType string) {
	validationFailures.WithLabelValues(botType).Inc()
}

// RecordCatalogFallback records a catalog fetch that fell back to the
// built-in catalog ("indicators" or "presets").
func RecordCatalogFallback(catalog string) {
	catalogFetchFailures.WithLabelValues(catalog).Inc()
}

// SetActiveDrafts sets the active draft gauge for a bot type.
func SetActiveDrafts(botType string, n float64) {
	sessionDrafts.WithLabelValues(botType).Set(n)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
