// Package metrics exposes Prometheus counters for the calculation engine and
// the settlement lifecycle.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CalculationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "conto_calculations_total",
		Help: "Completed split calculations by strategy.",
	}, []string{"split_type"})

	ValidationFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "conto_validation_failures_total",
		Help: "Calculation requests rejected by validation.",
	})

	SplitsCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "conto_splits_created_total",
		Help: "Settlement splits created by strategy.",
	}, []string{"split_type"})

	DepositsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "conto_deposits_total",
		Help: "Deposits accepted into settlement splits.",
	})

	DepositedCentsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "conto_deposited_cents_total",
		Help: "Total cents collected across all splits.",
	})

	SplitsReleasedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "conto_splits_released_total",
		Help: "Splits whose funds were released to the creator.",
	})

	SplitsExportedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "conto_splits_exported_total",
		Help: "Released splits exported to the spreadsheet.",
	})
)

// Handler returns the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
