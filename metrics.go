// FILE: metrics.go
// Package main – Prometheus metrics for observability.
//
// Exposes:
//   • promocast_decisions_total{recommendation}          – promote | do not promote
//   • promocast_forecast_units{scenario}                 – last weather-adjusted forecast
//   • promocast_weather_modifier                         – last applied multiplier
//   • promocast_weather_fallbacks_total                  – weather reads that fell back
//   • promocast_training_runs_total                      – completed training runs
//   • promocast_training_rmse                            – holdout RMSE of the last run
//   • promocast_feature_diagnostics_total{field,severity} – fields repaired by the builder
//
// These are registered in init() and served at /metrics by server.go.

package main

import "github.com/prometheus/client_golang/prometheus"

var (
	mtxDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promocast_decisions_total",
			Help: "Promotion decisions taken",
		},
		[]string{"recommendation"},
	)

	mtxForecastUnits = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "promocast_forecast_units",
			Help: "Weather-adjusted unit forecast of the last decision.",
		},
		[]string{"scenario"}, // no_promo|promo
	)

	mtxWeatherModifier = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "promocast_weather_modifier",
			Help: "Demand multiplier derived from the last weather read.",
		},
	)

	mtxWeatherFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "promocast_weather_fallbacks_total",
			Help: "Weather reads that failed and used the fallback report.",
		},
	)

	mtxTrainingRuns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "promocast_training_runs_total",
			Help: "Completed training runs.",
		},
	)

	mtxTrainingRMSE = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "promocast_training_rmse",
			Help: "Holdout RMSE (sales units) of the last training run.",
		},
	)

	mtxFeatureDiagnostics = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promocast_feature_diagnostics_total",
			Help: "Input fields the feature builder had to repair.",
		},
		[]string{"field", "severity"},
	)
)

func init() {
	prometheus.MustRegister(mtxDecisions, mtxForecastUnits, mtxWeatherModifier, mtxWeatherFallbacks)
	prometheus.MustRegister(mtxTrainingRuns, mtxTrainingRMSE)
	prometheus.MustRegister(mtxFeatureDiagnostics)
}

func ObserveDecision(r DecisionResult) {
	mtxDecisions.WithLabelValues(string(r.Recommendation)).Inc()
	mtxForecastUnits.WithLabelValues("no_promo").Set(r.UnitsNoPromo)
	mtxForecastUnits.WithLabelValues("promo").Set(r.UnitsPromo)
	mtxWeatherModifier.Set(r.WeatherModifier)
}

func SetWeatherModifierMetric(v float64) { mtxWeatherModifier.Set(v) }
func IncWeatherFallback()                { mtxWeatherFallbacks.Inc() }

func ObserveTraining(rmse float64) {
	mtxTrainingRuns.Inc()
	mtxTrainingRMSE.Set(rmse)
}

func IncFeatureDiagnostic(field, severity string) {
	mtxFeatureDiagnostics.WithLabelValues(field, severity).Inc()
}
