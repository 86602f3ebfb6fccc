// FILE: pipeline.go
// Package main – Training and decision pipelines.
//
// What's here:
//   • Train(ctx, cfg, raw)              : build → fit scaler → windows → train →
//                                          holdout score → persist artifacts
//   • Simulate(cfg, arts, raw, weather) : build → transform with the saved
//                                          scaler → last window → Decide
//   • ForecastNext(arts, raw)           : plain next-day forecast, no overrides
//
// The scaler is fit exactly once, in Train. Everything downstream reuses the
// persisted parameters and the window length the model was trained with.

package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TrainReport summarizes one training run.
type TrainReport struct {
	RunID          string       `json:"run_id"`
	Kind           string       `json:"kind"`
	Rows           int          `json:"rows"`
	TrainWindows   int          `json:"train_windows"`
	HoldoutWindows int          `json:"holdout_windows"`
	Evaluation     Evaluation   `json:"evaluation"`
	Diagnostics    []Diagnostic `json:"diagnostics,omitempty"`
}

// Train fits a new scaler and forecaster on raw and writes both to
// cfg.ArtifactDir. The chronological tail (cfg.Model.HoldoutFraction of the
// windows) is held out for scoring.
func Train(ctx context.Context, cfg Config, raw RawTable) (TrainReport, error) {
	table, diags, err := BuildFeatures(raw, ParseMissingSalesPolicy(cfg.Features.MissingSalesPolicy))
	if err != nil {
		return TrainReport{}, err
	}
	scaled, params, err := FitTransform(table, ScaleOptions{RejectDegenerate: cfg.Features.RejectDegenerate})
	if err != nil {
		return TrainReport{}, err
	}
	L := cfg.Model.LookBackDays
	windows, labels, err := MakeSequences(scaled, L)
	if err != nil {
		return TrainReport{}, err
	}

	nHold := int(float64(len(windows)) * cfg.Model.HoldoutFraction)
	if nHold >= len(windows) {
		nHold = 0
	}
	split := len(windows) - nHold
	trainW, trainY := windows[:split], labels[:split]
	holdW, holdY := windows[split:], labels[split:]
	if len(holdW) == 0 {
		holdW, holdY = trainW, trainY
	}

	f, err := NewForecaster(cfg.Model.Kind, L, len(params.Columns))
	if err != nil {
		return TrainReport{}, err
	}
	runID := uuid.New().String()
	logger.Info("training",
		zap.String("run_id", runID),
		zap.String("kind", f.Kind()),
		zap.Int("rows", table.Len()),
		zap.Int("train_windows", len(trainW)),
		zap.Int("holdout_windows", nHold),
		zap.Int("epochs", cfg.Model.Epochs))
	if err := f.Train(ctx, trainW, trainY, cfg.TrainOptions()); err != nil {
		return TrainReport{}, fmt.Errorf("train %s: %w", f.Kind(), err)
	}

	ev, err := EvaluateHoldout(f, holdW, holdY, params)
	if err != nil {
		return TrainReport{}, err
	}
	if err := SaveArtifacts(cfg.ArtifactDir, params, f, runID, L); err != nil {
		return TrainReport{}, err
	}
	ObserveTraining(ev.RMSE)
	logger.Info("training complete",
		zap.String("run_id", runID),
		zap.Float64("rmse", ev.RMSE),
		zap.Float64("mae", ev.MAE),
		zap.String("artifacts", cfg.ArtifactDir))

	return TrainReport{
		RunID:          runID,
		Kind:           f.Kind(),
		Rows:           table.Len(),
		TrainWindows:   len(trainW),
		HoldoutWindows: nHold,
		Evaluation:     ev,
		Diagnostics:    diags,
	}, nil
}

// latestWindow builds features for raw and returns the scaled final window
// using the persisted scaler.
func latestWindow(cfg Config, arts *Artifacts, raw RawTable) (Window, error) {
	table, _, err := BuildFeatures(raw, ParseMissingSalesPolicy(cfg.Features.MissingSalesPolicy))
	if err != nil {
		return nil, err
	}
	L := arts.Meta.Window
	if table.Len() < L {
		return nil, &InsufficientDataError{Rows: table.Len(), Window: L}
	}
	scaled, err := Transform(table.Tail(L), arts.Scaler)
	if err != nil {
		return nil, err
	}
	return LastWindow(scaled, L)
}

// Simulate runs the promotion comparison on the most recent window of raw.
func Simulate(cfg Config, arts *Artifacts, raw RawTable, weather WeatherReport) (DecisionResult, error) {
	w, err := latestWindow(cfg, arts, raw)
	if err != nil {
		return DecisionResult{}, err
	}
	res, err := Decide(arts.Model, w, arts.Scaler, WeatherModifier(weather.Condition), cfg.Pricing)
	if err != nil {
		return DecisionResult{}, err
	}
	ObserveDecision(res)
	logger.Info("decision",
		zap.String("condition", weather.Condition),
		zap.Float64("modifier", res.WeatherModifier),
		zap.Float64("units_no_promo", res.UnitsNoPromo),
		zap.Float64("units_promo", res.UnitsPromo),
		zap.Float64("profit_no_promo", res.ProfitNoPromo),
		zap.Float64("profit_promo", res.ProfitPromo),
		zap.String("recommendation", string(res.Recommendation)))
	return res, nil
}

// ForecastNext predicts tomorrow's sales from the latest window as observed.
func ForecastNext(cfg Config, arts *Artifacts, raw RawTable) (float64, error) {
	w, err := latestWindow(cfg, arts, raw)
	if err != nil {
		return 0, err
	}
	yhat, err := arts.Model.Predict(w)
	if err != nil {
		return 0, err
	}
	return InverseOne(yhat, arts.Scaler, SalesIdx)
}
