// FILE: evaluation.go
// Package main – Forecast accuracy on held-out windows.
package main

import (
	"fmt"
	"math"
)

// RMSE is the root mean squared error between equal-length slices.
func RMSE(actual, predicted []float64) (float64, error) {
	if err := sameLen(actual, predicted); err != nil {
		return 0, err
	}
	var s float64
	for i := range actual {
		d := actual[i] - predicted[i]
		s += d * d
	}
	return math.Sqrt(s / float64(len(actual))), nil
}

// MAE is the mean absolute error between equal-length slices.
func MAE(actual, predicted []float64) (float64, error) {
	if err := sameLen(actual, predicted); err != nil {
		return 0, err
	}
	var s float64
	for i := range actual {
		s += math.Abs(actual[i] - predicted[i])
	}
	return s / float64(len(actual)), nil
}

func sameLen(a, b []float64) error {
	if len(a) != len(b) {
		return fmt.Errorf("length mismatch: %d actual vs %d predicted", len(a), len(b))
	}
	if len(a) == 0 {
		return fmt.Errorf("no values to score")
	}
	return nil
}

// Evaluation is the holdout score in real sales units.
type Evaluation struct {
	Samples   int       `json:"samples"`
	RMSE      float64   `json:"rmse"`
	MAE       float64   `json:"mae"`
	Actual    []float64 `json:"-"`
	Predicted []float64 `json:"-"`
}

// EvaluateHoldout predicts every window and scores both series after
// inverse-scaling the sales column.
func EvaluateHoldout(f Forecaster, windows []Window, labels []float64, p ScalerParams) (Evaluation, error) {
	if len(windows) != len(labels) {
		return Evaluation{}, fmt.Errorf("evaluate: %d windows but %d labels", len(windows), len(labels))
	}
	ev := Evaluation{
		Samples:   len(windows),
		Actual:    make([]float64, len(windows)),
		Predicted: make([]float64, len(windows)),
	}
	for i, w := range windows {
		yhat, err := f.Predict(w)
		if err != nil {
			return Evaluation{}, fmt.Errorf("evaluate window %d: %w", i, err)
		}
		if ev.Predicted[i], err = InverseOne(yhat, p, SalesIdx); err != nil {
			return Evaluation{}, err
		}
		if ev.Actual[i], err = InverseOne(labels[i], p, SalesIdx); err != nil {
			return Evaluation{}, err
		}
	}
	var err error
	if ev.RMSE, err = RMSE(ev.Actual, ev.Predicted); err != nil {
		return Evaluation{}, err
	}
	if ev.MAE, err = MAE(ev.Actual, ev.Predicted); err != nil {
		return Evaluation{}, err
	}
	return ev, nil
}
