// FILE: forecaster.go
// Package main – Forecaster abstraction shared by all regressor backends.
//
// The decision engine only needs train/predict; it never looks inside a model.
// Concrete backends live in separate files:
//   • model.go      – WindowRegressor, linear model over the flattened window
//   • model_ols.go  – OLSForecaster, least squares via sajari/regression
//
// Both are deterministic for a fixed trained state and input, and Predict
// never mutates the model, so a loaded model can serve concurrent requests.
package main

import (
	"context"
	"fmt"
	"strings"
)

// Forecaster maps one scaled window to the next scaled sales value.
type Forecaster interface {
	Kind() string
	Train(ctx context.Context, windows []Window, labels []float64, opts TrainOptions) error
	Predict(w Window) (float64, error)
}

// TrainOptions are the knobs shared by all backends; a backend ignores the
// ones it has no use for.
type TrainOptions struct {
	Epochs          int
	BatchSize       int
	LearningRate    float64
	L2              float64
	Seed            int64
	ValidationSplit float64
}

// Backend kinds.
const (
	KindLinear = "linear"
	KindOLS    = "ols"
)

// NewForecaster builds an untrained backend for windows of the given shape.
func NewForecaster(kind string, steps, features int) (Forecaster, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindLinear, "":
		return NewWindowRegressor(steps, features), nil
	case KindOLS:
		return NewOLSForecaster(steps, features), nil
	default:
		return nil, fmt.Errorf("unknown model kind %q", kind)
	}
}

func checkWindowShape(w Window, steps, features int) error {
	if len(w) != steps {
		return &SchemaError{Reason: fmt.Sprintf("window has %d steps, model expects %d", len(w), steps)}
	}
	for i, r := range w {
		if len(r) != features {
			return &SchemaError{Reason: fmt.Sprintf("window step %d has %d features, model expects %d", i, len(r), features)}
		}
	}
	return nil
}

func checkTrainingSet(windows []Window, labels []float64) error {
	if len(windows) == 0 {
		return &InsufficientDataError{Rows: 0, Window: 1}
	}
	if len(windows) != len(labels) {
		return fmt.Errorf("train: %d windows but %d labels", len(windows), len(labels))
	}
	return nil
}
