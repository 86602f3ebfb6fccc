// FILE: model_ols.go
// Package main – OLSForecaster, least-squares backend via sajari/regression.
//
// Rather than the full flattened window, the OLS backend regresses on a
// compact summary: every feature of the last time step plus the mean scaled
// sales over the window. Summary columns that are constant across the
// training set are left out of the fit and pinned to a zero coefficient,
// which keeps the design matrix full rank when a field was zero-filled.
package main

import (
	"context"
	"fmt"

	"github.com/sajari/regression"
	"go.uber.org/zap"
)

type OLSForecaster struct {
	Steps    int       `json:"steps"`
	Features int       `json:"features"`
	Active   []int     `json:"active"` // summary columns used in the fit
	Coeffs   []float64 `json:"coeffs"` // intercept followed by one coefficient per Active column
}

func NewOLSForecaster(steps, features int) *OLSForecaster {
	return &OLSForecaster{Steps: steps, Features: features}
}

func (m *OLSForecaster) Kind() string { return KindOLS }

// summarize builds [last step features..., mean window sales].
func (m *OLSForecaster) summarize(w Window) []float64 {
	out := make([]float64, 0, m.Features+1)
	out = append(out, w[len(w)-1]...)
	var s float64
	for _, r := range w {
		s += r[SalesIdx]
	}
	return append(out, s/float64(len(w)))
}

func summaryNames() []string {
	return append(append([]string(nil), FeatureColumns...), "window_mean_sales")
}

// Train runs one least-squares solve; epochs and batch size do not apply.
func (m *OLSForecaster) Train(ctx context.Context, windows []Window, labels []float64, _ TrainOptions) error {
	if err := checkTrainingSet(windows, labels); err != nil {
		return err
	}
	xs := make([][]float64, len(windows))
	for i, w := range windows {
		if err := checkWindowShape(w, m.Steps, m.Features); err != nil {
			return err
		}
		xs[i] = m.summarize(w)
	}

	width := len(xs[0])
	var active []int
	for j := 0; j < width; j++ {
		for i := 1; i < len(xs); i++ {
			if xs[i][j] != xs[0][j] {
				active = append(active, j)
				break
			}
		}
	}
	if len(xs) <= len(active)+1 {
		return &InsufficientDataError{Rows: len(xs), Window: len(active) + 2}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	names := summaryNames()
	r := new(regression.Regression)
	r.SetObserved("next_sales")
	for k, j := range active {
		r.SetVar(k, names[j])
	}
	for i, x := range xs {
		vars := make([]float64, len(active))
		for k, j := range active {
			vars[k] = x[j]
		}
		r.Train(regression.DataPoint(labels[i], vars))
	}
	if err := r.Run(); err != nil {
		return fmt.Errorf("ols fit: %w", err)
	}
	coeffs := r.GetCoeffs()
	if len(coeffs) != len(active)+1 {
		return fmt.Errorf("ols fit: got %d coefficients for %d variables", len(coeffs), len(active))
	}
	m.Active = active
	m.Coeffs = append([]float64(nil), coeffs...)
	logger.Debug("ols fit", zap.Int("vars", len(active)), zap.Float64("r2", r.R2))
	return nil
}

func (m *OLSForecaster) Predict(w Window) (float64, error) {
	if err := checkWindowShape(w, m.Steps, m.Features); err != nil {
		return 0, err
	}
	if len(m.Coeffs) != len(m.Active)+1 {
		return 0, fmt.Errorf("ols model is not trained")
	}
	x := m.summarize(w)
	y := m.Coeffs[0]
	for k, j := range m.Active {
		y += m.Coeffs[k+1] * x[j]
	}
	return y, nil
}
