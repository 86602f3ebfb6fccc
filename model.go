// FILE: model.go
// Package main – WindowRegressor, the default forecaster backend.
//
// An L2-regularized linear regressor over the flattened (steps × features)
// window, trained with shuffled mini-batch gradient descent on squared error
// and patience-based early stopping on a held-back validation tail. The
// shuffler is seeded from TrainOptions.Seed so a given dataset always yields
// the same weights.

package main

import (
	"context"
	"math"
	"math/rand"

	"go.uber.org/zap"
)

type WindowRegressor struct {
	Steps    int       `json:"steps"`
	Features int       `json:"features"`
	W        []float64 `json:"w"` // row-major over the window
	B        float64   `json:"b"`
}

func NewWindowRegressor(steps, features int) *WindowRegressor {
	return &WindowRegressor{
		Steps:    steps,
		Features: features,
		W:        make([]float64, steps*features),
	}
}

func (m *WindowRegressor) Kind() string { return KindLinear }

// Predict expects exactly Steps × Features values.
func (m *WindowRegressor) Predict(w Window) (float64, error) {
	if err := checkWindowShape(w, m.Steps, m.Features); err != nil {
		return 0, err
	}
	return m.predictFlat(w.Flatten()), nil
}

func (m *WindowRegressor) predictFlat(x []float64) float64 {
	z := m.B
	for i := range x {
		z += m.W[i] * x[i]
	}
	return z
}

// Train fits the weights with mini-batch gradient descent and keeps the best
// epoch by validation loss.
func (m *WindowRegressor) Train(ctx context.Context, windows []Window, labels []float64, opts TrainOptions) error {
	if err := checkTrainingSet(windows, labels); err != nil {
		return err
	}
	feats := make([][]float64, len(windows))
	for i, w := range windows {
		if err := checkWindowShape(w, m.Steps, m.Features); err != nil {
			return err
		}
		feats[i] = w.Flatten()
	}
	epochs := opts.Epochs
	if epochs <= 0 {
		epochs = 5
	}
	batch := opts.BatchSize
	if batch <= 0 {
		batch = 32
	}
	lr := opts.LearningRate
	if lr <= 0 {
		lr = 0.01
	}
	rng := rand.New(rand.NewSource(opts.Seed))

	// validation is the chronological tail, as a time series should be held out
	nTrain := len(feats)
	if opts.ValidationSplit > 0 && opts.ValidationSplit < 1 {
		nVal := int(float64(len(feats)) * opts.ValidationSplit)
		if nVal > 0 && len(feats)-nVal > 0 {
			nTrain = len(feats) - nVal
		}
	}
	trainX, trainY := feats[:nTrain], labels[:nTrain]
	valX, valY := feats[nTrain:], labels[nTrain:]
	if len(valX) == 0 {
		valX, valY = trainX, trainY
	}

	dim := len(m.W)
	bestW := append([]float64(nil), m.W...)
	bestB := m.B
	bestLoss := math.MaxFloat64
	patience := 3
	wait := 0

	for e := 0; e < epochs; e++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		perm := rng.Perm(len(trainX))
		for off := 0; off < len(trainX); off += batch {
			end := off + batch
			if end > len(trainX) {
				end = len(trainX)
			}
			gW := make([]float64, dim)
			var gB float64
			for k := off; k < end; k++ {
				i := perm[k]
				grad := m.predictFlat(trainX[i]) - trainY[i]
				for j := 0; j < dim; j++ {
					gW[j] += grad * trainX[i][j]
				}
				gB += grad
			}
			for j := 0; j < dim; j++ {
				gW[j] += opts.L2 * m.W[j]
			}
			eta := lr / float64(end-off)
			for j := 0; j < dim; j++ {
				m.W[j] -= eta * gW[j]
			}
			m.B -= eta * gB
		}

		loss := m.mse(valX, valY)
		logger.Debug("epoch", zap.Int("epoch", e+1), zap.Float64("val_mse", loss))
		if loss < bestLoss-1e-9 {
			bestLoss = loss
			copy(bestW, m.W)
			bestB = m.B
			wait = 0
		} else {
			wait++
			if wait >= patience {
				break
			}
		}
	}
	m.W, m.B = bestW, bestB
	return nil
}

func (m *WindowRegressor) mse(x [][]float64, y []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var s float64
	for i := range x {
		d := m.predictFlat(x[i]) - y[i]
		s += d * d
	}
	return s / float64(len(x))
}
