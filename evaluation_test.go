package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRMSEAndMAE(t *testing.T) {
	actual := []float64{1, 2, 3, 4}
	pred := []float64{1, 3, 1, 4}
	rmse, err := RMSE(actual, pred)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(5.0/4), rmse, 1e-12)
	mae, err := MAE(actual, pred)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, mae, 1e-12)

	_, err = RMSE([]float64{1}, []float64{1, 2})
	assert.Error(t, err)
	_, err = MAE(nil, nil)
	assert.Error(t, err)
}

func TestEvaluateHoldout_RealUnits(t *testing.T) {
	p := salesScaler()
	stub := &promoStub{noPromo: 0.5, promo: 0.5}
	windows := []Window{flatWindow(2, 0), flatWindow(2, 0)}
	ev, err := EvaluateHoldout(stub, windows, []float64{0.4, 0.7}, p)
	require.NoError(t, err)
	assert.Equal(t, 2, ev.Samples)
	assert.InDeltaSlice(t, []float64{400, 700}, ev.Actual, 1e-9)
	assert.InDeltaSlice(t, []float64{500, 500}, ev.Predicted, 1e-9)
	assert.InDelta(t, 150, ev.MAE, 1e-9)
	assert.InDelta(t, math.Sqrt((100*100+200*200)/2.0), ev.RMSE, 1e-9)

	_, err = EvaluateHoldout(stub, windows, []float64{0.4}, p)
	assert.Error(t, err)
}
