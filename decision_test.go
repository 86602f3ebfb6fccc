package main

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// promoStub answers with one scaled value for a window whose last step is
// flagged as on promotion and another for everything else.
type promoStub struct {
	noPromo, promo float64
	err            error
	calls          []Window
}

func (s *promoStub) Kind() string { return "stub" }

func (s *promoStub) Train(context.Context, []Window, []float64, TrainOptions) error { return nil }

func (s *promoStub) Predict(w Window) (float64, error) {
	s.calls = append(s.calls, w.Clone())
	if s.err != nil {
		return 0, s.err
	}
	if w[len(w)-1][OnPromotionIdx] == 1 {
		return s.promo, nil
	}
	return s.noPromo, nil
}

func salesScaler() ScalerParams {
	return ScalerParams{
		Columns: FeatureColumns,
		Min:     []float64{0, 0, 0, 0, 0, 0, 0},
		Max:     []float64{1000, 1, 1, 1, 1, 1, 1},
	}
}

func flatWindow(steps int, promo float64) Window {
	w := make(Window, steps)
	for i := range w {
		w[i] = []float64{0.4, promo, 0.3, 0, 0.6, 0, 0}
	}
	return w
}

func TestDecide_RainyDayKeepsFullPrice(t *testing.T) {
	stub := &promoStub{noPromo: 0.5, promo: 0.6}
	res, err := Decide(stub, flatWindow(30, 0), salesScaler(), 1.10, DefaultPricing())
	require.NoError(t, err)

	assert.InDelta(t, 500, res.BaseUnitsNoPromo, 1e-9)
	assert.InDelta(t, 600, res.BaseUnitsPromo, 1e-9)
	assert.InDelta(t, 550, res.UnitsNoPromo, 1e-9)
	assert.InDelta(t, 660, res.UnitsPromo, 1e-9)
	assert.InDelta(t, 2200, res.ProfitNoPromo, 1e-9)
	assert.InDelta(t, 1320, res.ProfitPromo, 1e-9)
	assert.Equal(t, DoNotPromote, res.Recommendation)
	assert.Less(t, res.Lift(), 0.0)
	assert.Contains(t, res.Summary(), "DO NOT PROMOTE")
	assert.Contains(t, res.Summary(), "$2200.00")
}

func TestDecide_PromotesWhenLiftCoversDiscount(t *testing.T) {
	// 400 units at $4 margin vs 900 at $2 margin
	stub := &promoStub{noPromo: 0.4, promo: 0.9}
	res, err := Decide(stub, flatWindow(5, 1), salesScaler(), 1.0, DefaultPricing())
	require.NoError(t, err)
	assert.InDelta(t, 1600, res.ProfitNoPromo, 1e-9)
	assert.InDelta(t, 1800, res.ProfitPromo, 1e-9)
	assert.Equal(t, Promote, res.Recommendation)
	assert.Contains(t, res.Summary(), "RUN THE PROMOTION (+$200.00)")
}

func TestDecide_TieDoesNotPromote(t *testing.T) {
	// 500 units at $4 equals 1000 units at $2
	stub := &promoStub{noPromo: 0.5, promo: 1.0}
	res, err := Decide(stub, flatWindow(3, 0), salesScaler(), 1.0, DefaultPricing())
	require.NoError(t, err)
	assert.InDelta(t, res.ProfitNoPromo, res.ProfitPromo, 1e-9)
	assert.Equal(t, DoNotPromote, res.Recommendation)
}

func TestDecide_ScenariosDifferOnlyInLastPromoFlag(t *testing.T) {
	last := flatWindow(4, 0.5)
	orig := last.Clone()
	stub := &promoStub{noPromo: 0.1, promo: 0.2}

	_, err := Decide(stub, last, salesScaler(), 1.0, DefaultPricing())
	require.NoError(t, err)
	require.Len(t, stub.calls, 2)
	no, yes := stub.calls[0], stub.calls[1]

	for i := range no {
		for j := range no[i] {
			if i == len(no)-1 && j == OnPromotionIdx {
				assert.Equal(t, 0.0, no[i][j])
				assert.Equal(t, 1.0, yes[i][j])
				continue
			}
			assert.Equal(t, no[i][j], yes[i][j], "step %d feature %d", i, j)
		}
	}
	// earlier steps keep their own promotion flag
	assert.Equal(t, 0.5, no[0][OnPromotionIdx])
	// the caller's window is untouched
	assert.Equal(t, orig, last)
}

func TestDecide_InvalidModifierIsNeutral(t *testing.T) {
	for _, m := range []float64{0, -2, math.NaN(), math.Inf(1)} {
		stub := &promoStub{noPromo: 0.5, promo: 0.6}
		res, err := Decide(stub, flatWindow(2, 0), salesScaler(), m, DefaultPricing())
		require.NoError(t, err)
		assert.Equal(t, 1.0, res.WeatherModifier)
		assert.InDelta(t, 500, res.UnitsNoPromo, 1e-9)
	}
}

func TestDecide_ModifierScalesBothScenarios(t *testing.T) {
	stub := &promoStub{noPromo: 0.5, promo: 0.6}
	res, err := Decide(stub, flatWindow(2, 0), salesScaler(), 0.95, DefaultPricing())
	require.NoError(t, err)
	assert.InDelta(t, 475, res.UnitsNoPromo, 1e-9)
	assert.InDelta(t, 570, res.UnitsPromo, 1e-9)
}

func TestDecide_PredictFailureAborts(t *testing.T) {
	boom := errors.New("boom")
	_, err := Decide(&promoStub{err: boom}, flatWindow(2, 0), salesScaler(), 1.0, DefaultPricing())
	assert.ErrorIs(t, err, boom)
}

func TestNewScenarioPair_Errors(t *testing.T) {
	_, err := NewScenarioPair(nil)
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = NewScenarioPair(Window{{0.3}})
	assert.ErrorIs(t, err, ErrSchema)
}
