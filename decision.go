// FILE: decision.go
// Package main – Promotion scenario decision engine.
//
// Decide runs the same trained forecaster on two copies of the most recent
// window that differ only in the last step's onpromotion flag, un-scales both
// forecasts, applies the exogenous weather multiplier and compares profit
// under the regular and discounted price. It does no I/O.
package main

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Pricing is the per-unit economics of one product.
type Pricing struct {
	BasePrice           float64 `yaml:"base_price" validate:"gt=0"`
	Cost                float64 `yaml:"cost" validate:"gte=0"`
	PromoDiscountFactor float64 `yaml:"promo_discount_factor" validate:"gt=0,lte=1"`
}

// DefaultPricing is $10 price, $6 cost, 20% off on promotion.
func DefaultPricing() Pricing {
	return Pricing{BasePrice: 10, Cost: 6, PromoDiscountFactor: 0.8}
}

// Recommendation is the engine's verdict.
type Recommendation string

const (
	Promote      Recommendation = "promote"
	DoNotPromote Recommendation = "do not promote"
)

// ScenarioPair is the no-promotion and promotion copy of one window.
type ScenarioPair struct {
	NoPromo Window
	Promo   Window
}

// NewScenarioPair copies last twice and forces the final step's onpromotion.
func NewScenarioPair(last Window) (ScenarioPair, error) {
	if len(last) == 0 {
		return ScenarioPair{}, &InsufficientDataError{Rows: 0, Window: 1}
	}
	if len(last[len(last)-1]) <= OnPromotionIdx {
		return ScenarioPair{}, &SchemaError{Field: ColOnPromotion, Reason: "window has no promotion feature"}
	}
	p := ScenarioPair{NoPromo: last.Clone(), Promo: last.Clone()}
	p.NoPromo[len(last)-1][OnPromotionIdx] = 0
	p.Promo[len(last)-1][OnPromotionIdx] = 1
	return p, nil
}

// DecisionResult is the outcome of one Decide call.
type DecisionResult struct {
	BaseUnitsNoPromo float64        `json:"base_units_no_promo"`
	BaseUnitsPromo   float64        `json:"base_units_promo"`
	UnitsNoPromo     float64        `json:"predicted_units_no_promo"`
	UnitsPromo       float64        `json:"predicted_units_promo"`
	ProfitNoPromo    float64        `json:"profit_no_promo"`
	ProfitPromo      float64        `json:"profit_promo"`
	WeatherModifier  float64        `json:"weather_modifier"`
	Recommendation   Recommendation `json:"recommendation"`
}

// Lift is the profit gained by promoting; negative means promoting loses money.
func (r DecisionResult) Lift() float64 { return r.ProfitPromo - r.ProfitNoPromo }

// Summary renders the result in whole units and cents.
func (r DecisionResult) Summary() string {
	units := func(v float64) string { return decimal.NewFromFloat(v).Round(0).String() }
	money := func(v float64) string { return decimal.NewFromFloat(v).StringFixed(2) }
	s := fmt.Sprintf("no promo: %s units -> $%s | promo: %s units -> $%s | weather x%s",
		units(r.UnitsNoPromo), money(r.ProfitNoPromo),
		units(r.UnitsPromo), money(r.ProfitPromo),
		decimal.NewFromFloat(r.WeatherModifier).String())
	if r.Recommendation == Promote {
		return s + fmt.Sprintf(" | RUN THE PROMOTION (+$%s)", money(r.Lift()))
	}
	return s + " | DO NOT PROMOTE"
}

// Decide evaluates both scenarios against f. A non-positive or non-finite
// modifier is treated as 1.0. A forecaster failure aborts the decision.
func Decide(f Forecaster, last Window, p ScalerParams, weatherModifier float64, pricing Pricing) (DecisionResult, error) {
	pair, err := NewScenarioPair(last)
	if err != nil {
		return DecisionResult{}, err
	}
	if math.IsNaN(weatherModifier) || math.IsInf(weatherModifier, 0) || weatherModifier <= 0 {
		weatherModifier = 1.0
	}

	scaledNo, err := f.Predict(pair.NoPromo)
	if err != nil {
		return DecisionResult{}, fmt.Errorf("predict no-promo: %w", err)
	}
	scaledYes, err := f.Predict(pair.Promo)
	if err != nil {
		return DecisionResult{}, fmt.Errorf("predict promo: %w", err)
	}
	baseNo, err := InverseOne(scaledNo, p, SalesIdx)
	if err != nil {
		return DecisionResult{}, err
	}
	baseYes, err := InverseOne(scaledYes, p, SalesIdx)
	if err != nil {
		return DecisionResult{}, err
	}

	res := DecisionResult{
		BaseUnitsNoPromo: baseNo,
		BaseUnitsPromo:   baseYes,
		UnitsNoPromo:     baseNo * weatherModifier,
		UnitsPromo:       baseYes * weatherModifier,
		WeatherModifier:  weatherModifier,
	}
	res.ProfitNoPromo = (pricing.BasePrice - pricing.Cost) * res.UnitsNoPromo
	res.ProfitPromo = (pricing.BasePrice*pricing.PromoDiscountFactor - pricing.Cost) * res.UnitsPromo

	// a tie stays with not promoting
	res.Recommendation = DoNotPromote
	if res.ProfitPromo > res.ProfitNoPromo {
		res.Recommendation = Promote
	}
	return res, nil
}
