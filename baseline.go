// FILE: baseline.go
// Package main – Rule-based baseline for comparison with the model.
//
// The baseline assumes the store keeps selling exactly what it sold: total
// historical revenue, summed in decimal so thousands of daily figures do not
// drift. It also reports the 7-day rolling oil price used as a stand-in
// "stable price" reference.
package main

import (
	"math"

	"github.com/shopspring/decimal"
)

// BaselineReport summarizes one series under the no-model rule.
type BaselineReport struct {
	Days         int             `json:"days"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	MeanDaily    decimal.Decimal `json:"mean_daily"`
	OilMA7       []float64       `json:"-"`
}

// BaselineRevenue sums the sales column; missing values count as zero.
func BaselineRevenue(t FeatureTable) BaselineReport {
	total := decimal.Zero
	for _, r := range t.Rows {
		total = total.Add(decimal.NewFromFloat(r[SalesIdx]))
	}
	rep := BaselineReport{Days: t.Len(), TotalRevenue: total, MeanDaily: decimal.Zero}
	if t.Len() > 0 {
		rep.MeanDaily = total.Div(decimal.NewFromInt(int64(t.Len()))).Round(2)
	}
	rep.OilMA7 = BackFill(SMA(t.Column(2), 7))
	return rep
}

// SMA returns the n-period simple moving average, aligned to xs.
// For indices < n-1, the function returns NaN.
func SMA(xs []float64, n int) []float64 {
	out := make([]float64, len(xs))
	if n <= 0 || len(xs) == 0 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}
	var sum float64
	for i := range xs {
		sum += xs[i]
		if i >= n {
			sum -= xs[i-n]
		}
		if i >= n-1 {
			out[i] = sum / float64(n)
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// BackFill replaces leading and interior NaNs with the next valid value.
func BackFill(xs []float64) []float64 {
	out := append([]float64(nil), xs...)
	next := math.NaN()
	for i := len(out) - 1; i >= 0; i-- {
		if math.IsNaN(out[i]) {
			out[i] = next
		} else {
			next = out[i]
		}
	}
	return out
}
