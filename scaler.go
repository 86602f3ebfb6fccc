// FILE: scaler.go
// Package main – Per-column min-max scaling.
//
// The fitted ScalerParams are the only scaling state in the program: fit once
// at training time, persisted next to the model, and reused unchanged for
// every later transform and inverse. Columns are matched by position; the
// stored names exist to catch a table assembled in the wrong order.
package main

import (
	"fmt"
	"math"
)

// ScalerParams holds the fitted (min, max) of every column, in table order.
type ScalerParams struct {
	Columns []string  `json:"columns"`
	Min     []float64 `json:"min"`
	Max     []float64 `json:"max"`
}

// Width is the number of fitted columns.
func (p ScalerParams) Width() int { return len(p.Min) }

// ScaleOptions tunes FitTransform.
type ScaleOptions struct {
	// RejectDegenerate fails the fit on a constant column instead of mapping it to 0.
	RejectDegenerate bool
}

// FitTransform fits per-column bounds over t and returns the scaled rows.
func FitTransform(t FeatureTable, opts ScaleOptions) ([][]float64, ScalerParams, error) {
	width := len(t.Columns)
	if width == 0 {
		return nil, ScalerParams{}, &SchemaError{Reason: "no columns to scale"}
	}
	if len(t.Rows) == 0 {
		return nil, ScalerParams{}, &InsufficientDataError{Rows: 0, Window: 1}
	}
	p := ScalerParams{
		Columns: append([]string(nil), t.Columns...),
		Min:     make([]float64, width),
		Max:     make([]float64, width),
	}
	for j := 0; j < width; j++ {
		p.Min[j] = math.Inf(1)
		p.Max[j] = math.Inf(-1)
	}
	for i, r := range t.Rows {
		if len(r) != width {
			return nil, ScalerParams{}, &SchemaError{Reason: fmt.Sprintf("row %d has %d values, want %d", i, len(r), width)}
		}
		for j, v := range r {
			p.Min[j] = math.Min(p.Min[j], v)
			p.Max[j] = math.Max(p.Max[j], v)
		}
	}
	if opts.RejectDegenerate {
		for j := range p.Min {
			if p.Max[j] == p.Min[j] {
				return nil, ScalerParams{}, &DegenerateColumnError{Column: p.Columns[j], Value: p.Min[j]}
			}
		}
	}
	return scaleRows(t.Rows, p), p, nil
}

// Transform applies previously fitted bounds; it never refits.
func Transform(t FeatureTable, p ScalerParams) ([][]float64, error) {
	if err := checkLayout(t.Columns, p); err != nil {
		return nil, err
	}
	for i, r := range t.Rows {
		if len(r) != p.Width() {
			return nil, &SchemaError{Reason: fmt.Sprintf("row %d has %d values, fitted width %d", i, len(r), p.Width())}
		}
	}
	return scaleRows(t.Rows, p), nil
}

// InverseOne maps one scaled value of column col back to real units. The value
// is placed into a zero vector of the fitted width and only column col is
// inverted, so the other (zero) positions never influence the result.
func InverseOne(v float64, p ScalerParams, col int) (float64, error) {
	if col < 0 || col >= p.Width() || len(p.Max) != p.Width() {
		return 0, &SchemaError{Reason: fmt.Sprintf("column index %d outside fitted width %d", col, p.Width())}
	}
	row := make([]float64, p.Width())
	row[col] = v
	return row[col]*(p.Max[col]-p.Min[col]) + p.Min[col], nil
}

func scaleRows(rows [][]float64, p ScalerParams) [][]float64 {
	out := make([][]float64, len(rows))
	for i, r := range rows {
		s := make([]float64, len(r))
		for j, v := range r {
			s[j] = scaleValue(v, p.Min[j], p.Max[j])
		}
		out[i] = s
	}
	return out
}

// scaleValue defines 0/0 as 0 for flat columns.
func scaleValue(x, lo, hi float64) float64 {
	span := hi - lo
	if span == 0 {
		return 0
	}
	return (x - lo) / span
}

func checkLayout(cols []string, p ScalerParams) error {
	if len(p.Min) != len(p.Max) || len(p.Columns) != len(p.Min) {
		return &SchemaError{Reason: "fitted scaler parameters are inconsistent"}
	}
	if len(cols) != p.Width() {
		return &SchemaError{Reason: fmt.Sprintf("table has %d columns, scaler was fit on %d", len(cols), p.Width())}
	}
	for j, c := range cols {
		if c != p.Columns[j] {
			return &SchemaError{Field: c, Reason: fmt.Sprintf("column %d is %q, scaler expects %q", j, c, p.Columns[j])}
		}
	}
	return nil
}
