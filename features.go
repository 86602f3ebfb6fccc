// FILE: features.go
// Package main – Raw rows and the feature builder.
//
// BuildFeatures turns one store/family series into the fixed 7-column table
// the scaler, sequencer and decision engine all index positionally:
//
//   sales, onpromotion, dcoilwtico, is_holiday, transactions, is_weekend, is_payday
//
// Missing optional inputs never fail the build; they are zero-filled and
// reported as Diagnostics. Only a missing date axis (or, under the strict
// sales policy, a missing sales column) is fatal.
package main

import (
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Column names and positions of the feature table.
const (
	ColSales        = "sales"
	ColOnPromotion  = "onpromotion"
	ColOilPrice     = "dcoilwtico"
	ColIsHoliday    = "is_holiday"
	ColTransactions = "transactions"
	ColIsWeekend    = "is_weekend"
	ColIsPayday     = "is_payday"

	SalesIdx       = 0
	OnPromotionIdx = 1
)

// FeatureColumns is the one acceptable column order.
var FeatureColumns = []string{
	ColSales, ColOnPromotion, ColOilPrice, ColIsHoliday, ColTransactions, ColIsWeekend, ColIsPayday,
}

// rawColumns are the inputs the builder expects from ingestion.
var rawColumns = []string{ColSales, ColOnPromotion, ColOilPrice, ColIsHoliday, ColTransactions}

// RawRecord is one merged day of a single store/product-family series.
// NaN marks a missing value (e.g. no oil quote, no transaction count).
type RawRecord struct {
	Date         time.Time
	Sales        float64
	OnPromotion  float64
	OilPrice     float64
	IsHoliday    float64
	Transactions float64
}

// RawTable is the column-oriented view the builder consumes. A nil Dates
// slice means the date axis is absent; an absent key in Columns means the
// whole field is missing.
type RawTable struct {
	Dates   []time.Time
	Columns map[string][]float64
}

// NewRawTable converts records into a RawTable carrying every raw column.
func NewRawTable(recs []RawRecord) RawTable {
	t := RawTable{
		Dates:   make([]time.Time, len(recs)),
		Columns: make(map[string][]float64, len(rawColumns)),
	}
	for _, c := range rawColumns {
		t.Columns[c] = make([]float64, len(recs))
	}
	for i, r := range recs {
		t.Dates[i] = r.Date
		t.Columns[ColSales][i] = r.Sales
		t.Columns[ColOnPromotion][i] = r.OnPromotion
		t.Columns[ColOilPrice][i] = r.OilPrice
		t.Columns[ColIsHoliday][i] = r.IsHoliday
		t.Columns[ColTransactions][i] = r.Transactions
	}
	return t
}

// Len is the number of rows on the date axis.
func (t RawTable) Len() int { return len(t.Dates) }

// FeatureTable is the ordered numeric table produced by BuildFeatures.
type FeatureTable struct {
	Columns []string
	Dates   []time.Time
	Rows    [][]float64
}

// Len returns the row count.
func (t FeatureTable) Len() int { return len(t.Rows) }

// Column copies out one column by position.
func (t FeatureTable) Column(idx int) []float64 {
	out := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[idx]
	}
	return out
}

// Tail returns a view over the last n rows (all rows if n >= Len).
func (t FeatureTable) Tail(n int) FeatureTable {
	if n >= len(t.Rows) || n < 0 {
		return t
	}
	start := len(t.Rows) - n
	return FeatureTable{Columns: t.Columns, Dates: t.Dates[start:], Rows: t.Rows[start:]}
}

// Severity grades a builder diagnostic.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Diagnostic is a non-fatal note about how the input was repaired.
type Diagnostic struct {
	Field    string
	Severity Severity
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s: %s", d.Severity, d.Field, d.Message)
}

// MissingSalesPolicy decides what a missing target column does.
type MissingSalesPolicy string

const (
	// MissingSalesSoft zero-fills sales and raises a critical diagnostic.
	MissingSalesSoft MissingSalesPolicy = "soft"
	// MissingSalesStrict fails the build with a SchemaError.
	MissingSalesStrict MissingSalesPolicy = "strict"
)

// ParseMissingSalesPolicy maps config text to a policy; unknown values are soft.
func ParseMissingSalesPolicy(s string) MissingSalesPolicy {
	if strings.EqualFold(strings.TrimSpace(s), string(MissingSalesStrict)) {
		return MissingSalesStrict
	}
	return MissingSalesSoft
}

// BuildFeatures derives the calendar flags and assembles the fixed-order table.
func BuildFeatures(raw RawTable, policy MissingSalesPolicy) (FeatureTable, []Diagnostic, error) {
	if raw.Dates == nil {
		return FeatureTable{}, nil, &SchemaError{Field: "date", Reason: "no date axis"}
	}
	n := raw.Len()
	var diags []Diagnostic

	cols := make([][]float64, len(rawColumns))
	for j, name := range rawColumns {
		src, ok := raw.Columns[name]
		if !ok {
			if name == ColSales && policy == MissingSalesStrict {
				return FeatureTable{}, nil, &SchemaError{Field: ColSales, Reason: "target column missing"}
			}
			d := Diagnostic{Field: name, Severity: SeverityWarning, Message: "column missing; filled with 0"}
			if name == ColSales {
				d.Severity = SeverityCritical
				d.Message = "target column missing; filled with 0, forecasts will be flat"
			}
			diags = append(diags, d)
			cols[j] = make([]float64, n)
			continue
		}
		if len(src) != n {
			return FeatureTable{}, nil, &SchemaError{
				Field:  name,
				Reason: fmt.Sprintf("has %d values for %d dates", len(src), n),
			}
		}
		col := make([]float64, n)
		filled := 0
		for i, v := range src {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				filled++
				continue
			}
			col[i] = v
		}
		if filled > 0 {
			diags = append(diags, Diagnostic{
				Field:    name,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("%d missing values filled with 0", filled),
			})
		}
		cols[j] = col
	}

	out := FeatureTable{
		Columns: append([]string(nil), FeatureColumns...),
		Dates:   append([]time.Time(nil), raw.Dates...),
		Rows:    make([][]float64, n),
	}
	for i, d := range raw.Dates {
		row := make([]float64, len(FeatureColumns))
		for j := range rawColumns {
			row[j] = cols[j][i]
		}
		row[5] = boolFloat(isWeekend(d))
		row[6] = boolFloat(isPayday(d))
		out.Rows[i] = row
	}

	for _, d := range diags {
		IncFeatureDiagnostic(d.Field, string(d.Severity))
		if d.Severity == SeverityCritical {
			logger.Error("feature diagnostic", zap.String("field", d.Field), zap.String("msg", d.Message))
		} else {
			logger.Warn("feature diagnostic", zap.String("field", d.Field), zap.String("msg", d.Message))
		}
	}
	return out, diags, nil
}

func isWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// isPayday is true on the 15th and on the last calendar day of the month.
func isPayday(d time.Time) bool {
	if d.Day() == 15 {
		return true
	}
	return d.AddDate(0, 0, 1).Month() != d.Month()
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
