// FILE: dataset.go
// Package main – CSV ingestion and the single-series merge.
//
// What's here:
//   • readCSV(path)            : header-keyed rows, headers case-insensitive
//   • LoadRawData(cfg)         : train / stores / oil / holidays / transactions
//   • MergeSeries(raw, s, fam) : one store + product family, one row per date
//   • LoadDemoCSV(path)        : already-merged fallback file (demo_data.csv)
//   • LoadSeries(cfg)          : full data if train.csv exists, else the demo file
//
// Notes:
//   • Dates accept YYYY-MM-DD, RFC3339 or UNIX seconds.
//   • Oil is forward-filled onto calendar days between quotes, so weekends
//     and blank quotes take the previous price. Days past the last quote
//     have no oil price.
//   • Transferred holidays are not holidays on their listed date.
//   • Unknown columns are ignored; blank numeric cells become NaN.

package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// readCSV returns every data row keyed by lower-cased header.
func readCSV(path string) ([]map[string]string, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var headers []string
	var out []map[string]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", path, err)
		}
		if headers == nil {
			headers = make([]string, len(rec))
			for j, h := range rec {
				headers[j] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
			}
			continue
		}
		row := make(map[string]string, len(headers))
		for j, h := range headers {
			if j < len(rec) {
				row[h] = strings.TrimSpace(rec[j])
			}
		}
		out = append(out, row)
	}
	return out, headers, nil
}

// parseDate supports YYYY-MM-DD, RFC3339 or UNIX seconds; results are UTC days.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if d, err := time.Parse("2006-01-02", s); err == nil {
		return d, nil
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		ts = ts.UTC()
		return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		ts := time.Unix(sec, 0).UTC()
		return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("bad date: %q", s)
}

// parseNum returns NaN for a blank or unparsable cell.
func parseNum(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	switch strings.ToLower(s) {
	case "true":
		return 1
	case "false":
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func dayKey(d time.Time) string { return d.Format("2006-01-02") }

// SalesRow is one (date, store, family) line of train.csv.
type SalesRow struct {
	Date        time.Time
	StoreNbr    int
	Family      string
	Sales       float64
	OnPromotion float64
}

// Store is one line of stores.csv.
type Store struct {
	StoreNbr int
	City     string
	State    string
	Type     string
	Cluster  int
}

type oilQuote struct {
	Date  time.Time
	Price float64
}

// RawData is every source table, loaded but not yet merged.
type RawData struct {
	Sales        []SalesRow
	Stores       map[int]Store
	Oil          []oilQuote         // sorted by date
	Holidays     map[string]bool    // day -> observed holiday
	Transactions map[string]float64 // day|store -> count
}

// LoadRawData reads the CSVs named in cfg. Only the train file is mandatory.
func LoadRawData(cfg DataConfig) (*RawData, error) {
	logger.Info("loading raw data", zap.String("path", cfg.RawPath))
	raw := &RawData{
		Stores:       map[int]Store{},
		Holidays:     map[string]bool{},
		Transactions: map[string]float64{},
	}

	rows, _, err := readCSV(filepath.Join(cfg.RawPath, cfg.Files.Train))
	if err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}
	for _, r := range rows {
		d, err := parseDate(r["date"])
		if err != nil {
			continue
		}
		sn, err := strconv.Atoi(r["store_nbr"])
		if err != nil {
			continue
		}
		raw.Sales = append(raw.Sales, SalesRow{
			Date:        d,
			StoreNbr:    sn,
			Family:      r["family"],
			Sales:       parseNum(r["sales"]),
			OnPromotion: parseNum(r["onpromotion"]),
		})
	}

	if rows, ok := readOptional(cfg.RawPath, cfg.Files.Stores); ok {
		for _, r := range rows {
			sn, err := strconv.Atoi(r["store_nbr"])
			if err != nil {
				continue
			}
			cl, _ := strconv.Atoi(r["cluster"])
			raw.Stores[sn] = Store{StoreNbr: sn, City: r["city"], State: r["state"], Type: r["type"], Cluster: cl}
		}
	}

	if rows, ok := readOptional(cfg.RawPath, cfg.Files.Oil); ok {
		for _, r := range rows {
			d, err := parseDate(r["date"])
			if err != nil {
				continue
			}
			// blank quotes are dropped so the previous price carries forward
			if px := parseNum(r["dcoilwtico"]); !math.IsNaN(px) {
				raw.Oil = append(raw.Oil, oilQuote{Date: d, Price: px})
			}
		}
		sort.Slice(raw.Oil, func(i, j int) bool { return raw.Oil[i].Date.Before(raw.Oil[j].Date) })
	}

	if rows, ok := readOptional(cfg.RawPath, cfg.Files.Holidays); ok {
		for _, r := range rows {
			d, err := parseDate(r["date"])
			if err != nil {
				continue
			}
			if parseNum(r["transferred"]) == 1 {
				continue
			}
			raw.Holidays[dayKey(d)] = true
		}
	}

	if rows, ok := readOptional(cfg.RawPath, cfg.Files.Transactions); ok {
		for _, r := range rows {
			d, err := parseDate(r["date"])
			if err != nil {
				continue
			}
			raw.Transactions[dayKey(d)+"|"+r["store_nbr"]] = parseNum(r["transactions"])
		}
	}

	logger.Info("raw data loaded",
		zap.Int("sales_rows", len(raw.Sales)),
		zap.Int("stores", len(raw.Stores)),
		zap.Int("oil_quotes", len(raw.Oil)),
		zap.Int("holidays", len(raw.Holidays)),
		zap.Int("transactions", len(raw.Transactions)))
	return raw, nil
}

func readOptional(dir, name string) ([]map[string]string, bool) {
	if strings.TrimSpace(name) == "" {
		return nil, false
	}
	rows, _, err := readCSV(filepath.Join(dir, name))
	if err != nil {
		logger.Warn("optional source unavailable", zap.String("file", name), zap.Error(err))
		return nil, false
	}
	return rows, true
}

// oilOn returns the forward-filled oil price for day d.
func (raw *RawData) oilOn(d time.Time) float64 {
	if len(raw.Oil) == 0 || d.After(raw.Oil[len(raw.Oil)-1].Date) {
		return math.NaN()
	}
	i := sort.Search(len(raw.Oil), func(i int) bool { return raw.Oil[i].Date.After(d) })
	if i == 0 {
		return math.NaN()
	}
	return raw.Oil[i-1].Price
}

// MergeSeries filters to one store and family and joins the side tables.
func MergeSeries(raw *RawData, storeNbr int, family string) ([]RawRecord, error) {
	if len(raw.Stores) > 0 {
		if _, ok := raw.Stores[storeNbr]; !ok {
			return nil, fmt.Errorf("store %d not in stores table", storeNbr)
		}
	}
	byDay := map[string]RawRecord{}
	for _, s := range raw.Sales {
		if s.StoreNbr != storeNbr || !strings.EqualFold(s.Family, family) {
			continue
		}
		k := dayKey(s.Date)
		if _, dup := byDay[k]; dup {
			continue
		}
		tx, ok := raw.Transactions[k+"|"+strconv.Itoa(storeNbr)]
		if !ok {
			tx = math.NaN()
		}
		byDay[k] = RawRecord{
			Date:         s.Date,
			Sales:        s.Sales,
			OnPromotion:  s.OnPromotion,
			OilPrice:     raw.oilOn(s.Date),
			IsHoliday:    boolFloat(raw.Holidays[k]),
			Transactions: tx,
		}
	}
	if len(byDay) == 0 {
		return nil, fmt.Errorf("no rows for store %d family %q", storeNbr, family)
	}
	out := make([]RawRecord, 0, len(byDay))
	for _, r := range byDay {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	logger.Info("series merged", zap.Int("store", storeNbr), zap.String("family", family), zap.Int("rows", len(out)))
	return out, nil
}

// LoadDemoCSV reads an already-merged series. Raw columns absent from the
// header stay absent so the feature builder can report them.
func LoadDemoCSV(path string) (RawTable, error) {
	rows, headers, err := readCSV(path)
	if err != nil {
		return RawTable{}, err
	}
	present := map[string]bool{}
	for _, h := range headers {
		present[h] = true
	}
	t := RawTable{Columns: map[string][]float64{}}
	if present["date"] {
		t.Dates = []time.Time{}
	}
	for _, c := range rawColumns {
		if present[c] {
			t.Columns[c] = []float64{}
		}
	}
	type dated struct {
		d    time.Time
		vals map[string]float64
	}
	var recs []dated
	for _, r := range rows {
		var d time.Time
		if present["date"] {
			if d, err = parseDate(r["date"]); err != nil {
				continue
			}
		}
		vals := map[string]float64{}
		for c := range t.Columns {
			vals[c] = parseNum(r[c])
		}
		recs = append(recs, dated{d: d, vals: vals})
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].d.Before(recs[j].d) })
	for _, r := range recs {
		if t.Dates != nil {
			t.Dates = append(t.Dates, r.d)
		}
		for c := range t.Columns {
			t.Columns[c] = append(t.Columns[c], r.vals[c])
		}
	}
	return t, nil
}

// TailRaw keeps the last n rows of a table (n <= 0 keeps everything).
func TailRaw(t RawTable, n int) RawTable {
	if n <= 0 || t.Dates == nil || n >= t.Len() {
		return t
	}
	start := t.Len() - n
	out := RawTable{Dates: t.Dates[start:], Columns: make(map[string][]float64, len(t.Columns))}
	for c, v := range t.Columns {
		if len(v) >= start {
			out.Columns[c] = v[start:]
		} else {
			out.Columns[c] = v
		}
	}
	return out
}

// ErrNoData is returned when neither the raw files nor the demo file exist.
var ErrNoData = errors.New("no data found: provide data/raw/train.csv or demo_data.csv")

// LoadSeries prefers the full raw pipeline and falls back to the demo file.
func LoadSeries(cfg DataConfig) (RawTable, error) {
	trainPath := filepath.Join(cfg.RawPath, cfg.Files.Train)
	if _, err := os.Stat(trainPath); err == nil {
		raw, err := LoadRawData(cfg)
		if err != nil {
			return RawTable{}, err
		}
		recs, err := MergeSeries(raw, cfg.StoreNbr, cfg.Family)
		if err != nil {
			return RawTable{}, err
		}
		return TailRaw(NewRawTable(recs), cfg.TailRows), nil
	}
	if cfg.DemoCSV != "" {
		if _, err := os.Stat(cfg.DemoCSV); err == nil {
			logger.Warn("full data not found, using demo data", zap.String("path", cfg.DemoCSV))
			t, err := LoadDemoCSV(cfg.DemoCSV)
			if err != nil {
				return RawTable{}, err
			}
			return TailRaw(t, cfg.TailRows), nil
		}
	}
	return RawTable{}, ErrNoData
}
