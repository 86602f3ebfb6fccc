// tools/make_demo_data.go
// CLI to write a synthetic, already-merged demo_data.csv for one series.
//
// Usage:
//   go run tools/make_demo_data.go -out demo_data.csv -days 1000 -seed 7
//
// Notes:
// - Columns match what the loader expects: date,sales,onpromotion,dcoilwtico,is_holiday,transactions.
// - Sales carry a weekly cycle, a payday bump, a promotion lift and noise.
// - Oil is a random walk with blank cells on weekends, like the real feed.
// - Use -drop to leave a column out and exercise the missing-field path.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"
)

func main() {
	out := flag.String("out", "demo_data.csv", "output CSV path")
	days := flag.Int("days", 1000, "number of days")
	start := flag.String("start", "2014-01-01", "first date (YYYY-MM-DD)")
	seed := flag.Int64("seed", 7, "random seed")
	drop := flag.String("drop", "", "comma-separated columns to omit (e.g. transactions)")
	flag.Parse()

	d0, err := time.Parse("2006-01-02", *start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad -start: %v\n", err)
		os.Exit(2)
	}
	skip := map[string]bool{}
	for _, c := range strings.Split(*drop, ",") {
		if c = strings.TrimSpace(c); c != "" {
			skip[c] = true
		}
	}

	cols := []string{"date", "sales", "onpromotion", "dcoilwtico", "is_holiday", "transactions"}
	var header []string
	for _, c := range cols {
		if !skip[c] {
			header = append(header, c)
		}
	}

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	_ = w.Write(header)

	rng := rand.New(rand.NewSource(*seed))
	oil := 95.0
	for i := 0; i < *days; i++ {
		d := d0.AddDate(0, 0, i)
		weekend := d.Weekday() == time.Saturday || d.Weekday() == time.Sunday
		payday := d.Day() == 15 || d.AddDate(0, 0, 1).Month() != d.Month()
		promo := 0
		if rng.Float64() < 0.25 {
			promo = 1
		}
		holiday := 0
		if rng.Float64() < 0.03 {
			holiday = 1
		}
		oil = math.Max(20, oil+rng.NormFloat64()*0.8)

		sales := 2200 + 400*math.Sin(2*math.Pi*float64(d.Weekday())/7)
		if payday {
			sales += 250
		}
		if promo == 1 {
			sales *= 1.15
		}
		if holiday == 1 {
			sales *= 0.6
		}
		sales = math.Max(0, sales+rng.NormFloat64()*120)
		tx := int(sales/1.4 + rng.NormFloat64()*40)

		vals := map[string]string{
			"date":         d.Format("2006-01-02"),
			"sales":        strconv.FormatFloat(sales, 'f', 3, 64),
			"onpromotion":  strconv.Itoa(promo),
			"dcoilwtico":   strconv.FormatFloat(oil, 'f', 2, 64),
			"is_holiday":   strconv.Itoa(holiday),
			"transactions": strconv.Itoa(tx),
		}
		if weekend {
			vals["dcoilwtico"] = ""
		}
		row := make([]string, 0, len(header))
		for _, c := range header {
			row = append(row, vals[c])
		}
		_ = w.Write(row)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		fmt.Fprintf(os.Stderr, "write: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %d days to %s\n", *days, *out)
}
