package main

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawFixture(t *testing.T) DataConfig {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "train.csv", "\ufeffid,date,store_nbr,family,sales,onpromotion\n"+
		"0,2017-01-06,1,GROCERY I,100,0\n"+
		"1,2017-01-06,2,GROCERY I,999,1\n"+
		"2,2017-01-07,1,GROCERY I,120,3\n"+
		"3,2017-01-04,1,GROCERY I,90,0\n"+
		"4,2017-01-09,1,grocery i,130,1\n"+
		"5,2017-01-09,1,DAIRY,5,0\n"+
		"6,2017-01-10,1,GROCERY I,140,0\n")
	writeFile(t, dir, "stores.csv", "store_nbr,city,state,type,cluster\n1,Quito,Pichincha,D,13\n2,Quito,Pichincha,D,13\n")
	writeFile(t, dir, "oil.csv", "date,dcoilwtico\n2017-01-05,50.1\n2017-01-06,52\n2017-01-09,\n2017-01-10,54\n")
	writeFile(t, dir, "holidays_events.csv", "date,type,locale,locale_name,description,transferred\n"+
		"2017-01-07,Holiday,National,Ecuador,Fiesta,False\n"+
		"2017-01-09,Holiday,National,Ecuador,Moved,True\n")
	writeFile(t, dir, "transactions.csv", "date,store_nbr,transactions\n2017-01-06,1,700\n2017-01-07,1,710\n2017-01-09,2,1\n")

	cfg := defaultConfig().Data
	cfg.RawPath = dir
	cfg.DemoCSV = ""
	return cfg
}

func TestLoadRawData_AndMerge(t *testing.T) {
	cfg := rawFixture(t)
	raw, err := LoadRawData(cfg)
	require.NoError(t, err)
	assert.Len(t, raw.Sales, 7)
	assert.Len(t, raw.Stores, 2)
	assert.Len(t, raw.Oil, 3, "blank quote is dropped")
	assert.True(t, raw.Holidays["2017-01-07"])
	assert.False(t, raw.Holidays["2017-01-09"], "transferred holiday")

	recs, err := MergeSeries(raw, 1, "GROCERY I")
	require.NoError(t, err)
	require.Len(t, recs, 5)

	var dates []string
	for _, r := range recs {
		dates = append(dates, dayKey(r.Date))
	}
	assert.Equal(t, []string{"2017-01-04", "2017-01-06", "2017-01-07", "2017-01-09", "2017-01-10"}, dates)

	// before the first quote
	assert.True(t, math.IsNaN(recs[0].OilPrice))
	assert.Equal(t, 52.0, recs[1].OilPrice)
	// weekend and blank-quote days carry Friday's price
	assert.Equal(t, 52.0, recs[2].OilPrice)
	assert.Equal(t, 52.0, recs[3].OilPrice)
	assert.Equal(t, 54.0, recs[4].OilPrice)
	// after the last quote
	assert.True(t, math.IsNaN(raw.oilOn(day("2017-01-12"))))

	assert.Equal(t, 0.0, recs[1].IsHoliday)
	assert.Equal(t, 1.0, recs[2].IsHoliday)
	assert.Equal(t, 0.0, recs[3].IsHoliday)

	assert.Equal(t, 700.0, recs[1].Transactions)
	assert.True(t, math.IsNaN(recs[3].Transactions), "other store's count does not leak")
	assert.Equal(t, 3.0, recs[2].OnPromotion)
	assert.Equal(t, 130.0, recs[3].Sales, "family match is case-insensitive")
}

func TestMergeSeries_UnknownStoreOrFamily(t *testing.T) {
	raw, err := LoadRawData(rawFixture(t))
	require.NoError(t, err)
	_, err = MergeSeries(raw, 99, "GROCERY I")
	assert.Error(t, err)
	_, err = MergeSeries(raw, 1, "BOOKS")
	assert.Error(t, err)
}

func TestLoadSeries_PrefersRawData(t *testing.T) {
	cfg := rawFixture(t)
	cfg.TailRows = 3
	series, err := LoadSeries(cfg)
	require.NoError(t, err)
	require.Equal(t, 3, series.Len())
	assert.Equal(t, "2017-01-07", dayKey(series.Dates[0]))
	assert.Equal(t, []float64{120, 130, 140}, series.Columns[ColSales])
}

func TestLoadDemoCSV_MissingColumnStaysAbsent(t *testing.T) {
	p := writeFile(t, t.TempDir(), "demo_data.csv",
		"Date,Sales,onpromotion,dcoilwtico,is_holiday,extra\n"+
			"2024-01-03,30,1,,0,x\n"+
			"2024-01-01,10,0,70,1,x\n"+
			"2024-01-02,20,0,71,0,x\n")
	tbl, err := LoadDemoCSV(p)
	require.NoError(t, err)
	require.Equal(t, 3, tbl.Len())
	assert.Equal(t, "2024-01-01", dayKey(tbl.Dates[0]))
	assert.Equal(t, []float64{10, 20, 30}, tbl.Columns[ColSales])
	assert.True(t, math.IsNaN(tbl.Columns[ColOilPrice][2]))
	_, ok := tbl.Columns[ColTransactions]
	assert.False(t, ok)
	_, ok = tbl.Columns["extra"]
	assert.False(t, ok)

	table, diags, err := BuildFeatures(tbl, MissingSalesSoft)
	require.NoError(t, err)
	assert.Len(t, table.Columns, 7)
	fields := map[string]bool{}
	for _, d := range diags {
		fields[d.Field] = true
	}
	assert.True(t, fields[ColTransactions])
	assert.True(t, fields[ColOilPrice])
}

func TestLoadDemoCSV_NoDateColumn(t *testing.T) {
	p := writeFile(t, t.TempDir(), "demo.csv", "sales,onpromotion\n1,0\n2,1\n")
	tbl, err := LoadDemoCSV(p)
	require.NoError(t, err)
	assert.Nil(t, tbl.Dates)
	_, _, err = BuildFeatures(tbl, MissingSalesSoft)
	assert.ErrorIs(t, err, ErrSchema)
}

func TestLoadSeries_DemoFallbackAndNoData(t *testing.T) {
	dir := t.TempDir()
	cfg := defaultConfig().Data
	cfg.RawPath = filepath.Join(dir, "raw")
	cfg.DemoCSV = filepath.Join(dir, "demo_data.csv")
	cfg.TailRows = 0

	_, err := LoadSeries(cfg)
	assert.True(t, errors.Is(err, ErrNoData))

	writeFile(t, dir, "demo_data.csv", "date,sales\n2024-01-01,5\n2024-01-02,6\n")
	series, err := LoadSeries(cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, series.Len())
}

func TestParseDateAndNum(t *testing.T) {
	for _, s := range []string{"2024-03-05", "2024-03-05T18:30:00Z", "1709661000"} {
		d, err := parseDate(s)
		require.NoError(t, err, s)
		assert.Equal(t, "2024-03-05", dayKey(d), s)
	}
	_, err := parseDate("05/03/2024")
	assert.Error(t, err)

	assert.Equal(t, 1.0, parseNum("True"))
	assert.Equal(t, 0.0, parseNum("false"))
	assert.Equal(t, 2.5, parseNum(" 2.5 "))
	assert.True(t, math.IsNaN(parseNum("")))
	assert.True(t, math.IsNaN(parseNum("n/a")))
}

func TestTailRaw(t *testing.T) {
	tbl := NewRawTable(synthRecords(10, "2024-01-01"))
	tail := TailRaw(tbl, 4)
	assert.Equal(t, 4, tail.Len())
	assert.Equal(t, tbl.Dates[6], tail.Dates[0])
	assert.Equal(t, tbl.Columns[ColSales][6:], tail.Columns[ColSales])
	assert.Equal(t, 10, TailRaw(tbl, 0).Len())
	assert.Equal(t, 10, TailRaw(tbl, 50).Len())
}
