// Package testhelper holds fixtures shared by package and end-to-end tests.
package testhelper

import (
	"fmt"
	"strconv"
	"time"

	"github.com/guregu/null/v6"
	"github.com/rxtech-lab/econ-series/pkg/timeseries"
)

// CPISymbol is the FRED id the CPI fixture is served under.
const CPISymbol = "USACPALTT01CTGYM"

// FixtureRow is one observation in FRED's wire shape. Missing values are ".".
type FixtureRow struct {
	Date  string
	Value string
}

// cpiYoY is a CPI-shaped year-over-year inflation path, one row per year
// starting in 2012. The minimum is May 2020.
var cpiYoY = [][]float64{
	{2.9, 2.9, 2.7, 2.3, 1.7, 1.7, 1.4, 1.7, 2.0, 2.2, 1.8, 1.7},
	{1.6, 2.0, 1.5, 1.1, 1.4, 1.8, 2.0, 1.5, 1.2, -1, 1.2, 1.5},
	{1.6, 1.1, 1.5, 2.0, 2.1, 2.1, 2.0, 1.7, 1.7, 1.7, 1.3, 0.8},
	{0.2, 0.3, 0.2, 0.2, 0.3, 0.3, 0.4, 0.4, 0.3, 0.4, 0.5, 0.7},
	{1.4, 1.0, 0.9, 1.1, 1.0, 1.0, 0.8, 1.1, 1.5, 1.6, 1.7, 2.1},
	{2.5, 2.7, 2.4, 2.2, 1.9, 1.6, 1.7, 1.9, 2.2, 2.0, 2.2, 2.1},
	{2.1, 2.2, 2.4, 2.5, 2.8, 2.9, 2.9, 2.7, 2.3, 2.5, 2.2, 1.9},
	{1.6, 1.5, 1.9, 2.0, 1.8, 1.6, 1.8, 1.7, 1.7, 1.8, 2.1, 2.3},
	{2.5, 2.3, 1.5, 0.3, 0.1, 0.6, 1.0, 1.3, 1.4, 1.2, 1.2, 1.4},
	{1.4, 1.7, 2.6, 4.2, 5.0, 5.4, 5.4, 5.3, 5.4, 6.2, 6.8, 7.0},
	{7.5, 7.9, 8.5, 8.3, 8.6, 9.1, 8.5, 8.3, 8.2, 7.7, 7.1, 6.5},
	{6.4, 6.0, 5.0, 4.9, 4.0, 3.0, 3.2, 3.7, 3.7, 3.2, 3.1, 3.4},
	{3.1, 3.1},
}

// CPIFixture returns monthly rows from 2012-01-01 to 2024-02-01.
// October 2013 is reported as missing.
func CPIFixture() []FixtureRow {
	rows := make([]FixtureRow, 0, 146)

	for y, months := range cpiYoY {
		for m, v := range months {
			date := time.Date(2012+y, time.Month(m+1), 1, 0, 0, 0, 0, time.UTC)

			value := strconv.FormatFloat(v, 'f', -1, 64)
			if v < 0 {
				value = "."
			}

			rows = append(rows, FixtureRow{Date: date.Format(timeseries.DateLayout), Value: value})
		}
	}

	return rows
}

// CPIObservations converts CPIFixture into raw observations.
func CPIObservations() []timeseries.RawObservation {
	rows := CPIFixture()
	out := make([]timeseries.RawObservation, 0, len(rows))

	for _, row := range rows {
		date, err := time.Parse(timeseries.DateLayout, row.Date)
		if err != nil {
			panic(fmt.Sprintf("bad fixture date %q: %v", row.Date, err))
		}

		value := null.Float{}
		if f, err := strconv.ParseFloat(row.Value, 64); err == nil {
			value = null.FloatFrom(f)
		}

		out = append(out, timeseries.RawObservation{Date: date, Value: value})
	}

	return out
}

// Date is a terse UTC calendar date constructor for tests.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
