package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/guregu/null/v6"
	"github.com/rxtech-lab/econ-series/pkg/timeseries"
)

// DataGenerator generates raw provider observations for testing normalization.
// The output deliberately looks like a sloppy provider: gaps, repeated
// periods and rows out of order.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how observations are generated.
type GeneratorConfig struct {
	// Start is the first period of the series
	Start time.Time
	// Periodicity sets the spacing between periods
	Periodicity timeseries.Periodicity
	// Count is the number of distinct periods to generate
	Count int
	// InitialValue is the starting level
	InitialValue float64
	// Volatility is the standard deviation of each step
	Volatility float64
	// GapRate is the share of periods reported as missing (0.0 to 1.0)
	GapRate float64
	// DuplicateRate is the share of periods reported twice (0.0 to 1.0)
	DuplicateRate float64
	// Shuffle returns the rows in random order
	Shuffle bool
}

// DefaultConfig returns a monthly series with a few gaps and duplicates.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Start:         time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC),
		Periodicity:   timeseries.PeriodicityMonthly,
		Count:         146,
		InitialValue:  2.0,
		Volatility:    0.3,
		GapRate:       0.05,
		DuplicateRate: 0.05,
		Shuffle:       true,
	}
}

// Step advances t by one period.
func Step(t time.Time, p timeseries.Periodicity) time.Time {
	switch p {
	case timeseries.PeriodicityWeekly:
		return t.AddDate(0, 0, 7)
	case timeseries.PeriodicityMonthly:
		return t.AddDate(0, 1, 0)
	case timeseries.PeriodicityAnnual:
		return t.AddDate(1, 0, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

// Generate creates raw observations following a Gaussian random walk.
func (g *DataGenerator) Generate(config GeneratorConfig) []timeseries.RawObservation {
	data := make([]timeseries.RawObservation, 0, config.Count)
	current := config.InitialValue
	period := config.Start

	for i := 0; i < config.Count; i++ {
		// Box-Muller transform for a normal step
		u1 := g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
		current += config.Volatility * z

		value := null.FloatFrom(roundToDecimals(current, 2))
		if g.rng.Float64() < config.GapRate {
			value = null.Float{}
		}

		if value.Valid && g.rng.Float64() < config.DuplicateRate {
			// An earlier revision of the same period; the later row should win.
			data = append(data, timeseries.RawObservation{Date: period, Value: null.FloatFrom(-999)})
		}

		data = append(data, timeseries.RawObservation{Date: period, Value: value})
		period = Step(period, config.Periodicity)
	}

	if config.Shuffle {
		g.shuffleStable(data)
	}

	return data
}

// shuffleStable shuffles rows while keeping repeated periods in their original relative order.
func (g *DataGenerator) shuffleStable(data []timeseries.RawObservation) {
	type group struct {
		rows []timeseries.RawObservation
	}

	var groups []group
	for _, row := range data {
		if n := len(groups); n > 0 && groups[n-1].rows[0].Date.Equal(row.Date) {
			groups[n-1].rows = append(groups[n-1].rows, row)

			continue
		}

		groups = append(groups, group{rows: []timeseries.RawObservation{row}})
	}

	g.rng.Shuffle(len(groups), func(i, j int) { groups[i], groups[j] = groups[j], groups[i] })

	data = data[:0]
	for _, grp := range groups {
		data = append(data, grp.rows...)
	}
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))

	return math.Round(val*pow) / pow
}
