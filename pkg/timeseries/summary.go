package timeseries

import (
	"math"
	"sort"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
)

// Summary holds descriptive statistics of a series.
type Summary struct {
	Count  int
	First  Point
	Last   Point
	Min    Point
	Max    Point
	Mean   float64
	Median float64
	// StdDev is the sample standard deviation (n-1). Zero for a single point.
	StdDev float64
}

// Summary computes descriptive statistics. Empty series have none.
func (s *Series) Summary() optional.Option[Summary] {
	n := len(s.points)
	if n == 0 {
		return optional.None[Summary]()
	}

	sum := decimal.Zero
	minPoint, maxPoint := s.points[0], s.points[0]
	values := make([]float64, n)

	for i, p := range s.points {
		values[i] = p.Value
		sum = sum.Add(decimal.NewFromFloat(p.Value))

		// Strict comparisons keep the earliest period on ties.
		if p.Value < minPoint.Value {
			minPoint = p
		}

		if p.Value > maxPoint.Value {
			maxPoint = p
		}
	}

	mean, _ := sum.Div(decimal.NewFromInt(int64(n))).Float64()

	var variance float64
	if n > 1 {
		for _, v := range values {
			d := v - mean
			variance += d * d
		}

		variance /= float64(n - 1)
	}

	sort.Float64s(values)

	median := values[n/2]
	if n%2 == 0 {
		median = (values[n/2-1] + values[n/2]) / 2
	}

	return optional.Some(Summary{
		Count:  n,
		First:  s.points[0],
		Last:   s.points[n-1],
		Min:    minPoint,
		Max:    maxPoint,
		Mean:   mean,
		Median: median,
		StdDev: math.Sqrt(variance),
	})
}
