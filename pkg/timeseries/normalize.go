package timeseries

import (
	"math"
	"sort"
	"time"

	"github.com/guregu/null/v6"
	"github.com/rxtech-lab/econ-series/pkg/errors"
)

// RawObservation is a provider row before normalization.
// Gaps reported by the provider are kept as invalid values.
type RawObservation struct {
	Date  time.Time
	Value null.Float
}

// Normalize turns raw provider output into a Series for req.
//
// Missing and NaN values are dropped, dates are snapped to the request
// periodicity, rows outside the request window are discarded, and when a
// provider reports the same period more than once the last row wins.
// An empty result fails with ErrCodeRangeUnavailable.
func Normalize(req Request, raw []RawObservation) (*Series, error) {
	points := make([]Point, 0, len(raw))
	for _, obs := range raw {
		if !obs.Value.Valid {
			continue
		}

		value := obs.Value.ValueOrZero()
		if math.IsNaN(value) || math.IsInf(value, 0) {
			continue
		}

		period := req.Periodicity.Truncate(obs.Date)
		if !req.Contains(period) {
			continue
		}

		points = append(points, Point{Period: period, Value: value})
	}

	// Stable so that duplicates keep provider order and the last one wins below.
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Period.Before(points[j].Period)
	})

	unique := points[:0]
	for _, p := range points {
		if n := len(unique); n > 0 && unique[n-1].Period.Equal(p.Period) {
			unique[n-1] = p

			continue
		}

		unique = append(unique, p)
	}

	if len(unique) == 0 {
		start, end := req.Window()

		return nil, errors.Newf(errors.ErrCodeRangeUnavailable,
			"no observations for %s between %s and %s",
			req.Symbol, start.Format(DateLayout), end.Format(DateLayout))
	}

	return NewSeries(req, unique), nil
}
