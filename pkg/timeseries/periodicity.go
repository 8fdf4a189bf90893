package timeseries

import (
	"strings"
	"time"

	"github.com/rxtech-lab/econ-series/pkg/errors"
)

// Periodicity is the sampling granularity of a series.
type Periodicity string

const (
	PeriodicityDaily   Periodicity = "daily"
	PeriodicityWeekly  Periodicity = "weekly"
	PeriodicityMonthly Periodicity = "monthly"
	PeriodicityAnnual  Periodicity = "annual"
)

// Periodicities lists every periodicity from finest to coarsest.
func Periodicities() []Periodicity {
	return []Periodicity{PeriodicityDaily, PeriodicityWeekly, PeriodicityMonthly, PeriodicityAnnual}
}

// ParsePeriodicity accepts the long names and the single letter
// abbreviations d, w, m and a. Matching is case-insensitive.
func ParsePeriodicity(s string) (Periodicity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "d", "daily", "day":
		return PeriodicityDaily, nil
	case "w", "weekly", "week":
		return PeriodicityWeekly, nil
	case "m", "monthly", "month":
		return PeriodicityMonthly, nil
	case "a", "y", "annual", "yearly", "year":
		return PeriodicityAnnual, nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidPeriodicity, "unknown periodicity %q", s)
	}
}

// Rank orders periodicities from finest (0) to coarsest. Unknown values rank -1.
func (p Periodicity) Rank() int {
	switch p {
	case PeriodicityDaily:
		return 0
	case PeriodicityWeekly:
		return 1
	case PeriodicityMonthly:
		return 2
	case PeriodicityAnnual:
		return 3
	default:
		return -1
	}
}

// IsValid reports whether p is a known periodicity.
func (p Periodicity) IsValid() bool {
	return p.Rank() >= 0
}

// FinerThan reports whether p samples more often than other.
func (p Periodicity) FinerThan(other Periodicity) bool {
	return p.Rank() < other.Rank()
}

// Truncate snaps t to the start of its period in UTC.
// Daily and weekly periods keep the calendar day, since weekly providers
// anchor their weeks on different weekdays.
func (p Periodicity) Truncate(t time.Time) time.Time {
	t = t.UTC()

	switch p {
	case PeriodicityMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	case PeriodicityAnnual:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return startOfDay(t)
	}
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()

	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
