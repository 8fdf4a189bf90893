package timeseries

import (
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
)

// Point is a single observation of a series.
type Point struct {
	Period time.Time `json:"period"`
	Value  float64   `json:"value"`
}

// Series is an ordered, immutable sequence of points tagged with the
// request that produced it. Periods are strictly ascending.
// Operations that change the data return a new Series.
type Series struct {
	request   Request
	points    []Point
	fetchID   string
	fetchedAt time.Time
}

// NewSeries builds a Series from points that are already ordered and unique.
// Use Normalize for raw provider output.
func NewSeries(req Request, points []Point) *Series {
	owned := make([]Point, len(points))
	copy(owned, points)

	return &Series{
		request:   req,
		points:    owned,
		fetchID:   uuid.New().String(),
		fetchedAt: time.Now().UTC(),
	}
}

// Request returns the request the series was fetched with.
func (s *Series) Request() Request { return s.request }

// FetchID identifies the fetch that produced this series.
func (s *Series) FetchID() string { return s.fetchID }

// FetchedAt is when the series was created.
func (s *Series) FetchedAt() time.Time { return s.fetchedAt }

// Len returns the number of points.
func (s *Series) Len() int { return len(s.points) }

// At returns the i-th point.
func (s *Series) At(i int) Point { return s.points[i] }

// Points returns a copy of the points.
func (s *Series) Points() []Point {
	out := make([]Point, len(s.points))
	copy(out, s.points)

	return out
}

// All iterates over the points in period order.
func (s *Series) All() iter.Seq2[int, Point] {
	return func(yield func(int, Point) bool) {
		for i, p := range s.points {
			if !yield(i, p) {
				return
			}
		}
	}
}

// First returns the earliest point, if any.
func (s *Series) First() optional.Option[Point] {
	if len(s.points) == 0 {
		return optional.None[Point]()
	}

	return optional.Some(s.points[0])
}

// Last returns the latest point, if any.
func (s *Series) Last() optional.Option[Point] {
	if len(s.points) == 0 {
		return optional.None[Point]()
	}

	return optional.Some(s.points[len(s.points)-1])
}

// ValueAt returns the value observed at period, if present.
func (s *Series) ValueAt(period time.Time) optional.Option[float64] {
	period = period.UTC()
	for _, p := range s.points {
		if p.Period.Equal(period) {
			return optional.Some(p.Value)
		}

		if p.Period.After(period) {
			break
		}
	}

	return optional.None[float64]()
}

// Between returns a derived series holding the points in [from, to].
func (s *Series) Between(from, to time.Time) *Series {
	out := make([]Point, 0, len(s.points))
	for _, p := range s.points {
		if p.Period.Before(from) || p.Period.After(to) {
			continue
		}

		out = append(out, p)
	}

	return s.derive(out)
}

// Map returns a derived series with fn applied to every value.
func (s *Series) Map(fn func(Point) float64) *Series {
	out := make([]Point, len(s.points))
	for i, p := range s.points {
		out[i] = Point{Period: p.Period, Value: fn(p)}
	}

	return s.derive(out)
}

// Equal reports whether both series hold the same points.
func (s *Series) Equal(other *Series) bool {
	if other == nil || len(s.points) != len(other.points) {
		return false
	}

	for i, p := range s.points {
		q := other.points[i]
		if !p.Period.Equal(q.Period) || p.Value != q.Value {
			return false
		}
	}

	return true
}

func (s *Series) derive(points []Point) *Series {
	return &Series{
		request:   s.request,
		points:    points,
		fetchID:   s.fetchID,
		fetchedAt: s.fetchedAt,
	}
}
