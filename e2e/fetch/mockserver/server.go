// Package mockserver provides a mock FRED API server for testing.
// It implements the series metadata and observations endpoints with
// FRED's JSON shapes, error bodies and frequency aggregation.
package mockserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rxtech-lab/econ-series/internal/testhelper"
	"github.com/rxtech-lab/econ-series/pkg/timeseries"
)

const dateLayout = "2006-01-02"

// SeriesFixture is a series served by the mock.
type SeriesFixture struct {
	ID             string
	Title          string
	Frequency      string
	FrequencyShort string
	Rows           []testhelper.FixtureRow
}

// MockFREDServer is an httptest server imitating api.stlouisfed.org.
type MockFREDServer struct {
	mu sync.RWMutex

	server *httptest.Server
	apiKey string
	series map[string]SeriesFixture

	// failNext answers the next N requests with 503.
	failNext int
	requests int
}

// NewMockFREDServer starts a server that accepts apiKey and serves the CPI fixture.
func NewMockFREDServer(apiKey string) *MockFREDServer {
	s := &MockFREDServer{
		apiKey: apiKey,
		series: make(map[string]SeriesFixture),
	}

	s.AddSeries(SeriesFixture{
		ID:             testhelper.CPISymbol,
		Title:          "Consumer Price Index: All Items: Total for United States",
		Frequency:      "Monthly",
		FrequencyShort: "M",
		Rows:           testhelper.CPIFixture(),
	})

	router := mux.NewRouter()
	router.Use(s.countAndFail)
	router.HandleFunc("/fred/series", s.handleSeries).Methods(http.MethodGet)
	router.HandleFunc("/fred/series/observations", s.handleObservations).Methods(http.MethodGet)

	s.server = httptest.NewServer(router)

	return s
}

// URL is the base URL to configure the FRED client with.
func (s *MockFREDServer) URL() string {
	return s.server.URL
}

// Close shuts the server down.
func (s *MockFREDServer) Close() {
	s.server.Close()
}

// AddSeries registers or replaces a series.
func (s *MockFREDServer) AddSeries(f SeriesFixture) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.series[f.ID] = f
}

// FailNext makes the next n requests fail with 503.
func (s *MockFREDServer) FailNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failNext = n
}

// Requests returns the number of requests received.
func (s *MockFREDServer) Requests() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.requests
}

func (s *MockFREDServer) countAndFail(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests++
		fail := s.failNext > 0
		if fail {
			s.failNext--
		}
		s.mu.Unlock()

		if fail {
			writeError(w, http.StatusServiceUnavailable, "Service Unavailable")

			return
		}

		if r.URL.Query().Get("api_key") != s.apiKey {
			writeError(w, http.StatusBadRequest,
				"Bad Request.  The value for variable api_key is not registered.  Read https://fred.stlouisfed.org/docs/api/api_key.html for more information.")

			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *MockFREDServer) lookup(w http.ResponseWriter, r *http.Request) (SeriesFixture, bool) {
	s.mu.RLock()
	f, ok := s.series[r.URL.Query().Get("series_id")]
	s.mu.RUnlock()

	if !ok {
		writeError(w, http.StatusBadRequest, "Bad Request.  The series does not exist.")
	}

	return f, ok
}

func (s *MockFREDServer) handleSeries(w http.ResponseWriter, r *http.Request) {
	f, ok := s.lookup(w, r)
	if !ok {
		return
	}

	start, end := "", ""
	if len(f.Rows) > 0 {
		start, end = f.Rows[0].Date, f.Rows[len(f.Rows)-1].Date
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"seriess": []map[string]string{{
			"id":                f.ID,
			"title":             f.Title,
			"observation_start": start,
			"observation_end":   end,
			"frequency":         f.Frequency,
			"frequency_short":   f.FrequencyShort,
			"units":             "Percent",
		}},
	})
}

func (s *MockFREDServer) handleObservations(w http.ResponseWriter, r *http.Request) {
	f, ok := s.lookup(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	from := query.Get("observation_start")
	to := query.Get("observation_end")

	rows := make([]testhelper.FixtureRow, 0, len(f.Rows))
	for _, row := range f.Rows {
		if (from != "" && row.Date < from) || (to != "" && row.Date > to) {
			continue
		}

		rows = append(rows, row)
	}

	if freq := query.Get("frequency"); freq != "" {
		periodicity, err := timeseries.ParsePeriodicity(freq)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Bad Request.  Variable frequency is not one of the following values.")

			return
		}

		rows = aggregate(rows, periodicity)
	}

	observations := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		observations = append(observations, map[string]string{
			"realtime_start": "2024-03-12",
			"realtime_end":   "2024-03-12",
			"date":           row.Date,
			"value":          row.Value,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"observation_start": from,
		"observation_end":   to,
		"count":             len(observations),
		"observations":      observations,
	})
}

// aggregate averages rows per period, skipping missing values.
func aggregate(rows []testhelper.FixtureRow, p timeseries.Periodicity) []testhelper.FixtureRow {
	type bucket struct {
		sum   float64
		count int
	}

	buckets := make(map[string]*bucket)

	var order []string

	for _, row := range rows {
		date, err := time.Parse(dateLayout, row.Date)
		if err != nil {
			continue
		}

		key := p.Truncate(date).Format(dateLayout)

		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
			order = append(order, key)
		}

		if v, err := strconv.ParseFloat(row.Value, 64); err == nil {
			b.sum += v
			b.count++
		}
	}

	sort.Strings(order)

	out := make([]testhelper.FixtureRow, 0, len(order))
	for _, key := range order {
		b := buckets[key]

		value := "."
		if b.count > 0 {
			value = strconv.FormatFloat(b.sum/float64(b.count), 'f', 3, 64)
		}

		out = append(out, testhelper.FixtureRow{Date: key, Value: value})
	}

	return out
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"error_code":    status,
		"error_message": message,
	})
}
