package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/guregu/null/v6"
	"github.com/rxtech-lab/econ-series/pkg/errors"
	"github.com/rxtech-lab/econ-series/pkg/timeseries"
)

const (
	DefaultFREDBaseURL    = "https://api.stlouisfed.org"
	defaultFREDTimeout    = 30 * time.Second
	defaultFREDRetries    = 3
	defaultFREDRetryWait  = 500 * time.Millisecond
	defaultFREDRetryLimit = 5 * time.Second
	fredMissingValue      = "."
)

// FREDConfig configures the FRED client.
type FREDConfig struct {
	APIKey  string
	BaseURL string
	// Timeout bounds a single HTTP attempt.
	Timeout time.Duration
	// RetryCount is the number of retries after the first attempt. Negative disables retries.
	RetryCount   int
	RetryWait    time.Duration
	RetryMaxWait time.Duration
}

// FREDClient downloads series from the St. Louis Fed FRED API.
type FREDClient struct {
	http   *resty.Client
	apiKey string
}

type fredSeriesResponse struct {
	Series []fredSeries `json:"seriess"`
}

type fredSeries struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	ObservationStart string `json:"observation_start"`
	ObservationEnd   string `json:"observation_end"`
	Frequency        string `json:"frequency"`
	FrequencyShort   string `json:"frequency_short"`
	Units            string `json:"units"`
}

type fredObservationsResponse struct {
	Observations []fredObservation `json:"observations"`
}

type fredObservation struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

type fredErrorResponse struct {
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

// fredFrequencyRank places FRED's native frequencies on one scale with
// the requestable periodicities, finest first.
var fredFrequencyRank = map[string]int{
	"D":  0,
	"W":  1,
	"BW": 2,
	"M":  3,
	"Q":  4,
	"SA": 5,
	"A":  6,
}

var fredPeriodicityRank = map[timeseries.Periodicity]int{
	timeseries.PeriodicityDaily:   0,
	timeseries.PeriodicityWeekly:  1,
	timeseries.PeriodicityMonthly: 3,
	timeseries.PeriodicityAnnual:  6,
}

var fredFrequencyParam = map[timeseries.Periodicity]string{
	timeseries.PeriodicityDaily:   "d",
	timeseries.PeriodicityWeekly:  "w",
	timeseries.PeriodicityMonthly: "m",
	timeseries.PeriodicityAnnual:  "a",
}

// NewFREDClient creates a FRED client. An API key is required.
func NewFREDClient(config FREDConfig) (*FREDClient, error) {
	if config.APIKey == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "fred apiKey is required")
	}

	if config.BaseURL == "" {
		config.BaseURL = DefaultFREDBaseURL
	}

	if config.Timeout <= 0 {
		config.Timeout = defaultFREDTimeout
	}

	switch {
	case config.RetryCount == 0:
		config.RetryCount = defaultFREDRetries
	case config.RetryCount < 0:
		config.RetryCount = 0
	}

	if config.RetryWait <= 0 {
		config.RetryWait = defaultFREDRetryWait
	}

	if config.RetryMaxWait <= 0 {
		config.RetryMaxWait = defaultFREDRetryLimit
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(config.BaseURL, "/")).
		SetTimeout(config.Timeout).
		SetRetryCount(config.RetryCount).
		SetRetryWaitTime(config.RetryWait).
		SetRetryMaxWaitTime(config.RetryMaxWait).
		SetHeader("Accept", "application/json").
		AddRetryCondition(shouldRetry)

	return &FREDClient{
		http:   client,
		apiKey: config.APIKey,
	}, nil
}

// shouldRetry retries transport failures, throttling and server errors.
func shouldRetry(resp *resty.Response, err error) bool {
	if err != nil {
		return !isContextError(err)
	}

	if resp == nil {
		return false
	}

	return resp.StatusCode() == http.StatusTooManyRequests || resp.StatusCode() >= http.StatusInternalServerError
}

func (c *FREDClient) Name() timeseries.Source {
	return timeseries.SourceFRED
}

// Observations looks the series up, checks the request against the series
// metadata and then downloads the observations for the window.
func (c *FREDClient) Observations(ctx context.Context, req timeseries.Request) ([]timeseries.RawObservation, error) {
	meta, err := c.series(ctx, req.Symbol)
	if err != nil {
		return nil, err
	}

	nativeRank, ok := fredFrequencyRank[strings.ToUpper(meta.FrequencyShort)]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeResponseParseFailed,
			"fred series %s has unknown frequency %q", req.Symbol, meta.FrequencyShort)
	}

	requestedRank := fredPeriodicityRank[req.Periodicity]
	if requestedRank < nativeRank {
		return nil, errors.Newf(errors.ErrCodeUnsupportedPeriodicity,
			"fred series %s is published %s and cannot be served %s",
			req.Symbol, strings.ToLower(meta.Frequency), req.Periodicity)
	}

	if err := checkAvailableHistory(req, meta); err != nil {
		return nil, err
	}

	start, end := req.Window()
	params := map[string]string{
		"series_id":         req.Symbol,
		"observation_start": start.Format(timeseries.DateLayout),
		"observation_end":   end.Format(timeseries.DateLayout),
		"sort_order":        "asc",
	}

	if requestedRank > nativeRank {
		params["frequency"] = fredFrequencyParam[req.Periodicity]
		params["aggregation_method"] = "avg"
	}

	var body fredObservationsResponse
	if err := c.get(ctx, "/fred/series/observations", params, &body); err != nil {
		return nil, err
	}

	observations := make([]timeseries.RawObservation, 0, len(body.Observations))
	for _, obs := range body.Observations {
		date, err := time.Parse(timeseries.DateLayout, obs.Date)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeResponseParseFailed, err, "invalid fred observation date %q", obs.Date)
		}

		observations = append(observations, timeseries.RawObservation{
			Date:  date,
			Value: parseFREDValue(obs.Value),
		})
	}

	return observations, nil
}

// series fetches the metadata of a FRED series.
func (c *FREDClient) series(ctx context.Context, symbol string) (fredSeries, error) {
	var body fredSeriesResponse
	if err := c.get(ctx, "/fred/series", map[string]string{"series_id": symbol}, &body); err != nil {
		return fredSeries{}, err
	}

	if len(body.Series) == 0 {
		return fredSeries{}, errors.Newf(errors.ErrCodeSeriesNotFound, "fred series %s does not exist", symbol)
	}

	return body.Series[0], nil
}

func (c *FREDClient) get(ctx context.Context, path string, params map[string]string, out any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetQueryParam("api_key", c.apiKey).
		SetQueryParam("file_type", "json").
		Get(path)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeProviderUnreachable, err, "fred request %s failed", path)
	}

	if resp.IsError() {
		return classifyFREDError(params["series_id"], resp)
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return errors.Wrapf(errors.ErrCodeResponseParseFailed, err, "failed to decode fred response from %s", path)
	}

	return nil
}

// classifyFREDError maps a FRED error status onto the series error codes.
// FRED answers an unknown series id with 400 "The series does not exist."
func classifyFREDError(symbol string, resp *resty.Response) error {
	var body fredErrorResponse
	_ = json.Unmarshal(resp.Body(), &body)

	message := body.ErrorMessage
	if message == "" {
		message = strings.TrimSpace(string(resp.Body()))
	}

	cause := errors.NewStatusError(string(timeseries.SourceFRED), resp.StatusCode(), message)

	switch {
	case resp.StatusCode() == http.StatusNotFound,
		resp.StatusCode() == http.StatusBadRequest && strings.Contains(strings.ToLower(message), "does not exist"):
		return errors.Wrapf(errors.ErrCodeSeriesNotFound, cause, "fred series %s does not exist", symbol)
	case resp.StatusCode() == http.StatusTooManyRequests || resp.StatusCode() >= http.StatusInternalServerError:
		return errors.Wrap(errors.ErrCodeProviderUnreachable, "fred is unavailable", cause)
	default:
		return errors.Wrap(errors.ErrCodeProviderRejected, "fred rejected the request", cause)
	}
}

// checkAvailableHistory fails when the request window does not overlap the series history.
func checkAvailableHistory(req timeseries.Request, meta fredSeries) error {
	first, err := time.Parse(timeseries.DateLayout, meta.ObservationStart)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeResponseParseFailed, err, "invalid fred observation_start %q", meta.ObservationStart)
	}

	last, err := time.Parse(timeseries.DateLayout, meta.ObservationEnd)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeResponseParseFailed, err, "invalid fred observation_end %q", meta.ObservationEnd)
	}

	start, end := req.Window()
	if end.Before(first) || start.After(last) {
		return errors.Newf(errors.ErrCodeRangeUnavailable,
			"fred series %s has data from %s to %s, requested %s to %s",
			req.Symbol, meta.ObservationStart, meta.ObservationEnd,
			start.Format(timeseries.DateLayout), end.Format(timeseries.DateLayout))
	}

	return nil
}

func parseFREDValue(raw string) null.Float {
	if raw == fredMissingValue || raw == "" {
		return null.Float{}
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return null.Float{}
	}

	return null.FloatFrom(v)
}
