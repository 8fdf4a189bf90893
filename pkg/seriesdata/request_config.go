package seriesdata

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/econ-series/pkg/errors"
	"github.com/rxtech-lab/econ-series/pkg/timeseries"
)

// RequestConfig is the serialized form of a series request, used in config files and JSON input.
type RequestConfig struct {
	Symbol      string `json:"symbol" yaml:"symbol" jsonschema:"title=Symbol,description=Provider series identifier (e.g. USACPALTT01CTGYM or SPY),required" validate:"required"`
	Source      string `json:"source" yaml:"source" jsonschema:"title=Source,description=Provider to fetch from,required,enum=fred,enum=polygon,enum=binance,enum=parquet" validate:"required,oneof=fred polygon binance parquet"`
	StartDate   string `json:"startDate" yaml:"start_date" jsonschema:"title=Start Date,description=First day of the window (YYYY-MM-DD),format=date,required" validate:"required"`
	EndDate     string `json:"endDate" yaml:"end_date" jsonschema:"title=End Date,description=Last day of the window (YYYY-MM-DD),format=date,required" validate:"required"`
	Periodicity string `json:"periodicity" yaml:"periodicity" jsonschema:"title=Periodicity,description=Sampling granularity,required,enum=daily,enum=weekly,enum=monthly,enum=annual" validate:"required"`
}

// Validate validates the RequestConfig fields and its conversion to a request.
func (c *RequestConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid request config", err)
	}

	_, err := c.ToRequest()

	return err
}

// ToRequest converts the config to a validated timeseries.Request.
func (c *RequestConfig) ToRequest() (timeseries.Request, error) {
	startDate, err := parseDate(c.StartDate)
	if err != nil {
		return timeseries.Request{}, errors.Wrap(errors.ErrCodeInvalidParameter, "failed to parse startDate", err)
	}

	endDate, err := parseDate(c.EndDate)
	if err != nil {
		return timeseries.Request{}, errors.Wrap(errors.ErrCodeInvalidParameter, "failed to parse endDate", err)
	}

	periodicity, err := timeseries.ParsePeriodicity(c.Periodicity)
	if err != nil {
		return timeseries.Request{}, err
	}

	req := timeseries.Request{
		Symbol:      c.Symbol,
		Source:      timeseries.Source(c.Source),
		StartDate:   startDate,
		EndDate:     endDate,
		Periodicity: periodicity,
	}

	if err := req.Validate(); err != nil {
		return timeseries.Request{}, err
	}

	return req, nil
}

// parseDate accepts YYYY-MM-DD and RFC3339.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(timeseries.DateLayout, s); err == nil {
		return t, nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD or RFC3339", s)
	}

	return t.UTC(), nil
}

// ParseRequestConfig parses JSON into a RequestConfig and validates it.
func ParseRequestConfig(jsonConfig string) (*RequestConfig, error) {
	var config RequestConfig
	if err := json.Unmarshal([]byte(jsonConfig), &config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse JSON config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}
