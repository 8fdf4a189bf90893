package seriesdata

import (
	"testing"
	"time"

	"github.com/rxtech-lab/econ-series/pkg/errors"
	"github.com/rxtech-lab/econ-series/pkg/timeseries"
	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

type RequestConfigTestSuite struct {
	suite.Suite
}

func TestRequestConfigSuite(t *testing.T) {
	suite.Run(t, new(RequestConfigTestSuite))
}

func validConfig() RequestConfig {
	return RequestConfig{
		Symbol:      "USACPALTT01CTGYM",
		Source:      "fred",
		StartDate:   "2012-01-01",
		EndDate:     "2024-02-01",
		Periodicity: "monthly",
	}
}

func (suite *RequestConfigTestSuite) TestToRequest() {
	config := validConfig()

	req, err := config.ToRequest()
	suite.Require().NoError(err)
	suite.Equal(timeseries.Request{
		Symbol:      "USACPALTT01CTGYM",
		Source:      timeseries.SourceFRED,
		StartDate:   time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Periodicity: timeseries.PeriodicityMonthly,
	}, req)
}

func (suite *RequestConfigTestSuite) TestToRequestAcceptsRFC3339AndShortPeriodicity() {
	config := validConfig()
	config.StartDate = "2012-01-01T05:00:00+05:00"
	config.Periodicity = "M"

	req, err := config.ToRequest()
	suite.Require().NoError(err)
	suite.Equal(time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC), req.StartDate)
	suite.Equal(timeseries.PeriodicityMonthly, req.Periodicity)
}

func (suite *RequestConfigTestSuite) TestToRequestErrors() {
	tests := []struct {
		name   string
		mutate func(*RequestConfig)
		code   errors.ErrorCode
	}{
		{"bad start", func(c *RequestConfig) { c.StartDate = "01/01/2012" }, errors.ErrCodeInvalidParameter},
		{"bad end", func(c *RequestConfig) { c.EndDate = "yesterday" }, errors.ErrCodeInvalidParameter},
		{"bad periodicity", func(c *RequestConfig) { c.Periodicity = "hourly" }, errors.ErrCodeInvalidPeriodicity},
		{"start after end", func(c *RequestConfig) { c.StartDate = "2025-01-01" }, errors.ErrCodeInvalidParameter},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			config := validConfig()
			tc.mutate(&config)

			_, err := config.ToRequest()
			suite.Equal(tc.code, errors.GetCode(err), err)
		})
	}
}

func (suite *RequestConfigTestSuite) TestValidate() {
	config := validConfig()
	suite.NoError(config.Validate())

	config.Source = "yahoo"
	suite.True(errors.HasCode(config.Validate(), errors.ErrCodeInvalidConfiguration))

	config = validConfig()
	config.Symbol = ""
	suite.True(errors.HasCode(config.Validate(), errors.ErrCodeInvalidConfiguration))
}

func (suite *RequestConfigTestSuite) TestParseRequestConfig() {
	config, err := ParseRequestConfig(`{
		"symbol": "BTCUSDT",
		"source": "binance",
		"startDate": "2023-01-01",
		"endDate": "2023-12-31",
		"periodicity": "weekly"
	}`)
	suite.Require().NoError(err)
	suite.Equal("BTCUSDT", config.Symbol)
	suite.Equal("weekly", config.Periodicity)

	_, err = ParseRequestConfig(`{"symbol": `)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))

	_, err = ParseRequestConfig(`{"symbol": "X", "source": "fred"}`)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *RequestConfigTestSuite) TestYAMLTags() {
	var config RequestConfig
	err := yaml.Unmarshal([]byte(`
symbol: USACPALTT01CTGYM
source: fred
start_date: "2012-01-01"
end_date: "2024-02-01"
periodicity: monthly
`), &config)
	suite.Require().NoError(err)
	suite.Equal(validConfig(), config)
}
