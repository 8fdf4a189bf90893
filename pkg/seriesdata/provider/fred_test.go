package provider

import (
	"context"
	"testing"
	"time"

	"github.com/rxtech-lab/econ-series/e2e/fetch/mockserver"
	"github.com/rxtech-lab/econ-series/internal/testhelper"
	"github.com/rxtech-lab/econ-series/pkg/errors"
	"github.com/rxtech-lab/econ-series/pkg/timeseries"
	"github.com/stretchr/testify/suite"
)

const testFREDKey = "test-fred-key"

type FREDClientTestSuite struct {
	suite.Suite
	server *mockserver.MockFREDServer
	client *FREDClient
}

func TestFREDClientSuite(t *testing.T) {
	suite.Run(t, new(FREDClientTestSuite))
}

func (suite *FREDClientTestSuite) SetupTest() {
	suite.server = mockserver.NewMockFREDServer(testFREDKey)
	suite.client = suite.newClient(testFREDKey, 2)
}

func (suite *FREDClientTestSuite) TearDownTest() {
	suite.server.Close()
}

func (suite *FREDClientTestSuite) newClient(apiKey string, retries int) *FREDClient {
	client, err := NewFREDClient(FREDConfig{
		APIKey:       apiKey,
		BaseURL:      suite.server.URL(),
		Timeout:      5 * time.Second,
		RetryCount:   retries,
		RetryWait:    time.Millisecond,
		RetryMaxWait: 5 * time.Millisecond,
	})
	suite.Require().NoError(err)

	return client
}

func (suite *FREDClientTestSuite) cpiRequest() timeseries.Request {
	return timeseries.Request{
		Symbol:      testhelper.CPISymbol,
		Source:      timeseries.SourceFRED,
		StartDate:   testhelper.Date(2012, time.January, 1),
		EndDate:     testhelper.Date(2024, time.February, 1),
		Periodicity: timeseries.PeriodicityMonthly,
	}
}

func (suite *FREDClientTestSuite) TestNewFREDClient_EmptyApiKey() {
	client, err := NewFREDClient(FREDConfig{})
	suite.Error(err)
	suite.Nil(client)
	suite.True(errors.HasCode(err, errors.ErrCodeMissingParameter))
}

func (suite *FREDClientTestSuite) TestName() {
	suite.Equal(timeseries.SourceFRED, suite.client.Name())
}

func (suite *FREDClientTestSuite) TestObservationsMonthly() {
	observations, err := suite.client.Observations(context.Background(), suite.cpiRequest())
	suite.Require().NoError(err)
	suite.Len(observations, 146)

	suite.Equal(testhelper.Date(2012, time.January, 1), observations[0].Date)
	suite.InDelta(2.9, observations[0].Value.ValueOrZero(), 1e-9)

	missing := 0
	for _, obs := range observations {
		if !obs.Value.Valid {
			missing++
			suite.Equal(testhelper.Date(2013, time.October, 1), obs.Date)
		}
	}

	suite.Equal(1, missing)
}

func (suite *FREDClientTestSuite) TestObservationsWindow() {
	req := suite.cpiRequest()
	req.StartDate = testhelper.Date(2020, time.January, 1)
	req.EndDate = testhelper.Date(2020, time.December, 31)

	observations, err := suite.client.Observations(context.Background(), req)
	suite.Require().NoError(err)
	suite.Len(observations, 12)
	suite.Equal(testhelper.Date(2020, time.May, 1), observations[4].Date)
	suite.InDelta(0.1, observations[4].Value.ValueOrZero(), 1e-9)
}

func (suite *FREDClientTestSuite) TestObservationsAnnualAggregates() {
	req := suite.cpiRequest()
	req.Periodicity = timeseries.PeriodicityAnnual
	req.EndDate = testhelper.Date(2023, time.December, 31)

	observations, err := suite.client.Observations(context.Background(), req)
	suite.Require().NoError(err)
	suite.Len(observations, 12)
	suite.Equal(testhelper.Date(2022, time.January, 1), observations[10].Date)
	suite.InDelta(8.017, observations[10].Value.ValueOrZero(), 1e-9)
}

func (suite *FREDClientTestSuite) TestObservationsFinerThanNative() {
	req := suite.cpiRequest()
	req.Periodicity = timeseries.PeriodicityDaily

	_, err := suite.client.Observations(context.Background(), req)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeUnsupportedPeriodicity))
	suite.Contains(err.Error(), "monthly")
	// Only the metadata lookup was made.
	suite.Equal(1, suite.server.Requests())
}

func (suite *FREDClientTestSuite) TestObservationsUnknownSeries() {
	req := suite.cpiRequest()
	req.Symbol = "NOPE"

	_, err := suite.client.Observations(context.Background(), req)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeSeriesNotFound))
	suite.Equal(400, errors.GetStatusCode(err))
	suite.Contains(err.Error(), "does not exist")
}

func (suite *FREDClientTestSuite) TestObservationsOutsideHistory() {
	req := suite.cpiRequest()
	req.StartDate = testhelper.Date(1990, time.January, 1)
	req.EndDate = testhelper.Date(2000, time.January, 1)

	_, err := suite.client.Observations(context.Background(), req)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeRangeUnavailable))
	suite.Contains(err.Error(), "2012-01-01")
}

func (suite *FREDClientTestSuite) TestObservationsBadApiKey() {
	client := suite.newClient("wrong-key", 2)

	_, err := client.Observations(context.Background(), suite.cpiRequest())
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeProviderRejected))
	suite.Contains(err.Error(), "api_key")
}

func (suite *FREDClientTestSuite) TestObservationsRetriesTransientFailures() {
	suite.server.FailNext(2)

	observations, err := suite.client.Observations(context.Background(), suite.cpiRequest())
	suite.Require().NoError(err)
	suite.Len(observations, 146)
	// Two failed attempts, then metadata and observations.
	suite.Equal(4, suite.server.Requests())
}

func (suite *FREDClientTestSuite) TestObservationsRetriesAreBounded() {
	suite.server.FailNext(100)

	_, err := suite.client.Observations(context.Background(), suite.cpiRequest())
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeProviderUnreachable))
	suite.Equal(503, errors.GetStatusCode(err))
	// First attempt plus two retries.
	suite.Equal(3, suite.server.Requests())
}

func (suite *FREDClientTestSuite) TestObservationsUnreachable() {
	client, err := NewFREDClient(FREDConfig{
		APIKey:     testFREDKey,
		BaseURL:    "http://127.0.0.1:1",
		Timeout:    time.Second,
		RetryCount: -1,
	})
	suite.Require().NoError(err)

	_, err = client.Observations(context.Background(), suite.cpiRequest())
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeProviderUnreachable))
}

func (suite *FREDClientTestSuite) TestObservationsCancelledContext() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := suite.client.Observations(ctx, suite.cpiRequest())
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeProviderUnreachable))
	suite.ErrorIs(err, context.Canceled)
}

func (suite *FREDClientTestSuite) TestParseFREDValue() {
	suite.False(parseFREDValue(".").Valid)
	suite.False(parseFREDValue("").Valid)
	suite.False(parseFREDValue("n/a").Valid)

	v := parseFREDValue("3.14")
	suite.True(v.Valid)
	suite.Equal(3.14, v.ValueOrZero())
}
