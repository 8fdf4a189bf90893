package fetch

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/econ-series/e2e/fetch/mockserver"
	"github.com/rxtech-lab/econ-series/internal/config"
	"github.com/rxtech-lab/econ-series/internal/testhelper"
	"github.com/rxtech-lab/econ-series/pkg/errors"
	"github.com/rxtech-lab/econ-series/pkg/seriesdata"
	"github.com/rxtech-lab/econ-series/pkg/seriesdata/writer"
	"github.com/rxtech-lab/econ-series/pkg/timeseries"
	"github.com/stretchr/testify/suite"
)

const apiKey = "e2e-fred-key"

// FetchE2ETestSuite runs the whole pipeline, from a YAML config to exported
// files, against the mock FRED server.
type FetchE2ETestSuite struct {
	suite.Suite
	server  *mockserver.MockFREDServer
	dataDir string
	cfg     *config.Config
	fetcher *seriesdata.Fetcher
}

func TestFetchE2ESuite(t *testing.T) {
	suite.Run(t, new(FetchE2ETestSuite))
}

func (suite *FetchE2ETestSuite) SetupTest() {
	suite.server = mockserver.NewMockFREDServer(apiKey)
	suite.dataDir = suite.T().TempDir()

	cfg, err := config.Parse([]byte(fmt.Sprintf(`
version: "1.1.0"
timeout: 10s
providers:
  fred:
    api_key: %s
    base_url: %s
    retry_count: 2
  parquet:
    dir: %s
export:
  format: parquet
  dir: %s
series:
  - symbol: USACPALTT01CTGYM
    source: fred
    start_date: "2012-01-01"
    end_date: "2024-02-01"
    periodicity: monthly
  - symbol: USACPALTT01CTGYM
    source: fred
    start_date: "2012-01-01"
    end_date: "2023-12-31"
    periodicity: annual
`, apiKey, suite.server.URL(), suite.dataDir, suite.dataDir)))
	suite.Require().NoError(err)
	suite.Require().NoError(cfg.Validate())

	suite.cfg = cfg
	suite.fetcher = seriesdata.NewFetcher(cfg.FetcherConfig())
}

func (suite *FetchE2ETestSuite) TearDownTest() {
	suite.server.Close()
}

func (suite *FetchE2ETestSuite) cpiRequest() timeseries.Request {
	req, err := suite.cfg.Series[0].ToRequest()
	suite.Require().NoError(err)

	return req
}

func (suite *FetchE2ETestSuite) TestCPIExample() {
	series, err := suite.fetcher.Fetch(context.Background(), suite.cpiRequest())
	suite.Require().NoError(err)

	last := series.Last().Unwrap()
	suite.Equal(testhelper.Date(2024, time.February, 1), last.Period)
	suite.InDelta(3.1, last.Value, 0.05)

	summary := series.Summary().Unwrap()
	suite.Equal(testhelper.Date(2020, time.May, 1), summary.Min.Period)
	suite.Equal(testhelper.Date(2012, time.January, 1), summary.First.Period)

	// Sorted, unique and inside the window.
	req := suite.cpiRequest()
	for i, p := range series.All() {
		suite.True(req.Contains(p.Period))
		if i > 0 {
			suite.True(series.At(i - 1).Period.Before(p.Period))
		}
	}

	// The missing October 2013 observation is a gap, not a zero.
	suite.True(series.ValueAt(testhelper.Date(2013, time.October, 1)).IsNone())
}

func (suite *FetchE2ETestSuite) TestIdempotent() {
	first, err := suite.fetcher.Fetch(context.Background(), suite.cpiRequest())
	suite.Require().NoError(err)

	second, err := suite.fetcher.Fetch(context.Background(), suite.cpiRequest())
	suite.Require().NoError(err)

	suite.True(first.Equal(second))
}

func (suite *FetchE2ETestSuite) TestUnknownSymbol() {
	req := suite.cpiRequest()
	req.Symbol = "NOT_A_SERIES"

	_, err := suite.fetcher.Fetch(context.Background(), req)
	suite.True(errors.HasCode(err, errors.ErrCodeSeriesNotFound))
}

func (suite *FetchE2ETestSuite) TestStartAfterEndMakesNoRequest() {
	req := suite.cpiRequest()
	req.StartDate = testhelper.Date(2025, time.January, 1)

	_, err := suite.fetcher.Fetch(context.Background(), req)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
	suite.Equal(0, suite.server.Requests())
}

func (suite *FetchE2ETestSuite) TestFinerThanNative() {
	req := suite.cpiRequest()
	req.Periodicity = timeseries.PeriodicityWeekly

	_, err := suite.fetcher.Fetch(context.Background(), req)
	suite.True(errors.HasCode(err, errors.ErrCodeUnsupportedPeriodicity))
}

func (suite *FetchE2ETestSuite) TestOutsideHistory() {
	req := suite.cpiRequest()
	req.StartDate = testhelper.Date(2025, time.January, 1)
	req.EndDate = testhelper.Date(2025, time.June, 1)

	_, err := suite.fetcher.Fetch(context.Background(), req)
	suite.True(errors.HasCode(err, errors.ErrCodeRangeUnavailable))
}

func (suite *FetchE2ETestSuite) TestUnreachableAfterRetries() {
	suite.server.FailNext(1000)

	cfg := suite.cfg.FetcherConfig()
	cfg.Providers.FRED.RetryWait = time.Millisecond
	cfg.Providers.FRED.RetryMaxWait = 2 * time.Millisecond

	_, err := seriesdata.NewFetcher(cfg).Fetch(context.Background(), suite.cpiRequest())
	suite.True(errors.HasCode(err, errors.ErrCodeProviderUnreachable))
	suite.Equal(3, suite.server.Requests())
}

func (suite *FetchE2ETestSuite) TestParquetRoundTrip() {
	req := suite.cpiRequest()
	format, err := suite.cfg.ExportFormat()
	suite.Require().NoError(err)

	w, err := seriesdata.FileWriterFactory(suite.cfg.Export.Dir, format)(req)
	suite.Require().NoError(err)

	fetched, path, err := suite.fetcher.FetchAndWrite(context.Background(), req, w)
	suite.Require().NoError(err)
	suite.Equal(filepath.Join(suite.dataDir, req.Key()+".parquet"), path)

	local := timeseries.Request{
		Symbol:      req.Key(),
		Source:      timeseries.SourceParquet,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Periodicity: req.Periodicity,
	}

	reread, err := suite.fetcher.Fetch(context.Background(), local)
	suite.Require().NoError(err)
	suite.True(fetched.Equal(reread))
}

func (suite *FetchE2ETestSuite) TestBatchFromConfig() {
	requests, err := suite.cfg.Requests()
	suite.Require().NoError(err)

	results, err := suite.fetcher.FetchBatch(context.Background(), requests,
		seriesdata.FileWriterFactory(suite.cfg.Export.Dir, writer.FormatCSV), nil)
	suite.Require().NoError(err)
	suite.Require().Len(results, 2)

	suite.Equal(145, results[0].Series.Len())
	suite.Equal(12, results[1].Series.Len())
	suite.Equal(testhelper.Date(2023, time.January, 1), results[1].Series.Last().Unwrap().Period)

	for _, result := range results {
		suite.FileExists(result.Path)
	}
}
