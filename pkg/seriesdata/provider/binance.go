package provider

import (
	"context"
	"fmt"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/guregu/null/v6"
	"github.com/rxtech-lab/econ-series/pkg/errors"
	"github.com/rxtech-lab/econ-series/pkg/timeseries"
)

const (
	binancePageLimit = 1000
	// binanceInvalidSymbol is the API error code for an unknown trading pair.
	binanceInvalidSymbol = -1121
)

// BinanceKlinesService is the subset of the klines service used by BinanceClient.
type BinanceKlinesService interface {
	Symbol(symbol string) BinanceKlinesService
	Interval(interval string) BinanceKlinesService
	StartTime(startTime int64) BinanceKlinesService
	EndTime(endTime int64) BinanceKlinesService
	Limit(limit int) BinanceKlinesService
	Do(ctx context.Context) ([]*binance.Kline, error)
}

// BinanceAPIClient is the subset of the Binance client used by BinanceClient.
type BinanceAPIClient interface {
	NewKlinesService() BinanceKlinesService
}

type binanceAPIAdapter struct {
	client *binance.Client
}

func (a *binanceAPIAdapter) NewKlinesService() BinanceKlinesService {
	return &binanceKlinesAdapter{service: a.client.NewKlinesService()}
}

type binanceKlinesAdapter struct {
	service *binance.KlinesService
}

func (a *binanceKlinesAdapter) Symbol(symbol string) BinanceKlinesService {
	a.service.Symbol(symbol)

	return a
}

func (a *binanceKlinesAdapter) Interval(interval string) BinanceKlinesService {
	a.service.Interval(interval)

	return a
}

func (a *binanceKlinesAdapter) StartTime(startTime int64) BinanceKlinesService {
	a.service.StartTime(startTime)

	return a
}

func (a *binanceKlinesAdapter) EndTime(endTime int64) BinanceKlinesService {
	a.service.EndTime(endTime)

	return a
}

func (a *binanceKlinesAdapter) Limit(limit int) BinanceKlinesService {
	a.service.Limit(limit)

	return a
}

func (a *binanceKlinesAdapter) Do(ctx context.Context) ([]*binance.Kline, error) {
	return a.service.Do(ctx)
}

// BinanceClient serves kline closing prices from the public Binance market data API.
// No authentication is needed.
type BinanceClient struct {
	apiClient BinanceAPIClient
}

func NewBinanceClient() *BinanceClient {
	return NewBinanceClientWithAPI(&binanceAPIAdapter{client: binance.NewClient("", "")})
}

// NewBinanceClientWithAPI creates a BinanceClient around an existing API client.
func NewBinanceClientWithAPI(apiClient BinanceAPIClient) *BinanceClient {
	return &BinanceClient{apiClient: apiClient}
}

func (c *BinanceClient) Name() timeseries.Source {
	return timeseries.SourceBinance
}

// Observations pages through klines for the window, oldest first.
func (c *BinanceClient) Observations(ctx context.Context, req timeseries.Request) ([]timeseries.RawObservation, error) {
	interval, err := binanceInterval(req.Periodicity)
	if err != nil {
		return nil, err
	}

	start, end := req.Window()
	startMillis := start.UnixMilli()
	endMillis := endOfDay(end).UnixMilli()

	var observations []timeseries.RawObservation

	for startMillis <= endMillis {
		klines, err := c.apiClient.NewKlinesService().
			Symbol(req.Symbol).
			Interval(interval).
			StartTime(startMillis).
			EndTime(endMillis).
			Limit(binancePageLimit).
			Do(ctx)
		if err != nil {
			return nil, classifyBinanceError(req.Symbol, err)
		}

		for _, k := range klines {
			closePrice, err := strconv.ParseFloat(k.Close, 64)
			if err != nil {
				return nil, errors.Wrapf(errors.ErrCodeResponseParseFailed, err, "invalid binance close price %q", k.Close)
			}

			observations = append(observations, timeseries.RawObservation{
				Date:  time.UnixMilli(k.OpenTime).UTC(),
				Value: null.FloatFrom(closePrice),
			})
		}

		if len(klines) < binancePageLimit {
			break
		}

		// Continue after the close of the last kline to avoid duplicates.
		startMillis = klines[len(klines)-1].CloseTime + 1
	}

	return observations, nil
}

// binanceInterval converts a periodicity to a Binance kline interval.
// Ref: https://binance-docs.github.io/apidocs/spot/en/#kline-candlestick-data
func binanceInterval(p timeseries.Periodicity) (string, error) {
	switch p {
	case timeseries.PeriodicityDaily:
		return "1d", nil
	case timeseries.PeriodicityWeekly:
		return "1w", nil
	case timeseries.PeriodicityMonthly:
		return "1M", nil
	default:
		return "", errors.Newf(errors.ErrCodeUnsupportedPeriodicity, "binance does not provide %s klines", p)
	}
}

func classifyBinanceError(symbol string, err error) error {
	if isContextError(err) {
		return errors.Wrap(errors.ErrCodeProviderUnreachable, "binance request cancelled", err)
	}

	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == binanceInvalidSymbol {
			return errors.Wrapf(errors.ErrCodeSeriesNotFound, err, "binance symbol %s does not exist", symbol)
		}

		return errors.Wrap(errors.ErrCodeProviderRejected, "binance rejected the request", err)
	}

	return errors.Wrap(errors.ErrCodeProviderUnreachable, fmt.Sprintf("failed to fetch klines from binance for %s", symbol), err)
}
