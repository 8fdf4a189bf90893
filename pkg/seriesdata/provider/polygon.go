package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/guregu/null/v6"
	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/econ-series/pkg/errors"
	"github.com/rxtech-lab/econ-series/pkg/timeseries"
)

const polygonPageLimit = 50000

// PolygonAggsIterator is the subset of the polygon iterator used to walk aggregates.
type PolygonAggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

// PolygonAPIClient is the subset of the polygon REST client used by PolygonClient.
type PolygonAPIClient interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator
}

type polygonAPIAdapter struct {
	client *polygon.Client
}

func (a *polygonAPIAdapter) ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator {
	return a.client.ListAggs(ctx, params, options...)
}

// PolygonClient serves closing prices of Polygon.io aggregates as a series.
type PolygonClient struct {
	apiClient PolygonAPIClient
}

func NewPolygonClient(apiKey string) (*PolygonClient, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "polygon apiKey is required")
	}

	return NewPolygonClientWithAPI(&polygonAPIAdapter{client: polygon.New(apiKey)}), nil
}

// NewPolygonClientWithAPI creates a PolygonClient around an existing API client.
func NewPolygonClientWithAPI(apiClient PolygonAPIClient) *PolygonClient {
	return &PolygonClient{apiClient: apiClient}
}

func (c *PolygonClient) Name() timeseries.Source {
	return timeseries.SourcePolygon
}

func (c *PolygonClient) Observations(ctx context.Context, req timeseries.Request) ([]timeseries.RawObservation, error) {
	timespan, err := polygonTimespan(req.Periodicity)
	if err != nil {
		return nil, err
	}

	start, end := req.Window()

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     req.Symbol,
		Multiplier: 1,
		Timespan:   timespan,
		From:       models.Millis(start),
		To:         models.Millis(endOfDay(end)),
	}.WithAdjusted(true).WithOrder(models.Asc).WithLimit(polygonPageLimit)

	iter := c.apiClient.ListAggs(ctx, params)

	var observations []timeseries.RawObservation
	for iter.Next() {
		agg := iter.Item()
		observations = append(observations, timeseries.RawObservation{
			Date:  time.Time(agg.Timestamp),
			Value: null.FloatFrom(agg.Close),
		})
	}

	if err := iter.Err(); err != nil {
		return nil, classifyPolygonError(req.Symbol, err)
	}

	return observations, nil
}

func polygonTimespan(p timeseries.Periodicity) (models.Timespan, error) {
	switch p {
	case timeseries.PeriodicityDaily:
		return models.Day, nil
	case timeseries.PeriodicityWeekly:
		return models.Week, nil
	case timeseries.PeriodicityMonthly:
		return models.Month, nil
	case timeseries.PeriodicityAnnual:
		return models.Year, nil
	default:
		return "", errors.Newf(errors.ErrCodeUnsupportedPeriodicity, "unsupported periodicity for polygon: %s", p)
	}
}

func classifyPolygonError(symbol string, err error) error {
	if isContextError(err) {
		return errors.Wrap(errors.ErrCodeProviderUnreachable, "polygon request cancelled", err)
	}

	var errResp *models.ErrorResponse
	if errors.As(err, &errResp) {
		cause := errors.NewStatusError(string(timeseries.SourcePolygon), errResp.StatusCode, errResp.Error())

		switch {
		case errResp.StatusCode == http.StatusNotFound:
			return errors.Wrapf(errors.ErrCodeSeriesNotFound, cause, "polygon ticker %s does not exist", symbol)
		case errResp.StatusCode == http.StatusTooManyRequests || errResp.StatusCode >= http.StatusInternalServerError:
			return errors.Wrap(errors.ErrCodeProviderUnreachable, "polygon is unavailable", cause)
		default:
			return errors.Wrap(errors.ErrCodeProviderRejected, "polygon rejected the request", cause)
		}
	}

	return errors.Wrap(errors.ErrCodeProviderUnreachable, fmt.Sprintf("failed to list polygon aggregates for %s", symbol), err)
}
