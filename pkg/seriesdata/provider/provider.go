package provider

import (
	"context"
	"time"

	"github.com/rxtech-lab/econ-series/pkg/errors"
	"github.com/rxtech-lab/econ-series/pkg/timeseries"
)

// Provider is a remote (or local) source of raw series observations.
type Provider interface {
	// Name returns the source this provider serves.
	Name() timeseries.Source
	// Observations downloads the raw rows for the request window at the requested periodicity.
	// The context can be used to cancel the request.
	// example:
	// Observations(ctx, timeseries.Request{Symbol: "CPIAUCSL", Source: timeseries.SourceFRED, ...})
	Observations(ctx context.Context, req timeseries.Request) ([]timeseries.RawObservation, error)
}

// Config holds the settings used to construct providers.
type Config struct {
	FRED          FREDConfig
	PolygonAPIKey string
	// ParquetDir is where the parquet source resolves bare symbols.
	ParquetDir string
}

// NewProvider creates a provider for the given source.
func NewProvider(source timeseries.Source, config Config) (Provider, error) {
	switch source {
	case timeseries.SourceFRED:
		client, err := NewFREDClient(config.FRED)
		if err != nil {
			return nil, err
		}

		return client, nil
	case timeseries.SourcePolygon:
		client, err := NewPolygonClient(config.PolygonAPIKey)
		if err != nil {
			return nil, err
		}

		return client, nil
	case timeseries.SourceBinance:
		return NewBinanceClient(), nil
	case timeseries.SourceParquet:
		return NewParquetSource(config.ParquetDir), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported series provider: %s", source)
	}
}

// endOfDay returns the last millisecond of t's UTC calendar day.
func endOfDay(t time.Time) time.Time {
	t = t.UTC()

	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).Add(24*time.Hour - time.Millisecond)
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
