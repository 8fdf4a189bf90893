package seriesdata

import (
	"context"
	"time"

	"github.com/rxtech-lab/econ-series/internal/logger"
	"github.com/rxtech-lab/econ-series/pkg/errors"
	"github.com/rxtech-lab/econ-series/pkg/seriesdata/provider"
	"github.com/rxtech-lab/econ-series/pkg/seriesdata/writer"
	"github.com/rxtech-lab/econ-series/pkg/timeseries"
	"go.uber.org/zap"
)

// Config holds the configuration for the series fetcher.
type Config struct {
	Providers provider.Config
	// Timeout bounds a whole Fetch call, retries included. Zero disables it.
	Timeout time.Duration
}

// Option customizes a Fetcher.
type Option func(*Fetcher)

// WithProvider registers p for its source, replacing the configured one.
func WithProvider(p provider.Provider) Option {
	return func(f *Fetcher) {
		f.providers[p.Name()] = p
	}
}

// WithLogger sets the logger used for fetch events.
func WithLogger(l *logger.Logger) Option {
	return func(f *Fetcher) {
		f.logger = l
	}
}

// Fetcher retrieves series from providers and normalizes them.
// It holds no per-fetch state and is safe for concurrent use.
type Fetcher struct {
	providers map[timeseries.Source]provider.Provider
	// missing records why a source could not be configured.
	missing map[timeseries.Source]error
	config  Config
	logger  *logger.Logger
}

// NewFetcher creates a fetcher. Sources whose provider cannot be built from
// config (for example a missing API key) stay unavailable until injected
// with WithProvider; fetching from them fails with ErrCodeInvalidConfiguration.
func NewFetcher(config Config, opts ...Option) *Fetcher {
	f := &Fetcher{
		providers: make(map[timeseries.Source]provider.Provider),
		missing:   make(map[timeseries.Source]error),
		config:    config,
		logger:    logger.NewNopLogger(),
	}

	for _, opt := range opts {
		opt(f)
	}

	for _, source := range timeseries.Sources() {
		if _, ok := f.providers[source]; ok {
			continue
		}

		p, err := provider.NewProvider(source, config.Providers)
		if err != nil {
			f.missing[source] = err

			continue
		}

		f.providers[source] = p
	}

	return f
}

// Fetch retrieves the series described by req.
//
// The request is validated and checked against the provider's capabilities
// before any network call. Provider errors are returned with their codes.
func (f *Fetcher) Fetch(ctx context.Context, req timeseries.Request) (*timeseries.Series, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := f.provider(req.Source)
	if err != nil {
		return nil, err
	}

	if !SupportsPeriodicity(req.Source, req.Periodicity) {
		return nil, errors.Newf(errors.ErrCodeUnsupportedPeriodicity,
			"%s does not provide %s series", req.Source, req.Periodicity)
	}

	if f.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.config.Timeout)

		defer cancel()
	}

	fields := []zap.Field{
		zap.String("source", string(req.Source)),
		zap.String("symbol", req.Symbol),
		zap.String("periodicity", string(req.Periodicity)),
		zap.Time("start", req.StartDate),
		zap.Time("end", req.EndDate),
	}

	f.logger.Debug("Fetching series", fields...)

	started := time.Now()

	raw, err := p.Observations(ctx, req)
	if err != nil {
		f.logger.Warn("Series fetch failed", append(fields, zap.Error(err), zap.Int("code", int(errors.GetCode(err))))...)

		return nil, err
	}

	series, err := timeseries.Normalize(req, raw)
	if err != nil {
		f.logger.Warn("Series normalization failed", append(fields, zap.Error(err), zap.Int("raw", len(raw)))...)

		return nil, err
	}

	f.logger.Info("Fetched series", append(fields,
		zap.String("fetch_id", series.FetchID()),
		zap.Int("raw", len(raw)),
		zap.Int("points", series.Len()),
		zap.Duration("duration", time.Since(started)),
	)...)

	return series, nil
}

// FetchAndWrite fetches the series and streams its points into w.
// It returns the path written by the writer.
func (f *Fetcher) FetchAndWrite(ctx context.Context, req timeseries.Request, w writer.SeriesWriter) (*timeseries.Series, string, error) {
	series, err := f.Fetch(ctx, req)
	if err != nil {
		return nil, "", err
	}

	path, err := WriteSeries(series, w)
	if err != nil {
		return series, "", err
	}

	f.logger.Info("Exported series",
		zap.String("symbol", req.Symbol),
		zap.String("path", path),
		zap.Int("points", series.Len()),
	)

	return series, path, nil
}

// WriteSeries writes every point of s with w and finalizes it.
func WriteSeries(s *timeseries.Series, w writer.SeriesWriter) (outputPath string, err error) {
	if err := w.Initialize(); err != nil {
		return "", errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to initialize writer at %s", w.GetOutputPath())
	}

	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = errors.Wrap(errors.ErrCodeWriteFailed, "failed to close writer", cerr)
		}
	}()

	symbol := s.Request().Symbol
	for _, p := range s.All() {
		if err := w.Write(symbol, p); err != nil {
			return "", err
		}
	}

	return w.Finalize()
}

// provider returns the provider registered for source.
func (f *Fetcher) provider(source timeseries.Source) (provider.Provider, error) {
	if p, ok := f.providers[source]; ok {
		return p, nil
	}

	if err, ok := f.missing[source]; ok {
		return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "%s provider is not configured", source)
	}

	return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported series provider: %s", source)
}
