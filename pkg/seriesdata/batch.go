package seriesdata

import (
	"context"
	"os"

	"github.com/rxtech-lab/econ-series/pkg/errors"
	"github.com/rxtech-lab/econ-series/pkg/seriesdata/writer"
	"github.com/rxtech-lab/econ-series/pkg/timeseries"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// BatchResult is the outcome of one request in a batch.
type BatchResult struct {
	Request timeseries.Request
	Series  *timeseries.Series
	// Path is empty when nothing was written.
	Path string
	Err  error
}

// WriterFactory returns the writer a request's series is exported with.
type WriterFactory func(req timeseries.Request) (writer.SeriesWriter, error)

// FileWriterFactory writes each series to dir/<request key>.<format>, creating dir if needed.
func FileWriterFactory(dir string, format writer.Format) WriterFactory {
	return func(req timeseries.Request) (writer.SeriesWriter, error) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to create export directory %s", dir)
		}

		return writer.NewWriter(format, writer.OutputPath(dir, req, format))
	}
}

// FetchBatch fetches the requests one after another. A failed request does
// not stop the batch; its error is kept in its result and combined into the
// returned error. newWriter may be nil to skip exporting. onProgress, when
// set, is called after every request.
func (f *Fetcher) FetchBatch(
	ctx context.Context,
	requests []timeseries.Request,
	newWriter WriterFactory,
	onProgress func(done int, result BatchResult),
) ([]BatchResult, error) {
	results := make([]BatchResult, 0, len(requests))

	var batchErr error

	for i, req := range requests {
		if err := ctx.Err(); err != nil {
			batchErr = multierr.Append(batchErr, err)

			break
		}

		result := f.fetchOne(ctx, req, newWriter)
		if result.Err != nil {
			batchErr = multierr.Append(batchErr,
				errors.Wrapf(errors.GetCode(result.Err), result.Err, "%s %s", req.Source, req.Symbol))
		}

		results = append(results, result)

		if onProgress != nil {
			onProgress(i+1, result)
		}
	}

	f.logger.Info("Batch finished",
		zap.Int("requests", len(requests)),
		zap.Int("completed", len(results)),
		zap.Int("failed", len(multierr.Errors(batchErr))),
	)

	return results, batchErr
}

func (f *Fetcher) fetchOne(ctx context.Context, req timeseries.Request, newWriter WriterFactory) BatchResult {
	result := BatchResult{Request: req}

	if newWriter == nil {
		result.Series, result.Err = f.Fetch(ctx, req)

		return result
	}

	w, err := newWriter(req)
	if err != nil {
		result.Err = err

		return result
	}

	result.Series, result.Path, result.Err = f.FetchAndWrite(ctx, req, w)

	return result
}
