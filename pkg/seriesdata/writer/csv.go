package writer

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/rxtech-lab/econ-series/pkg/errors"
	"github.com/rxtech-lab/econ-series/pkg/timeseries"
)

// CSVWriter writes a tidy period,value table.
type CSVWriter struct {
	outputPath string
	file       *os.File
	csv        *csv.Writer
}

func NewCSVWriter(outputPath string) SeriesWriter {
	return &CSVWriter{outputPath: outputPath}
}

func (w *CSVWriter) Initialize() error {
	f, err := os.Create(w.outputPath)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to create %s", w.outputPath)
	}

	w.file = f
	w.csv = csv.NewWriter(f)

	if err := w.csv.Write([]string{"period", "value"}); err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to write csv header", err)
	}

	return nil
}

func (w *CSVWriter) Write(_ string, point timeseries.Point) error {
	if w.csv == nil {
		return errors.New(errors.ErrCodeWriteFailed, "writer not initialized")
	}

	err := w.csv.Write([]string{
		point.Period.UTC().Format(timeseries.DateLayout),
		strconv.FormatFloat(point.Value, 'f', -1, 64),
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to write csv row", err)
	}

	return nil
}

func (w *CSVWriter) Finalize() (string, error) {
	if w.csv == nil {
		return "", errors.New(errors.ErrCodeWriteFailed, "writer not initialized")
	}

	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return "", errors.Wrap(errors.ErrCodeWriteFailed, "failed to flush csv", err)
	}

	return w.outputPath, nil
}

func (w *CSVWriter) Close() error {
	if w.file == nil {
		return nil
	}

	err := w.file.Close()
	w.file = nil
	w.csv = nil

	return err
}

func (w *CSVWriter) GetOutputPath() string {
	return w.outputPath
}
