package writer

import (
	"encoding/json"
	"os"

	"github.com/rxtech-lab/econ-series/pkg/errors"
	"github.com/rxtech-lab/econ-series/pkg/timeseries"
)

type jsonPoint struct {
	Period string  `json:"period"`
	Value  float64 `json:"value"`
}

// JSONWriter buffers points and writes them as an indented JSON array on Finalize.
type JSONWriter struct {
	outputPath  string
	points      []jsonPoint
	initialized bool
}

func NewJSONWriter(outputPath string) SeriesWriter {
	return &JSONWriter{outputPath: outputPath}
}

func (w *JSONWriter) Initialize() error {
	w.points = []jsonPoint{}
	w.initialized = true

	return nil
}

func (w *JSONWriter) Write(_ string, point timeseries.Point) error {
	if !w.initialized {
		return errors.New(errors.ErrCodeWriteFailed, "writer not initialized")
	}

	w.points = append(w.points, jsonPoint{
		Period: point.Period.UTC().Format(timeseries.DateLayout),
		Value:  point.Value,
	})

	return nil
}

func (w *JSONWriter) Finalize() (string, error) {
	if !w.initialized {
		return "", errors.New(errors.ErrCodeWriteFailed, "writer not initialized")
	}

	f, err := os.Create(w.outputPath)
	if err != nil {
		return "", errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to create %s", w.outputPath)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")

	if err := enc.Encode(w.points); err != nil {
		f.Close()

		return "", errors.Wrap(errors.ErrCodeWriteFailed, "failed to encode json", err)
	}

	if err := f.Close(); err != nil {
		return "", errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to close %s", w.outputPath)
	}

	return w.outputPath, nil
}

func (w *JSONWriter) Close() error {
	w.points = nil
	w.initialized = false

	return nil
}

func (w *JSONWriter) GetOutputPath() string {
	return w.outputPath
}
