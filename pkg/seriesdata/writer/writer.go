package writer

import (
	"path/filepath"
	"strings"

	"github.com/rxtech-lab/econ-series/pkg/errors"
	"github.com/rxtech-lab/econ-series/pkg/timeseries"
)

// SeriesWriter defines the interface for writing series points to a destination.
type SeriesWriter interface {
	// Initialize sets up the writer, potentially creating tables or files.
	Initialize() error
	// Write persists a single point of the named series.
	Write(symbol string, point timeseries.Point) error
	// Finalize completes the writing process (e.g., commits transactions, exports files).
	Finalize() (outputPath string, err error)
	// Close releases any resources held by the writer.
	Close() error
	// GetOutputPath returns the configured output file path.
	GetOutputPath() string
}

// Format is an export file format.
type Format string

const (
	FormatParquet Format = "parquet"
	FormatCSV     Format = "csv"
	FormatJSON    Format = "json"
)

// Formats lists the supported export formats.
func Formats() []Format {
	return []Format{FormatParquet, FormatCSV, FormatJSON}
}

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	format := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats() {
		if format == known {
			return format, nil
		}
	}

	return "", errors.Newf(errors.ErrCodeUnsupportedWriter, "unsupported export format: %s", s)
}

// Extension returns the file extension including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// OutputPath builds the export file path for a request:
// DIR/SOURCE_SYMBOL_START_END_PERIODICITY.EXT
func OutputPath(dir string, req timeseries.Request, format Format) string {
	return filepath.Join(dir, req.Key()+format.Extension())
}

// NewWriter creates a writer for the given format writing to outputPath.
func NewWriter(format Format, outputPath string) (SeriesWriter, error) {
	switch format {
	case FormatParquet:
		return NewDuckDBWriter(outputPath), nil
	case FormatCSV:
		return NewCSVWriter(outputPath), nil
	case FormatJSON:
		return NewJSONWriter(outputPath), nil
	default:
		return nil, errors.Newf(errors.ErrCodeUnsupportedWriter, "unsupported export format: %s", format)
	}
}
