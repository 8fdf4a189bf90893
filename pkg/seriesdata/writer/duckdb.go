package writer

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/econ-series/pkg/errors"
	"github.com/rxtech-lab/econ-series/pkg/timeseries"
	"go.uber.org/multierr"
)

// DuckDBWriter collects points in an in-memory DuckDB table and exports them to Parquet.
type DuckDBWriter struct {
	db         *sql.DB
	tx         *sql.Tx
	stmt       *sql.Stmt
	outputPath string
}

// NewDuckDBWriter creates a new DuckDBWriter.
// outputPath is the Parquet file written by Finalize.
func NewDuckDBWriter(outputPath string) SeriesWriter {
	return &DuckDBWriter{
		outputPath: outputPath,
	}
}

// Initialize opens an in-memory database, creates the points table,
// begins a transaction and prepares the insert statement.
func (w *DuckDBWriter) Initialize() (err error) {
	w.db, err = sql.Open("duckdb", "")
	if err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to open DuckDB connection", err)
	}

	_, err = w.db.Exec(`
		CREATE TABLE IF NOT EXISTS series_points (
			id TEXT,
			symbol TEXT,
			period TIMESTAMP,
			value DOUBLE
		)
	`)
	if err != nil {
		w.db.Close()

		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to create table", err)
	}

	w.tx, err = w.db.Begin()
	if err != nil {
		w.db.Close()

		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to begin transaction", err)
	}

	w.stmt, err = w.tx.Prepare(`
		INSERT INTO series_points (id, symbol, period, value)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		w.tx.Rollback()
		w.db.Close()

		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to prepare statement", err)
	}

	return nil
}

// Write inserts a single point within the open transaction.
func (w *DuckDBWriter) Write(symbol string, point timeseries.Point) error {
	if w.stmt == nil {
		return errors.New(errors.ErrCodeWriteFailed, "writer not initialized or statement is nil")
	}

	_, err := w.stmt.Exec(uuid.New().String(), symbol, point.Period.UTC(), point.Value)
	if err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to insert point", err)
	}

	return nil
}

// Finalize commits the transaction and exports the table to a Parquet file ordered by period.
func (w *DuckDBWriter) Finalize() (outputPath string, err error) {
	if w.tx == nil {
		return "", errors.New(errors.ErrCodeWriteFailed, "writer not initialized or transaction is nil")
	}

	if err = w.tx.Commit(); err != nil {
		w.tx.Rollback()

		return "", errors.Wrap(errors.ErrCodeWriteFailed, "failed to commit transaction", err)
	}

	w.tx = nil

	_, err = w.db.Exec(fmt.Sprintf(
		`COPY (SELECT * FROM series_points ORDER BY period) TO '%s' (FORMAT PARQUET)`,
		strings.ReplaceAll(w.outputPath, "'", "''")))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeWriteFailed, "failed to export to Parquet", err)
	}

	return w.outputPath, nil
}

// Close releases the statement, rolls back an unfinished transaction and closes the database.
func (w *DuckDBWriter) Close() error {
	var closeErr error

	if w.stmt != nil {
		closeErr = multierr.Append(closeErr, w.stmt.Close())
		w.stmt = nil
	}

	if w.tx != nil {
		closeErr = multierr.Append(closeErr, w.tx.Rollback())
		w.tx = nil
	}

	if w.db != nil {
		closeErr = multierr.Append(closeErr, w.db.Close())
		w.db = nil
	}

	return closeErr
}

func (w *DuckDBWriter) GetOutputPath() string {
	return w.outputPath
}
