package provider

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/guregu/null/v6"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/econ-series/pkg/errors"
	"github.com/rxtech-lab/econ-series/pkg/timeseries"
)

const (
	parquetExtension = ".parquet"
	// parquetTimestampLayout keeps window bounds timezone-free so they
	// compare against the naive TIMESTAMP column written by the exporter.
	parquetTimestampLayout = "2006-01-02 15:04:05.000"
)

// ParquetSource reads series exported earlier by the DuckDB writer.
// A symbol is either a path to a parquet file or a bare name resolved
// to <dir>/<symbol>.parquet.
type ParquetSource struct {
	dir string
	sq  squirrel.StatementBuilderType
}

func NewParquetSource(dir string) *ParquetSource {
	return &ParquetSource{
		dir: dir,
		sq:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (p *ParquetSource) Name() timeseries.Source {
	return timeseries.SourceParquet
}

// Resolve returns the file a symbol refers to.
func (p *ParquetSource) Resolve(symbol string) string {
	if strings.HasSuffix(symbol, parquetExtension) {
		return symbol
	}

	return filepath.Join(p.dir, symbol+parquetExtension)
}

func (p *ParquetSource) Observations(ctx context.Context, req timeseries.Request) ([]timeseries.RawObservation, error) {
	path := p.Resolve(req.Symbol)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrCodeSeriesNotFound, "parquet series %s does not exist at %s", req.Symbol, path)
		}

		return nil, errors.Wrapf(errors.ErrCodeProviderUnreachable, err, "cannot access %s", path)
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeProviderUnreachable, "failed to open DuckDB connection", err)
	}
	defer db.Close()

	query, args, err := p.buildQuery(path, req)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidParameter, "failed to build parquet query", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeResponseParseFailed, err, "failed to read %s", path)
	}
	defer rows.Close()

	var observations []timeseries.RawObservation
	for rows.Next() {
		var (
			raw   timeseries.RawObservation
			value sql.NullFloat64
		)

		if err := rows.Scan(&raw.Date, &value); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeResponseParseFailed, err, "failed to scan row from %s", path)
		}

		raw.Date = raw.Date.UTC()
		raw.Value = null.NewFloat(value.Float64, value.Valid)
		observations = append(observations, raw)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeResponseParseFailed, err, "failed to iterate rows from %s", path)
	}

	return observations, nil
}

// buildQuery selects the window from the file. The file name cannot be a
// bound parameter of read_parquet, so it is quoted inline.
func (p *ParquetSource) buildQuery(path string, req timeseries.Request) (string, []interface{}, error) {
	start, end := req.Window()

	return p.sq.
		Select("period", "value").
		From(fmt.Sprintf("read_parquet('%s')", strings.ReplaceAll(path, "'", "''"))).
		Where(squirrel.And{
			squirrel.Expr("period >= CAST(? AS TIMESTAMP)", start.Format(parquetTimestampLayout)),
			squirrel.Expr("period <= CAST(? AS TIMESTAMP)", endOfDay(end).Format(parquetTimestampLayout)),
		}).
		OrderBy("period ASC").
		ToSql()
}
