package whloader

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/snowflakedb/gosnowflake"
	"github.com/spf13/afero"
)

type snowflakeWarehouse struct {
	db      *sqlx.DB
	conn    *sqlx.Conn
	fs      afero.Fs
	tempDir string
}

func newSnowflakeConnector(fs afero.Fs, tempDir string) connector {
	return func(ctx context.Context, c *Config) (warehouse, error) {
		dsn, err := c.DSN(fs)
		if err != nil {
			return nil, &WarehouseError{Op: "configure", Err: err}
		}

		gosnowflake.GetLogger().SetOutput(io.Discard)

		db, err := sqlx.Open("snowflake", dsn)
		if err != nil {
			return nil, &WarehouseError{Op: "connect", Err: err}
		}

		return openSnowflake(ctx, db, fs, tempDir)
	}
}

// openSnowflake holds one connection of db for the whole run so session state
// such as the last COPY job stays visible.
func openSnowflake(ctx context.Context, db *sqlx.DB, fs afero.Fs, tempDir string) (*snowflakeWarehouse, error) {
	db = db.Unsafe()

	conn, err := db.Connx(ctx)
	if err != nil {
		db.Close()
		return nil, &WarehouseError{Op: "connect", Err: cleanError(err)}
	}

	return &snowflakeWarehouse{db: db, conn: conn, fs: fs, tempDir: tempDir}, nil
}

func (w *snowflakeWarehouse) dialect() Dialect {
	return Snowflake
}

func (w *snowflakeWarehouse) exec(ctx context.Context, stmt string) error {
	if _, err := w.conn.ExecContext(ctx, stmt); err != nil {
		return &WarehouseError{Op: "exec", Statement: stmt, Err: cleanError(err)}
	}
	return nil
}

// copyResult is a row of the COPY INTO output, one per staged file.
type copyResult struct {
	File                 string         `db:"file"`
	Status               string         `db:"status"`
	RowsParsed           int64          `db:"rows_parsed"`
	RowsLoaded           int64          `db:"rows_loaded"`
	ErrorLimit           int64          `db:"error_limit"`
	ErrorsSeen           int64          `db:"errors_seen"`
	FirstError           sql.NullString `db:"first_error"`
	FirstErrorLine       sql.NullInt64  `db:"first_error_line"`
	FirstErrorCharacter  sql.NullInt64  `db:"first_error_character"`
	FirstErrorColumnName sql.NullString `db:"first_error_column_name"`
}

type rejectedRow struct {
	Error  string         `db:"ERROR"`
	Line   sql.NullInt64  `db:"LINE"`
	Record sql.NullString `db:"REJECTED_RECORD"`
}

func (w *snowflakeWarehouse) bulkLoad(ctx context.Context, p TablePath, f *Frame) (*LoadResult, error) {
	l := log.Ctx(ctx)

	path, err := writeArtifact(w.fs, w.tempDir, f)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := w.fs.Remove(path); err != nil {
			l.Warn().Err(err).Msgf("failed to remove %s", path)
		}
	}()
	l.Debug().Msgf("wrote %d rows to %s", len(f.Rows), path)

	stage := snowflakeDialect{}.stage(p)
	table := Snowflake.QualifiedName(p)

	put := fmt.Sprintf("PUT %s %s AUTO_COMPRESS = TRUE OVERWRITE = TRUE", stringLiteral("file://"+filepath.ToSlash(path)), stage)
	if err := w.exec(ctx, put); err != nil {
		return nil, err
	}
	l.Info().Msgf("staged %s to %s", path, stage)

	copyInto := fmt.Sprintf(
		`COPY INTO %s FROM %s FILE_FORMAT = (TYPE = CSV FIELD_OPTIONALLY_ENCLOSED_BY = '"' SKIP_HEADER = 0) ON_ERROR = CONTINUE PURGE = TRUE`,
		table, stage,
	)

	var results []copyResult
	if err := w.conn.SelectContext(ctx, &results, copyInto); err != nil {
		return nil, &WarehouseError{Op: "copy", Statement: copyInto, Err: cleanError(err)}
	}

	res := &LoadResult{}
	for _, r := range results {
		res.Loaded += r.RowsLoaded
		res.Skipped += r.RowsParsed - r.RowsLoaded
		l.Debug().Msgf("copy result: %+v", r)
	}

	if res.Skipped > 0 {
		res.SkippedSamples = w.rejectedRows(ctx, table, results)
	}

	if err := w.conn.GetContext(ctx, &res.RowCount, "SELECT COUNT(*) FROM "+table); err != nil {
		return nil, &WarehouseError{Op: "verify", Err: cleanError(err)}
	}

	return res, nil
}

// rejectedRows asks VALIDATE for the rows the last COPY skipped and falls back
// to the first error of each file.
func (w *snowflakeWarehouse) rejectedRows(ctx context.Context, table string, results []copyResult) []SkippedRow {
	l := log.Ctx(ctx)

	q := fmt.Sprintf(
		"SELECT ERROR, LINE, REJECTED_RECORD FROM TABLE(VALIDATE(%s, JOB_ID => '_last')) LIMIT %d",
		table, maxSkippedSamples,
	)

	var rows []rejectedRow
	err := w.conn.SelectContext(ctx, &rows, q)
	if err == nil {
		samples := make([]SkippedRow, len(rows))
		for i, r := range rows {
			samples[i] = SkippedRow{Line: r.Line.Int64, Error: r.Error, Record: r.Record.String}
		}
		return samples
	}
	l.Warn().Err(err).Msg("failed to validate last copy, using first errors")

	var samples []SkippedRow
	for _, r := range results {
		if r.FirstError.Valid && len(samples) < maxSkippedSamples {
			samples = append(samples, SkippedRow{Line: r.FirstErrorLine.Int64, Error: r.FirstError.String})
		}
	}
	return samples
}

func (w *snowflakeWarehouse) close() error {
	return errors.Join(w.conn.Close(), w.db.Close())
}

var literalEscaper = strings.NewReplacer(`\`, `\\`, `'`, `''`)

// stringLiteral quotes s as a single-quoted SQL string.
func stringLiteral(s string) string {
	return "'" + literalEscaper.Replace(s) + "'"
}

func cleanError(err error) error {
	return errors.New(strings.ReplaceAll(err.Error(), "\n", "  -  "))
}
