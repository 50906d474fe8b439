package whloader

import (
	"bytes"
	"context"
	"encoding/csv"

	"cloud.google.com/go/bigquery"
	"github.com/rs/zerolog/log"
	"golang.org/x/xerrors"
	"google.golang.org/api/iterator"
)

type bigqueryWarehouse struct {
	client *bigquery.Client
}

func newBigQueryConnector() connector {
	return func(ctx context.Context, c *Config) (warehouse, error) {
		bq, err := bigquery.NewClient(ctx, c.Database)
		if err != nil {
			return nil, &WarehouseError{Op: "connect", Err: err}
		}

		return &bigqueryWarehouse{client: bq}, nil
	}
}

func (w *bigqueryWarehouse) dialect() Dialect {
	return BigQuery
}

func (w *bigqueryWarehouse) exec(ctx context.Context, stmt string) error {
	job, err := w.client.Query(stmt).Run(ctx)
	if err != nil {
		return &WarehouseError{Op: "exec", Statement: stmt, Err: err}
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return &WarehouseError{Op: "exec", Statement: stmt, Err: err}
	}

	if status.Err() != nil {
		return &WarehouseError{Op: "exec", Statement: stmt, Err: status.Err()}
	}

	return nil
}

// bulkLoad uploads the rows as a CSV load job. Bad records are tolerated up to
// the number of rows so a malformed row never fails the job.
func (w *bigqueryWarehouse) bulkLoad(ctx context.Context, p TablePath, f *Frame) (*LoadResult, error) {
	l := log.Ctx(ctx)

	// TODO: Make output format more efficient. e.g. gzip.
	buf := &bytes.Buffer{}
	if err := csv.NewWriter(buf).WriteAll(f.Rows); err != nil {
		return nil, xerrors.Errorf("failed to write csv: %w", err)
	}

	rs := bigquery.NewReaderSource(buf)
	rs.SourceFormat = bigquery.CSV
	rs.SkipLeadingRows = 0
	rs.AllowQuotedNewlines = true
	rs.MaxBadRecords = int64(len(f.Rows))

	loader := w.client.DatasetInProject(p.Database, p.Schema).Table(p.Table).LoaderFrom(rs)
	loader.WriteDisposition = bigquery.WriteAppend

	job, err := loader.Run(ctx)
	if err != nil {
		return nil, &WarehouseError{Op: "copy", Err: err}
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return nil, &WarehouseError{Op: "copy", Err: err}
	}

	if status.Err() != nil {
		return nil, &WarehouseError{Op: "copy", Err: status.Err()}
	}

	l.Debug().Msgf("load job %s finished", job.ID())

	count, err := w.count(ctx, p)
	if err != nil {
		return nil, &WarehouseError{Op: "verify", Err: err}
	}

	return loadResultOf(status, int64(len(f.Rows)), count), nil
}

// loadResultOf maps a finished load job into a fresh table of count rows.
// Without load statistics the verified count stands in for the loaded rows.
func loadResultOf(status *bigquery.JobStatus, rows, count int64) *LoadResult {
	res := &LoadResult{Loaded: count, RowCount: count}

	if status.Statistics != nil {
		if st, ok := status.Statistics.Details.(*bigquery.LoadStatistics); ok {
			res.Loaded = st.OutputRows
		}
	}

	if rows > res.Loaded {
		res.Skipped = rows - res.Loaded
	}

	for _, e := range status.Errors {
		if e == nil {
			continue
		}
		if len(res.SkippedSamples) == maxSkippedSamples {
			break
		}
		res.SkippedSamples = append(res.SkippedSamples, SkippedRow{Error: e.Message})
	}

	return res
}

func (w *bigqueryWarehouse) count(ctx context.Context, p TablePath) (int64, error) {
	it, err := w.client.Query("SELECT COUNT(*) FROM " + BigQuery.QualifiedName(p)).Read(ctx)
	if err != nil {
		return 0, err
	}

	var row []bigquery.Value
	if err := it.Next(&row); err != nil {
		if err == iterator.Done {
			return 0, nil
		}
		return 0, err
	}

	n, ok := row[0].(int64)
	if !ok {
		return 0, xerrors.Errorf("unexpected count value %v", row[0])
	}

	return n, nil
}

func (w *bigqueryWarehouse) close() error {
	return w.client.Close()
}
