package whloader

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// WarehouseError is returned when the warehouse rejects a connection or a statement.
type WarehouseError struct {
	Op        string
	Statement string
	Err       error
}

func (e *WarehouseError) Error() string {
	return fmt.Sprintf("warehouse %s failed: %v", e.Op, e.Err)
}

func (e *WarehouseError) Unwrap() error {
	return e.Err
}

// Hint tells the operator where to look.
func (e *WarehouseError) Hint() string {
	return "check credentials, object names (case sensitivity) and privileges of the role"
}

// LoadResult summarizes a bulk load. Rows which the warehouse rejected are
// counted in Skipped and never abort the load.
type LoadResult struct {
	// Loaded is the number of rows the copy command reported as loaded.
	Loaded int64

	// Skipped is the number of rows the copy command discarded.
	Skipped int64

	// SkippedSamples holds up to maxSkippedSamples rejected rows.
	SkippedSamples []SkippedRow

	// RowCount is the row count of the table after the load.
	RowCount int64
}

// Partial reports whether some rows were skipped.
func (r *LoadResult) Partial() bool {
	return r != nil && r.Skipped > 0
}

// SkippedRow is a row the warehouse rejected.
type SkippedRow struct {
	Line   int64
	Error  string
	Record string
}

const maxSkippedSamples = 10

// warehouse is an open connection to a destination.
type warehouse interface {
	dialect() Dialect
	exec(ctx context.Context, stmt string) error
	bulkLoad(ctx context.Context, p TablePath, f *Frame) (*LoadResult, error)
	close() error
}

// connector opens a warehouse connection for a destination.
type connector func(context.Context, *Config) (warehouse, error)

func prepareTable(ctx context.Context, w warehouse, p TablePath, ddl string) error {
	l := log.Ctx(ctx)

	if err := w.exec(ctx, w.dialect().DropTableIfExists(p)); err != nil {
		return err
	}
	l.Info().Msgf("table %s dropped if it existed", p)

	l.Debug().Msgf("executing DDL: %s", ddl)
	if err := w.exec(ctx, ddl); err != nil {
		return err
	}
	l.Info().Msgf("table %s created", p)

	return nil
}
