package whloader

import (
	"context"
	"encoding/csv"
	"errors"
	"io"

	"github.com/extrame/xls"
	"gitlab.com/osaki-lab/iowrapper"
	"golang.org/x/xerrors"
)

// ErrNoSheet is returned by XLSParser when the workbook has no sheet.
var ErrNoSheet = errors.New("no sheet found")

// Parser parses a decoded source into records. The first record is the header.
type Parser func(context.Context, io.Reader) ([][]string, error)

// CSVParser provides a parser to parse CSV files.
// Rows with a different number of fields than the header are rejected.
func CSVParser() Parser {
	return func(_ context.Context, r io.Reader) ([][]string, error) {
		records, err := csv.NewReader(r).ReadAll()
		if err != nil {
			if errors.Is(err, csv.ErrFieldCount) {
				return nil, xerrors.Errorf("%v: %w", err, ErrRaggedRow)
			}
			return nil, xerrors.Errorf("failed to read csv: %w", err)
		}

		return records, nil
	}
}

// XLSParser provides a parser for the first sheet of an Excel 97-2003 workbook.
// Rows are padded or cut to the width of the first row.
func XLSParser() Parser {
	getRow := func(sheet *xls.WorkSheet, row int) (r *xls.Row, ok bool) {
		defer func() {
			if recover() != nil {
				r, ok = nil, false
			}
		}()

		r = sheet.Row(row)
		return r, r != nil
	}

	return func(_ context.Context, r io.Reader) ([][]string, error) {
		wb, err := xls.OpenReader(iowrapper.NewSeeker(r), "utf-8")
		if err != nil {
			return nil, xerrors.Errorf("failed to open xls file: %w", err)
		}

		sheet := wb.GetSheet(0)
		if sheet == nil {
			return nil, ErrNoSheet
		}

		records := [][]string{}
		width := -1

		for i := 0; i <= int(sheet.MaxRow); i++ {
			row, ok := getRow(sheet, i)
			if !ok {
				continue
			}

			if width < 0 {
				width = row.LastCol()
			}

			record := make([]string, width)
			for c := 0; c < width; c++ {
				record[c] = row.Col(c)
			}

			records = append(records, record)
		}

		return records, nil
	}
}
