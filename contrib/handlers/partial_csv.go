package handlers

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"strings"

	"go.nownabe.dev/whloader"
	"golang.org/x/xerrors"
)

// PartialCSVParser parses CSV after dropping skipHeadRows lines at the top and
// skipTailRows lines at the bottom. Lines are split by sep.
// It is meant for exports with a preamble or a footer around the table.
func PartialCSVParser(skipHeadRows, skipTailRows uint, sep string) whloader.Parser {
	return func(_ context.Context, r io.Reader) ([][]string, error) {
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, xerrors.Errorf("failed to read source: %w", err)
		}

		lines := strings.Split(strings.TrimSuffix(string(b), sep), sep)
		if uint(len(lines)) < skipHeadRows+skipTailRows {
			return [][]string{}, nil
		}
		lines = lines[skipHeadRows : uint(len(lines))-skipTailRows]

		cr := csv.NewReader(bytes.NewBufferString(strings.Join(lines, "\n")))
		records, err := cr.ReadAll()
		if err != nil {
			return nil, xerrors.Errorf("failed to read csv: %w", err)
		}

		return records, nil
	}
}
