package whloader

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVParser(t *testing.T) {
	t.Parallel()

	src := "Site ID,Sample-Date,pH\n" +
		"S1,2020-01-01,7.1\n" +
		"\"S,2\",2020-01-02,\"6.9\"\n"

	records, err := CSVParser()(context.Background(), strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"Site ID", "Sample-Date", "pH"},
		{"S1", "2020-01-01", "7.1"},
		{"S,2", "2020-01-02", "6.9"},
	}, records)
}

func TestCSVParser_RaggedRow(t *testing.T) {
	t.Parallel()

	_, err := CSVParser()(context.Background(), strings.NewReader("a,b\n1,2,3\n"))
	require.ErrorIs(t, err, ErrRaggedRow)
}

func TestXLSParser_InvalidWorkbook(t *testing.T) {
	t.Parallel()

	_, err := XLSParser()(context.Background(), strings.NewReader("not a workbook"))
	require.Error(t, err)
}
