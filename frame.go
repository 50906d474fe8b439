package whloader

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/xerrors"
)

var (
	// ErrEmptyDataset is returned when the source has no header row.
	ErrEmptyDataset = errors.New("dataset has no header row")

	// ErrRaggedRow is returned when a row does not have as many cells as the header.
	ErrRaggedRow = errors.New("row length does not match header")
)

// RawDataset is a fetched payload with the charset its source declared.
type RawDataset struct {
	Body    []byte
	Charset string
}

// Reader returns the payload decoded to UTF-8. An explicit enc wins over the
// declared charset. An unknown declared charset is an error.
// A leading byte order mark is dropped from UTF-8 payloads.
func (d *RawDataset) Reader(enc encoding.Encoding) (io.Reader, error) {
	r := io.Reader(bytes.NewReader(d.Body))

	if enc != nil {
		return transform.NewReader(r, enc.NewDecoder()), nil
	}

	if d.Charset == "" || isUTF8(d.Charset) {
		return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())), nil
	}

	e, err := htmlindex.Get(d.Charset)
	if err != nil {
		return nil, xerrors.Errorf("unsupported charset %s: %w", d.Charset, err)
	}

	return transform.NewReader(r, e.NewDecoder()), nil
}

func isUTF8(charset string) bool {
	c := strings.ToLower(strings.TrimSpace(charset))
	return c == "utf-8" || c == "utf8" || c == "us-ascii"
}

// Frame is a parsed dataset. Every row has one text cell per column.
type Frame struct {
	Columns []string
	Rows    [][]string
}

// NewFrame splits records into a header and rows.
func NewFrame(records [][]string) (*Frame, error) {
	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}

	f := &Frame{Columns: records[0], Rows: records[1:]}
	if err := f.validate(); err != nil {
		return nil, err
	}

	return f, nil
}

func (f *Frame) validate() error {
	for i, r := range f.Rows {
		if len(r) != len(f.Columns) {
			return xerrors.Errorf("row %d has %d fields, header has %d: %w", i+1, len(r), len(f.Columns), ErrRaggedRow)
		}
	}
	return nil
}
