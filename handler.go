package whloader

import (
	"context"
	"net/http"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"golang.org/x/text/encoding"
	"golang.org/x/xerrors"
)

// Handler defines one dataset and the table it is loaded into.
type Handler struct {
	// Name is the handler's name used in logs and notifications.
	Name string

	// URL is the source, http(s):// or gs://.
	URL       string
	UserAgent string

	// HTTPClient is used for http(s) sources. nil means http.DefaultClient.
	HTTPClient *http.Client

	// Encoding overrides the charset declared by the source.
	Encoding encoding.Encoding

	Parser          Parser
	Projector       Projector
	SkipLeadingRows int

	OnCollision CollisionPolicy

	// MaxTextWidth is the width of every text column. 0 means DefaultMaxTextWidth.
	MaxTextWidth int

	Notifier Notifier

	// Destination specifies the warehouse table.
	Destination Config

	// TempDir holds the transient staging file. Empty means os.TempDir().
	TempDir string

	extractor extractor
	connect   connector
	fs        afero.Fs
}

// Projector transforms a source row. Returning a nil row skips it.
type Projector func(context.Context, []string) ([]string, error)

func (h *Handler) handle(ctx context.Context) (*LoadResult, error) {
	l := log.Ctx(ctx)

	dest := h.Destination
	dest.Normalize()
	if err := dest.Validate(); err != nil {
		return nil, err
	}

	frame, err := h.fetch(ctx)
	if err != nil {
		return nil, err
	}

	columns, err := NormalizeColumns(frame.Columns, h.OnCollision)
	if err != nil {
		return nil, xerrors.Errorf("failed to normalize columns: %w", err)
	}
	l.Info().Strs("original", frame.Columns).Strs("cleaned", columns).Msg("columns normalized")

	p := dest.TablePath()
	ddl := dest.dialect().CreateTable(p, columns, h.MaxTextWidth)

	connect := h.connect
	if connect == nil {
		connect = h.defaultConnector(&dest)
	}

	l.Info().Msgf("attempting to load data to %s", p)

	w, err := connect(ctx, &dest)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := w.close(); err != nil {
			l.Warn().Err(err).Msg("failed to close warehouse connection")
			return
		}
		l.Info().Msg("warehouse connection closed")
	}()

	if err := prepareTable(ctx, w, p, ddl); err != nil {
		return nil, err
	}

	res, err := w.bulkLoad(ctx, p, frame)
	if err != nil {
		return nil, err
	}

	if res.Partial() {
		l.Warn().Int64("skipped", res.Skipped).Interface("samples", res.SkippedSamples).Msg("some rows were skipped")
	}

	return res, nil
}

// fetch extracts, decodes, parses and projects the source.
func (h *Handler) fetch(ctx context.Context) (*Frame, error) {
	l := log.Ctx(ctx)

	ex := h.extractor
	if ex == nil {
		var err error
		ex, err = newDefaultExtractor(ctx, h.URL, h.HTTPClient, h.UserAgent)
		if err != nil {
			return nil, err
		}
	}

	raw, err := ex.extract(ctx, h.URL)
	if err != nil {
		return nil, xerrors.Errorf("failed to extract: %w", err)
	}

	r, err := raw.Reader(h.Encoding)
	if err != nil {
		return nil, err
	}

	parser := h.Parser
	if parser == nil {
		parser = CSVParser()
	}

	records, err := parser(ctx, r)
	if err != nil {
		l.Error().Err(err).Msg("failed to parse source")
		return nil, xerrors.Errorf("failed to parse: %w", err)
	}

	if h.SkipLeadingRows > len(records) {
		return nil, ErrEmptyDataset
	}
	records = records[h.SkipLeadingRows:]

	frame, err := NewFrame(records)
	if err != nil {
		return nil, xerrors.Errorf("failed to build frame: %w", err)
	}

	if h.Projector != nil {
		if err := h.project(ctx, frame); err != nil {
			return nil, err
		}
	}

	l.Info().Int("columns", len(frame.Columns)).Int("rows", len(frame.Rows)).Msg("parsed source")

	return frame, nil
}

func (h *Handler) project(ctx context.Context, f *Frame) error {
	rows := make([][]string, 0, len(f.Rows))

	for i, r := range f.Rows {
		row, err := h.Projector(ctx, r)
		if err != nil {
			return xerrors.Errorf("failed to project row %d (line %d): %w", i, i+h.SkipLeadingRows+2, err)
		}

		if row == nil {
			continue
		}

		rows = append(rows, row)
	}

	f.Rows = rows
	if err := f.validate(); err != nil {
		return xerrors.Errorf("projected rows: %w", err)
	}

	return nil
}

func (h *Handler) defaultConnector(c *Config) connector {
	if c.dialect() == BigQuery {
		return newBigQueryConnector()
	}

	fs := h.fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	dir := h.TempDir
	if dir == "" {
		dir = os.TempDir()
	}

	return newSnowflakeConnector(fs, dir)
}
