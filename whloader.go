package whloader

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// WHLoader loads a dataset into a warehouse table.
type WHLoader interface {
	Load(context.Context, *Handler) (*Result, error)
	MustLoad(context.Context, *Handler) *Result
}

// New builds a new WHLoader.
func New(opts ...Option) (WHLoader, error) {
	l := &whloader{
		logLevel:  zerolog.InfoLevel,
		logOutput: os.Stderr,
	}

	for _, o := range opts {
		if err := o.apply(l); err != nil {
			return nil, err
		}
	}

	w := l.logOutput
	if l.prettyLogging {
		w = zerolog.ConsoleWriter{Out: l.logOutput}
	}
	l.logger = zerolog.New(w).Level(l.logLevel).With().Timestamp().Logger()

	return l, nil
}

type whloader struct {
	logger        zerolog.Logger
	logLevel      zerolog.Level
	logOutput     io.Writer
	prettyLogging bool
}

func (l *whloader) Load(ctx context.Context, h *Handler) (*Result, error) {
	ctx = withStartedTime(ctx)
	logger := l.logger.With().Str("handler", h.Name).Logger()
	ctx = logger.WithContext(ctx)

	logger.Info().Msg("loader started")

	lr, err := h.handle(ctx)
	r := &Result{Handler: h, LoadResult: lr, Error: err}

	if err != nil {
		logger.Error().Err(err).Dur("elapsed", elapsed(ctx)).Msg("loader failed")
	} else {
		logger.Info().
			Int64("loaded", lr.Loaded).
			Int64("skipped", lr.Skipped).
			Int64("row_count", lr.RowCount).
			Dur("elapsed", elapsed(ctx)).
			Msg("loader finished")
	}

	if h.Notifier != nil {
		if nerr := h.Notifier.Notify(ctx, r); nerr != nil {
			logger.Warn().Err(nerr).Msg("failed to notify")
		}
	}

	return r, err
}

func (l *whloader) MustLoad(ctx context.Context, h *Handler) *Result {
	r, err := l.Load(ctx, h)
	if err != nil {
		panic(err)
	}
	return r
}
