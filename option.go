package whloader

import (
	"io"

	"github.com/rs/zerolog"
	"golang.org/x/xerrors"
)

// Option configures WHLoader.
type Option interface {
	apply(*whloader) error
}

type optionFunc func(*whloader) error

func (f optionFunc) apply(l *whloader) error {
	return f(l)
}

// WithPrettyLogging configures WHLoader to print human friendly logs.
func WithPrettyLogging() Option {
	return optionFunc(func(l *whloader) error {
		l.prettyLogging = true
		return nil
	})
}

// WithLogLevel sets log level. The level string is parsed by zerolog.ParseLevel.
func WithLogLevel(level string) Option {
	return optionFunc(func(l *whloader) error {
		lv, err := zerolog.ParseLevel(level)
		if err != nil {
			return xerrors.Errorf("invalid log level %q: %w", level, err)
		}
		l.logLevel = lv
		return nil
	})
}

// WithLogOutput sets where logs are written. The default is stderr.
func WithLogOutput(w io.Writer) Option {
	return optionFunc(func(l *whloader) error {
		l.logOutput = w
		return nil
	})
}
