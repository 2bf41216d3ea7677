package report

import (
	"io"
	"os"

	"github.com/okian/ringstats/pkg/logger"
)

type options struct {
	sheet  string
	out    io.Writer
	logger logger.Logger
}

func defaultOptions() *options {
	return &options{
		sheet:  DefaultSheet,
		out:    os.Stdout,
		logger: logger.Get().Named("report"),
	}
}

// Option applies a configuration option to a sink.
type Option func(*options)

// WithSheet sets the worksheet name for xlsx output.
func WithSheet(name string) Option {
	return func(o *options) {
		if name != "" {
			o.sheet = name
		}
	}
}

// WithOutput sets the writer used by the table sink.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.out = w
		}
	}
}

// WithLogger sets a custom logger for the sink.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
