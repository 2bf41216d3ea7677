// Package report writes the assembled ringer table to its destination.
package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/okian/ringstats/internal/domain/model"
	"github.com/okian/ringstats/pkg/logger"
	"github.com/okian/ringstats/pkg/metrics"
)

// Supported formats.
const (
	FormatXLSX  = "xlsx"
	FormatCSV   = "csv"
	FormatTable = "table"
)

// DefaultSheet names the worksheet written by the xlsx sink.
const DefaultSheet = "Ringers"

const nanosPerMillisecond = 1e6

// Sink persists or displays a report table. A failed Write is fatal to the run.
type Sink interface {
	Write(ctx context.Context, t *model.Table) error
}

// ResolveFormat returns format if set, otherwise the format implied by the
// extension of path.
func ResolveFormat(format, path string) (string, error) {
	if format != "" {
		switch format {
		case FormatXLSX, FormatCSV, FormatTable:
			return format, nil
		}
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: cannot infer format from %q", ErrUnknownFormat, path)
	}
}

// New returns the sink for format, writing to path. An empty format is
// inferred from the path extension.
func New(format, path string, opts ...Option) (Sink, error) {
	resolved, err := ResolveFormat(format, path)
	if err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	switch resolved {
	case FormatXLSX:
		return &XLSXSink{path: path, sheet: o.sheet, logger: o.logger}, nil
	case FormatCSV:
		return &CSVSink{path: path, logger: o.logger}, nil
	default:
		return &TableSink{out: o.out, logger: o.logger}, nil
	}
}

// write runs fn under the common validation, timing, metrics and logging.
func write(ctx context.Context, log logger.Logger, format, path string, t *model.Table, fn func() error) error {
	start := time.Now()

	err := t.Validate()
	if err == nil {
		err = fn()
	}
	metrics.RecordReportWrite(format, err, float64(time.Since(start).Nanoseconds())/nanosPerMillisecond)
	if err != nil {
		log.Error(ctx, "failed to write report",
			logger.String("format", format),
			logger.String("path", path),
			logger.Error(err),
		)
		return err
	}

	fields := []logger.Field{
		logger.String("format", format),
		logger.Int("rows", len(t.Rows)),
		logger.Int("columns", len(t.Header())),
		logger.Duration("elapsed", time.Since(start)),
	}
	if path != "" {
		fields = append(fields, logger.String("path", path))
		if info, statErr := os.Stat(path); statErr == nil {
			fields = append(fields, logger.String("size", humanize.Bytes(uint64(info.Size()))))
		}
	}
	log.Info(ctx, "report written", fields...)
	return nil
}
