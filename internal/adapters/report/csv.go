package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/okian/ringstats/internal/domain/model"
	"github.com/okian/ringstats/pkg/logger"
)

// CSVSink writes the table as comma separated values with a header line.
type CSVSink struct {
	path   string
	logger logger.Logger
}

// Write implements Sink.
func (s *CSVSink) Write(ctx context.Context, t *model.Table) error {
	return write(ctx, s.logger, FormatCSV, s.path, t, func() error {
		return s.save(t)
	})
}

func (s *CSVSink) save(t *model.Table) (err error) {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %w", ErrWriteFailed, cerr)
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(t.Header()); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}

	record := make([]string, len(t.Columns)+1)
	for _, r := range t.Rows {
		record[0] = r.Name
		for i, c := range t.Columns {
			record[i+1] = strconv.Itoa(r.Count(c))
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteFailed, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	return nil
}
