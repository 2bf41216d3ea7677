package report

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/okian/ringstats/internal/domain/model"
	"github.com/okian/ringstats/pkg/logger"
)

// XLSXSink writes the table to a single worksheet: a header row followed
// by one row per performer.
type XLSXSink struct {
	path   string
	sheet  string
	logger logger.Logger
}

// Write implements Sink.
func (s *XLSXSink) Write(ctx context.Context, t *model.Table) error {
	return write(ctx, s.logger, FormatXLSX, s.path, t, func() error {
		return s.save(t)
	})
}

func (s *XLSXSink) save(t *model.Table) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %w", ErrWriteFailed, cerr)
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), s.sheet); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}

	sw, err := f.NewStreamWriter(s.sheet)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}

	header := t.Header()
	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
	}
	if err := s.setRow(sw, 1, cells); err != nil {
		return err
	}
	for i, r := range t.Rows {
		if err := s.setRow(sw, i+2, t.Cells(r)); err != nil {
			return err
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	return nil
}

func (s *XLSXSink) setRow(sw *excelize.StreamWriter, row int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	if err := sw.SetRow(cell, cells); err != nil {
		return fmt.Errorf("%w: row %d: %w", ErrWriteFailed, row, err)
	}
	return nil
}
