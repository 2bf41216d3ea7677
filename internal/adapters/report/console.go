package report

import (
	"context"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/okian/ringstats/internal/domain/model"
	"github.com/okian/ringstats/pkg/logger"
)

// TableSink renders the table for a terminal.
type TableSink struct {
	out    io.Writer
	logger logger.Logger
}

// Write implements Sink.
func (s *TableSink) Write(ctx context.Context, t *model.Table) error {
	return write(ctx, s.logger, FormatTable, "", t, func() error {
		return s.render(t)
	})
}

func (s *TableSink) render(t *model.Table) error {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false

	header := make(table.Row, 0, len(t.Columns)+1)
	for _, h := range t.Header() {
		header = append(header, h)
	}
	tbl.AppendHeader(header)

	for _, r := range t.Rows {
		tbl.AppendRow(table.Row(t.Cells(r)))
	}
	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d ringers", len(t.Rows))})

	if _, err := fmt.Fprintln(s.out, tbl.Render()); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	return nil
}
