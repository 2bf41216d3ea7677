package service

import (
	"github.com/okian/ringstats/internal/domain/model"
	"github.com/okian/ringstats/pkg/logger"
)

// Option applies a configuration option to the Runner.
type Option func(*Runner)

// WithYears sets the reporting range.
func WithYears(years model.YearRange) Option {
	return func(r *Runner) {
		r.years = years
	}
}

// WithPageSize sets the page size used for truncation warnings.
func WithPageSize(size int) Option {
	return func(r *Runner) {
		if size > 0 {
			r.pageSize = size
		}
	}
}

// WithRowLimit caps the number of rows emitted; zero or less means no cap.
func WithRowLimit(n int) Option {
	return func(r *Runner) {
		r.rowLimit = n
	}
}

// WithConcurrency sets how many performers are enriched at once.
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithLogger sets a custom logger for the runner.
func WithLogger(l logger.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}
