package totals

import (
	"github.com/okian/ringstats/pkg/logger"
)

// Option applies a configuration option to the Fetcher.
type Option func(*Fetcher)

// WithPageSize sets the page size ceiling used for truncation warnings.
func WithPageSize(size int) Option {
	return func(f *Fetcher) {
		if size > 0 {
			f.pageSize = size
		}
	}
}

// WithLogger sets a custom logger for the fetcher.
func WithLogger(l logger.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}
