package index

import (
	"github.com/okian/ringstats/internal/domain/model"
	"github.com/okian/ringstats/pkg/logger"
)

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithPageSize sets the page size ceiling used for truncation warnings.
func WithPageSize(size int) Option {
	return func(b *Builder) {
		if size > 0 {
			b.pageSize = size
		}
	}
}

// WithAffiliations overrides which affiliation queries run and in what order.
// The synthetic union tag is ignored.
func WithAffiliations(affs ...model.Affiliation) Option {
	return func(b *Builder) {
		kept := make([]model.Affiliation, 0, len(affs))
		for _, a := range affs {
			if a.Valid() && a != model.Union {
				kept = append(kept, a)
			}
		}
		if len(kept) > 0 {
			b.affiliations = kept
		}
	}
}

// WithLogger sets a custom logger for the builder.
func WithLogger(l logger.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}
