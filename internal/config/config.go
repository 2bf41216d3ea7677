// Package config defines run configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers a YAML file, environment variables and command line flags on top.
// - Validation errors wrap ErrInvalidConfig.
package config

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/okian/ringstats/internal/domain/model"
)

// Accepted enumerated values.
var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
	rateLimits = []string{"fixed", "token"}
	formats    = []string{"", "xlsx", "csv", "table"}
)

// Config contains run configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// BaseURL is the scheme and host of the export API.
	BaseURL string `koanf:"base_url"`

	// GuildID, CountyRegion and Length parameterise the affiliation queries.
	GuildID      int    `koanf:"guild_id"`
	CountyRegion string `koanf:"county_region"`
	Length       string `koanf:"length"`

	// YearFrom and YearTo bound the reporting range, inclusive.
	YearFrom int `koanf:"year_from"`
	YearTo   int `koanf:"year_to"`

	// PageSize is requested on every query and used for truncation warnings.
	PageSize int `koanf:"page_size"`

	// RateLimit selects the limiter: fixed or token.
	RateLimit string `koanf:"rate_limit"`

	// RequestDelayMS is the minimum gap between request starts in fixed mode.
	RequestDelayMS int `koanf:"request_delay_ms"`

	// RequestsPerSecond and Burst configure token mode.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`

	// HTTPTimeoutMS bounds a single request.
	HTTPTimeoutMS int `koanf:"http_timeout_ms"`

	// Concurrency sets how many performers are enriched in parallel.
	Concurrency int `koanf:"concurrency"`

	// RowLimit caps the number of rows materialised; zero means unlimited.
	RowLimit int `koanf:"row_limit"`

	// Output is the report path; Format overrides the extension-derived format.
	Output string `koanf:"output"`
	Format string `koanf:"format"`

	// MetricsFile, when set, receives a prometheus textfile at exit.
	MetricsFile string `koanf:"metrics_file"`

	// UserAgent is sent on every request.
	UserAgent string `koanf:"user_agent"`
}

// New creates a Config populated with defaults. Context is accepted first to
// follow the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		BaseURL:           "https://bb.ringingworld.co.uk",
		GuildID:           17,
		CountyRegion:      "leicestershire",
		Length:            "quarter",
		YearFrom:          2020,
		YearTo:            2024,
		PageSize:          1000,
		RateLimit:         "fixed",
		RequestDelayMS:    200,
		RequestsPerSecond: 5,
		Burst:             1,
		HTTPTimeoutMS:     30_000,
		Concurrency:       1,
		RowLimit:          0,
		Output:            "output.xlsx",
		Format:            "",
		MetricsFile:       "",
		UserAgent:         "ringstats/1.0",
	}
}

// Years returns the configured reporting range.
func (c *Config) Years() model.YearRange {
	return model.YearRange{From: c.YearFrom, To: c.YearTo}
}

// RequestDelay returns the fixed-mode delay as a duration.
func (c *Config) RequestDelay() time.Duration {
	return time.Duration(c.RequestDelayMS) * time.Millisecond
}

// HTTPTimeout returns the per-request timeout as a duration.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutMS) * time.Millisecond
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return fmt.Errorf("%w: base_url must not be empty", ErrInvalidConfig)
	case c.Output == "" && c.Format != "table":
		return fmt.Errorf("%w: output must not be empty", ErrInvalidConfig)
	case c.PageSize <= 0:
		return fmt.Errorf("%w: page_size must be positive, got %d", ErrInvalidConfig, c.PageSize)
	case c.Concurrency < 1:
		return fmt.Errorf("%w: concurrency must be at least 1, got %d", ErrInvalidConfig, c.Concurrency)
	case c.RequestDelayMS < 0:
		return fmt.Errorf("%w: request_delay_ms must not be negative", ErrInvalidConfig)
	case c.HTTPTimeoutMS <= 0:
		return fmt.Errorf("%w: http_timeout_ms must be positive", ErrInvalidConfig)
	case c.RateLimit == "token" && c.RequestsPerSecond <= 0:
		return fmt.Errorf("%w: requests_per_second must be positive in token mode", ErrInvalidConfig)
	}

	if err := c.Years().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	for _, check := range []struct {
		key, value string
		allowed    []string
	}{
		{"log_level", c.LogLevel, logLevels},
		{"log_format", c.LogFormat, logFormats},
		{"rate_limit", c.RateLimit, rateLimits},
		{"format", c.Format, formats},
	} {
		if !slices.Contains(check.allowed, check.value) {
			return fmt.Errorf("%w: unknown %s %q", ErrInvalidConfig, check.key, check.value)
		}
	}
	return nil
}
