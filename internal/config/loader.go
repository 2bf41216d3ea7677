package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Environment variable names.
const (
	EnvPrefix = "RINGSTATS_"
	EnvConfig = EnvPrefix + "CONFIG"
)

// Load builds a Config by layering defaults, optional file, env vars and flags.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if RINGSTATS_CONFIG is set
//  3. env (prefix RINGSTATS_)
//  4. flags explicitly set on fs; fs may be nil
func Load(ctx context.Context, fs *pflag.FlagSet) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv(EnvConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// RINGSTATS_YEAR_FROM -> year_from. Underscores are kept to match the
	// flat koanf tags on the struct.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	// The env provider also sees RINGSTATS_CONFIG itself.
	k.Delete("config")

	if fs != nil {
		flags := posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			return flagKey(f.Name), posflag.FlagVal(fs, f)
		})
		if err := k.Load(flags, nil); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// BindFlags registers one flag per configuration key on fs, using the
// defaults from New for help output. Only flags the user sets override
// the lower layers.
func BindFlags(ctx context.Context, fs *pflag.FlagSet) {
	d := New(ctx)

	fs.String(flagName("log_level"), d.LogLevel, "log level: debug, info, warn, error")
	fs.String(flagName("log_format"), d.LogFormat, "log format: text or json")
	fs.String(flagName("base_url"), d.BaseURL, "export API base URL")
	fs.Int(flagName("guild_id"), d.GuildID, "association id for guild queries")
	fs.String(flagName("county_region"), d.CountyRegion, "region keyword for county queries")
	fs.String(flagName("length"), d.Length, "performance length filter")
	fs.Int(flagName("year_from"), d.YearFrom, "first year, inclusive")
	fs.Int(flagName("year_to"), d.YearTo, "last year, inclusive")
	fs.Int(flagName("page_size"), d.PageSize, "records requested per query")
	fs.String(flagName("rate_limit"), d.RateLimit, "rate limiter: fixed or token")
	fs.Int(flagName("request_delay_ms"), d.RequestDelayMS, "minimum gap between requests in fixed mode")
	fs.Float64(flagName("requests_per_second"), d.RequestsPerSecond, "refill rate in token mode")
	fs.Int(flagName("burst"), d.Burst, "bucket size in token mode")
	fs.Int(flagName("http_timeout_ms"), d.HTTPTimeoutMS, "per-request timeout")
	fs.Int(flagName("concurrency"), d.Concurrency, "performers enriched in parallel")
	fs.Int(flagName("row_limit"), d.RowLimit, "maximum rows to emit, 0 for all")
	fs.StringP(flagName("output"), "o", d.Output, "report path")
	fs.StringP(flagName("format"), "f", d.Format, "report format: xlsx, csv or table (default from output extension)")
	fs.String(flagName("metrics_file"), d.MetricsFile, "write prometheus metrics to this textfile at exit")
	fs.String(flagName("user_agent"), d.UserAgent, "User-Agent header")
}

func flagName(key string) string { return strings.ReplaceAll(key, "_", "-") }

func flagKey(name string) string { return strings.ReplaceAll(name, "-", "_") }
