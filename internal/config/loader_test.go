package config_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/okian/ringstats/internal/config"
	"github.com/smartystreets/goconvey/convey"
	"github.com/spf13/pflag"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx, nil)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New(ctx))
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("RINGSTATS_YEAR_FROM", "2018")
			_ = os.Setenv("RINGSTATS_PAGE_SIZE", "500")
			_ = os.Setenv("RINGSTATS_COUNTY_REGION", "rutland")
			_ = os.Setenv("RINGSTATS_REQUESTS_PER_SECOND", "2.5")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx, nil)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.YearFrom, convey.ShouldEqual, 2018)
				convey.So(cfg.YearTo, convey.ShouldEqual, 2024)
				convey.So(cfg.PageSize, convey.ShouldEqual, 500)
				convey.So(cfg.CountyRegion, convey.ShouldEqual, "rutland")
				convey.So(cfg.RequestsPerSecond, convey.ShouldEqual, 2.5)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
# reporting window
year_from: 2021
year_to: 2023  # inclusive
output: "report.csv"
rate_limit: token
burst: 3
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("RINGSTATS_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx, nil)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.YearFrom, convey.ShouldEqual, 2021)
				convey.So(cfg.YearTo, convey.ShouldEqual, 2023)
				convey.So(cfg.Output, convey.ShouldEqual, "report.csv")
				convey.So(cfg.RateLimit, convey.ShouldEqual, "token")
				convey.So(cfg.Burst, convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When loading config with file, env and flags", func() {
			tmpFile := createTempConfigFile("year_from: 2021\noutput: file.xlsx\nconcurrency: 2\n")
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("RINGSTATS_CONFIG", tmpFile)
			_ = os.Setenv("RINGSTATS_OUTPUT", "env.xlsx")
			_ = os.Setenv("RINGSTATS_CONCURRENCY", "4")
			defer clearConfigEnvVars()

			fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
			config.BindFlags(ctx, fs)
			convey.So(fs.Parse([]string{"--output", "flag.csv", "--row-limit=10"}), convey.ShouldBeNil)

			cfg, err := config.Load(ctx, fs)

			convey.Convey("Then each layer should override the one below", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.YearFrom, convey.ShouldEqual, 2021)     // file
				convey.So(cfg.Concurrency, convey.ShouldEqual, 4)     // env over file
				convey.So(cfg.Output, convey.ShouldEqual, "flag.csv") // flag over env
				convey.So(cfg.RowLimit, convey.ShouldEqual, 10)       // flag over default
			})

			convey.Convey("And unset flags should not mask lower layers", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.PageSize, convey.ShouldEqual, 1000)
				convey.So(cfg.YearTo, convey.ShouldEqual, 2024)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("RINGSTATS_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx, nil)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("RINGSTATS_CONFIG", "/non/existent/ringstats.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx, nil)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an invalid value", func() {
			_ = os.Setenv("RINGSTATS_YEAR_TO", "2010")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx, nil)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, config.EnvPrefix) {
			_ = os.Unsetenv(name)
		}
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "ringstats-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
