package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then the gauges should be registered under the default namespace", func() {
				So(manager, ShouldNotBeNil)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(familyNames(families), ShouldContain, "ringstats_report_rows_emitted")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_ns"),
				WithSubsystem("test_sub"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the metrics should use the custom names and labels", func() {
				So(manager, ShouldNotBeNil)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(familyNames(families), ShouldContain, "test_ns_test_sub_performers_indexed")

				for _, f := range families {
					if f.GetName() != "test_ns_test_sub_performers_indexed" {
						continue
					}
					labels := f.GetMetric()[0].GetLabel()
					So(labels, ShouldHaveLength, 1)
					So(labels[0].GetName(), ShouldEqual, "env")
					So(labels[0].GetValue(), ShouldEqual, "test")
				}
			})
		})

		Convey("When empty options are passed", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults should be kept", func() {
				So(manager.namespace, ShouldEqual, "ringstats")
				So(manager.subsystem, ShouldEqual, "report")
				So(manager.histogramBuckets, ShouldNotBeEmpty)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording truncation and duplicate warnings", func() {
			beforeTrunc := testutil.ToFloat64(globalManager.truncationWarnings.WithLabelValues("guild"))
			beforeDup := testutil.ToFloat64(globalManager.duplicateEvents.WithLabelValues("county"))

			RecordTruncationWarning("guild")
			RecordDuplicateEvent("county")
			RecordDuplicateEvent("county")

			Convey("Then the counters should advance", func() {
				So(testutil.ToFloat64(globalManager.truncationWarnings.WithLabelValues("guild")), ShouldEqual, beforeTrunc+1)
				So(testutil.ToFloat64(globalManager.duplicateEvents.WithLabelValues("county")), ShouldEqual, beforeDup+2)
			})
		})

		Convey("When recording requests", func() {
			beforeOK := testutil.ToFloat64(globalManager.requests.WithLabelValues("personal", "200"))
			beforeErr := testutil.ToFloat64(globalManager.requests.WithLabelValues("personal", "error"))

			RecordRequest("personal", 200, 12)
			RecordRequest("personal", 0, 3)
			RecordRecordsFetched("personal", 7)

			Convey("Then transport failures should be labelled error", func() {
				So(testutil.ToFloat64(globalManager.requests.WithLabelValues("personal", "200")), ShouldEqual, beforeOK+1)
				So(testutil.ToFloat64(globalManager.requests.WithLabelValues("personal", "error")), ShouldEqual, beforeErr+1)
			})
		})

		Convey("When updating gauges", func() {
			UpdatePerformersIndexed(42)
			UpdateRowsEmitted(20)

			Convey("Then they should hold the last value", func() {
				So(testutil.ToFloat64(globalManager.performersIndexed), ShouldEqual, 42)
				So(testutil.ToFloat64(globalManager.rowsEmitted), ShouldEqual, 20)
			})
		})

		Convey("When recording report writes", func() {
			beforeOK := testutil.ToFloat64(globalManager.reportWrites.WithLabelValues("xlsx", "ok"))
			beforeErr := testutil.ToFloat64(globalManager.reportWrites.WithLabelValues("xlsx", "error"))

			RecordReportWrite("xlsx", nil, 5)
			RecordReportWrite("xlsx", errors.New("disk full"), 5)

			Convey("Then results should be split by outcome", func() {
				So(testutil.ToFloat64(globalManager.reportWrites.WithLabelValues("xlsx", "ok")), ShouldEqual, beforeOK+1)
				So(testutil.ToFloat64(globalManager.reportWrites.WithLabelValues("xlsx", "error")), ShouldEqual, beforeErr+1)
			})
		})
	})
}

func TestWriteTextfile(t *testing.T) {
	Convey("Given recorded metrics", t, func() {
		RecordPersonalTotal("counted")
		RecordRunDuration(1.5)
		MarkRunSucceeded()

		Convey("When writing a textfile", func() {
			path := filepath.Join(t.TempDir(), "ringstats.prom")
			err := WriteTextfile(path)

			Convey("Then the file should contain the exposition", func() {
				So(err, ShouldBeNil)
				data, readErr := os.ReadFile(path)
				So(readErr, ShouldBeNil)
				So(string(data), ShouldContainSubstring, "ringstats_report_personal_totals_total")
				So(string(data), ShouldContainSubstring, "ringstats_report_run_duration_seconds 1.5")
			})
		})

		Convey("When the target directory does not exist", func() {
			err := WriteTextfile(filepath.Join(t.TempDir(), "missing", "ringstats.prom"))

			Convey("Then an export error should be returned", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, ErrExportFailed), ShouldBeTrue)
			})
		})
	})
}

func TestStatusLabel(t *testing.T) {
	Convey("Given HTTP statuses", t, func() {
		So(statusLabel(200), ShouldEqual, "200")
		So(statusLabel(503), ShouldEqual, "503")
		So(statusLabel(0), ShouldEqual, "error")
		So(strings.HasPrefix(statusLabel(-1), "err"), ShouldBeTrue)
	})
}

func familyNames(families []*dto.MetricFamily) []string {
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	return names
}
