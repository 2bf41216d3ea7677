package index_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/okian/ringstats/internal/bbtest"
	"github.com/okian/ringstats/internal/domain/index"
	"github.com/okian/ringstats/internal/domain/model"
	"github.com/okian/ringstats/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.InitWithWriter(io.Discard, logger.FormatText); err != nil {
		panic(err)
	}
}

// captureLogger returns a logger writing into buf.
func captureLogger(buf *bytes.Buffer) logger.Logger {
	if err := logger.InitWithWriter(buf, logger.FormatText); err != nil {
		panic(err)
	}
	return logger.Get()
}

func TestBuilder_Build(t *testing.T) {
	Convey("Given a record source with guild and county results", t, func() {
		ctx := context.Background()
		src := bbtest.NewSource().
			Set(bbtest.Guild(2023), bbtest.Ev("A", "Moira Johnson", "Ann Smith"), bbtest.Ev("B", "Moira Johnson")).
			Set(bbtest.County(2023), bbtest.Ev("B", "Moira Johnson"), bbtest.Ev("C", "Moira Johnson", "Bob Brown"))

		Convey("When building the index for 2023", func() {
			ix, stats, err := index.NewBuilder(src).Build(ctx, model.YearRange{From: 2023, To: 2023})

			Convey("Then each affiliation list should hold its own ids", func() {
				So(err, ShouldBeNil)
				guild, ok := ix.IDs("Moira Johnson", 2023, model.Guild)
				So(ok, ShouldBeTrue)
				So(guild, ShouldResemble, []string{"A", "B"})
				county, ok := ix.IDs("Moira Johnson", 2023, model.County)
				So(ok, ShouldBeTrue)
				So(county, ShouldResemble, []string{"B", "C"})
			})

			Convey("And performers should be kept in first-seen order", func() {
				So(ix.Performers(), ShouldResemble, []string{"Moira Johnson", "Ann Smith", "Bob Brown"})
				So(ix.Len(), ShouldEqual, 3)
			})

			Convey("And absent keys should be reported as absent", func() {
				_, ok := ix.IDs("Ann Smith", 2023, model.County)
				So(ok, ShouldBeFalse)
				_, ok = ix.IDs("Moira Johnson", 2023, model.Union)
				So(ok, ShouldBeFalse)
				So(ix.Count("Nobody", 2023, model.Guild), ShouldEqual, 0)
				So(ix.Has("Nobody", 2023), ShouldBeFalse)
			})

			Convey("And the stats should describe the run", func() {
				So(stats.Queries, ShouldEqual, 2)
				So(stats.Events, ShouldEqual, 4)
				So(stats.References, ShouldEqual, 6)
				So(stats.Duplicates, ShouldEqual, 0)
				So(stats.Truncations, ShouldEqual, 0)
			})
		})

		Convey("When building across several years", func() {
			_, stats, err := index.NewBuilder(src).Build(ctx, model.YearRange{From: 2021, To: 2023})

			Convey("Then it should query guild then county for each year in order", func() {
				So(err, ShouldBeNil)
				So(stats.Queries, ShouldEqual, 6)
				So(src.Calls(), ShouldResemble, []model.Query{
					bbtest.Guild(2021), bbtest.County(2021),
					bbtest.Guild(2022), bbtest.County(2022),
					bbtest.Guild(2023), bbtest.County(2023),
				})
			})
		})
	})

	Convey("Given a query returning the same event twice", t, func() {
		var buf bytes.Buffer
		log := captureLogger(&buf)
		src := bbtest.NewSource().
			Set(bbtest.Guild(2022), bbtest.Ev("X", "Ann Smith"), bbtest.Ev("X", "Ann Smith"))

		Convey("When building the index", func() {
			ix, stats, err := index.NewBuilder(src, index.WithLogger(log)).Build(context.Background(), model.YearRange{From: 2022, To: 2022})

			Convey("Then the raw list should keep both occurrences", func() {
				So(err, ShouldBeNil)
				So(ix.Count("Ann Smith", 2022, model.Guild), ShouldEqual, 2)
				So(stats.Duplicates, ShouldEqual, 1)
				So(buf.String(), ShouldContainSubstring, "duplicate performance")
			})

			Convey("And the union list should keep only one", func() {
				u := index.Union(ix)
				So(u.Count("Ann Smith", 2022, model.Union), ShouldEqual, 1)
			})
		})
	})

	Convey("Given a query returning exactly the page size", t, func() {
		var buf bytes.Buffer
		log := captureLogger(&buf)
		src := bbtest.NewSource().Set(bbtest.County(2021), bbtest.Events(5, "c", "Bob Brown")...)

		Convey("When building with a page size of 5", func() {
			ix, stats, err := index.NewBuilder(src, index.WithPageSize(5), index.WithLogger(log)).
				Build(context.Background(), model.YearRange{From: 2021, To: 2021})

			Convey("Then a truncation warning should be raised and the fetched count used", func() {
				So(err, ShouldBeNil)
				So(stats.Truncations, ShouldEqual, 1)
				So(buf.String(), ShouldContainSubstring, "records may be missing")
				So(ix.Count("Bob Brown", 2021, model.County), ShouldEqual, 5)
			})
		})

		Convey("When building with a larger page size", func() {
			_, stats, err := index.NewBuilder(src, index.WithPageSize(6), index.WithLogger(log)).
				Build(context.Background(), model.YearRange{From: 2021, To: 2021})

			Convey("Then no truncation warning should be raised", func() {
				So(err, ShouldBeNil)
				So(stats.Truncations, ShouldEqual, 0)
			})
		})
	})

	Convey("Given a failing affiliation query", t, func() {
		var buf bytes.Buffer
		log := captureLogger(&buf)
		src := bbtest.NewSource().
			Fail(bbtest.Guild(2020), errors.New("status 503")).
			Set(bbtest.County(2020), bbtest.Ev("K", "Cara Dee"))

		Convey("When building the index", func() {
			ix, stats, err := index.NewBuilder(src, index.WithLogger(log)).Build(context.Background(), model.YearRange{From: 2020, To: 2020})

			Convey("Then the run should continue with partial data", func() {
				So(err, ShouldBeNil)
				So(stats.FailedQueries, ShouldEqual, 1)
				So(ix.Count("Cara Dee", 2020, model.County), ShouldEqual, 1)
				So(buf.String(), ShouldContainSubstring, "affiliation query failed")
			})
		})
	})

	Convey("Given events with blank performer names", t, func() {
		src := bbtest.NewSource().Set(bbtest.Guild(2020), bbtest.Ev("E", "", "  ", "Dan Eve"))

		Convey("When building the index", func() {
			ix, stats, err := index.NewBuilder(src).Build(context.Background(), model.YearRange{From: 2020, To: 2020})

			Convey("Then blanks should be skipped", func() {
				So(err, ShouldBeNil)
				So(ix.Performers(), ShouldResemble, []string{"Dan Eve"})
				So(stats.References, ShouldEqual, 1)
			})
		})
	})

	Convey("Given an invalid year range", t, func() {
		_, _, err := index.NewBuilder(bbtest.NewSource()).Build(context.Background(), model.YearRange{From: 2024, To: 2020})

		Convey("Then the build should be rejected", func() {
			So(errors.Is(err, model.ErrInvalidYearRange), ShouldBeTrue)
		})
	})

	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, _, err := index.NewBuilder(bbtest.NewSource()).Build(ctx, model.YearRange{From: 2020, To: 2020})

		Convey("Then the build should stop with the context error", func() {
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})

	Convey("Given a builder restricted to the county affiliation", t, func() {
		src := bbtest.NewSource()
		_, stats, err := index.NewBuilder(src, index.WithAffiliations(model.County, model.Union, "bogus")).
			Build(context.Background(), model.YearRange{From: 2020, To: 2020})

		Convey("Then only the county query should run", func() {
			So(err, ShouldBeNil)
			So(stats.Queries, ShouldEqual, 1)
			So(src.Calls(), ShouldResemble, []model.Query{bbtest.County(2020)})
		})
	})
}

func TestUnion(t *testing.T) {
	Convey("Given guild ids [A,B] and county ids [B,C] for Moira Johnson in 2023", t, func() {
		src := bbtest.NewSource().
			Set(bbtest.Guild(2023), bbtest.Ev("A", "Moira Johnson"), bbtest.Ev("B", "Moira Johnson")).
			Set(bbtest.County(2023), bbtest.Ev("B", "Moira Johnson"), bbtest.Ev("C", "Moira Johnson")).
			Set(bbtest.County(2021), bbtest.Events(4, "k", "County Only")...)
		ix, _, err := index.NewBuilder(src).Build(context.Background(), model.YearRange{From: 2021, To: 2023})
		So(err, ShouldBeNil)

		Convey("When aggregating the union", func() {
			u := index.Union(ix)

			Convey("Then the union should be the set union, not the symmetric difference", func() {
				ids, ok := u.IDs("Moira Johnson", 2023, model.Union)
				So(ok, ShouldBeTrue)
				So(ids, ShouldResemble, []string{"A", "B", "C"})
			})

			Convey("And a county-only performer should have union equal to county", func() {
				So(u.Count("County Only", 2021, model.County), ShouldEqual, 4)
				So(u.Count("County Only", 2021, model.Guild), ShouldEqual, 0)
				So(u.Count("County Only", 2021, model.Union), ShouldEqual, 4)
			})

			Convey("And years without data should get no union entry", func() {
				_, ok := u.IDs("Moira Johnson", 2022, model.Union)
				So(ok, ShouldBeFalse)
			})

			Convey("And the input index should be left untouched", func() {
				_, ok := ix.IDs("Moira Johnson", 2023, model.Union)
				So(ok, ShouldBeFalse)
			})

			Convey("And applying it again should change nothing", func() {
				again := index.Union(u)
				So(again.Count("Moira Johnson", 2023, model.Union), ShouldEqual, 3)
				So(again.Performers(), ShouldResemble, u.Performers())
			})
		})
	})

	Convey("Given overlapping random-ish lists", t, func() {
		src := bbtest.NewSource().
			Set(bbtest.Guild(2020), append(bbtest.Events(7, "g", "P"), bbtest.Events(3, "shared", "P")...)...).
			Set(bbtest.County(2020), append(bbtest.Events(3, "shared", "P"), bbtest.Events(2, "c", "P")...)...)
		ix, _, err := index.NewBuilder(src).Build(context.Background(), model.YearRange{From: 2020, To: 2020})
		So(err, ShouldBeNil)
		u := index.Union(ix)

		Convey("Then the union count should be bounded by max and sum", func() {
			g := u.Count("P", 2020, model.Guild)
			c := u.Count("P", 2020, model.County)
			n := u.Count("P", 2020, model.Union)
			So(g, ShouldEqual, 10)
			So(c, ShouldEqual, 5)
			So(n, ShouldEqual, 12)
			So(n, ShouldBeGreaterThanOrEqualTo, max(g, c))
			So(n, ShouldBeLessThanOrEqualTo, g+c)
		})
	})
}
