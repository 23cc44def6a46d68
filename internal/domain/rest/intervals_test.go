package rest_test

import (
	"testing"
	"time"

	"github.com/frostline/restcurve/internal/domain/model"
	"github.com/frostline/restcurve/internal/domain/rest"
	. "github.com/smartystreets/goconvey/convey"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestIntervals(t *testing.T) {
	Convey("Given entity A with games on Jan 1, Jan 2 and Jan 6", t, func() {
		records := []model.GameRecord{
			{RecordID: "a1", EntityID: "A", GameDate: day("2023-01-01")},
			{RecordID: "a2", EntityID: "A", GameDate: day("2023-01-02")},
			{RecordID: "a3", EntityID: "A", GameDate: day("2023-01-06")},
		}

		Convey("When computing rest intervals", func() {
			res := rest.Intervals(records)

			Convey("Then days rest is nil, 1, 4", func() {
				So(res.Intervals, ShouldHaveLength, 3)
				So(res.Intervals[0].DaysRest, ShouldBeNil)
				So(*res.Intervals[1].DaysRest, ShouldEqual, 1)
				So(*res.Intervals[2].DaysRest, ShouldEqual, 4)
				So(res.Skipped, ShouldEqual, 0)
			})

			Convey("And every gap after the first is non-negative", func() {
				for _, iv := range res.Intervals[1:] {
					So(*iv.DaysRest, ShouldBeGreaterThanOrEqualTo, 0)
				}
			})

			Convey("And the input order is preserved in the record slice", func() {
				So(records[0].RecordID, ShouldEqual, "a1")
				So(records[2].RecordID, ShouldEqual, "a3")
			})
		})

		Convey("When the input arrives out of date order", func() {
			shuffled := []model.GameRecord{records[2], records[0], records[1]}
			res := rest.Intervals(shuffled)

			Convey("Then ordering is by date, with indexes into the input", func() {
				So(res.Intervals[0].Index, ShouldEqual, 1) // Jan 1
				So(res.Intervals[0].DaysRest, ShouldBeNil)
				So(res.Intervals[1].Index, ShouldEqual, 2) // Jan 2
				So(*res.Intervals[1].DaysRest, ShouldEqual, 1)
				So(res.Intervals[2].Index, ShouldEqual, 0) // Jan 6
				So(*res.Intervals[2].DaysRest, ShouldEqual, 4)
			})
		})
	})

	Convey("Given two games on the same calendar date", t, func() {
		records := []model.GameRecord{
			{RecordID: "b1", EntityID: "B", GameDate: day("2023-02-10")},
			{RecordID: "b2", EntityID: "B", GameDate: day("2023-02-10")},
		}

		Convey("When computing rest intervals", func() {
			res := rest.Intervals(records)

			Convey("Then the tie keeps input order and yields a zero-day gap", func() {
				So(res.Intervals[0].Index, ShouldEqual, 0)
				So(res.Intervals[1].Index, ShouldEqual, 1)
				So(res.Intervals[0].DaysRest, ShouldBeNil)
				So(*res.Intervals[1].DaysRest, ShouldEqual, 0)
			})
		})
	})

	Convey("Given a record without a usable date", t, func() {
		records := []model.GameRecord{
			{RecordID: "c1", EntityID: "C", GameDate: day("2023-03-01")},
			{RecordID: "c2", EntityID: "C"}, // zero date
			{RecordID: "c3", EntityID: "C", GameDate: day("2023-03-04")},
		}

		Convey("When computing rest intervals", func() {
			res := rest.Intervals(records)

			Convey("Then the dateless record is excluded and counted", func() {
				So(res.Intervals, ShouldHaveLength, 2)
				So(res.Skipped, ShouldEqual, 1)
			})

			Convey("And the gap spans the two dated games", func() {
				So(res.Intervals[0].DaysRest, ShouldBeNil)
				So(*res.Intervals[1].DaysRest, ShouldEqual, 3)
			})
		})
	})

	Convey("Given an empty input", t, func() {
		res := rest.Intervals(nil)

		Convey("Then the result is empty with no skips", func() {
			So(res.Intervals, ShouldHaveLength, 0)
			So(res.Skipped, ShouldEqual, 0)
		})
	})

	Convey("Given the same input twice", t, func() {
		records := []model.GameRecord{
			{RecordID: "d1", EntityID: "D", GameDate: day("2023-01-05")},
			{RecordID: "d2", EntityID: "D", GameDate: day("2023-01-09")},
		}

		Convey("Then both runs produce identical results", func() {
			first := rest.Intervals(records)
			second := rest.Intervals(records)
			So(second, ShouldResemble, first)
		})
	})
}

func TestGroupByEntity(t *testing.T) {
	Convey("Given a mixed record slice", t, func() {
		records := []model.GameRecord{
			{RecordID: "1", EntityID: "TOR"},
			{RecordID: "2", EntityID: "BOS"},
			{RecordID: "3", EntityID: "TOR"},
		}

		Convey("When grouping by entity", func() {
			groups, keys := rest.GroupByEntity(records)

			Convey("Then keys are sorted and groups preserve input order", func() {
				So(keys, ShouldResemble, []string{"BOS", "TOR"})
				So(groups["TOR"], ShouldResemble, []int{0, 2})
				So(groups["BOS"], ShouldResemble, []int{1})
			})
		})
	})
}
