package aggregate_test

import (
	"testing"

	"github.com/frostline/restcurve/internal/domain/aggregate"
	"github.com/frostline/restcurve/internal/domain/model"
	"github.com/frostline/restcurve/internal/domain/rest"
	. "github.com/smartystreets/goconvey/convey"
)

func TestByBucket(t *testing.T) {
	Convey("Given samples in two buckets", t, func() {
		samples := []aggregate.Sample{
			{EntityID: "TOR", Bucket: rest.BucketBackToBack, Value: model.Float(1)},
			{EntityID: "TOR", Bucket: rest.BucketBackToBack, Value: model.Float(0)},
			{EntityID: "BOS", Bucket: rest.BucketExtended, Value: model.Float(1)},
		}

		Convey("When aggregating by bucket", func() {
			out := aggregate.ByBucket(samples)

			Convey("Then exactly one row per canonical bucket is emitted, in order", func() {
				So(out, ShouldHaveLength, 4)
				So(out[0].Bucket, ShouldEqual, rest.BucketBackToBack)
				So(out[1].Bucket, ShouldEqual, rest.BucketShort)
				So(out[2].Bucket, ShouldEqual, rest.BucketNormal)
				So(out[3].Bucket, ShouldEqual, rest.BucketExtended)
			})

			Convey("And populated buckets carry counts and means", func() {
				So(out[0].SampleCount, ShouldEqual, 2)
				So(out[0].MetricCount, ShouldEqual, 2)
				So(*out[0].Mean, ShouldEqual, 0.5)
				So(out[0].Sum, ShouldEqual, 1)

				So(out[3].SampleCount, ShouldEqual, 1)
				So(*out[3].Mean, ShouldEqual, 1)
			})

			Convey("And empty buckets stay visible with zero count and nil mean", func() {
				So(out[1].SampleCount, ShouldEqual, 0)
				So(out[1].Mean, ShouldBeNil)
				So(out[2].SampleCount, ShouldEqual, 0)
				So(out[2].Mean, ShouldBeNil)
			})
		})
	})

	Convey("Given a sample with an undefined metric value", t, func() {
		samples := []aggregate.Sample{
			{EntityID: "TOR", Bucket: rest.BucketShort, Value: nil},
			{EntityID: "TOR", Bucket: rest.BucketShort, Value: model.Float(2)},
		}

		Convey("When aggregating", func() {
			out := aggregate.ByBucket(samples)

			Convey("Then it counts toward the sample count but not the mean", func() {
				So(out[1].SampleCount, ShouldEqual, 2)
				So(out[1].MetricCount, ShouldEqual, 1)
				So(*out[1].Mean, ShouldEqual, 2)
			})
		})
	})

	Convey("Given no samples at all", t, func() {
		out := aggregate.ByBucket(nil)

		Convey("Then all four buckets are still emitted empty", func() {
			So(out, ShouldHaveLength, 4)
			for _, row := range out {
				So(row.SampleCount, ShouldEqual, 0)
				So(row.Mean, ShouldBeNil)
			}
		})
	})

	Convey("Given the same samples twice", t, func() {
		samples := []aggregate.Sample{
			{EntityID: "X", Bucket: rest.BucketNormal, Value: model.Float(3)},
		}

		Convey("Then aggregation is idempotent", func() {
			So(aggregate.ByBucket(samples), ShouldResemble, aggregate.ByBucket(samples))
		})
	})
}

func TestByEntity(t *testing.T) {
	Convey("Given samples from two entities", t, func() {
		samples := []aggregate.Sample{
			{EntityID: "TOR", Bucket: rest.BucketBackToBack, Value: model.Float(1)},
			{EntityID: "BOS", Bucket: rest.BucketExtended, Value: model.Float(0)},
			{EntityID: "TOR", Bucket: rest.BucketExtended, Value: model.Float(1)},
		}

		Convey("When aggregating per entity", func() {
			out := aggregate.ByEntity(samples)

			Convey("Then entities are ordered by id", func() {
				So(out, ShouldHaveLength, 2)
				So(out[0].EntityID, ShouldEqual, "BOS")
				So(out[1].EntityID, ShouldEqual, "TOR")
			})

			Convey("And each entity carries a full canonical bucket table", func() {
				So(out[0].Summaries, ShouldHaveLength, 4)
				So(out[1].Summaries, ShouldHaveLength, 4)
				So(out[1].Summaries[0].SampleCount, ShouldEqual, 1)
				So(out[1].Summaries[3].SampleCount, ShouldEqual, 1)
			})
		})
	})
}
