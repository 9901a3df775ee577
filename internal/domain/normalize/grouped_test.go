package normalize_test

import (
	"testing"

	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/normalize"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGroupedZScore(t *testing.T) {
	Convey("Given two interleaved groups", t, func() {
		values := model.Values(10, 1, 20, 2, 30, 3, 40)
		groups := []string{"G", "C", "G", "C", "G", "C", "G"}

		out := normalize.GroupedZScore(values, groups, nil)

		Convey("Then each group matches standalone standardization", func() {
			guards := normalize.RobustZScore(model.Values(10, 20, 30, 40))
			centers := normalize.RobustZScore(model.Values(1, 2, 3))

			So(out[0], ShouldResemble, guards[0])
			So(out[2], ShouldResemble, guards[1])
			So(out[4], ShouldResemble, guards[2])
			So(out[6], ShouldResemble, guards[3])
			So(out[1], ShouldResemble, centers[0])
			So(out[3], ShouldResemble, centers[1])
			So(out[5], ShouldResemble, centers[2])
		})
	})

	Convey("Given a confidence signal", t, func() {
		values := model.Values(1, 5, 9, 13)
		groups := []string{"F", "F", "F", "F"}
		raw := normalize.GroupedZScore(values, groups, nil)

		Convey("When a subject has zero confidence", func() {
			out := normalize.GroupedZScore(values, groups, model.Values(0, 24, 24, 24))
			So(out[0].Valid, ShouldBeTrue)
			So(out[0].Float, ShouldEqual, 0)
		})

		Convey("When a subject is at or above the cap", func() {
			out := normalize.GroupedZScore(values, groups, model.Values(24, 36, 12, 6))
			So(out[0].Float, ShouldEqual, raw[0].Float)
			So(out[1].Float, ShouldEqual, raw[1].Float)
		})

		Convey("When a subject is below the cap", func() {
			out := normalize.GroupedZScore(values, groups, model.Values(24, 36, 12, 6))
			So(out[2].Float, ShouldAlmostEqual, raw[2].Float*0.5, 1e-12)
			So(out[3].Float, ShouldAlmostEqual, raw[3].Float*0.25, 1e-12)
		})

		Convey("When confidence is undefined", func() {
			out := normalize.GroupedZScore(values, groups, []model.Value{model.None(), model.Some(24), model.Some(24), model.Some(24)})
			So(out[0].Float, ShouldEqual, 0)
		})
	})

	Convey("Given a custom cap", t, func() {
		n := normalize.New(normalize.WithConfidenceCap(10))
		values := model.Values(1, 2, 3)
		raw := n.GroupedZScore(values, nil, nil)
		out := n.GroupedZScore(values, nil, model.Values(5, 10, 10))

		So(n.ConfidenceCap(), ShouldEqual, 10)
		So(out[0].Float, ShouldAlmostEqual, raw[0].Float*0.5, 1e-12)
		So(out[2].Float, ShouldEqual, raw[2].Float)
	})

	Convey("Given a single-member group", t, func() {
		out := normalize.GroupedZScore(model.Values(7, 1, 2), []string{"C", "G", "G"}, nil)
		So(out[0].Float, ShouldEqual, 0)
	})
}
