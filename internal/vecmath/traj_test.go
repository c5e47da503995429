package vecmath

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestTrajNormalize(t *testing.T) {
	Convey("Given a trajectory with negative rho", t, func() {
		tr := NewTraj(-5, 0)

		Convey("rho becomes positive and theta flips by pi", func() {
			So(tr.Rho, ShouldEqual, 5)
			So(tr.Theta, ShouldAlmostEqual, Pi, 1e-9)
		})
	})

	Convey("Given a zero-magnitude trajectory", t, func() {
		tr := NewTraj(0, 2.5)

		Convey("theta collapses to the canonical zero", func() {
			So(tr.Theta, ShouldEqual, 0)
		})
	})

	Convey("Given an angle outside (-pi, pi]", t, func() {
		tr := NewTraj(1, 4*Pi+0.1)

		Convey("it wraps back into range", func() {
			So(tr.Theta, ShouldBeLessThanOrEqualTo, Pi)
			So(tr.Theta, ShouldBeGreaterThan, -Pi)
		})
	})
}
