package fusion

import (
	"testing"

	"go.viam.com/test"
)

func TestTransform(t *testing.T) {
	t.Run("zero offset is the identity on the wrapped domain", func(t *testing.T) {
		transform := Params{CameraFOVDeg: 60}.Transform()
		test.That(t, transform(50), test.ShouldEqual, 50.0)
		test.That(t, transform(-10), test.ShouldEqual, 350.0)
	})

	t.Run("offsets wrap across the 0/360 seam", func(t *testing.T) {
		transform := Params{AngularOffsetDeg: 15, CameraFOVDeg: 60}.Transform()
		test.That(t, transform(350), test.ShouldEqual, 5.0)

		transform = Params{AngularOffsetDeg: -20, CameraFOVDeg: 60}.Transform()
		test.That(t, transform(10), test.ShouldEqual, 350.0)
	})
}

func TestWrap360(t *testing.T) {
	test.That(t, wrap360(0), test.ShouldEqual, 0.0)
	test.That(t, wrap360(359.5), test.ShouldEqual, 359.5)
	test.That(t, wrap360(360), test.ShouldEqual, 0.0)
	test.That(t, wrap360(-90), test.ShouldEqual, 270.0)
	test.That(t, wrap360(720.25), test.ShouldEqual, 0.25)
}
