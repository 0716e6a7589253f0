package fusion

import "math"

// Params holds the calibration between the camera and the range scanner.
// Loaded once at startup and only ever replaced whole between cycles; a
// running cycle keeps the parameters it started with.
type Params struct {
	// AngularOffsetDeg is the angle between the scanner's and the camera's
	// zero bearing.
	AngularOffsetDeg float64
	// BaselineOffsetM is the physical offset between the two sensors.
	BaselineOffsetM float64
	// CameraFOVDeg is the camera's horizontal field of view.
	CameraFOVDeg float64
}

// Transform maps a camera-frame bearing (degrees) into the scanner's angular
// frame. The association engine only ever goes through a Transform, so a
// future 6-DOF transform can replace the angular-offset formula without
// changing its contract.
type Transform func(cameraBearingDeg float64) float64

// Transform returns the angular-offset transform for these parameters.
func (p Params) Transform() Transform {
	return func(cameraBearingDeg float64) float64 {
		return wrap360(cameraBearingDeg + p.AngularOffsetDeg)
	}
}

// wrap360 normalizes an angle in degrees into [0, 360).
func wrap360(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}
